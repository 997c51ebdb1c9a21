package embedding

import (
	"crypto/sha256"
)

// hashProvider derives vectors from a sha256 of the word. With no vocabulary
// every word is known; otherwise only the listed words are.
type hashProvider struct {
	dims  int
	vocab map[string]struct{}
}

func NewHashProvider(dims int, vocab ...string) *hashProvider {
	if dims <= 0 {
		dims = 50
	}
	h := &hashProvider{dims: dims}
	if len(vocab) > 0 {
		h.vocab = make(map[string]struct{}, len(vocab))
		for _, w := range vocab {
			h.vocab[w] = struct{}{}
		}
	}
	return h
}

func (h *hashProvider) Dimensions() int { return h.dims }

func (h *hashProvider) HasVector(word string) bool {
	if word == "" {
		return false
	}
	if h.vocab == nil {
		return true
	}
	_, ok := h.vocab[word]
	return ok
}

func (h *hashProvider) Vector(word string) []float64 {
	if !h.HasVector(word) {
		return nil
	}
	sum := sha256.Sum256([]byte(word))
	vec := make([]float64, h.dims)
	// repeat hash bytes to fill dims
	for j := 0; j < h.dims; j++ {
		b := sum[j%len(sum)]
		vec[j] = (float64(int(b)) - 128.0) / 128.0
	}
	return vec
}
