package dataset

import (
	"gonum.org/v1/gonum/mat"
)

// Encoder turns one ad-hoc text into a feature matrix for single-pass
// inference. It holds no cursor and allocates per call, so one Encoder can be
// shared across goroutines as long as its collaborators can.
type Encoder struct {
	tokenizer Tokenizer
	vectors   Embeddings
}

func NewEncoder(tok Tokenizer, vectors Embeddings) (*Encoder, error) {
	if tok == nil || vectors == nil {
		return nil, usageErrorf("tokenizer and embeddings are required")
	}
	if vectors.Dimensions() < 1 {
		return nil, usageErrorf("embedding dimension %d must be at least 1", vectors.Dimensions())
	}
	return &Encoder{tokenizer: tok, vectors: vectors}, nil
}

func (e *Encoder) Dimensions() int { return e.vectors.Dimensions() }

// Encode returns the dims x T feature matrix of a single example, where
// T = max(maxLength, number of known tokens).
//
// This path differs from Builder.Next: T is never clamped down to
// maxLength, and slots are indexed by the unfiltered token position. Tokens
// j < min(len(tokens), maxLength) are written at column j when they have a
// vector; unknown tokens leave their column zero. No mask is produced.
func (e *Encoder) Encode(text string, maxLength int) (*mat.Dense, error) {
	if maxLength < 1 {
		return nil, usageErrorf("max length %d must be at least 1", maxLength)
	}
	tokens := e.tokenizer.Tokenize(text)
	known := 0
	for _, t := range tokens {
		if e.vectors.HasVector(t) {
			known++
		}
	}

	dims := e.vectors.Dimensions()
	features := mat.NewDense(dims, max(maxLength, known), nil)
	for j := 0; j < len(tokens) && j < maxLength; j++ {
		if !e.vectors.HasVector(tokens[j]) {
			continue
		}
		vec := e.vectors.Vector(tokens[j])
		for d := 0; d < dims && d < len(vec); d++ {
			features.Set(d, j, vec[d])
		}
	}
	return features, nil
}
