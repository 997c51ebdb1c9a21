package embedding

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProvider is returned by NewProvider for an unrecognized name.
var ErrUnknownProvider = errors.New("unknown embedding provider")

// Provider looks up fixed-dimension word vectors. Dimensions must stay stable
// for the provider's lifetime.
type Provider interface {
	HasVector(word string) bool
	// Vector returns the word's vector, or nil when HasVector is false.
	Vector(word string) []float64
	Dimensions() int
}

// NewProvider selects an embedding provider by name ("word2vec", "hash").
// path points at the vector file for word2vec; dims, when positive, truncates
// or pads loaded vectors to that size.
func NewProvider(providerName string, dims int, path string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(providerName))
	switch name {
	case "hash", "", "dev":
		return NewHashProvider(dims), nil
	case "word2vec", "w2v", "static":
		wv, err := LoadWordVectorsFile(path, dims)
		if err != nil {
			return nil, fmt.Errorf("load word vectors: %w", err)
		}
		return wv, nil
	default:
		return nil, fmt.Errorf("%w: provider %q", ErrUnknownProvider, providerName)
	}
}
