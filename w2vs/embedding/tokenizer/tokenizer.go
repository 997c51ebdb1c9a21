package tokenizer

import (
	"fmt"
	"strings"
)

// Tokenizer converts raw text to the word tokens looked up in an embedding
// table. Implementations must be deterministic and side-effect free.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Config holds basic tokenizer settings
type Config struct {
	Kind      string
	VocabPath string
}

// ErrUnsupported indicates the tokenizer could not be initialized
var ErrUnsupported = fmt.Errorf("unsupported tokenizer configuration")

// New selects a tokenizer by kind: "common" (default) or "wordpiece".
func New(cfg Config) (Tokenizer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "common", "default":
		return NewCommon(), nil
	case "wordpiece", "bert":
		if cfg.VocabPath == "" {
			return nil, fmt.Errorf("%w: wordpiece needs a vocab path", ErrUnsupported)
		}
		return NewSugarWordPiece(cfg.VocabPath)
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnsupported, cfg.Kind)
	}
}
