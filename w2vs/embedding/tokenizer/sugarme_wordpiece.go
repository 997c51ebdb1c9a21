package tokenizer

import (
	"fmt"
	"os"
	"path/filepath"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
)

// SugarWordPiece wraps sugarme/tokenizer WordPiece (BERT-style). It returns
// word pieces without [CLS]/[SEP], so the embedding table must be keyed by the
// same pieces.
type SugarWordPiece struct {
	t *tk.Tokenizer
}

// NewSugarWordPiece loads vocab.txt (a file, or a directory containing one)
// and builds a BERT WordPiece tokenizer
func NewSugarWordPiece(vocabPath string) (*SugarWordPiece, error) {
	vocabFile := vocabPath
	if fi, err := os.Stat(vocabPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	} else if fi.IsDir() {
		vocabFile = filepath.Join(vocabPath, "vocab.txt")
	}

	// Prefer initializing WordPiece from a vocab file to avoid nil-map panics
	var wp wordpiece.WordPiece
	if nw, err := wordpiece.NewWordPieceFromFile(vocabFile, "[UNK]"); err == nil {
		wp = nw
	} else {
		builder := wordpiece.NewWordPieceBuilder().Files(vocabFile)
		wp = builder.Build()
	}

	t := tk.NewTokenizer(wp)

	// Basic normalizer and pre-tokenizer similar to BERT
	t.WithNormalizer(normalizer.NewBertNormalizer(true, true, true, true))
	t.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())
	return &SugarWordPiece{t: t}, nil
}

// Tokenize returns the word pieces of text. Encoding failures yield no tokens,
// which the batcher treats as a degenerate example.
func (s *SugarWordPiece) Tokenize(text string) []string {
	enc, err := s.t.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(text)), false)
	if err != nil {
		return nil
	}
	return append([]string(nil), enc.GetTokens()...)
}
