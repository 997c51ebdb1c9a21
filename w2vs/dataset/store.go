package dataset

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Record is one raw row of a labeled stream before its label is resolved.
type Record struct {
	ID    string
	Text  string
	Label string
}

// RecordStream yields records in source order. Next returns io.EOF after the
// last record. Errors wrapping ErrMalformedRecord are skipped; any other
// error aborts store construction.
type RecordStream interface {
	Next() (Record, error)
}

// StoreStats counts what happened to each record during construction.
type StoreStats struct {
	Accepted     int
	Malformed    int
	Unrecognized int
	EmptyText    int
}

// Store holds the positive and negative texts in insertion order. It is
// immutable after construction and safe for concurrent readers.
type Store struct {
	positives []string
	negatives []string
	stats     StoreStats
}

type storeConfig struct {
	source string
	logger zerolog.Logger
}

// StoreOption configures NewStore.
type StoreOption func(*storeConfig)

// WithSource names the stream in errors and logs, usually a file path.
func WithSource(name string) StoreOption {
	return func(c *storeConfig) { c.source = name }
}

// WithStoreLogger sets the logger used for skipped records.
func WithStoreLogger(logger zerolog.Logger) StoreOption {
	return func(c *storeConfig) { c.logger = logger }
}

// NewStore drains the stream into a new Store.
func NewStore(stream RecordStream, opts ...StoreOption) (*Store, error) {
	cfg := storeConfig{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if stream == nil {
		return nil, &ConstructionError{Source: cfg.source, Err: errors.New("nil record stream")}
	}

	s := &Store{}
	for {
		rec, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, ErrMalformedRecord) {
			s.stats.Malformed++
			cfg.logger.Warn().Err(err).Str("source", cfg.source).Msg("skipping malformed record")
			continue
		}
		if err != nil {
			return nil, &ConstructionError{Source: cfg.source, Err: err}
		}

		class, ok := ParseClass(rec.Label)
		if !ok {
			s.stats.Unrecognized++
			cfg.logger.Debug().Str("id", rec.ID).Str("label", rec.Label).Msg("dropping record with unrecognized label")
			continue
		}
		if rec.Text == "" {
			// still kept, it becomes a degenerate example when batched
			s.stats.EmptyText++
			cfg.logger.Warn().Str("id", rec.ID).Msg("record has empty text")
		}
		s.add(rec.Text, class)
		s.stats.Accepted++
	}

	cfg.logger.Info().
		Str("source", cfg.source).
		Int("positives", len(s.positives)).
		Int("negatives", len(s.negatives)).
		Int("malformed", s.stats.Malformed).
		Int("unrecognized", s.stats.Unrecognized).
		Msg("example store loaded")
	return s, nil
}

// NewStoreFromExamples builds a store from already partitioned texts.
func NewStoreFromExamples(positives, negatives []string) *Store {
	s := &Store{
		positives: append([]string(nil), positives...),
		negatives: append([]string(nil), negatives...),
	}
	s.stats.Accepted = len(s.positives) + len(s.negatives)
	return s
}

func (s *Store) add(text string, class Class) {
	if class == Positive {
		s.positives = append(s.positives, text)
	} else {
		s.negatives = append(s.negatives, text)
	}
}

// Positives returns a copy of the positive texts.
func (s *Store) Positives() []string { return append([]string(nil), s.positives...) }

// Negatives returns a copy of the negative texts.
func (s *Store) Negatives() []string { return append([]string(nil), s.negatives...) }

func (s *Store) NumPositives() int { return len(s.positives) }
func (s *Store) NumNegatives() int { return len(s.negatives) }

// Total is the number of examples in one epoch.
func (s *Store) Total() int { return len(s.positives) + len(s.negatives) }

func (s *Store) Stats() StoreStats { return s.stats }

// consumed returns how many positives and negatives the interleaving has
// emitted before global position k. Alternation runs until one class is
// exhausted, after which only the other class is drawn, so
// pos(k) = min(P, max(ceil(k/2), k-N)).
func (s *Store) consumed(k int) (pos, neg int) {
	p, n := len(s.positives), len(s.negatives)
	pos = (k + 1) / 2
	if k-n > pos {
		pos = k - n
	}
	if pos > p {
		pos = p
	}
	return pos, k - pos
}

// Example returns the example emitted at global position k of an epoch.
// Even positions prefer the next unused positive, odd positions the next
// unused negative; an exhausted class falls back to the other one.
func (s *Store) Example(k int) (LabeledExample, error) {
	if k < 0 || k >= s.Total() {
		return LabeledExample{}, usageErrorf("position %d outside [0,%d)", k, s.Total())
	}
	pos, neg := s.consumed(k)
	preferPositive := k%2 == 0
	if preferPositive && pos < len(s.positives) || !preferPositive && neg >= len(s.negatives) {
		return LabeledExample{Text: s.positives[pos], Class: Positive}, nil
	}
	return LabeledExample{Text: s.negatives[neg], Class: Negative}, nil
}

// IsPositiveAt reports the class drawn at global position k.
func (s *Store) IsPositiveAt(k int) (bool, error) {
	ex, err := s.Example(k)
	if err != nil {
		return false, fmt.Errorf("class at %d: %w", k, err)
	}
	return ex.Class == Positive, nil
}
