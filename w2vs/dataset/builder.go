package dataset

import (
	"github.com/rs/zerolog"
)

const (
	// DefaultBatchSize is the arena capacity when WithBatchSize is not given.
	DefaultBatchSize = 64
	// DefaultTruncateLength caps the time axis of every batch.
	DefaultTruncateLength = 50
)

// Tokenizer splits raw text into tokens. It must be deterministic.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Embeddings looks up fixed-dimension word vectors.
type Embeddings interface {
	HasVector(word string) bool
	Vector(word string) []float64
	Dimensions() int
}

// Cursor is the caller-owned iteration state over one store: the global
// position of the next example to emit. The zero value is a cursor at the
// start of an epoch. It is only mutated through Builder methods.
type Cursor struct {
	position int
}

// NewCursorAt returns a cursor positioned at n without range checks; pass it
// through Builder.SetCursor to validate against a store.
func NewCursorAt(n int) Cursor { return Cursor{position: n} }

// Position is the number of examples already emitted this epoch.
func (c Cursor) Position() int { return c.position }

// Builder turns store examples into padded batches. A builder owns one arena
// and must not be used from several goroutines at once; give each consumer
// its own builder over the shared store.
type Builder struct {
	store     *Store
	tokenizer Tokenizer
	vectors   Embeddings
	dims      int
	truncate  int
	batchSize int

	arena  arena
	tokens [][]string
	diag   *Diagnostics
	logger zerolog.Logger
}

// BuilderOption configures NewBuilder.
type BuilderOption func(*Builder)

// WithTruncateLength caps the number of time steps kept per example.
func WithTruncateLength(n int) BuilderOption {
	return func(b *Builder) { b.truncate = n }
}

// WithBatchSize sizes the arena for batches of n examples.
func WithBatchSize(n int) BuilderOption {
	return func(b *Builder) { b.batchSize = n }
}

// WithDiagnostics records degenerate examples into d.
func WithDiagnostics(d *Diagnostics) BuilderOption {
	return func(b *Builder) { b.diag = d }
}

func WithLogger(logger zerolog.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// NewBuilder validates collaborators and preallocates the arena.
func NewBuilder(store *Store, tok Tokenizer, vectors Embeddings, opts ...BuilderOption) (*Builder, error) {
	if store == nil || tok == nil || vectors == nil {
		return nil, usageErrorf("store, tokenizer and embeddings are required")
	}
	b := &Builder{
		store:     store,
		tokenizer: tok,
		vectors:   vectors,
		dims:      vectors.Dimensions(),
		truncate:  DefaultTruncateLength,
		batchSize: DefaultBatchSize,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.dims < 1 {
		return nil, usageErrorf("embedding dimension %d must be at least 1", b.dims)
	}
	if b.truncate < 1 {
		return nil, usageErrorf("truncate length %d must be at least 1", b.truncate)
	}
	if b.batchSize < 1 {
		return nil, usageErrorf("batch size %d must be at least 1", b.batchSize)
	}
	if b.diag == nil {
		b.diag = NewDiagnostics()
	}
	b.arena = newArena(b.batchSize, b.dims, b.truncate)
	b.tokens = make([][]string, 0, b.batchSize)
	return b, nil
}

func (b *Builder) Store() *Store              { return b.store }
func (b *Builder) Total() int                 { return b.store.Total() }
func (b *Builder) Dimensions() int            { return b.dims }
func (b *Builder) TruncateLength() int        { return b.truncate }
func (b *Builder) BatchSize() int             { return b.batchSize }
func (b *Builder) Diagnostics() *Diagnostics  { return b.diag }
func (b *Builder) HasNext(cur *Cursor) bool   { return cur != nil && cur.position < b.store.Total() }
func (b *Builder) Exhausted(cur *Cursor) bool { return !b.HasNext(cur) }

// Reset rewinds cur to the start of the epoch.
func (b *Builder) Reset(cur *Cursor) {
	if cur != nil {
		cur.position = 0
	}
}

// SetCursor repositions cur to n, enabling resume mid-epoch.
func (b *Builder) SetCursor(cur *Cursor, n int) error {
	if cur == nil {
		return usageErrorf("nil cursor")
	}
	if n < 0 || n > b.store.Total() {
		return usageErrorf("cursor %d outside [0,%d]", n, b.store.Total())
	}
	cur.position = n
	return nil
}

// Next emits up to n examples starting at cur and advances cur by the number
// emitted. It returns ErrExhausted once cur has reached the end of the epoch.
func (b *Builder) Next(cur *Cursor, n int) (*Batch, error) {
	if n < 1 {
		return nil, usageErrorf("batch size %d must be at least 1", n)
	}
	if cur == nil {
		return nil, usageErrorf("nil cursor")
	}
	total := b.store.Total()
	if cur.position < 0 || cur.position > total {
		return nil, usageErrorf("cursor %d outside [0,%d]", cur.position, total)
	}
	if cur.position == total {
		return nil, ErrExhausted
	}

	count := min(n, total-cur.position)
	examples := make([]LabeledExample, count)
	b.tokens = b.tokens[:0]
	maxObserved := 0
	for i := 0; i < count; i++ {
		ex, err := b.store.Example(cur.position + i)
		if err != nil {
			return nil, err
		}
		examples[i] = ex
		known := b.filter(b.tokenizer.Tokenize(ex.Text))
		b.tokens = append(b.tokens, known)
		maxObserved = max(maxObserved, len(known))
	}

	// at least one step so the forced label slot exists when every example is empty
	maxLength := max(min(maxObserved, b.truncate), 1)
	batch := b.arena.batch(count, b.dims, maxLength)

	for i, ex := range examples {
		position := cur.position + i
		known := b.tokens[i]
		seqLength := min(len(known), maxLength)

		batch.Classes[i] = ex.Class
		batch.Positions[i] = position
		batch.Lengths[i] = seqLength

		features := batch.Features[i]
		for t := 0; t < seqLength; t++ {
			vec := b.vectors.Vector(known[t])
			for d := 0; d < b.dims && d < len(vec); d++ {
				features.Set(d, t, vec[d])
			}
			batch.FeatureMask.Set(i, t, 1)
		}

		if seqLength == 0 {
			b.diag.recordDegenerate(position)
			b.logger.Warn().Int("position", position).Str("class", ex.Class.String()).Msg("example has no known tokens")
		}
		last := batch.LastIndex(i)
		batch.Labels[i].Set(ex.Class.Index(), last, 1)
		batch.LabelMask.Set(i, last, 1)
	}

	cur.position += count
	b.logger.Debug().
		Int("size", count).
		Int("max_length", maxLength).
		Int("cursor", cur.position).
		Msg("batch built")
	return batch, nil
}

// filter keeps tokens with a known vector, in order.
func (b *Builder) filter(tokens []string) []string {
	known := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if b.vectors.HasVector(t) {
			known = append(known, t)
		}
	}
	return known
}
