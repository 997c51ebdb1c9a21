package dataset

// State is the iterator's position in its epoch state machine.
type State int

const (
	// Ready means at least one more example can be emitted.
	Ready State = iota
	// Exhausted means the cursor reached the total example count.
	Exhausted
)

func (s State) String() string {
	if s == Exhausted {
		return "exhausted"
	}
	return "ready"
}

// Iterator pairs one Builder with its own Cursor for the single-consumer case.
// It is the sequential epoch interface a training loop drives:
// for it.HasNext() { it.Next() }; it.Reset().
type Iterator struct {
	builder *Builder
	cursor  Cursor
}

// NewIterator builds a fresh builder over store and returns an iterator at
// position zero.
func NewIterator(store *Store, tok Tokenizer, vectors Embeddings, opts ...BuilderOption) (*Iterator, error) {
	b, err := NewBuilder(store, tok, vectors, opts...)
	if err != nil {
		return nil, err
	}
	return &Iterator{builder: b}, nil
}

// Next returns the next batch of the configured batch size.
func (it *Iterator) Next() (*Batch, error) { return it.builder.Next(&it.cursor, it.builder.batchSize) }

// NextN returns the next batch of up to n examples.
func (it *Iterator) NextN(n int) (*Batch, error) { return it.builder.Next(&it.cursor, n) }

func (it *Iterator) HasNext() bool { return it.builder.HasNext(&it.cursor) }

func (it *Iterator) Reset() { it.builder.Reset(&it.cursor) }

// SetCursor moves to position n in [0, TotalExamples()].
func (it *Iterator) SetCursor(n int) error { return it.builder.SetCursor(&it.cursor, n) }

func (it *Iterator) Cursor() int { return it.cursor.position }

func (it *Iterator) State() State {
	if it.HasNext() {
		return Ready
	}
	return Exhausted
}

func (it *Iterator) TotalExamples() int { return it.builder.Total() }

// InputColumns is the embedding dimension of the feature tensor.
func (it *Iterator) InputColumns() int { return it.builder.dims }

// TotalOutcomes is the number of classes.
func (it *Iterator) TotalOutcomes() int { return NumClasses }

func (it *Iterator) Labels() []string { return ClassLabels() }

func (it *Iterator) BatchSize() int { return it.builder.batchSize }

func (it *Iterator) Builder() *Builder { return it.builder }

func (it *Iterator) Diagnostics() *Diagnostics { return it.builder.diag }
