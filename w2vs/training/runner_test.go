package training

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/dataset"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/embedding"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/embedding/tokenizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIterator(t *testing.T, p, n, batchSize int) *dataset.Iterator {
	t.Helper()
	pos := make([]string, p)
	for i := range pos {
		pos[i] = fmt.Sprintf("great movie %d", i)
	}
	neg := make([]string, n)
	for i := range neg {
		neg[i] = fmt.Sprintf("awful plot %d", i)
	}
	if n > 0 {
		neg[0] = "1234 !!!" // nothing survives the tokenizer
	}
	store := dataset.NewStoreFromExamples(pos, neg)
	it, err := dataset.NewIterator(store, tokenizer.NewCommon(), embedding.NewHashProvider(3), dataset.WithBatchSize(batchSize))
	require.NoError(t, err)
	return it
}

// recorder remembers every position it was fed.
type recorder struct {
	positions []int
	failAt    int
}

func (r *recorder) Fit(ctx context.Context, batch *dataset.Batch) error {
	for _, p := range batch.Positions {
		if r.failAt > 0 && p == r.failAt {
			return errors.New("diverged")
		}
		r.positions = append(r.positions, p)
	}
	return nil
}

type countingEvaluator struct {
	epochs   []int
	examples int
}

func (e *countingEvaluator) Evaluate(ctx context.Context, epoch int, test *dataset.Iterator) error {
	e.epochs = append(e.epochs, epoch)
	for test.HasNext() {
		b, err := test.Next()
		if err != nil {
			return err
		}
		e.examples += b.Size()
	}
	return nil
}

func TestRunner(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"DrainsEveryEpoch", testRunnerDrainsEveryEpoch},
		{"EvaluatesAfterEachEpoch", testRunnerEvaluatesAfterEachEpoch},
		{"CheckpointsAndResumes", testRunnerCheckpointsAndResumes},
		{"ResumeRejectsOtherDataset", testRunnerResumeRejectsOtherDataset},
		{"FitFailure", testRunnerFitFailure},
		{"Cancelled", testRunnerCancelled},
		{"InvalidOptions", testRunnerInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testRunnerDrainsEveryEpoch(t *testing.T) {
	it := newTestIterator(t, 3, 2, 2)
	rec := &recorder{}
	runner, err := NewRunner(it, rec, WithEpochs(2))
	require.NoError(t, err)

	sum, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 0, 1, 2, 3, 4}, rec.positions)
	assert.Equal(t, 2, sum.Epochs)
	assert.Equal(t, 6, sum.Batches)
	assert.Equal(t, 10, sum.Examples)
	assert.Equal(t, 2, sum.Degenerate, "one empty negative per epoch")
	assert.Equal(t, runner.RunID(), sum.RunID)
	assert.Equal(t, dataset.Ready, it.State(), "iterator is reset after the last epoch")
}

func testRunnerEvaluatesAfterEachEpoch(t *testing.T) {
	it := newTestIterator(t, 2, 2, 4)
	test := newTestIterator(t, 1, 1, 1)
	require.NoError(t, test.SetCursor(2))

	ev := &countingEvaluator{}
	runner, err := NewRunner(it, &recorder{}, WithEpochs(3), WithEvaluation(ev, test))
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, ev.epochs)
	assert.Equal(t, 6, ev.examples, "test iterator is rewound before every evaluation")
}

func testRunnerCheckpointsAndResumes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt", "checkpoint.yaml")

	// first run stops mid-epoch when the fitter fails at position 4
	first := &recorder{failAt: 4}
	runner, err := NewRunner(newTestIterator(t, 4, 3, 2), first, WithEpochs(2), WithCheckpoint(path, 1))
	require.NoError(t, err)
	_, err = runner.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, first.positions)

	cp, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cp.Epoch)
	assert.Equal(t, 4, cp.Cursor)
	assert.Equal(t, 7, cp.Total)
	assert.Equal(t, 2, cp.BatchSize)
	assert.Equal(t, runner.RunID().String(), cp.RunID)

	// second run picks up at the recorded cursor with the same run id
	second := &recorder{}
	resumed, err := NewRunner(newTestIterator(t, 4, 3, 2), second, WithEpochs(2), WithCheckpoint(path, 1))
	require.NoError(t, err)
	ok, err := resumed.ResumeFrom()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, runner.RunID(), resumed.RunID())

	sum, err := resumed.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6, 0, 1, 2, 3, 4, 5, 6}, second.positions)
	assert.Equal(t, 2, sum.Epochs)

	cp, err = LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cp.Epoch)
	assert.Equal(t, 0, cp.Cursor)

	// a finished run has nothing left to do
	third := &recorder{}
	done, err := NewRunner(newTestIterator(t, 4, 3, 2), third, WithEpochs(2), WithCheckpoint(path, 1))
	require.NoError(t, err)
	_, err = done.ResumeFrom()
	require.NoError(t, err)
	sum, err = done.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, third.positions)
	assert.Zero(t, sum.Epochs)
}

func testRunnerResumeRejectsOtherDataset(t *testing.T) {
	runner, err := NewRunner(newTestIterator(t, 2, 2, 2), &recorder{})
	require.NoError(t, err)

	cp := &Checkpoint{RunID: runner.RunID().String(), Cursor: 1, Total: 9}
	assert.ErrorIs(t, runner.Resume(cp), dataset.ErrUsage)

	cp = &Checkpoint{RunID: "not-a-uuid", Total: 4}
	assert.Error(t, runner.Resume(cp))

	ok, err := runner.ResumeFrom()
	require.NoError(t, err)
	assert.False(t, ok, "no checkpoint path configured")
}

func testRunnerFitFailure(t *testing.T) {
	runner, err := NewRunner(newTestIterator(t, 2, 2, 1), &recorder{failAt: 2})
	require.NoError(t, err)

	sum, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diverged")
	assert.Equal(t, 2, sum.Batches)
}

func testRunnerCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.yaml")
	ctx, cancel := context.WithCancel(context.Background())

	var seen int
	stopAfterTwo := FitterFunc(func(_ context.Context, b *dataset.Batch) error {
		seen += b.Size()
		if seen == 2 {
			cancel()
		}
		return nil
	})
	runner, err := NewRunner(newTestIterator(t, 3, 3, 1), stopAfterTwo, WithCheckpoint(path, 0))
	require.NoError(t, err)

	_, err = runner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	cp, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cp.Cursor, "cancellation saves the cursor")
}

func testRunnerInvalidOptions(t *testing.T) {
	it := newTestIterator(t, 1, 1, 1)

	_, err := NewRunner(nil, &recorder{})
	assert.ErrorIs(t, err, dataset.ErrUsage)
	_, err = NewRunner(it, &recorder{}, WithEpochs(0))
	assert.ErrorIs(t, err, dataset.ErrUsage)
	_, err = NewRunner(it, &recorder{}, WithEvaluation(&countingEvaluator{}, nil))
	assert.ErrorIs(t, err, dataset.ErrUsage)
}
