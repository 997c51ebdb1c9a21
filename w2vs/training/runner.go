package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/dataset"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Fitter is the external training engine: it consumes one batch per call.
// The batch is only valid for the duration of the call.
type Fitter interface {
	Fit(ctx context.Context, batch *dataset.Batch) error
}

// FitterFunc adapts a function to Fitter.
type FitterFunc func(ctx context.Context, batch *dataset.Batch) error

func (f FitterFunc) Fit(ctx context.Context, batch *dataset.Batch) error { return f(ctx, batch) }

// Evaluator runs after every epoch against a held-out iterator.
type Evaluator interface {
	Evaluate(ctx context.Context, epoch int, test *dataset.Iterator) error
}

// Summary reports what a Run did.
type Summary struct {
	RunID      uuid.UUID
	Epochs     int
	Batches    int
	Examples   int
	Degenerate int
}

// Runner drives epochs over a training iterator: drain, hand each batch to
// the fitter, reset, evaluate. With a checkpoint path it records the cursor
// every few batches and at every epoch boundary so a run can resume mid-epoch.
type Runner struct {
	train     *dataset.Iterator
	test      *dataset.Iterator
	fitter    Fitter
	evaluator Evaluator

	epochs          int
	startEpoch      int
	checkpointPath  string
	checkpointEvery int
	runID           uuid.UUID
	logger          zerolog.Logger
}

// RunnerOption configures NewRunner.
type RunnerOption func(*Runner)

func WithEpochs(n int) RunnerOption {
	return func(r *Runner) { r.epochs = n }
}

// WithEvaluation evaluates with ev on test after every epoch.
func WithEvaluation(ev Evaluator, test *dataset.Iterator) RunnerOption {
	return func(r *Runner) {
		r.evaluator = ev
		r.test = test
	}
}

// WithCheckpoint saves the cursor to path every n batches (n <= 0: only at
// epoch boundaries).
func WithCheckpoint(path string, every int) RunnerOption {
	return func(r *Runner) {
		r.checkpointPath = path
		r.checkpointEvery = every
	}
}

func WithRunnerLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

func NewRunner(train *dataset.Iterator, fitter Fitter, opts ...RunnerOption) (*Runner, error) {
	if train == nil || fitter == nil {
		return nil, fmt.Errorf("%w: training iterator and fitter are required", dataset.ErrUsage)
	}
	r := &Runner{
		train:  train,
		fitter: fitter,
		epochs: 1,
		runID:  uuid.New(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.epochs < 1 {
		return nil, fmt.Errorf("%w: epochs %d must be at least 1", dataset.ErrUsage, r.epochs)
	}
	if r.evaluator != nil && r.test == nil {
		return nil, fmt.Errorf("%w: evaluator needs a test iterator", dataset.ErrUsage)
	}
	return r, nil
}

func (r *Runner) RunID() uuid.UUID { return r.runID }

// Resume continues the run recorded in cp. The checkpoint must describe the
// same number of training examples.
func (r *Runner) Resume(cp *Checkpoint) error {
	id, err := cp.ID()
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	if cp.Total != r.train.TotalExamples() {
		return fmt.Errorf("%w: checkpoint covers %d examples, training set has %d", dataset.ErrUsage, cp.Total, r.train.TotalExamples())
	}
	if cp.Epoch < 0 || cp.Epoch > r.epochs {
		return fmt.Errorf("%w: checkpoint epoch %d outside [0,%d]", dataset.ErrUsage, cp.Epoch, r.epochs)
	}
	if err := r.train.SetCursor(cp.Cursor); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	r.runID = id
	r.startEpoch = cp.Epoch
	r.logger.Info().
		Str("run_id", cp.RunID).
		Int("epoch", cp.Epoch).
		Int("cursor", cp.Cursor).
		Msg("resuming training")
	return nil
}

// ResumeFrom loads the checkpoint at the configured path and resumes it. A
// missing file is not an error; the run starts from scratch.
func (r *Runner) ResumeFrom() (bool, error) {
	if r.checkpointPath == "" {
		return false, nil
	}
	cp, err := LoadCheckpoint(r.checkpointPath)
	if errors.Is(err, ErrNoCheckpoint) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, r.Resume(cp)
}

// Run trains until the configured number of epochs is reached or ctx is done.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	sum := Summary{RunID: r.runID}
	diag := r.train.Diagnostics()
	degenerateAtStart := diag.DegenerateCount()

	for epoch := r.startEpoch; epoch < r.epochs; epoch++ {
		start := time.Now()
		epochBatches := 0
		for r.train.HasNext() {
			if err := ctx.Err(); err != nil {
				r.save(epoch)
				return sum, err
			}
			batch, err := r.train.Next()
			if err != nil {
				return sum, fmt.Errorf("epoch %d: %w", epoch, err)
			}
			if err := r.fitter.Fit(ctx, batch); err != nil {
				return sum, fmt.Errorf("epoch %d fit at cursor %d: %w", epoch, r.train.Cursor(), err)
			}
			sum.Batches++
			sum.Examples += batch.Size()
			epochBatches++
			if r.checkpointEvery > 0 && epochBatches%r.checkpointEvery == 0 {
				r.save(epoch)
			}
		}
		r.train.Reset()
		sum.Epochs++
		r.logger.Info().
			Int("epoch", epoch).
			Int("batches", epochBatches).
			Dur("elapsed", time.Since(start)).
			Msg("epoch complete")

		if r.evaluator != nil {
			r.test.Reset()
			if err := r.evaluator.Evaluate(ctx, epoch, r.test); err != nil {
				return sum, fmt.Errorf("evaluate epoch %d: %w", epoch, err)
			}
		}
		r.save(epoch + 1)
	}

	sum.Degenerate = diag.DegenerateCount() - degenerateAtStart
	return sum, nil
}

func (r *Runner) save(epoch int) {
	if r.checkpointPath == "" {
		return
	}
	cp := Checkpoint{
		RunID:     r.runID.String(),
		Epoch:     epoch,
		Cursor:    r.train.Cursor(),
		Total:     r.train.TotalExamples(),
		BatchSize: r.train.BatchSize(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := SaveCheckpoint(r.checkpointPath, cp); err != nil {
		r.logger.Error().Err(err).Str("path", r.checkpointPath).Msg("failed to save checkpoint")
	}
}
