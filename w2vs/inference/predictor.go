package inference

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/dataset"
	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/records"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// Predictor scores test rows: each row goes through the single-example
// encoder and the classifier, and the positive probability at the last time
// step becomes its result.
type Predictor struct {
	encoder    *dataset.Encoder
	classifier Classifier
	maxLength  int
	workers    int
	logger     zerolog.Logger
}

// PredictorOption configures NewPredictor.
type PredictorOption func(*Predictor)

// WithWorkers bounds the number of rows scored concurrently.
func WithWorkers(n int) PredictorOption {
	return func(p *Predictor) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithPredictorLogger(logger zerolog.Logger) PredictorOption {
	return func(p *Predictor) { p.logger = logger }
}

// NewPredictor encodes each row with maxLength as the encoder's length floor.
func NewPredictor(encoder *dataset.Encoder, classifier Classifier, maxLength int, opts ...PredictorOption) (*Predictor, error) {
	if encoder == nil || classifier == nil {
		return nil, fmt.Errorf("%w: encoder and classifier are required", dataset.ErrUsage)
	}
	if maxLength < 1 {
		return nil, fmt.Errorf("%w: max length %d must be at least 1", dataset.ErrUsage, maxLength)
	}
	p := &Predictor{
		encoder:    encoder,
		classifier: classifier,
		maxLength:  maxLength,
		workers:    min(runtime.NumCPU(), 8),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Predict returns one result per row, in row order. The first failure cancels
// the remaining work and is returned.
func (p *Predictor) Predict(ctx context.Context, rows []records.Unlabeled) ([]records.Result, error) {
	start := time.Now()
	results := make([]records.Result, len(rows))
	var done int64

	workers := pool.New().WithMaxGoroutines(p.workers).WithContext(ctx).WithCancelOnError()
	for i, row := range rows {
		i, row := i, row // per-iteration copies for go < 1.22
		workers.Go(func(ctx context.Context) error {
			features, err := p.encoder.Encode(row.Text, p.maxLength)
			if err != nil {
				return fmt.Errorf("encode row %d: %w", row.ID, err)
			}
			pred, err := p.classifier.Predict(ctx, features)
			if err != nil {
				return fmt.Errorf("predict row %d: %w", row.ID, err)
			}
			results[i] = records.Result{ID: row.ID, Positive: pred.Positive}
			atomic.AddInt64(&done, 1)
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		p.logger.Error().Err(err).Int64("scored", atomic.LoadInt64(&done)).Msg("prediction failed")
		return nil, err
	}

	p.logger.Info().
		Int("rows", len(rows)).
		Dur("elapsed", time.Since(start)).
		Msg("prediction complete")
	return results, nil
}
