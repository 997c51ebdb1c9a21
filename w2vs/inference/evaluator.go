package inference

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/w2v-sentiment/w2vs/dataset"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/mat"
)

// Evaluation is a confusion matrix over the two sentiment classes, indexed
// [actual][predicted].
type Evaluation struct {
	Confusion [dataset.NumClasses][dataset.NumClasses]int
}

func (e *Evaluation) Add(actual, predicted dataset.Class) {
	e.Confusion[actual.Index()][predicted.Index()]++
}

func (e *Evaluation) Total() int {
	n := 0
	for _, row := range e.Confusion {
		for _, v := range row {
			n += v
		}
	}
	return n
}

func (e *Evaluation) Accuracy() float64 {
	correct := 0
	for c := range e.Confusion {
		correct += e.Confusion[c][c]
	}
	return ratio(correct, e.Total())
}

// Precision is the share of examples predicted as c that really are c.
func (e *Evaluation) Precision(c dataset.Class) float64 {
	predicted := 0
	for actual := range e.Confusion {
		predicted += e.Confusion[actual][c.Index()]
	}
	return ratio(e.Confusion[c.Index()][c.Index()], predicted)
}

// Recall is the share of examples of class c that were predicted as c.
func (e *Evaluation) Recall(c dataset.Class) float64 {
	actual := 0
	for _, v := range e.Confusion[c.Index()] {
		actual += v
	}
	return ratio(e.Confusion[c.Index()][c.Index()], actual)
}

func (e *Evaluation) F1(c dataset.Class) float64 {
	p, r := e.Precision(c), e.Recall(c)
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Stats renders the summary printed after an evaluation run.
func (e *Evaluation) Stats() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Examples:  %d\n", e.Total())
	fmt.Fprintf(&b, "Accuracy:  %.4f\n", e.Accuracy())
	for _, c := range []dataset.Class{dataset.Positive, dataset.Negative} {
		fmt.Fprintf(&b, "%-9s precision %.4f  recall %.4f  f1 %.4f\n", c.String()+":", e.Precision(c), e.Recall(c), e.F1(c))
	}
	b.WriteString("Confusion (rows actual, columns predicted):\n")
	fmt.Fprintf(&b, "           positive  negative\n")
	for _, c := range []dataset.Class{dataset.Positive, dataset.Negative} {
		fmt.Fprintf(&b, "%-9s  %8d  %8d\n", c.String(), e.Confusion[c.Index()][0], e.Confusion[c.Index()][1])
	}
	return b.String()
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Evaluator scores labeled batches with a Classifier. Each example is cut to
// its real length so the classifier's last step is the labeled step. It
// satisfies training.Evaluator.
type Evaluator struct {
	classifier Classifier
	workers    int
	logger     zerolog.Logger

	mu   sync.Mutex
	last Evaluation
}

// EvaluatorOption configures NewEvaluator.
type EvaluatorOption func(*Evaluator)

func WithEvaluatorWorkers(n int) EvaluatorOption {
	return func(e *Evaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithEvaluatorLogger(logger zerolog.Logger) EvaluatorOption {
	return func(e *Evaluator) { e.logger = logger }
}

func NewEvaluator(classifier Classifier, opts ...EvaluatorOption) (*Evaluator, error) {
	if classifier == nil {
		return nil, fmt.Errorf("%w: classifier is required", dataset.ErrUsage)
	}
	e := &Evaluator{
		classifier: classifier,
		workers:    min(runtime.NumCPU(), 8),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// EvaluateIterator drains it from its current cursor and returns the
// confusion matrix of what it saw. The iterator is left exhausted.
func (e *Evaluator) EvaluateIterator(ctx context.Context, it *dataset.Iterator) (*Evaluation, error) {
	var eval Evaluation
	for it.HasNext() {
		batch, err := it.Next()
		if err != nil {
			return nil, err
		}
		predicted, err := e.scoreBatch(ctx, batch, it.InputColumns())
		if err != nil {
			return nil, err
		}
		for i, p := range predicted {
			eval.Add(batch.Classes[i], p)
		}
	}
	return &eval, nil
}

// Evaluate runs after a training epoch, logs the metrics and keeps them for Last.
func (e *Evaluator) Evaluate(ctx context.Context, epoch int, test *dataset.Iterator) error {
	start := time.Now()
	eval, err := e.EvaluateIterator(ctx, test)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.last = *eval
	e.mu.Unlock()

	e.logger.Info().
		Int("epoch", epoch).
		Int("examples", eval.Total()).
		Float64("accuracy", eval.Accuracy()).
		Float64("f1_positive", eval.F1(dataset.Positive)).
		Float64("f1_negative", eval.F1(dataset.Negative)).
		Dur("elapsed", time.Since(start)).
		Msg("evaluation complete")
	return nil
}

// Last returns the metrics of the most recent Evaluate call.
func (e *Evaluator) Last() Evaluation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

func (e *Evaluator) scoreBatch(ctx context.Context, batch *dataset.Batch, dims int) ([]dataset.Class, error) {
	predicted := make([]dataset.Class, batch.Size())
	workers := pool.New().WithMaxGoroutines(e.workers).WithContext(ctx).WithCancelOnError()
	for i := 0; i < batch.Size(); i++ {
		i := i // per-iteration copy for go < 1.22
		// degenerate examples keep one zero step, where their label sits
		features := batch.Features[i].Slice(0, dims, 0, batch.LastIndex(i)+1).(*mat.Dense)
		workers.Go(func(ctx context.Context) error {
			pred, err := e.classifier.Predict(ctx, features)
			if err != nil {
				return fmt.Errorf("evaluate position %d: %w", batch.Positions[i], err)
			}
			if pred.Positive >= pred.Negative {
				predicted[i] = dataset.Positive
			} else {
				predicted[i] = dataset.Negative
			}
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, err
	}
	return predicted, nil
}
