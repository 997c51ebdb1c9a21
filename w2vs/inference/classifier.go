package inference

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrUnavailable is returned when no inference backend was compiled in.
var ErrUnavailable = errors.New("inference backend not available")

// Prediction holds class probabilities at the last time step of the output.
type Prediction struct {
	Positive float64
	Negative float64
}

// Classifier scores the dims x T feature matrix of one example.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Predict(ctx context.Context, features *mat.Dense) (Prediction, error)
	Close() error
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, features *mat.Dense) (Prediction, error)

func (f ClassifierFunc) Predict(ctx context.Context, features *mat.Dense) (Prediction, error) {
	return f(ctx, features)
}

func (f ClassifierFunc) Close() error { return nil }

// NewClassifier opens the recurrent model at modelPath with the ONNX backend.
// Without the "onnx" build tag it returns ErrUnavailable.
func NewClassifier(modelPath string, opts Options) (Classifier, error) {
	return newONNXClassifier(modelPath, opts)
}

// lastStep reads the probabilities of the final column of a 2 x T output
// stored row-major in data.
func lastStep(data []float32, steps int) Prediction {
	return Prediction{
		Positive: float64(data[steps-1]),
		Negative: float64(data[steps+steps-1]),
	}
}
