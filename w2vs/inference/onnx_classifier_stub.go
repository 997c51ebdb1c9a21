//go:build !onnx
// +build !onnx

package inference

import (
	"fmt"
)

func newONNXClassifier(modelPath string, opts Options) (Classifier, error) {
	return nil, fmt.Errorf("%w: build with -tags onnx and provide a supported model", ErrUnavailable)
}

// ListExecutionProviders reports the execution providers usable by this build.
func ListExecutionProviders() ([]string, error) {
	return nil, ErrUnavailable
}
