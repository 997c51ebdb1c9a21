package inference

import "strings"

// Options configure the ONNX backend.
type Options struct {
	// ExecutionProvider is one of "cpu", "cuda", "tensorrt", "coreml", "dml".
	ExecutionProvider string
	// DeviceID is used by some EPs (e.g., DirectML).
	DeviceID int
	// InputName and OutputName override tensor name discovery.
	InputName  string
	OutputName string
}

func (o Options) executionProvider() string {
	ep := strings.ToLower(strings.TrimSpace(o.ExecutionProvider))
	if ep == "" {
		return "cpu"
	}
	return ep
}
