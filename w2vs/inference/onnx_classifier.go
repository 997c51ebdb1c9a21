//go:build onnx
// +build onnx

package inference

import (
	"context"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
	"gonum.org/v1/gonum/mat"
)

// ONNX-backed classifier under onnx build tag. The model takes one float input
// of shape [1, dims, T] and yields per-step class probabilities [1, 2, T].
type onnxClassifier struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
}

func newONNXClassifier(modelPath string, opts Options) (Classifier, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("onnx model path is required")
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnx runtime: %w", err)
		}
	}
	// Probe IO
	ins, outs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("get IO info: %w", err)
	}
	inputName := opts.InputName
	if inputName == "" {
		for _, ii := range ins {
			if ii.DataType == ort.TensorElementDataTypeFloat {
				inputName = ii.Name
				break
			}
		}
	}
	if inputName == "" {
		return nil, fmt.Errorf("could not determine ONNX input name")
	}
	// Choose first float output by default
	outputName := opts.OutputName
	if outputName == "" {
		for _, oi := range outs {
			if oi.DataType == ort.TensorElementDataTypeFloat {
				outputName = oi.Name
				break
			}
		}
	}
	if outputName == "" {
		return nil, fmt.Errorf("could not determine ONNX output name")
	}

	var sessOpts *ort.SessionOptions
	// Attempt to construct SessionOptions for the requested EP
	if ep := opts.executionProvider(); ep != "cpu" {
		if o, e := ort.NewSessionOptions(); e == nil {
			_ = o.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll)
			switch ep {
			case "cuda":
				if cu, e2 := ort.NewCUDAProviderOptions(); e2 == nil {
					_ = o.AppendExecutionProviderCUDA(cu)
					_ = cu.Destroy()
				}
			case "tensorrt":
				if trt, e2 := ort.NewTensorRTProviderOptions(); e2 == nil {
					_ = o.AppendExecutionProviderTensorRT(trt)
					_ = trt.Destroy()
				}
			case "coreml":
				_ = o.AppendExecutionProviderCoreMLV2(map[string]string{})
			case "dml":
				_ = o.AppendExecutionProviderDirectML(opts.DeviceID)
			}
			sessOpts = o
		}
	}
	session, err := ort.NewDynamicAdvancedSession(modelPath, []string{inputName}, []string{outputName}, sessOpts)
	if sessOpts != nil {
		_ = sessOpts.Destroy()
	}
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	return &onnxClassifier{session: session, inputName: inputName, outputName: outputName}, nil
}

func (c *onnxClassifier) Predict(ctx context.Context, features *mat.Dense) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	dims, steps := features.Dims()
	flat := make([]float32, 0, dims*steps)
	for d := 0; d < dims; d++ {
		for t := 0; t < steps; t++ {
			flat = append(flat, float32(features.At(d, t)))
		}
	}
	input, err := ort.NewTensor(ort.NewShape(1, int64(dims), int64(steps)), flat)
	if err != nil {
		return Prediction{}, fmt.Errorf("features tensor: %w", err)
	}
	defer input.Destroy()

	outs := []ort.Value{nil}
	if err := c.session.Run([]ort.Value{input}, outs); err != nil {
		return Prediction{}, fmt.Errorf("onnx run: %w", err)
	}
	defer outs[0].Destroy()

	t, ok := outs[0].(*ort.Tensor[float32])
	if !ok {
		return Prediction{}, fmt.Errorf("unexpected output type")
	}
	shape := t.GetShape()
	if len(shape) != 3 || shape[0] != 1 || shape[1] != 2 {
		return Prediction{}, fmt.Errorf("unexpected output shape %v", shape)
	}
	return lastStep(t.GetData(), int(shape[2])), nil
}

func (c *onnxClassifier) Close() error {
	return c.session.Destroy()
}

// ListExecutionProviders returns the available ONNX Runtime execution providers.
func ListExecutionProviders() ([]string, error) {
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnx runtime: %w", err)
		}
	}
	// Not every build of the binding exposes provider discovery; report CPU.
	return []string{"cpu"}, nil
}
