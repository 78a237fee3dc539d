package depth

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// MidasEstimator implements Estimator using a MiDaS ONNX model loaded
// through OpenCV's DNN module.
type MidasEstimator struct {
	config Config
	net    gocv.Net
	mu     sync.Mutex
	closed bool
}

// NewMidasEstimator loads the model named in config. It fails if the model
// file is missing or cannot be parsed; callers typically fall back to the
// mock estimator in that case.
func NewMidasEstimator(config Config) (*MidasEstimator, error) {
	if config.ModelPath == "" {
		return nil, fmt.Errorf("no depth model path configured")
	}
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, fmt.Errorf("depth model: %w", err)
	}
	if config.InputSize <= 0 {
		config.InputSize = DefaultConfig().InputSize
	}

	net := gocv.ReadNet(config.ModelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to load depth model from %s", config.ModelPath)
	}

	return &MidasEstimator{config: config, net: net}, nil
}

// Estimate runs the model on a frame and returns a normalized depth map at
// the configured output dimensions. The context is checked before the
// forward pass; inference itself is a single blocking DNN call.
func (e *MidasEstimator) Estimate(ctx context.Context, frame *gocv.Mat) (*Map, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, fmt.Errorf("estimator is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := e.config.InputSize
	blob := gocv.BlobFromImage(*frame, 1.0/255.0, image.Pt(size, size),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	e.net.SetInput(blob, "")
	out := e.net.Forward("")
	defer out.Close()

	// Model output is 1 x size x size; reshape to a single-channel matrix
	// so it can be resized to the frame dimensions.
	grid := out.Reshape(1, size)
	defer grid.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(grid, &resized, image.Pt(e.config.OutputWidth, e.config.OutputHeight), 0, 0, gocv.InterpolationCubic)

	raw, err := resized.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read model output: %w", err)
	}

	values := make([]float32, len(raw))
	copy(values, raw)
	normalize(values)

	return NewMap(e.config.OutputWidth, e.config.OutputHeight, values)
}

// Close releases the DNN network.
func (e *MidasEstimator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.net.Close()
}
