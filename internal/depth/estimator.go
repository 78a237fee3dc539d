package depth

import (
	"context"

	"gocv.io/x/gocv"
)

// Estimator defines the interface for depth estimation implementations.
type Estimator interface {
	// Estimate produces a normalized depth map for a video frame. The
	// returned map has the dimensions the estimator was configured with.
	Estimate(ctx context.Context, frame *gocv.Mat) (*Map, error)

	// Close releases any resources held by the estimator.
	Close() error
}

// Config holds configuration options for depth estimation.
type Config struct {
	// ModelPath is the filesystem path to the ONNX model.
	ModelPath string

	// InputSize is the square side length the model expects (default: 256).
	InputSize int

	// OutputWidth and OutputHeight are the frame dimensions the produced
	// depth maps are resized to.
	OutputWidth  int
	OutputHeight int
}

// DefaultConfig returns a Config with sensible default values for the
// small MiDaS model at 640x480.
func DefaultConfig() Config {
	return Config{
		InputSize:    256,
		OutputWidth:  640,
		OutputHeight: 480,
	}
}
