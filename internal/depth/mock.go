package depth

import (
	"context"

	"gocv.io/x/gocv"
)

// MockEstimator is a deterministic test implementation of the Estimator
// interface. It returns a pre-configured depth map regardless of the frame.
type MockEstimator struct {
	m   *Map
	err error
}

// NewMockEstimator creates a MockEstimator returning the given map.
func NewMockEstimator(m *Map) *MockEstimator {
	return &MockEstimator{m: m}
}

// SetMap sets the map that will be returned by Estimate.
func (e *MockEstimator) SetMap(m *Map) {
	e.m = m
}

// SetError sets the error that will be returned by Estimate.
func (e *MockEstimator) SetError(err error) {
	e.err = err
}

// Estimate returns the pre-configured map or error.
func (e *MockEstimator) Estimate(ctx context.Context, frame *gocv.Mat) (*Map, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.m, nil
}

// Close is a no-op for the mock estimator.
func (e *MockEstimator) Close() error {
	return nil
}

// UniformMap returns a depth map where every pixel has the same value.
// With a large ground tolerance this reads as an all-ground scene.
func UniformMap(width, height int, value float32) *Map {
	values := make([]float32, width*height)
	for i := range values {
		values[i] = value
	}
	m, _ := NewMap(width, height, values)
	return m
}

// WallAheadMap returns a depth map with a far background and a near
// rectangular block centered on the image, reading as a single obstacle
// straight ahead.
func WallAheadMap(width, height int, background, wall float32) *Map {
	values := make([]float32, width*height)
	for i := range values {
		values[i] = background
	}
	// Block spanning the middle quarter of the frame in each dimension.
	u0, u1 := width*3/8, width*5/8
	v0, v1 := height*3/8, height*5/8
	for v := v0; v < v1; v++ {
		for u := u0; u < u1; u++ {
			values[v*width+u] = wall
		}
	}
	m, _ := NewMap(width, height, values)
	return m
}
