// Package depth provides depth-map estimation from camera frames.
//
// The estimator itself is an opaque collaborator: the pipeline only depends
// on the Estimator interface, with one implementation backed by a MiDaS
// model through OpenCV's DNN module and one deterministic mock for tests.
package depth

import (
	"fmt"
	"math"
)

// Map is a per-pixel depth map with values normalized to [0,1].
// Scale is relative, not metric, unless an external calibration supplies it.
// A Map is immutable after construction.
type Map struct {
	width  int
	height int
	values []float32
}

// NewMap builds a Map from row-major values. The slice length must equal
// width*height.
func NewMap(width, height int, values []float32) (*Map, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid depth map dimensions %dx%d", width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("depth map has %d values, want %d", len(values), width*height)
	}
	return &Map{width: width, height: height, values: values}, nil
}

// Width returns the map width in pixels.
func (m *Map) Width() int { return m.width }

// Height returns the map height in pixels.
func (m *Map) Height() int { return m.height }

// At returns the depth value at pixel column u, row v.
func (m *Map) At(u, v int) float64 {
	return float64(m.values[v*m.width+u])
}

// Validate checks that every value is finite and within [0,1]. Malformed
// maps are a contract violation of the estimator and are rejected at the
// pipeline boundary rather than handled downstream.
func (m *Map) Validate() error {
	for i, v := range m.values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("depth value at index %d is not finite", i)
		}
		if f < 0 || f > 1 {
			return fmt.Errorf("depth value %g at index %d outside [0,1]", f, i)
		}
	}
	return nil
}

// normalize rescales raw model output into [0,1] in place, matching the
// min/max normalization the MiDaS reference pipeline applies. A constant
// map normalizes to all zeros.
func normalize(values []float32) {
	if len(values) == 0 {
		return
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	if span == 0 {
		for i := range values {
			values[i] = 0
		}
		return
	}
	for i := range values {
		values[i] = (values[i] - min) / span
	}
}
