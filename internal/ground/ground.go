// Package ground separates floor pixels from obstacle pixels using the
// estimated height of each depth sample above the ground plane.
package ground

import (
	"math"

	"github.com/wayband/wayband/internal/depth"
	"github.com/wayband/wayband/internal/geometry"
)

// Mask is a per-pixel boolean grid, true where the pixel belongs to the
// ground plane. Its dimensions always match the depth map it was derived
// from.
type Mask struct {
	width  int
	height int
	bits   []bool
}

// NewMask returns an all-false mask of the given dimensions.
func NewMask(width, height int) *Mask {
	return &Mask{width: width, height: height, bits: make([]bool, width*height)}
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.height }

// IsGround reports whether the pixel at column u, row v is ground.
func (m *Mask) IsGround(u, v int) bool {
	return m.bits[v*m.width+u]
}

// Set marks the pixel at column u, row v.
func (m *Mask) Set(u, v int, isGround bool) {
	m.bits[v*m.width+u] = isGround
}

// Classifier labels pixels as ground or obstacle. The camera is assumed
// level, mounted CameraHeight above the floor, so a ground pixel projects
// to metric y = -CameraHeight.
type Classifier struct {
	focalLength  float64
	cameraHeight float64
	tolerance    float64
}

// NewClassifier creates a Classifier from fixed camera parameters.
func NewClassifier(focalLength, cameraHeight, tolerance float64) *Classifier {
	return &Classifier{
		focalLength:  focalLength,
		cameraHeight: cameraHeight,
		tolerance:    tolerance,
	}
}

// Classify derives a ground mask from a depth map. Each pixel is projected
// through the pinhole model and marked as ground iff its height above the
// floor is within the tolerance band. Pixels are independent of each other,
// so the pass is a single O(width*height) loop with no cross-pixel state.
func (c *Classifier) Classify(m *depth.Map) *Mask {
	w, h := m.Width(), m.Height()
	mask := NewMask(w, h)
	fw, fh := float64(w), float64(h)

	for v := 0; v < h; v++ {
		for u := 0; u < w; u++ {
			z := m.At(u, v)
			var y float64
			if z > 0 {
				_, y, _ = geometry.PixelToMetric(float64(u), float64(v), z, fw, fh, c.focalLength)
			}
			// Non-positive depth carries no geometry; y stays 0 and the
			// pixel is classified by the same height test.
			height := -y - c.cameraHeight
			mask.Set(u, v, math.Abs(height) < c.tolerance)
		}
	}
	return mask
}
