package geometry

import (
	"math"
	"testing"
)

func TestPixelToMetric_CenterPixel(t *testing.T) {
	// The optical center projects to x = y = 0 at any depth.
	x, y, z := PixelToMetric(320, 240, 1.0, 640, 480, 525.0)

	if x != 0 {
		t.Errorf("expected x = 0 at image center, got %f", x)
	}
	if y != 0 {
		t.Errorf("expected y = 0 at image center, got %f", y)
	}
	if z != 1.0 {
		t.Errorf("expected z passed through unchanged, got %f", z)
	}
}

func TestPixelToMetric_OffCenter(t *testing.T) {
	// x = (u - w/2) * z / f
	x, y, _ := PixelToMetric(425, 135, 2.0, 640, 480, 525.0)

	wantX := (425.0 - 320.0) * 2.0 / 525.0
	wantY := (135.0 - 240.0) * 2.0 / 525.0
	if math.Abs(x-wantX) > 1e-12 {
		t.Errorf("x = %f, want %f", x, wantX)
	}
	if math.Abs(y-wantY) > 1e-12 {
		t.Errorf("y = %f, want %f", y, wantY)
	}
}

func TestPixelToMetric_ScalesWithDepth(t *testing.T) {
	x1, _, _ := PixelToMetric(400, 240, 1.0, 640, 480, 525.0)
	x2, _, _ := PixelToMetric(400, 240, 2.0, 640, 480, 525.0)

	if math.Abs(x2-2*x1) > 1e-12 {
		t.Errorf("x should scale linearly with depth: x(1)=%f x(2)=%f", x1, x2)
	}
}

func TestPixelToMetric_NaNPropagates(t *testing.T) {
	// Non-finite input propagates instead of aborting.
	x, y, z := PixelToMetric(math.NaN(), 240, 1.0, 640, 480, 525.0)

	if !math.IsNaN(x) {
		t.Errorf("expected NaN x, got %f", x)
	}
	if y != 0 {
		t.Errorf("expected y unaffected, got %f", y)
	}
	if z != 1.0 {
		t.Errorf("expected z unaffected, got %f", z)
	}
}

func TestHorizontalAngle(t *testing.T) {
	tests := []struct {
		name string
		u    float64
		want float64
	}{
		{"center is straight ahead", 320, 0},
		{"right of center is positive", 640, math.Atan2(320, 525) * 180 / math.Pi},
		{"left of center is negative", 0, math.Atan2(-320, 525) * 180 / math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HorizontalAngle(tt.u, 640, 525.0)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HorizontalAngle(%f) = %f, want %f", tt.u, got, tt.want)
			}
		})
	}
}
