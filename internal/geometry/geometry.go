// Package geometry provides pinhole-camera coordinate conversions between
// pixel/depth space and metric 3D space.
package geometry

import "math"

// Point3D is a point in mixed pixel/depth space: U and V are pixel column
// and row, Z is the normalized depth at that pixel. Metric coordinates are
// derived on demand via PixelToMetric and never stored.
type Point3D struct {
	U float64 `json:"u"`
	V float64 `json:"v"`
	Z float64 `json:"z"`
}

// PixelToMetric projects a pixel with depth z into metric camera-frame
// coordinates using the pinhole model:
//
//	x = (u - width/2)  * z / focalLength
//	y = (v - height/2) * z / focalLength
//
// It is a pure function. Non-finite input propagates as NaN rather than
// failing; callers validate at the boundary.
func PixelToMetric(u, v, z, frameWidth, frameHeight, focalLength float64) (x, y, zOut float64) {
	x = (u - frameWidth/2) * z / focalLength
	y = (v - frameHeight/2) * z / focalLength
	return x, y, z
}

// HorizontalAngle returns the horizontal bearing of a pixel column relative
// to the image center, in degrees. Zero is straight ahead, positive is to
// the right of center.
func HorizontalAngle(u, frameWidth, focalLength float64) float64 {
	return math.Atan2(u-frameWidth/2, focalLength) * 180 / math.Pi
}
