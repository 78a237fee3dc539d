// Package sector maps obstacles to coarse angular direction buckets and
// tracks the closest obstacle per bucket.
package sector

import (
	"gonum.org/v1/gonum/floats"

	"github.com/wayband/wayband/internal/cluster"
	"github.com/wayband/wayband/internal/geometry"
)

// Band is one angular sector of the monitored field of view. Bounds are
// inclusive on both ends; bands are evaluated in configured order and the
// first match wins, so adjacent bands sharing a boundary angle resolve to
// whichever is listed first.
type Band struct {
	// Name identifies the sector (e.g. "N", "NE", "NW").
	Name string
	// MinDeg and MaxDeg bound the horizontal bearing in degrees.
	MinDeg float64
	MaxDeg float64
	// Motor is the haptic actuator wired to this sector.
	Motor int
}

// DefaultBands returns the reference belt layout: N straight ahead,
// NE to the right, NW to the left, motors 0-2.
func DefaultBands() []Band {
	return []Band{
		{Name: "N", MinDeg: -15, MaxDeg: 15, Motor: 0},
		{Name: "NE", MinDeg: 15, MaxDeg: 45, Motor: 1},
		{Name: "NW", MinDeg: -45, MaxDeg: -15, Motor: 2},
	}
}

// Distance is an optional distance value. Valid is false when the sector
// holds no obstacle this frame.
type Distance struct {
	Valid bool
	Value float64
}

// Reading maps every configured sector name to the depth of its closest
// obstacle. Every configured sector is always present, Valid=false when
// empty. A Reading is derived fresh each frame.
type Reading map[string]Distance

// Mapper assigns obstacles to sectors by the horizontal bearing of their
// centroid.
type Mapper struct {
	bands       []Band
	frameWidth  float64
	focalLength float64
}

// NewMapper creates a Mapper over the given bands.
func NewMapper(bands []Band, frameWidth, focalLength float64) *Mapper {
	return &Mapper{bands: bands, frameWidth: frameWidth, focalLength: focalLength}
}

// Bands returns the configured bands in evaluation order.
func (m *Mapper) Bands() []Band {
	return m.bands
}

// Map produces a Reading for one frame's obstacles. Each obstacle is
// assigned to at most one band; a bearing outside every band means the
// obstacle is outside the monitored field and is dropped. The reading per
// sector is the minimum centroid depth among its obstacles. When two
// obstacles tie, only the value matters, not which produced it.
func (m *Mapper) Map(obstacles []cluster.Obstacle) Reading {
	byName := make(map[string][]float64, len(m.bands))

	for _, obs := range obstacles {
		angle := geometry.HorizontalAngle(obs.Centroid.U, m.frameWidth, m.focalLength)
		if band, ok := m.assign(angle); ok {
			byName[band.Name] = append(byName[band.Name], obs.Centroid.Z)
		}
	}

	reading := make(Reading, len(m.bands))
	for _, band := range m.bands {
		distances := byName[band.Name]
		if len(distances) == 0 {
			reading[band.Name] = Distance{}
			continue
		}
		reading[band.Name] = Distance{Valid: true, Value: floats.Min(distances)}
	}
	return reading
}

// assign returns the first band containing the angle.
func (m *Mapper) assign(angleDeg float64) (Band, bool) {
	for _, band := range m.bands {
		if angleDeg >= band.MinDeg && angleDeg <= band.MaxDeg {
			return band, true
		}
	}
	return Band{}, false
}
