// Package haptic converts per-sector obstacle distances into actuator
// intensity commands and delivers them to the belt hardware.
package haptic

import (
	"math"

	"github.com/wayband/wayband/internal/sector"
)

// Command is one actuator instruction: emitted per sector per frame and
// never retained.
type Command struct {
	Motor     int
	Intensity uint8
}

// Intensity maps a distance to a vibration intensity in [0,255]. The law is
// linear: full intensity at zero distance, falling to zero as the distance
// approaches the warning threshold. The second return is false at or beyond
// the threshold, where no command should be emitted.
func Intensity(distance, warningDistance float64) (uint8, bool) {
	if distance >= warningDistance {
		return 0, false
	}
	raw := math.Round(255 * (1 - distance/warningDistance))
	if raw < 0 {
		raw = 0
	}
	if raw > 255 {
		raw = 255
	}
	return uint8(raw), true
}

// Planner turns sector readings into belt commands.
type Planner struct {
	bands           []sector.Band
	warningDistance float64
	resetOnClear    bool
	active          map[string]bool
}

// NewPlanner builds a Planner from the sector bands' motor wiring.
//
// When resetOnClear is true the planner emits an explicit zero-intensity
// command the first frame a previously occupied sector comes up empty.
// The default elsewhere is false, matching hardware that simply holds its
// last level: the belt firmware decays on its own and the quieter wire was
// preferred. The flag exists because neither choice is obviously right.
func NewPlanner(bands []sector.Band, warningDistance float64, resetOnClear bool) *Planner {
	return &Planner{
		bands:           bands,
		warningDistance: warningDistance,
		resetOnClear:    resetOnClear,
		active:          make(map[string]bool, len(bands)),
	}
}

// Plan produces the commands for one frame's reading. Sectors with no
// obstacle, or with an obstacle at or beyond the warning distance, produce
// no command unless reset-on-clear is armed for that sector.
func (p *Planner) Plan(reading sector.Reading) []Command {
	var commands []Command
	for _, band := range p.bands {
		dist, ok := reading[band.Name]
		if ok && dist.Valid {
			if level, fire := Intensity(dist.Value, p.warningDistance); fire {
				commands = append(commands, Command{Motor: band.Motor, Intensity: level})
				p.active[band.Name] = true
				continue
			}
		}
		if p.resetOnClear && p.active[band.Name] {
			commands = append(commands, Command{Motor: band.Motor, Intensity: 0})
		}
		p.active[band.Name] = false
	}
	return commands
}
