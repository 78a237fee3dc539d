package haptic

import (
	"bytes"
	"testing"

	"github.com/wayband/wayband/internal/sector"
)

func TestIntensity_Endpoints(t *testing.T) {
	if level, ok := Intensity(0, 2.0); !ok || level != 255 {
		t.Errorf("Intensity(0) = %d,%v, want 255 at zero distance", level, ok)
	}
	if _, ok := Intensity(2.0, 2.0); ok {
		t.Error("no command should be emitted at the warning distance")
	}
	if _, ok := Intensity(5.0, 2.0); ok {
		t.Error("no command should be emitted beyond the warning distance")
	}
}

func TestIntensity_ReferenceValue(t *testing.T) {
	// 0.5 at a 2.0 warning distance: 255 * (1 - 0.25) = 191.25 → 191.
	level, ok := Intensity(0.5, 2.0)
	if !ok {
		t.Fatal("expected a command inside the warning distance")
	}
	if level != 191 {
		t.Errorf("Intensity(0.5, 2.0) = %d, want 191", level)
	}
}

func TestIntensity_MonotonicallyNonIncreasing(t *testing.T) {
	const warning = 2.0
	prev := uint8(255)
	for d := 0.0; d < warning; d += 0.01 {
		level, ok := Intensity(d, warning)
		if !ok {
			t.Fatalf("distance %f inside warning produced no command", d)
		}
		if level > prev {
			t.Fatalf("intensity rose from %d to %d at distance %f", prev, level, d)
		}
		prev = level
	}
}

func valid(v float64) sector.Distance { return sector.Distance{Valid: true, Value: v} }

func TestPlanner_EmitsOnlyForCloseObstacles(t *testing.T) {
	p := NewPlanner(sector.DefaultBands(), 2.0, false)

	commands := p.Plan(sector.Reading{
		"N":  valid(1.0),
		"NE": valid(3.0), // beyond warning distance
		"NW": {},         // empty sector
	})

	if len(commands) != 1 {
		t.Fatalf("expected one command, got %d", len(commands))
	}
	if commands[0].Motor != 0 {
		t.Errorf("command motor = %d, want 0 (sector N)", commands[0].Motor)
	}
	if want := uint8(128); commands[0].Intensity != want {
		// 255 * (1 - 1.0/2.0) = 127.5 → 128
		t.Errorf("command intensity = %d, want %d", commands[0].Intensity, want)
	}
}

func TestPlanner_NoResetByDefault(t *testing.T) {
	p := NewPlanner(sector.DefaultBands(), 2.0, false)

	p.Plan(sector.Reading{"N": valid(1.0), "NE": {}, "NW": {}})
	commands := p.Plan(sector.Reading{"N": {}, "NE": {}, "NW": {}})

	if len(commands) != 0 {
		t.Errorf("default planner should send nothing when a sector clears, got %d commands", len(commands))
	}
}

func TestPlanner_ResetOnClear(t *testing.T) {
	p := NewPlanner(sector.DefaultBands(), 2.0, true)

	p.Plan(sector.Reading{"N": valid(1.0), "NE": {}, "NW": {}})
	commands := p.Plan(sector.Reading{"N": {}, "NE": {}, "NW": {}})

	if len(commands) != 1 {
		t.Fatalf("expected one reset command, got %d", len(commands))
	}
	if commands[0].Motor != 0 || commands[0].Intensity != 0 {
		t.Errorf("reset command = %+v, want motor 0 intensity 0", commands[0])
	}

	// The reset fires once, not every frame.
	commands = p.Plan(sector.Reading{"N": {}, "NE": {}, "NW": {}})
	if len(commands) != 0 {
		t.Errorf("reset should not repeat, got %d commands", len(commands))
	}
}

func TestWireFormat(t *testing.T) {
	got := WireFormat(Command{Motor: 2, Intensity: 191})
	if !bytes.Equal(got, []byte("2,191\n")) {
		t.Errorf("WireFormat = %q, want %q", got, "2,191\n")
	}
}
