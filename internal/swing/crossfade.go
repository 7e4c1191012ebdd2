// Package swing maps the motion signal onto the mixer levels of the hum and
// the two swing textures.
package swing

import (
	"math"

	"saberd/internal/audio"
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Crossfade is a linear handoff over region radians starting at point. out
// starts at humCap and falls to 0; in rises from 0 to humCap.
func Crossfade(accumulated, region, point, humCap float64) (out, in float64) {
	progress := clamp((accumulated-point)/region, 0, 1)
	out = math.Max(0, humCap-progress)
	in = math.Min(humCap, progress)
	return out, in
}

// Transitions are the two handoff windows of a profile.
type Transitions struct {
	Point1, Region1 float64
	Point2, Region2 float64
}

type Engine struct {
	HumCap   float64
	HumFloor float64

	levels audio.Levels
}

func NewEngine(humCap, humFloor float64) *Engine {
	e := &Engine{HumCap: humCap, HumFloor: humFloor}
	e.Quiesce()
	return e
}

func (e *Engine) Levels() audio.Levels { return e.levels }

// Update computes the levels for a swinging tick.
//
// The two windows are checked independently. Past Point2 the second fade
// overwrites the first with the voices swapped, which hands the textures back
// before the angle wraps at 2π.
func (e *Engine) Update(accumulated, strength float64, tr Transitions) audio.Levels {
	if accumulated > tr.Point1 {
		out, in := Crossfade(accumulated, tr.Region1, tr.Point1, e.HumCap)
		e.levels.SwingHigh, e.levels.SwingLow = out, in
	}
	if accumulated > tr.Point2 {
		out, in := Crossfade(accumulated, tr.Region2, tr.Point2, e.HumCap)
		e.levels.SwingLow, e.levels.SwingHigh = out, in
	}

	e.levels.Hum = clamp(e.HumCap-strength, e.HumFloor, 1.0)
	e.levels.SwingBus = clamp(strength, 0, 1.0)
	return e.levels
}

// Quiesce is the not-swinging reset: hum back to its cap, everything else
// silent.
func (e *Engine) Quiesce() audio.Levels {
	e.levels = audio.Levels{Hum: e.HumCap}
	return e.levels
}
