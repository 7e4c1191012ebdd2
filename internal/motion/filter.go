// Package motion turns raw angular velocity into the swing signal.
//
// The magnitude estimate is the population standard deviation of the two
// swing axes rather than a true RMS. Swing thresholds in existing profiles are
// tuned against that estimate, so it must not be replaced.
package motion

import (
	"math"
	"time"
)

const twoPi = 2 * math.Pi

// SampleMagnitude estimates the angular speed of a swing from the pitch and
// yaw rates (rad/s).
func SampleMagnitude(pitch, yaw float64) float64 {
	mean := (pitch + yaw) / 2
	dp := pitch - mean
	dy := yaw - mean
	return math.Sqrt((dp*dp + dy*dy) / 2)
}

// Lowpass is a single pole smoother. When primed is false there is no
// previous value and the sample passes through unchanged.
func Lowpass(sample, previous, alpha float64, primed bool) float64 {
	if !primed {
		previous = sample
	}
	return alpha*sample + (1-alpha)*previous
}

// AccumulateSwing integrates the filtered rate over dt and wraps the angle
// into [0, 2π).
func AccumulateSwing(filtered float64, dt time.Duration, previous float64) float64 {
	a := math.Mod(previous+filtered*dt.Seconds(), twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}

// SwingStrength normalizes the filtered rate against π rad/s and bends it by
// sharpness.
func SwingStrength(filtered, sharpness float64) float64 {
	s := math.Min(1, filtered/math.Pi)
	if s <= 0 {
		return 0
	}
	return math.Pow(s, sharpness)
}

// Params are the profile values the pipeline reads each tick.
type Params struct {
	Alpha     float64
	Threshold float64
	Sharpness float64
}

// State is the per-tick derived motion state.
type State struct {
	Magnitude   float64
	Filtered    float64
	Accumulated float64
	Strength    float64
	Swinging    bool
}

// Filter keeps the lowpass history across ticks. The history survives
// ignition cycles; only accumulated angle and strength reset below threshold.
type Filter struct {
	prev   float64
	primed bool
	state  State
}

func (f *Filter) State() State { return f.state }

// Update runs one tick of the pipeline.
func (f *Filter) Update(pitch, yaw float64, dt time.Duration, p Params) State {
	mag := SampleMagnitude(pitch, yaw)
	filtered := Lowpass(mag, f.prev, p.Alpha, f.primed)
	f.prev = filtered
	f.primed = true

	st := State{Magnitude: mag, Filtered: filtered}
	if filtered > p.Threshold {
		st.Swinging = true
		st.Accumulated = AccumulateSwing(filtered, dt, f.state.Accumulated)
		st.Strength = SwingStrength(filtered, p.Sharpness)
	}
	f.state = st
	return st
}
