package sim

import (
	"math"
	"time"
)

// SwingSim is a deterministic gyro signal: a half-sine swing burst followed
// by rest, repeated. Pitch and yaw move in opposition so the magnitude
// estimate follows the burst envelope.
type SwingSim struct {
	Peak  float64 // rad/s at the top of a burst
	Burst time.Duration
	Rest  time.Duration
}

// Rates returns pitch and yaw (rad/s) at elapsed.
func (s SwingSim) Rates(elapsed time.Duration) (pitch, yaw float64) {
	burst := s.Burst
	if burst <= 0 {
		burst = 800 * time.Millisecond
	}
	rest := s.Rest
	if rest < 0 {
		rest = 0
	}
	peak := s.Peak
	if peak == 0 {
		peak = 2 * math.Pi
	}
	if elapsed < 0 {
		elapsed = 0
	}

	cycle := burst + rest
	t := elapsed % cycle
	if t >= burst {
		return 0, 0
	}
	phase := float64(t) / float64(burst)
	pitch = peak * math.Sin(math.Pi*phase)
	return pitch, -pitch
}

// Clock is the simulated time shared by the sim gyro and buttons.
type Clock struct {
	elapsed time.Duration
}

func (c *Clock) Advance(d time.Duration) {
	if d > 0 {
		c.elapsed += d
	}
}

func (c *Clock) Elapsed() time.Duration { return c.elapsed }

// RateSource yields gyro rates for a point in simulated time.
type RateSource interface {
	Rates(elapsed time.Duration) (pitch, yaw float64)
}

// Gyro reads a RateSource at the clock's current time.
type Gyro struct {
	Clock  *Clock
	Source RateSource
}

func (g Gyro) AngularVelocity() (float64, float64, error) {
	p, y := g.Source.Rates(g.Clock.Elapsed())
	return p, y, nil
}

// ScriptedButton is an active-low line held down for Hold after each press
// time in At.
type ScriptedButton struct {
	Clock *Clock
	At    []time.Duration
	Hold  time.Duration
}

func (b *ScriptedButton) Value() (int, error) {
	hold := b.Hold
	if hold <= 0 {
		hold = 50 * time.Millisecond
	}
	now := b.Clock.Elapsed()
	for _, at := range b.At {
		if now >= at && now < at+hold {
			return 0, nil
		}
	}
	return 1, nil
}
