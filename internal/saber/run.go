package saber

import (
	"context"
	"time"
)

var now = time.Now

// Run ticks until ctx is done. Waits between ticks are the durations Tick
// returns; drift is not compensated.
func (m *Machine) Run(ctx context.Context) error {
	prev := now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		t := now()
		dt := t.Sub(prev)
		prev = t

		wait := m.Tick(dt)
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}
