package main

import (
	"fmt"
	"io"
	"time"

	"saberd/internal/saber"
)

type simSummary struct {
	Ticks          int
	Elapsed        time.Duration
	Ignitions      int
	Extinguishes   int
	ProfileChanges int
	PeakSwingBus   float64
	TimeIn         map[saber.State]time.Duration
	Final          saber.State

	last    saber.State
	profile string
}

func newSimSummary(boot saber.Session) simSummary {
	return simSummary{
		TimeIn:  map[saber.State]time.Duration{},
		Final:   boot.State,
		last:    boot.State,
		profile: boot.Profile.Name,
	}
}

// observe records one tick: s is the session after the tick and wait the
// delay spent in that state before the next one.
func (s *simSummary) observe(snap saber.Session, wait time.Duration) {
	s.Ticks++
	s.Elapsed += wait
	s.TimeIn[snap.State] += wait

	if snap.State == saber.Cycling && s.last != saber.Cycling {
		switch s.last {
		case saber.Standby:
			s.Ignitions++
		case saber.Active:
			s.Extinguishes++
		}
	}
	if snap.Profile.Name != s.profile {
		s.ProfileChanges++
		s.profile = snap.Profile.Name
	}
	if snap.Levels.SwingBus > s.PeakSwingBus {
		s.PeakSwingBus = snap.Levels.SwingBus
	}
	s.last = snap.State
	s.Final = snap.State
}

func printSimSummary(w io.Writer, s simSummary) {
	fmt.Fprintf(w, "ticks: %d\n", s.Ticks)
	fmt.Fprintf(w, "elapsed: %s\n", s.Elapsed)
	fmt.Fprintf(w, "ignitions: %d\n", s.Ignitions)
	fmt.Fprintf(w, "extinguishes: %d\n", s.Extinguishes)
	fmt.Fprintf(w, "profile_changes: %d\n", s.ProfileChanges)
	fmt.Fprintf(w, "peak_swing_bus: %.2f\n", s.PeakSwingBus)
	fmt.Fprintf(w, "time_in_state:\n")
	for _, st := range []saber.State{saber.Standby, saber.Cycling, saber.Active} {
		fmt.Fprintf(w, "  %s: %s\n", st, s.TimeIn[st])
	}
	fmt.Fprintf(w, "final_state: %s\n", s.Final)
}
