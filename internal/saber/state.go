package saber

import (
	"fmt"

	"saberd/internal/audio"
	"saberd/internal/motion"
	"saberd/internal/profile"
)

type State int

const (
	Standby State = iota
	Cycling
	Active
)

func (s State) String() string {
	switch s {
	case Standby:
		return "STANDBY"
	case Cycling:
		return "CYCLING"
	case Active:
		return "ACTIVE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type animKind int

const (
	animNone animKind = iota
	animIgnite
	animExtinguish
)

func (k animKind) String() string {
	switch k {
	case animIgnite:
		return "ignite"
	case animExtinguish:
		return "extinguish"
	default:
		return ""
	}
}

// animation is the bounded sub-state of Cycling. Each tick runs one frame;
// extinguish adds one hold tick after the last frame.
type animation struct {
	kind    animKind
	frame   int
	frames  int
	holding bool
}

// Session is everything the control loop mutates. The Machine owns the only
// copy; Snapshot hands out values.
type Session struct {
	State   State
	Profile profile.Profile
	Motion  motion.State
	Levels  audio.Levels
	// Effect is the ignition/extinguish voice level.
	Effect float64
	Lit    int

	Animation   string
	Frame       int
	FrameCount  int
	FontLoaded  bool
	ProfileIdx  int
	ProfileList []string
}
