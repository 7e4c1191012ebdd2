// Package profile loads, selects and persists blade profiles.
//
// Profiles live in one JSON document:
//
//	{"profiles": {"<name>": {"color": [r,g,b], "swing_threshold": ..., ...}, ...},
//	 "save_state": <index>}
//
// Profile order is the document's key order; save_state is the only value
// ever written back.
package profile

import (
	"fmt"

	"saberd/internal/led"
	"saberd/internal/motion"
	"saberd/internal/swing"
)

type Profile struct {
	Name     string
	Color    led.Color
	FontPath string

	SwingThreshold float64
	ClashThreshold float64
	FilterAlpha    float64
	SwingSharpness float64

	TransitionRegion1 float64
	TransitionRegion2 float64
	TransitionPoint1  float64
	TransitionPoint2  float64
}

// Motion returns the pipeline parameters of p.
func (p Profile) Motion() motion.Params {
	return motion.Params{Alpha: p.FilterAlpha, Threshold: p.SwingThreshold, Sharpness: p.SwingSharpness}
}

// Transitions returns the crossfade windows of p.
func (p Profile) Transitions() swing.Transitions {
	return swing.Transitions{
		Point1:  p.TransitionPoint1,
		Region1: p.TransitionRegion1,
		Point2:  p.TransitionPoint2,
		Region2: p.TransitionRegion2,
	}
}

// LogLines renders p for the console, one field per line.
func (p Profile) LogLines() []string {
	return []string{
		fmt.Sprintf("Profile: %s", p.Name),
		fmt.Sprintf("Font Path: %s", p.FontPath),
		fmt.Sprintf("Blade Color: %s", p.Color),
		fmt.Sprintf("Swing Threshold: %g", p.SwingThreshold),
		fmt.Sprintf("Clash Threshold: %g", p.ClashThreshold),
		fmt.Sprintf("Filter Alpha: %g", p.FilterAlpha),
		fmt.Sprintf("Swing Sharpness: %g", p.SwingSharpness),
		fmt.Sprintf("Transition Region 1: %g radians", p.TransitionRegion1),
		fmt.Sprintf("Transition Region 2: %g radians", p.TransitionRegion2),
		fmt.Sprintf("Transition Point 1: %g radians", p.TransitionPoint1),
		fmt.Sprintf("Transition Point 2: %g radians", p.TransitionPoint2),
	}
}

// ConfigError is a malformed or missing value in the profile document.
type ConfigError struct {
	Profile string
	Field   string
	Reason  string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Profile == "" && e.Field == "":
		return "profile: " + e.Reason
	case e.Profile == "":
		return fmt.Sprintf("profile: %s: %s", e.Field, e.Reason)
	default:
		return fmt.Sprintf("profile %q: %s: %s", e.Profile, e.Field, e.Reason)
	}
}
