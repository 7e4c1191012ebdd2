// Package audio is the leveled-voice view of the sound output.
//
// The main mix carries three voices (hum, swing bus, effect). The swing bus
// voice plays a second mix holding the two swing textures.
package audio

import (
	"fmt"
	"math"
)

type VoiceID int

const (
	Hum VoiceID = iota
	Bus
	Effect
	SwingHigh
	SwingLow

	// VoiceCount bounds the valid VoiceIDs.
	VoiceCount
)

func (v VoiceID) String() string {
	switch v {
	case Hum:
		return "hum"
	case Bus:
		return "bus"
	case Effect:
		return "effect"
	case SwingHigh:
		return "swing_high"
	case SwingLow:
		return "swing_low"
	default:
		return fmt.Sprintf("voice(%d)", int(v))
	}
}

// Levels are the gains the swing engine owns, each in [0,1].
type Levels struct {
	Hum       float64
	SwingBus  float64
	SwingHigh float64
	SwingLow  float64
}

// Clip is a decoded asset handle owned by a Device.
type Clip interface {
	Close() error
}

type Voice interface {
	// Play starts c from its beginning, replacing whatever the voice played.
	Play(c Clip, loop bool)
	SetLevel(level float64)
	Level() float64
}

type Device interface {
	Open(path string) (Clip, error)
	Voice(id VoiceID) Voice
	// SwingBus is the texture mix as a clip the Bus voice can play.
	SwingBus() Clip
	// Play starts output of the main mix.
	Play() error
	// PlayClip replaces output with a single one-shot clip.
	PlayClip(c Clip) error
	// Stop silences output and detaches every voice.
	Stop()
	// Reset re-creates the mixers. Callers release their clips first.
	Reset() error
	Close() error
}

// Apply writes the engine levels to their voices.
func Apply(d Device, lv Levels) {
	d.Voice(Hum).SetLevel(lv.Hum)
	d.Voice(Bus).SetLevel(lv.SwingBus)
	d.Voice(SwingHigh).SetLevel(lv.SwingHigh)
	d.Voice(SwingLow).SetLevel(lv.SwingLow)
}

// ClampLevel maps v into [0,1]; NaN is silence.
func ClampLevel(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// AssetError reports a soundfont file that could not be opened or decoded.
type AssetError struct {
	Path string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("audio: asset %s: %v", e.Path, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }
