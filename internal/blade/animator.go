// Package blade sequences the blade strip during ignition and extinguish.
//
// Each animation frame lights or clears one pair of pixels so a 54 pixel
// blade sweeps in 27 frames.
package blade

import "saberd/internal/led"

type Animator struct {
	strip led.Strip
	lit   int
}

func NewAnimator(strip led.Strip) *Animator {
	return &Animator{strip: strip}
}

func (a *Animator) Len() int { return a.strip.Len() }

// Frames is the number of pair steps needed to cover the strip.
func (a *Animator) Frames() int {
	return (a.strip.Len() + 1) / 2
}

// Lit is the number of pixels the animator has turned on.
func (a *Animator) Lit() int { return a.lit }

func (a *Animator) pair(frame int) (first, last int, ok bool) {
	if frame < 0 || frame >= a.Frames() {
		return 0, 0, false
	}
	first = frame * 2
	last = first + 1
	if last >= a.strip.Len() {
		last = first
	}
	return first, last, true
}

// IgniteFrame lights pair number frame counted from the base.
func (a *Animator) IgniteFrame(frame int, c led.Color) error {
	first, last, ok := a.pair(frame)
	if !ok {
		return nil
	}
	for i := first; i <= last; i++ {
		a.strip.SetPixel(i, c)
	}
	a.lit = last + 1
	return a.strip.Show()
}

// ExtinguishFrame clears pair number frame counted from the tip.
func (a *Animator) ExtinguishFrame(frame int) error {
	first, last, ok := a.pair(a.Frames() - 1 - frame)
	if !ok {
		return nil
	}
	for i := first; i <= last; i++ {
		a.strip.SetPixel(i, led.Off)
	}
	a.lit = first
	return a.strip.Show()
}

// FillAll paints the whole strip.
func (a *Animator) FillAll(c led.Color) error {
	a.strip.Fill(c)
	if c == led.Off {
		a.lit = 0
	} else {
		a.lit = a.strip.Len()
	}
	return a.strip.Show()
}

// ShowBase paints only the base pixel, used as the profile preview while the
// blade is retracted.
func (a *Animator) ShowBase(c led.Color) error {
	a.strip.SetPixel(0, c)
	return a.strip.Show()
}
