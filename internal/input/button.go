// Package input polls the hilt buttons.
//
// Buttons pull up to the supply and short to ground when pressed, so a raw
// level of 0 means pressed.
package input

import "log"

// Line is a raw digital input.
type Line interface {
	Value() (int, error)
}

// Button turns a polled Line into one event per press.
type Button struct {
	name   string
	line   Line
	down   bool
	failed bool
}

func NewButton(name string, line Line) *Button {
	return &Button{name: name, line: line}
}

func (b *Button) Name() string { return b.name }

// Pressed samples the line and reports true only on the poll where a press
// is first seen. Holding the button does not repeat.
func (b *Button) Pressed() bool {
	if b == nil || b.line == nil {
		return false
	}
	v, err := b.line.Value()
	if err != nil {
		if !b.failed {
			log.Printf("input: %s read failed: %v", b.name, err)
			b.failed = true
		}
		return false
	}
	b.failed = false
	down := v == 0
	edge := down && !b.down
	b.down = down
	return edge
}

// Released is a Line that is never pressed, used when no GPIO is available.
type Released struct{}

func (Released) Value() (int, error) { return 1, nil }
