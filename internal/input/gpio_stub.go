//go:build !linux

package input

import "fmt"

type GPIOLine struct{}

func OpenGPIO(pin int) (*GPIOLine, error) {
	return nil, fmt.Errorf("input: gpio unsupported on this platform")
}

func (g *GPIOLine) Value() (int, error) { return 1, fmt.Errorf("input: gpio unsupported") }

func (g *GPIOLine) Close() error { return nil }
