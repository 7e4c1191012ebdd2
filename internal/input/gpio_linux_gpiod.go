//go:build linux

package input

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOLine is a button line requested through the GPIO character device.
type GPIOLine struct {
	line *gpiocdev.Line
}

var openGPIOFn = openGPIO

// OpenGPIO requests BCM line pin as a pulled-up input.
func OpenGPIO(pin int) (*GPIOLine, error) {
	return openGPIOFn(pin)
}

func openGPIO(pin int) (*GPIOLine, error) {
	if pin < 0 {
		return nil, fmt.Errorf("input: invalid gpio pin %d", pin)
	}
	// On Pi the header lines carry names like "GPIO2".
	name := fmt.Sprintf("GPIO%d", pin)
	chip, offset, err := gpiocdev.FindLine(name)
	if err != nil {
		return nil, fmt.Errorf("input: gpio line %q not found: %w", name, err)
	}
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithConsumer("saberd-button"),
	)
	if err != nil {
		return nil, fmt.Errorf("input: request %s on %s: %w", name, chip, err)
	}
	return &GPIOLine{line: l}, nil
}

func (g *GPIOLine) Value() (int, error) {
	if g == nil || g.line == nil {
		return 0, fmt.Errorf("input: gpio line not open")
	}
	return g.line.Value()
}

func (g *GPIOLine) Close() error {
	if g == nil || g.line == nil {
		return nil
	}
	err := g.line.Close()
	g.line = nil
	return err
}
