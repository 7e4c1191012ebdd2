package led

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

var hostInitOnce sync.Once
var hostInitErr error

func hostInit() error {
	hostInitOnce.Do(func() {
		_, hostInitErr = host.Init()
	})
	return hostInitErr
}

// writer is the part of nrzled.Dev the strip uses.
type writer interface {
	Write(p []byte) (int, error)
	Halt() error
}

// NRZ drives a WS2812 style strip through an SPI port encoded by nrzled.
type NRZ struct {
	*Buffer

	port spi.PortCloser
	dev  writer
	raw  []byte
}

var openNRZFn = openNRZ

// OpenNRZ opens the named periph SPI port ("" picks the first one) and binds
// an n pixel strip to it.
func OpenNRZ(portName string, n int) (*NRZ, error) {
	return openNRZFn(portName, n)
}

func openNRZ(portName string, n int) (*NRZ, error) {
	if n <= 0 {
		return nil, fmt.Errorf("led: invalid pixel count %d", n)
	}
	if err := hostInit(); err != nil {
		return nil, fmt.Errorf("led: periph host init: %w", err)
	}
	p, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("led: open spi port %q: %w", portName, err)
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: n,
		Channels:  3,
		Freq:      800 * physic.KiloHertz,
	})
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("led: nrzled on %q: %w", portName, err)
	}
	return newNRZ(p, d, n), nil
}

func newNRZ(p spi.PortCloser, d writer, n int) *NRZ {
	return &NRZ{Buffer: NewBuffer(n), port: p, dev: d, raw: make([]byte, 0, 3*n)}
}

func (s *NRZ) Show() error {
	s.raw = s.Buffer.RGB(s.raw[:0])
	if _, err := s.dev.Write(s.raw); err != nil {
		return fmt.Errorf("led: write: %w", err)
	}
	return s.Buffer.Show()
}

// Close blanks the strip and releases the port.
func (s *NRZ) Close() error {
	if s == nil || s.dev == nil {
		return nil
	}
	_ = s.dev.Halt()
	s.dev = nil
	if s.port != nil {
		err := s.port.Close()
		s.port = nil
		return err
	}
	return nil
}
