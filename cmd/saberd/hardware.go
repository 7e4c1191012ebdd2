package main

import (
	"io"
	"log"

	"saberd/internal/audio"
	"saberd/internal/audio/beepdev"
	"saberd/internal/config"
	"saberd/internal/i2c"
	"saberd/internal/input"
	"saberd/internal/led"
	"saberd/internal/saber"
	"saberd/internal/sensors/lsm6dsox"
)

type hardware struct {
	saber.Hardware
	closers []io.Closer
}

var (
	openAudioFn = func(rate, buffer int) (audio.Device, error) {
		b, err := beepdev.NewBeep(rate, buffer)
		if err != nil {
			return nil, err
		}
		log.Printf("audio ready rate=%d latency=%s", rate, b.Latency(buffer))
		return b, nil
	}
	openStripFn = func(port string, n int) (led.Strip, io.Closer, error) {
		s, err := led.OpenNRZ(port, n)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	openGyroFn = func(bus int, addr uint16) (saber.Gyro, io.Closer, error) {
		b, err := i2c.OpenNumber(bus)
		if err != nil {
			return nil, nil, err
		}
		dev, err := b.Dev(addr)
		if err != nil {
			_ = b.Close()
			return nil, nil, err
		}
		d, err := lsm6dsox.New(dev)
		if err != nil {
			_ = b.Close()
			return nil, nil, err
		}
		log.Printf("imu ready on %s addr=0x%02x", b.Path(), addr)
		return d, b, nil
	}
	openLineFn = func(pin int) (input.Line, io.Closer, error) {
		l, err := input.OpenGPIO(pin)
		if err != nil {
			return nil, nil, err
		}
		return l, l, nil
	}
)

// openHardware brings up every peripheral it can. Anything that fails to
// open is logged and replaced by an in-memory stand-in so the loop still runs.
func openHardware(cfg config.Config) *hardware {
	h := &hardware{}

	h.Audio = audio.NewNull()
	if config.On(cfg.Audio.Enable) {
		dev, err := openAudioFn(cfg.Audio.SampleRate, cfg.Audio.BufferSize)
		if err != nil {
			log.Printf("audio init failed: %v", err)
		} else {
			h.Audio = dev
			h.closers = append(h.closers, dev)
		}
	}

	h.Blade = h.strip("blade", cfg.Blade.SPIPort, cfg.Blade.Pixels)
	if cfg.Indicator.SPIPort == "" {
		h.Indicator = led.NewBuffer(1)
	} else {
		h.Indicator = h.strip("indicator", cfg.Indicator.SPIPort, 1)
	}

	if config.On(cfg.IMU.Enable) {
		g, c, err := openGyroFn(cfg.IMU.I2CBus, cfg.IMU.Addr)
		if err != nil {
			log.Printf("imu init failed: %v", err)
		} else {
			h.Gyro = g
			h.closers = append(h.closers, c)
		}
	}

	power := h.button("power", cfg.Buttons.Enable, cfg.Buttons.PowerGPIO)
	aux := h.button("aux", cfg.Buttons.Enable, cfg.Buttons.AuxGPIO)
	h.Power, h.Aux = power, aux
	return h
}

func (h *hardware) strip(name, port string, n int) led.Strip {
	s, c, err := openStripFn(port, n)
	if err != nil {
		log.Printf("%s strip init failed: %v", name, err)
		return led.NewBuffer(n)
	}
	h.closers = append(h.closers, c)
	return s
}

func (h *hardware) button(name string, enable *bool, pin *int) *input.Button {
	if !config.On(enable) || pin == nil {
		return input.NewButton(name, input.Released{})
	}
	l, c, err := openLineFn(*pin)
	if err != nil {
		log.Printf("%s button init failed: %v", name, err)
		return input.NewButton(name, input.Released{})
	}
	h.closers = append(h.closers, c)
	return input.NewButton(name, l)
}

// Close releases peripherals in reverse order of opening.
func (h *hardware) Close() {
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i].Close(); err != nil {
			log.Printf("hardware close: %v", err)
		}
	}
	h.closers = nil
}
