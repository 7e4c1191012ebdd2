package audio

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"
)

var sleep = time.Sleep

// Asset locations inside a soundfont directory.
const (
	fileFont       = "font.wav"
	fileHum        = "hum.wav"
	fileClash      = "clsh/clsh1.wav"
	fileIgnite     = "out/out1.wav"
	fileExtinguish = "in/in1.wav"
	fileSwingHigh  = "swingh/swingh1.wav"
	fileSwingLow   = "swingl/swingl1.wav"
)

// Clips is one loaded soundfont.
type Clips struct {
	Font       Clip
	Hum        Clip
	Clash      Clip // loaded for a future clash voice; nothing plays it yet
	Ignite     Clip
	Extinguish Clip
	SwingHigh  Clip
	SwingLow   Clip
}

func (c *Clips) all() []Clip {
	return []Clip{c.Font, c.Hum, c.Clash, c.Ignite, c.Extinguish, c.SwingHigh, c.SwingLow}
}

// Font owns the clips of the active soundfont on a Device.
//
// Load releases the previous handles and resets the device before opening new
// ones, with a settle delay so the output can quiesce in between.
type Font struct {
	dev    Device
	settle time.Duration

	dir   string
	clips *Clips
}

func NewFont(dev Device, settle time.Duration) *Font {
	return &Font{dev: dev, settle: settle}
}

// Loaded reports whether a complete soundfont is held.
func (f *Font) Loaded() bool { return f.clips != nil }

func (f *Font) Dir() string { return f.dir }

// Clips returns the held soundfont, nil when none is loaded.
func (f *Font) Clips() *Clips { return f.clips }

func (f *Font) Load(dir string) error {
	f.dev.Stop()
	if f.clips != nil {
		if err := f.release(); err != nil {
			return err
		}
		sleep(f.settle)
	}
	sleep(f.settle)

	var c Clips
	targets := []struct {
		dst  *Clip
		name string
	}{
		{&c.Font, fileFont},
		{&c.Hum, fileHum},
		{&c.Clash, fileClash},
		{&c.Ignite, fileIgnite},
		{&c.Extinguish, fileExtinguish},
		{&c.SwingHigh, fileSwingHigh},
		{&c.SwingLow, fileSwingLow},
	}
	for _, tg := range targets {
		path := filepath.Join(dir, tg.name)
		clip, err := f.dev.Open(path)
		if err != nil {
			closeClips(c.all())
			var ae *AssetError
			if errors.As(err, &ae) {
				return err
			}
			return &AssetError{Path: path, Err: err}
		}
		*tg.dst = clip
	}

	f.clips = &c
	f.dir = dir
	log.Printf("font: loaded dir=%s", dir)

	if err := f.dev.PlayClip(c.Font); err != nil {
		log.Printf("font: chime failed: %v", err)
	}
	return nil
}

func (f *Font) release() error {
	closeClips(f.clips.all())
	f.clips = nil
	f.dir = ""
	if err := f.dev.Reset(); err != nil {
		return fmt.Errorf("font: reset device: %w", err)
	}
	return nil
}

// Close releases the held clips without reopening anything.
func (f *Font) Close() {
	if f.clips == nil {
		return
	}
	f.dev.Stop()
	closeClips(f.clips.all())
	f.clips = nil
	f.dir = ""
}

func closeClips(cs []Clip) {
	for _, c := range cs {
		if c != nil {
			_ = c.Close()
		}
	}
}
