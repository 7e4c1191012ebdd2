//go:build cgo

// Package beepdev drives the speaker through faiface/beep.
package beepdev

import (
	"fmt"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"saberd/internal/audio"
)

const resampleQuality = 3

var speakerInit = speaker.Init

var _ audio.Device = (*Beep)(nil)

// Beep plays through the default output device with faiface/beep.
//
// Voice state is read by the speaker goroutine, so every mutation happens
// under speaker.Lock.
type Beep struct {
	rate beep.SampleRate

	main  *beep.Mixer
	swing *beep.Mixer
	v     [audio.VoiceCount]*beepVoice
}

type beepClip struct {
	s      beep.StreamSeekCloser
	format beep.Format
	path   string
}

func (c *beepClip) Close() error { return c.s.Close() }

type busClip struct{}

func (busClip) Close() error { return nil }

// beepVoice is a beep.Streamer that never drains: an idle or finished voice
// plays silence so the mixers keep it.
type beepVoice struct {
	gain   effects.Gain
	active bool
	level  float64
}

func (v *beepVoice) Stream(samples [][2]float64) (int, bool) {
	n := 0
	if v.active {
		var ok bool
		n, ok = v.gain.Stream(samples)
		if !ok {
			v.active = false
		}
	}
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (v *beepVoice) Err() error { return nil }

// NewBeep initializes the speaker at sampleRate with a bufferSize sample
// buffer.
func NewBeep(sampleRate, bufferSize int) (*Beep, error) {
	if sampleRate <= 0 || bufferSize <= 0 {
		return nil, fmt.Errorf("beepdev: invalid rate=%d buffer=%d", sampleRate, bufferSize)
	}
	rate := beep.SampleRate(sampleRate)
	if err := speakerInit(rate, bufferSize); err != nil {
		return nil, fmt.Errorf("beepdev: speaker init: %w", err)
	}
	b := &Beep{rate: rate}
	b.build()
	return b, nil
}

func (b *Beep) build() {
	for i := range b.v {
		b.v[i] = &beepVoice{}
	}
	b.swing = &beep.Mixer{}
	b.swing.Add(b.v[audio.SwingHigh], b.v[audio.SwingLow])
	b.main = &beep.Mixer{}
	b.main.Add(b.v[audio.Hum], b.v[audio.Bus], b.v[audio.Effect])
}

func (b *Beep) Open(path string) (audio.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &audio.AssetError{Path: path, Err: err}
	}
	s, format, err := wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, &audio.AssetError{Path: path, Err: err}
	}
	return &beepClip{s: s, format: format, path: path}, nil
}

func (b *Beep) source(c *beepClip, loop bool) beep.Streamer {
	_ = c.s.Seek(0)
	var s beep.Streamer = c.s
	if loop {
		s = beep.Loop(-1, c.s)
	}
	if c.format.SampleRate != b.rate {
		s = beep.Resample(resampleQuality, c.format.SampleRate, b.rate, s)
	}
	return s
}

func (b *Beep) Voice(id audio.VoiceID) audio.Voice {
	return &beepVoiceRef{b: b, id: id}
}

func (b *Beep) SwingBus() audio.Clip { return busClip{} }

func (b *Beep) Play() error {
	speaker.Clear()
	speaker.Play(b.main)
	return nil
}

func (b *Beep) PlayClip(c audio.Clip) error {
	bc, ok := c.(*beepClip)
	if !ok {
		return fmt.Errorf("beepdev: clip %T not owned by this device", c)
	}
	speaker.Clear()
	speaker.Play(b.source(bc, false))
	return nil
}

func (b *Beep) Stop() {
	speaker.Clear()
	speaker.Lock()
	for _, v := range b.v {
		v.active = false
		v.gain.Streamer = nil
	}
	speaker.Unlock()
}

func (b *Beep) Reset() error {
	b.Stop()
	speaker.Lock()
	b.build()
	speaker.Unlock()
	return nil
}

func (b *Beep) Close() error {
	b.Stop()
	speaker.Close()
	return nil
}

// Latency is the buffer delay between a level change and hearing it.
func (b *Beep) Latency(bufferSize int) time.Duration {
	return b.rate.D(bufferSize)
}

// beepVoiceRef resolves its voice on every call so refs stay valid across
// Reset.
type beepVoiceRef struct {
	b  *Beep
	id audio.VoiceID
}

var detached = &beepVoice{}

func (r *beepVoiceRef) voice() *beepVoice {
	if r.id < 0 || r.id >= audio.VoiceCount {
		return detached
	}
	return r.b.v[r.id]
}

func (r *beepVoiceRef) Play(c audio.Clip, loop bool) {
	var src beep.Streamer
	switch cc := c.(type) {
	case *beepClip:
		src = r.b.source(cc, loop)
	case busClip:
		src = r.b.swing
	default:
		return
	}
	speaker.Lock()
	v := r.voice()
	v.gain.Streamer = src
	v.gain.Gain = v.level - 1
	v.active = true
	speaker.Unlock()
}

// SetLevel maps a linear level onto effects.Gain, which scales by 1+Gain.
func (r *beepVoiceRef) SetLevel(level float64) {
	level = audio.ClampLevel(level)
	speaker.Lock()
	v := r.voice()
	v.level = level
	v.gain.Gain = level - 1
	speaker.Unlock()
}

func (r *beepVoiceRef) Level() float64 {
	speaker.Lock()
	defer speaker.Unlock()
	return r.voice().level
}
