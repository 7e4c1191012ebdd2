//go:build !cgo

package beepdev

import (
	"errors"
	"time"

	"saberd/internal/audio"
)

// Beep is unavailable without cgo; the speaker backend links a C audio
// library.
type Beep struct {
	audio.Device
}

func NewBeep(sampleRate, bufferSize int) (*Beep, error) {
	return nil, errors.New("beepdev: built without cgo, no speaker output")
}

func (b *Beep) Latency(bufferSize int) time.Duration { return 0 }
