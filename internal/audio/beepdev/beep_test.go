//go:build cgo

package beepdev

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"saberd/internal/audio"
)

func fakeSpeaker(t *testing.T) {
	t.Helper()
	old := speakerInit
	speakerInit = func(beep.SampleRate, int) error { return nil }
	t.Cleanup(func() { speakerInit = old })
}

func writeConstWAV(t *testing.T, dir, name string, value float64, n int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	src := beep.Take(n, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{value, value}
		}
		return len(samples), true
	}))
	format := beep.Format{SampleRate: 22050, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, src, format); err != nil {
		t.Fatalf("wav.Encode: %v", err)
	}
	return path
}

func TestBeep_VoiceLevelScalesOutput(t *testing.T) {
	fakeSpeaker(t)
	b, err := NewBeep(22050, 512)
	if err != nil {
		t.Fatalf("NewBeep: %v", err)
	}
	path := writeConstWAV(t, t.TempDir(), "hum.wav", 0.8, 64)
	clip, err := b.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer clip.Close()

	hum := b.Voice(audio.Hum)
	hum.Play(clip, true)
	hum.SetLevel(0.5)
	if hum.Level() != 0.5 {
		t.Fatalf("level=%v want 0.5", hum.Level())
	}

	buf := make([][2]float64, 200)
	n, ok := b.main.Stream(buf)
	if n != len(buf) || !ok {
		t.Fatalf("stream n=%d ok=%v", n, ok)
	}
	// Looping keeps the voice producing past the 64 sample clip.
	for _, i := range []int{0, 63, 64, 199} {
		if math.Abs(buf[i][0]-0.4) > 1e-3 {
			t.Fatalf("sample[%d]=%v want ~0.4", i, buf[i][0])
		}
	}
}

func TestBeep_OneShotEndsInSilence(t *testing.T) {
	fakeSpeaker(t)
	b, err := NewBeep(22050, 512)
	if err != nil {
		t.Fatalf("NewBeep: %v", err)
	}
	clip, err := b.Open(writeConstWAV(t, t.TempDir(), "out/out1.wav", 0.5, 10))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer clip.Close()

	fx := b.Voice(audio.Effect)
	fx.SetLevel(1)
	fx.Play(clip, false)

	buf := make([][2]float64, 32)
	b.main.Stream(buf)
	if math.Abs(buf[0][0]-0.5) > 1e-3 || buf[20][0] != 0 {
		t.Fatalf("sample[0]=%v sample[20]=%v want ~0.5, 0", buf[0][0], buf[20][0])
	}
	if b.main.Len() != 3 {
		t.Fatalf("mixer voices=%d want 3 (voices never drain)", b.main.Len())
	}
}

func TestBeep_SwingBusRoutesTextures(t *testing.T) {
	fakeSpeaker(t)
	b, err := NewBeep(22050, 512)
	if err != nil {
		t.Fatalf("NewBeep: %v", err)
	}
	clip, err := b.Open(writeConstWAV(t, t.TempDir(), "swingh.wav", 0.5, 64))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer clip.Close()

	b.Voice(audio.Bus).Play(b.SwingBus(), true)
	b.Voice(audio.SwingHigh).Play(clip, true)
	audio.Apply(b, audio.Levels{Hum: 0, SwingBus: 0.5, SwingHigh: 1, SwingLow: 0})

	buf := make([][2]float64, 8)
	b.main.Stream(buf)
	if math.Abs(buf[4][0]-0.25) > 1e-3 {
		t.Fatalf("sample=%v want ~0.25", buf[4][0])
	}

	// Voice refs survive Reset and address the fresh voices.
	ref := b.Voice(audio.SwingHigh)
	if err := b.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	ref.SetLevel(0.3)
	if b.v[audio.SwingHigh].level != 0.3 {
		t.Fatalf("ref did not follow Reset")
	}
}

func TestBeep_OpenMissingIsAssetError(t *testing.T) {
	fakeSpeaker(t)
	b, err := NewBeep(22050, 512)
	if err != nil {
		t.Fatalf("NewBeep: %v", err)
	}
	_, err = b.Open(filepath.Join(t.TempDir(), "nope.wav"))
	if _, ok := err.(*audio.AssetError); !ok {
		t.Fatalf("err=%T %v want *AssetError", err, err)
	}
	if b.Latency(2205) != 100*time.Millisecond {
		t.Fatalf("latency=%v want 100ms", b.Latency(2205))
	}
}

func TestNewBeep_RejectsBadParams(t *testing.T) {
	fakeSpeaker(t)
	if _, err := NewBeep(0, 512); err == nil {
		t.Fatalf("expected error for zero rate")
	}
}
