package swing

import (
	"math"
	"testing"
)

const humCap = 0.9

func TestCrossfade_Boundaries(t *testing.T) {
	out, in := Crossfade(1.0, 2.0, 1.0, humCap)
	if out != humCap || in != 0 {
		t.Fatalf("progress=0 got (%v,%v) want (%v,0)", out, in, humCap)
	}
	out, in = Crossfade(3.0, 2.0, 1.0, humCap)
	if out != 0 || in != humCap {
		t.Fatalf("progress=1 got (%v,%v) want (0,%v)", out, in, humCap)
	}
	// Before the window the fade clamps at the start.
	out, in = Crossfade(0.2, 2.0, 1.0, humCap)
	if out != humCap || in != 0 {
		t.Fatalf("before window got (%v,%v)", out, in)
	}
}

func TestCrossfade_OutputsStayInRange(t *testing.T) {
	for a := 0.0; a < 2*math.Pi; a += 0.05 {
		for _, region := range []float64{0.1, 0.5, math.Pi} {
			out, in := Crossfade(a, region, 1.2, humCap)
			if out < 0 || out > humCap || in < 0 || in > humCap {
				t.Fatalf("a=%v region=%v got (%v,%v) out of [0,%v]", a, region, out, in, humCap)
			}
		}
	}
}

func TestEngine_FirstWindowOnly(t *testing.T) {
	e := NewEngine(humCap, 0.25)
	tr := Transitions{Point1: 1, Region1: 1, Point2: 4, Region2: 1}
	lv := e.Update(1.5, 0.2, tr)
	if math.Abs(lv.SwingHigh-0.4) > 1e-9 || math.Abs(lv.SwingLow-0.5) > 1e-9 {
		t.Fatalf("high=%v low=%v want 0.4, 0.5", lv.SwingHigh, lv.SwingLow)
	}
	if math.Abs(lv.Hum-0.7) > 1e-9 || lv.SwingBus != 0.2 {
		t.Fatalf("hum=%v bus=%v want 0.7, 0.2", lv.Hum, lv.SwingBus)
	}
}

func TestEngine_SecondWindowOverwritesSwapped(t *testing.T) {
	e := NewEngine(humCap, 0.25)
	tr := Transitions{Point1: 1, Region1: 1, Point2: 4, Region2: 2}
	lv := e.Update(5, 0.5, tr)
	// Second window progress 0.5: low gets the fade-out, high the fade-in.
	if math.Abs(lv.SwingLow-0.4) > 1e-9 || math.Abs(lv.SwingHigh-0.5) > 1e-9 {
		t.Fatalf("high=%v low=%v want 0.5, 0.4", lv.SwingHigh, lv.SwingLow)
	}
}

func TestEngine_KeepsTextureLevelsBeforeFirstPoint(t *testing.T) {
	e := NewEngine(humCap, 0.25)
	tr := Transitions{Point1: 1, Region1: 1, Point2: 4, Region2: 1}
	e.Update(2, 0.1, tr)
	lv := e.Update(0.5, 0.1, tr)
	if lv.SwingHigh != 0 || math.Abs(lv.SwingLow-humCap) > 1e-9 {
		t.Fatalf("high=%v low=%v want previous (0, %v)", lv.SwingHigh, lv.SwingLow, humCap)
	}
}

func TestEngine_HumClamps(t *testing.T) {
	e := NewEngine(humCap, 0.25)
	tr := Transitions{Point1: 10, Region1: 1, Point2: 10, Region2: 1}
	if lv := e.Update(0, 1, tr); lv.Hum != 0.25 || lv.SwingBus != 1 {
		t.Fatalf("full swing hum=%v bus=%v want 0.25, 1", lv.Hum, lv.SwingBus)
	}
	if lv := e.Update(0, 0, tr); lv.Hum != humCap || lv.SwingBus != 0 {
		t.Fatalf("no strength hum=%v bus=%v", lv.Hum, lv.SwingBus)
	}
}

func TestEngine_Quiesce(t *testing.T) {
	e := NewEngine(humCap, 0.25)
	e.Update(5, 0.8, Transitions{Point1: 1, Region1: 1, Point2: 4, Region2: 1})
	lv := e.Quiesce()
	if lv.Hum != humCap || lv.SwingBus != 0 || lv.SwingHigh != 0 || lv.SwingLow != 0 {
		t.Fatalf("quiesce=%+v", lv)
	}
}
