package monitor

import (
	"strings"
	"testing"

	"saberd/internal/audio"
	"saberd/internal/led"
	"saberd/internal/profile"
	"saberd/internal/saber"
)

func TestBar(t *testing.T) {
	cases := []struct {
		level float64
		full  int
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{-1, 0},
		{3, 10},
	}
	for _, tc := range cases {
		got := Bar(tc.level)
		if n := strings.Count(got, "█"); n != tc.full {
			t.Fatalf("Bar(%v) full=%d want %d", tc.level, n, tc.full)
		}
		if n := strings.Count(got, "█") + strings.Count(got, "░"); n != barWidth {
			t.Fatalf("Bar(%v) width=%d want %d", tc.level, n, barWidth)
		}
	}
}

func TestRender_ShowsStateProfileAndLevels(t *testing.T) {
	s := saber.Session{
		State:      saber.Active,
		Profile:    profile.Profile{Name: "vader", Color: led.Color{R: 255}},
		Levels:     audio.Levels{Hum: 0.25, SwingBus: 1},
		Lit:        54,
		FontLoaded: true,
	}
	out := Render(s)
	for _, want := range []string{"ACTIVE", "vader", "0.25", "1.00", "lit", "54", "swing"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Render()=%q missing %q", out, want)
		}
	}
	if strings.Contains(out, "NO FONT") {
		t.Fatalf("Render()=%q flags missing font", out)
	}
}

func TestRender_CyclingAndNoFont(t *testing.T) {
	s := saber.Session{State: saber.Cycling, Animation: "ignite", Frame: 3, FrameCount: 27}
	out := Render(s)
	for _, want := range []string{"CYCLING", "ignite 3/27", "NO FONT"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Render()=%q missing %q", out, want)
		}
	}
}
