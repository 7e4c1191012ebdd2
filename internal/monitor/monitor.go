// Package monitor renders a one-line console view of a running session.
package monitor

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"saberd/internal/saber"
)

const barWidth = 10

// Bar draws level in [0,1] as a fixed-width gauge.
func Bar(level float64) string {
	if math.IsNaN(level) || level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	n := int(math.Round(level * barWidth))
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}

func stateStyle(s saber.State) lipgloss.Style {
	switch s {
	case saber.Active:
		return styleState.Foreground(colorActive)
	case saber.Cycling:
		return styleState.Foreground(colorCycling)
	default:
		return styleState.Foreground(colorStandby)
	}
}

func gauge(label string, level float64) string {
	return styleLabel.Render(label) + " " + Bar(level) + styleDim.Render(fmt.Sprintf(" %.2f", level))
}

// Render formats one status line for s.
func Render(s saber.Session) string {
	parts := []string{
		stateStyle(s.State).Render(s.State.String()),
		styleLabel.Render("profile ") + lipgloss.NewStyle().
			Foreground(lipgloss.Color(hexColor(s.Profile.Color.R, s.Profile.Color.G, s.Profile.Color.B))).
			Render(s.Profile.Name),
		gauge("hum", s.Levels.Hum),
		gauge("bus", s.Levels.SwingBus),
		gauge("hi", s.Levels.SwingHigh),
		gauge("lo", s.Levels.SwingLow),
		styleLabel.Render("lit ") + fmt.Sprintf("%d", s.Lit),
	}
	if s.State == saber.Cycling && s.Animation != "" {
		parts = append(parts, styleDim.Render(fmt.Sprintf("%s %d/%d", s.Animation, s.Frame, s.FrameCount)))
	}
	if s.State == saber.Active {
		parts = append(parts, styleDim.Render(fmt.Sprintf("swing %.2frad", s.Motion.Accumulated)))
	}
	if !s.FontLoaded {
		parts = append(parts, styleWarn.Render("NO FONT"))
	}
	return styleLine.Render(strings.Join(parts, "  "))
}

func hexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}
