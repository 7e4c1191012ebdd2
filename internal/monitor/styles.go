package monitor

import "github.com/charmbracelet/lipgloss"

var (
	colorDim     = lipgloss.Color("#5F5F5F")
	colorLabel   = lipgloss.Color("#AFAFAF")
	colorStandby = lipgloss.Color("#FFAA00")
	colorCycling = lipgloss.Color("#00AFFF")
	colorActive  = lipgloss.Color("#00FF41")
	colorWarning = lipgloss.Color("#FF3300")
)

var (
	styleLabel = lipgloss.NewStyle().Foreground(colorLabel)
	styleDim   = lipgloss.NewStyle().Foreground(colorDim)
	styleWarn  = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)

	styleState = lipgloss.NewStyle().
			Bold(true).
			Width(9)

	styleLine = lipgloss.NewStyle().
			Padding(0, 1)
)
