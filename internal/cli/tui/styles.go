package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/haskel/aguacate/internal/engine"
)

// Palette, roughly avocado from skin to pit.
var (
	colorSkin  = lipgloss.Color("71")  // dark green
	colorFlesh = lipgloss.Color("149") // pale green
	colorPit   = lipgloss.Color("137") // brown
	colorRot   = lipgloss.Color("160") // red
	colorDim   = lipgloss.Color("243")
	colorText  = lipgloss.Color("252")
)

var (
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(colorFlesh)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSkin)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorSkin).
				BorderBottom(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colorDim)
	tableCellStyle = lipgloss.NewStyle().Foreground(colorText)

	labelStyle            = lipgloss.NewStyle().Foreground(colorDim)
	valueStyle            = lipgloss.NewStyle().Foreground(colorText)
	helpStyle             = lipgloss.NewStyle().Foreground(colorDim)
	progressBarEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle            = lipgloss.NewStyle().Bold(true).Foreground(colorRot)

	// heuristic scores render dimmer than trained-network ones
	heuristicStyle = lipgloss.NewStyle().Italic(true).Foreground(colorDim)
)

// band picks good, fair or bad by comparing v against two thresholds.
// With rising set, higher values are better.
func band(v, good, fair float64, rising bool) lipgloss.Color {
	if !rising {
		v, good, fair = -v, -good, -fair
	}
	switch {
	case v >= good:
		return colorSkin
	case v >= fair:
		return colorPit
	default:
		return colorRot
	}
}

func getProgressColor(percent float64) lipgloss.Color {
	return band(percent, 70, 90, false)
}

func getConfidenceColor(confidence float64) lipgloss.Color {
	return band(confidence, 0.7, 0.4, true)
}

func getStateColor(state engine.State) lipgloss.Color {
	switch state {
	case engine.StateReady:
		return colorSkin
	case engine.StateTraining:
		return colorPit
	case engine.StateFailed:
		return colorRot
	}
	return colorDim
}
