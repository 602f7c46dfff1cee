package tui

import (
	"github.com/charmbracelet/lipgloss"

	"moneylens/internal/models"
)

const (
	colorText    lipgloss.Color = "#cdd6f4"
	colorSubtext lipgloss.Color = "#a6adc8"
	colorOverlay lipgloss.Color = "#7f849c"
	colorSurface lipgloss.Color = "#313244"
	colorAccent  lipgloss.Color = "#f5c2e7"
	colorFocus   lipgloss.Color = "#b4befe"
	colorSuccess lipgloss.Color = "#a6e3a1"
	colorError   lipgloss.Color = "#f38ba8"
	colorSpend   lipgloss.Color = "#fab387"
	colorEarn    lipgloss.Color = "#a6e3a1"
	colorSave    lipgloss.Color = "#89b4fa"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(colorSubtext)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorText).Background(colorSurface)
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorSubtext)
	rowStyle       = lipgloss.NewStyle().Foreground(colorText)
	cursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorFocus)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorOverlay)
	statusStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	formStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFocus).Padding(0, 1)
	labelStyle     = lipgloss.NewStyle().Width(14).Foreground(colorSubtext)
	focusStyle     = lipgloss.NewStyle().Foreground(colorFocus)
)

var typeColors = map[models.TransactionType]lipgloss.Color{
	models.TransactionTypeSpend: colorSpend,
	models.TransactionTypeEarn:  colorEarn,
	models.TransactionTypeSave:  colorSave,
}

func typeStyle(t models.TransactionType) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(typeColors[t])
}
