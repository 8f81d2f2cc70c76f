package ui

import (
	"github.com/charmbracelet/lipgloss"

	"matrixdo/internal/task"
)

// Color palette
var (
	colorAccent   = lipgloss.Color("#7D56F4")
	colorGray     = lipgloss.Color("#626262")
	colorGrayDim  = lipgloss.Color("#404040")
	colorWhite    = lipgloss.Color("#FFFFFF")
	colorOffWhite = lipgloss.Color("#D0D0D0")
	colorGreen    = lipgloss.Color("#25A065")

	colorDo       = lipgloss.Color("#ef4444")
	colorSchedule = lipgloss.Color("#3b82f6")
	colorDelegate = lipgloss.Color("#f59e0b")
	colorDelete   = lipgloss.Color("#6b7280")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(colorAccent).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorGray).
				Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	doneStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	pendingStyle = lipgloss.NewStyle().
			Foreground(colorOffWhite)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGrayDim).
			Padding(0, 1)

	todayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGrayDim)
)

func quadrantStyle(q task.Quadrant) lipgloss.Style {
	switch q {
	case task.QuadrantDo:
		return lipgloss.NewStyle().Foreground(colorDo)
	case task.QuadrantSchedule:
		return lipgloss.NewStyle().Foreground(colorSchedule)
	case task.QuadrantDelegate:
		return lipgloss.NewStyle().Foreground(colorDelegate)
	case task.QuadrantDelete:
		return lipgloss.NewStyle().Foreground(colorDelete)
	default:
		return lipgloss.NewStyle().Foreground(colorGray)
	}
}

// heatShades maps a normalized completion count to a block character,
// lightest to darkest.
var heatShades = []string{"·", "░", "▒", "▓", "█"}

func shadeFor(count, max int) string {
	if count <= 0 {
		return heatShades[0]
	}
	if max < 1 {
		max = 1
	}
	idx := count * (len(heatShades) - 1) / max
	if idx < 1 {
		idx = 1
	}
	if idx >= len(heatShades) {
		idx = len(heatShades) - 1
	}
	return heatShades[idx]
}
