package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/timer"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#E5534B") // tomato
	colorSecondary = lipgloss.Color("#8DDBE0")
	colorAccent    = lipgloss.Color("#F47067")
	colorMuted     = lipgloss.Color("#636E7B")
	colorSuccess   = lipgloss.Color("#57AB5A")
	colorWarning   = lipgloss.Color("#C69026")
	colorError     = lipgloss.Color("#FF938A")
	colorFg        = lipgloss.Color("#ADBAC7")
	colorSubtle    = lipgloss.Color("#444C56")
	colorHighlight = lipgloss.Color("#539BF5")
)

// modeColors tints everything that belongs to one interval kind.
var modeColors = map[timer.Mode]lipgloss.Color{
	timer.Work:       colorAccent,
	timer.ShortBreak: colorSuccess,
	timer.LongBreak:  colorHighlight,
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = panelStyle.BorderForeground(colorPrimary)

	// Countdown. The running clock takes its color from the mode.
	timerStyle       = lipgloss.NewStyle().Bold(true).Align(lipgloss.Center)
	timerPausedStyle = timerStyle.Foreground(colorWarning)
	timerIdleStyle   = timerStyle.Foreground(colorFg)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	accentStyle    = lipgloss.NewStyle().Foreground(colorAccent)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = mutedStyle.Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorFg)
)

func modeColor(m timer.Mode) lipgloss.Color {
	if c, ok := modeColors[m]; ok {
		return c
	}
	return colorPrimary
}

func modeStyle(m timer.Mode) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(modeColor(m))
}
