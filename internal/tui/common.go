package tui

import (
	"fmt"

	"github.com/sadopc/pomo/internal/timer"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewTasks
	viewReports
	viewSettings
)

var viewNames = []string{"Timer", "Tasks", "Reports", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// formatClock renders seconds as MM:SS. Minutes are not wrapped at 60.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func windowTitle(st timer.State) string {
	return fmt.Sprintf("%s - %s", formatClock(st.Remaining), st.Mode.Label())
}

func errStatus(format string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf(format, err), isError: true}
}
