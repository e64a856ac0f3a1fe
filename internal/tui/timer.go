package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg is tagged with the generation of the schedule that produced it.
type tickMsg struct {
	gen int
	at  time.Time
}

// ticker keeps at most one tick in flight, and only while the engine runs.
// Stopping bumps the generation so a tick that is already scheduled is
// dropped when it arrives.
type ticker struct {
	gen     int
	pending bool
}

func (t *ticker) sync(running bool) tea.Cmd {
	switch {
	case running && !t.pending:
		t.gen++
		t.pending = true
		return tickCmd(t.gen)
	case !running && t.pending:
		t.gen++
		t.pending = false
	}
	return nil
}

// accept reports whether msg belongs to the live schedule and consumes it.
func (t *ticker) accept(msg tickMsg) bool {
	if !t.pending || msg.gen != t.gen {
		return false
	}
	t.pending = false
	return true
}

func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(at time.Time) tea.Msg {
		return tickMsg{gen: gen, at: at}
	})
}
