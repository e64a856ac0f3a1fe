package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

// pomodoroModel is the Timer view. The engine owns all timer state; this
// model only renders it and forwards keys.
type pomodoroModel struct {
	store  *store.Store
	engine *timer.Engine
	width  int
	height int

	activeTask *store.Task
}

func newPomodoroModel(s *store.Store, e *timer.Engine) pomodoroModel {
	return pomodoroModel{store: s, engine: e}
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type activeTaskMsg struct {
	task *store.Task
}

func (p pomodoroModel) refresh() tea.Cmd {
	return func() tea.Msg {
		id, err := p.store.ActiveTask()
		if err != nil || id == "" {
			return activeTaskMsg{}
		}
		t, err := p.store.GetTask(id)
		if err != nil {
			return activeTaskMsg{}
		}
		return activeTaskMsg{task: t}
	}
}

// modes lists the selectable modes; the long break only when it is enabled.
func (p pomodoroModel) modes() []timer.Mode {
	if p.engine.Settings().LongBreakEnabled {
		return []timer.Mode{timer.Work, timer.ShortBreak, timer.LongBreak}
	}
	return []timer.Mode{timer.Work, timer.ShortBreak}
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	switch msg := msg.(type) {
	case activeTaskMsg:
		p.activeTask = msg.task
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			p.engine.Toggle()
		case key.Matches(msg, keys.Reset):
			p.engine.Reset()
			return p, func() tea.Msg { return statusMsg{text: "Timer reset"} }
		case key.Matches(msg, keys.Skip):
			from := p.engine.State().Mode
			p.engine.Skip()
			return p, func() tea.Msg { return statusMsg{text: "Skipped " + from.Label()} }
		case key.Matches(msg, keys.Left):
			p.shiftMode(-1)
		case key.Matches(msg, keys.Right):
			p.shiftMode(1)
		}
	}
	return p, nil
}

// shiftMode moves along the mode tabs. Tabs are locked while running.
func (p pomodoroModel) shiftMode(delta int) {
	st := p.engine.State()
	if st.Running {
		return
	}
	modes := p.modes()
	i := 0
	for j, m := range modes {
		if m == st.Mode {
			i = j
		}
	}
	i = (i + delta + len(modes)) % len(modes)
	if modes[i] != st.Mode {
		p.engine.SetMode(modes[i])
	}
}

func (p pomodoroModel) view() string {
	w := p.width - 4
	st := p.engine.State()
	s := p.engine.Settings()

	tabs := p.renderModeTabs(st)

	var clock, label string
	switch {
	case st.Running:
		clock = timerStyle.Foreground(modeColor(st.Mode)).Width(w - 6).Render(formatClock(st.Remaining))
		label = modeStyle(st.Mode).Render(strings.ToUpper(st.Mode.Label()))
	case st.Remaining < p.engine.Duration():
		clock = timerPausedStyle.Width(w - 6).Render(formatClock(st.Remaining))
		label = warningStyle.Bold(true).Render("PAUSED")
	default:
		clock = timerIdleStyle.Width(w - 6).Render(formatClock(st.Remaining))
		label = mutedStyle.Render("Ready to start")
	}

	count := mutedStyle.Render(fmt.Sprintf("Pomodoros completed: %d", st.CompletedWork))
	if s.LongBreakEnabled {
		count = p.renderProgress(st, s)
	}

	task := mutedStyle.Render("No active task. Press a to pick one.")
	if t := p.activeTask; t != nil {
		task = fmt.Sprintf("%s %s %s",
			mutedStyle.Render("Task:"),
			highlightStyle.Render(t.Title),
			mutedStyle.Render(fmt.Sprintf("(%d/%d)", t.Actual, t.Estimated)),
		)
		if !t.Override.Empty() {
			task += accentStyle.Render("  custom timer")
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		tabs,
		"",
		clock,
		label,
		"",
		count,
		task,
	)

	controls := "space: start  ←/→: mode  r: reset  s: skip  a: pick task"
	if st.Running {
		controls = "space: pause  s: skip"
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", mutedStyle.Render(controls)),
	)
}

func (p pomodoroModel) renderModeTabs(st timer.State) string {
	var tabs []string
	for _, m := range p.modes() {
		switch {
		case m == st.Mode:
			tabs = append(tabs, activeTabStyle.Foreground(modeColor(m)).BorderForeground(modeColor(m)).Render(m.Label()))
		case st.Running:
			tabs = append(tabs, inactiveTabStyle.Foreground(colorSubtle).Render(m.Label()))
		default:
			tabs = append(tabs, inactiveTabStyle.Render(m.Label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

// renderProgress shows the work sessions completed toward the next long break.
func (p pomodoroModel) renderProgress(st timer.State, s timer.Settings) string {
	interval := s.LongBreakInterval
	if interval < 1 {
		interval = 1
	}
	done := st.CompletedWork % interval
	if done == 0 && st.CompletedWork > 0 && st.Mode == timer.LongBreak {
		done = interval
	}
	var parts []string
	for i := 0; i < interval; i++ {
		switch {
		case i < done:
			parts = append(parts, successStyle.Render("●"))
		case i == done && st.Mode == timer.Work && st.Running:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d  total %d", done, interval, st.CompletedWork))
	return strings.Join(parts, " ") + counter
}
