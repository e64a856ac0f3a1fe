package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/report"
	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

// dashboardModel is the lower half of the Timer view: today's totals, the
// latest sessions and the active-task picker.
type dashboardModel struct {
	store  *store.Store
	engine *timer.Engine
	width  int
	height int

	today  report.Day
	recent []timer.Session
	tasks  []store.Task
	titles map[string]string

	// Task picker state
	picking      bool
	pickerCursor int
}

func newDashboardModel(s *store.Store, e *timer.Engine) dashboardModel {
	return dashboardModel{store: s, engine: e}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	today  report.Day
	recent []timer.Session
	tasks  []store.Task
	titles map[string]string
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		now := time.Now()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		// Sessions belong to the day they end on, so one that started
		// before midnight still counts today.
		from := dayStart.AddDate(0, 0, -1)
		to := dayStart.AddDate(0, 0, 1)
		sessions, _ := d.store.ListSessions(store.SessionFilter{From: &from, To: &to})
		all, _ := d.store.ListTasks(true)

		msg := dashboardDataMsg{today: report.Day{Date: dayStart}, titles: make(map[string]string)}
		for _, day := range report.Daily(sessions, all, now.Location()) {
			if day.Key() == msg.today.Key() {
				msg.today = day
			}
		}
		for i := len(msg.today.Sessions) - 1; i >= 0 && len(msg.recent) < 5; i-- {
			msg.recent = append(msg.recent, msg.today.Sessions[i])
		}
		for _, t := range all {
			msg.titles[t.ID] = t.Title
			if !t.Completed {
				msg.tasks = append(msg.tasks, t)
			}
		}
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.today = msg.today
		d.recent = msg.recent
		d.tasks = msg.tasks
		d.titles = msg.titles
		if d.pickerCursor >= len(d.tasks) {
			d.pickerCursor = max(0, len(d.tasks)-1)
		}
		return d, nil

	case tea.KeyMsg:
		if d.picking {
			return d.updatePicker(msg)
		}
		if key.Matches(msg, keys.Activate) {
			if len(d.tasks) == 0 {
				return d, func() tea.Msg {
					return statusMsg{text: "No open tasks. Press 2 to go to Tasks and create one.", isError: true}
				}
			}
			d.picking = true
			d.pickerCursor = 0
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.tasks)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		t := d.tasks[d.pickerCursor]
		d.picking = false
		return d, activateTask(d.store, d.engine, t.ID, false)
	case key.Matches(msg, keys.Pomodoro):
		t := d.tasks[d.pickerCursor]
		d.picking = false
		return d, activateTask(d.store, d.engine, t.ID, true)
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4
	summaryPanel := d.renderSummaryPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderTaskPicker(contentWidth)
	} else {
		bottomPanel = d.renderRecentPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, summaryPanel, bottomPanel)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today")
	stats := fmt.Sprintf("%s  %s  %s",
		highlightStyle.Render(fmt.Sprintf("%d pomodoros", d.today.CompletedWork)),
		mutedStyle.Render("focus "+report.FormatMinutes(d.today.FocusMinutes)),
		mutedStyle.Render(fmt.Sprintf("%d tasks done", d.today.CompletedTasks)),
	)
	goal := renderGoalBar(d.today, 20)
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s  %s", title, stats),
		goal,
	))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Sessions")
	if len(d.recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No sessions today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for _, s := range d.recent {
		name := ""
		if s.TaskID != "" {
			name = d.titles[s.TaskID]
			if name == "" {
				name = "(deleted task)"
			}
		}
		row := fmt.Sprintf("  %s %s  %-12s %3dm  %s",
			modeStyle(s.Mode).Render("●"),
			s.StartedAt.Local().Format("15:04"),
			s.Mode.Label(),
			s.Minutes,
			mutedStyle.Render(name),
		)
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderTaskPicker(w int) string {
	title := titleStyle.Render("Select Task")

	var rows []string
	rows = append(rows, title)
	for i, t := range d.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s", cursor, t.Title))+
			mutedStyle.Render(fmt.Sprintf("  %d/%d", t.Actual, t.Estimated)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: set active  p: start pomodoro  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// renderGoalBar draws progress toward report.DailyGoal.
func renderGoalBar(d report.Day, width int) string {
	filled := d.GoalPercent() * width / 100
	bar := successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %s", bar, mutedStyle.Render(fmt.Sprintf("%d%% of %d/day", d.GoalPercent(), report.DailyGoal)))
}
