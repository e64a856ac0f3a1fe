package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/report"
	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

const (
	chartDays   = 7
	summaryDays = 30
)

type reportsModel struct {
	store  *store.Store
	width  int
	height int

	days    []report.Day
	summary report.Summary
	offset  int // 7-day blocks back from today (0 = current)
	now     func() time.Time

	chart barchart.Model
}

func newReportsModel(s *store.Store) reportsModel {
	return reportsModel{
		store: s,
		now:   time.Now,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	days    []report.Day
	summary report.Summary
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sessions, err := r.store.ListSessions(store.SessionFilter{})
		if err != nil {
			return errStatus("Load report: %v", err)
		}
		tasks, _ := r.store.ListTasks(true)
		days := report.Daily(sessions, tasks, time.Local)
		return reportsDataMsg{
			days:    days,
			summary: report.Summarize(days, tasks, summaryDays),
		}
	}
}

// window is the dense day range the chart covers, oldest first.
func (r reportsModel) window() []report.Day {
	end := r.now().AddDate(0, 0, -chartDays*r.offset)
	return report.LastDays(r.days, chartDays, end)
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.days = msg.days
		r.summary = msg.summary
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			r.buildChart()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			r.buildChart()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 36 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, d := range r.window() {
		values := []barchart.BarValue{
			{Name: "Focus", Value: float64(d.FocusMinutes), Style: lipgloss.NewStyle().Foreground(modeColor(timer.Work))},
			{Name: "Breaks", Value: float64(d.TotalMinutes - d.FocusMinutes), Style: lipgloss.NewStyle().Foreground(colorSecondary)},
		}
		bars = append(bars, barchart.BarData{
			Label:  d.Date.Format("Mon 02"),
			Values: values,
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	win := r.window()
	var dateLabel string
	if len(win) > 0 {
		dateLabel = mutedStyle.Render(fmt.Sprintf("%s to %s", win[0].Date.Format("Jan 02"), win[len(win)-1].Date.Format("Jan 02, 2006")))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Reports"), "  ", dateLabel)

	legend := fmt.Sprintf("  %s Focus  %s Breaks  %s",
		modeStyle(timer.Work).Render("●"),
		lipgloss.NewStyle().Foreground(colorSecondary).Render("●"),
		mutedStyle.Render("(minutes)"),
	)

	nav := mutedStyle.Render("  ←/→: previous/next week")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.renderSummary(), "", r.chart.View(), legend, "", r.renderDayTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderSummary() string {
	s := r.summary
	cell := func(value, label string) string {
		return lipgloss.JoinVertical(lipgloss.Left, highlightStyle.Bold(true).Render(value), mutedStyle.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell(fmt.Sprintf("%d", s.WorkSessions), "pomodoros"), "    ",
		cell(fmt.Sprintf("%dh %02dm", s.Hours(), s.Minutes()), "focus time"), "    ",
		cell(fmt.Sprintf("%d", s.CompletedTasks), "tasks done"), "    ",
		cell(fmt.Sprintf("%d", s.ActiveDays), "active days"),
	)
}

// renderDayTable lists the most recent days, as many as fit.
func (r reportsModel) renderDayTable(w int) string {
	if len(r.days) == 0 {
		return mutedStyle.Render("  No sessions yet. Complete a pomodoro to see it here.")
	}

	limit := r.height - 28
	if limit < 3 {
		limit = 3
	}
	limit = min(limit, summaryDays, len(r.days))
	now := r.now()

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %10s %8s  %s", "Day", "Pomodoros", "Total", "Tasks", "Goal")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 64))))
	for _, d := range r.days[:limit] {
		rows = append(rows, fmt.Sprintf("  %-12s %10d %10s %8d  %s",
			report.DateLabel(d.Date, now),
			d.CompletedWork,
			report.FormatMinutes(d.TotalMinutes),
			d.CompletedTasks,
			renderGoalBar(d, 10),
		))
	}
	return strings.Join(rows, "\n")
}
