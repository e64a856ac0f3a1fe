// Package report derives per-day statistics from the session log. Reports are
// always recomputed; nothing here is persisted.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

// DailyGoal is the number of work sessions a day's progress bar aims for.
const DailyGoal = 8

const dateKey = "2006-01-02"

type Day struct {
	Date           time.Time // local midnight
	CompletedWork  int
	TotalMinutes   int // every session, breaks included
	FocusMinutes   int // work sessions only
	CompletedTasks int
	Sessions       []timer.Session // oldest first
}

// Key is the YYYY-MM-DD form of the date.
func (d Day) Key() string { return d.Date.Format(dateKey) }

// GoalPercent is CompletedWork as a percentage of DailyGoal, capped at 100.
func (d Day) GoalPercent() int {
	p := d.CompletedWork * 100 / DailyGoal
	if p > 100 {
		return 100
	}
	return p
}

// Daily groups sessions and task completions by the local day on which they
// ended. The result is sorted newest first.
func Daily(sessions []timer.Session, tasks []store.Task, loc *time.Location) []Day {
	if loc == nil {
		loc = time.Local
	}
	byKey := make(map[string]*Day)
	day := func(t time.Time) *Day {
		t = t.In(loc)
		k := t.Format(dateKey)
		d, ok := byKey[k]
		if !ok {
			d = &Day{Date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)}
			byKey[k] = d
		}
		return d
	}

	for _, s := range sessions {
		d := day(s.EndedAt)
		d.Sessions = append(d.Sessions, s)
		d.TotalMinutes += s.Minutes
		if s.Mode == timer.Work {
			d.CompletedWork++
			d.FocusMinutes += s.Minutes
		}
	}
	for _, t := range tasks {
		if t.Completed && t.CompletedAt != nil {
			day(*t.CompletedAt).CompletedTasks++
		}
	}

	days := make([]Day, 0, len(byKey))
	for _, d := range byKey {
		sort.SliceStable(d.Sessions, func(i, j int) bool {
			return d.Sessions[i].StartedAt.Before(d.Sessions[j].StartedAt)
		})
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.After(days[j].Date) })
	return days
}

type Summary struct {
	WorkSessions   int
	FocusMinutes   int
	CompletedTasks int
	ActiveDays     int
}

// Hours and Minutes split FocusMinutes for display.
func (s Summary) Hours() int   { return s.FocusMinutes / 60 }
func (s Summary) Minutes() int { return s.FocusMinutes % 60 }

// Summarize totals the newest limit days (all of them when limit <= 0).
// Days without sessions or completed tasks are not counted as active.
// CompletedTasks counts every completed task, not only those in the window.
func Summarize(days []Day, tasks []store.Task, limit int) Summary {
	if limit > 0 && len(days) > limit {
		days = days[:limit]
	}
	var s Summary
	for _, d := range days {
		s.WorkSessions += d.CompletedWork
		s.FocusMinutes += d.FocusMinutes
		if len(d.Sessions) > 0 || d.CompletedTasks > 0 {
			s.ActiveDays++
		}
	}
	for _, t := range tasks {
		if t.Completed {
			s.CompletedTasks++
		}
	}
	return s
}

// Range returns one Day per calendar day from from to to inclusive, oldest
// first. Days without activity are zero-valued apart from Date.
func Range(days []Day, from, to time.Time) []Day {
	loc := from.Location()
	byKey := make(map[string]Day, len(days))
	for _, d := range days {
		byKey[d.Date.In(loc).Format(dateKey)] = d
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	to = to.In(loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc)

	var out []Day
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if got, ok := byKey[d.Format(dateKey)]; ok {
			out = append(out, got)
			continue
		}
		out = append(out, Day{Date: d})
	}
	return out
}

// LastDays is Range over the n days ending today.
func LastDays(days []Day, n int, now time.Time) []Day {
	if n < 1 {
		return nil
	}
	return Range(days, now.AddDate(0, 0, -(n-1)), now)
}

// DateLabel renders date relative to now: "Today", "Yesterday", or
// "Mon Jan 02".
func DateLabel(date, now time.Time) string {
	date = date.In(now.Location())
	switch date.Format(dateKey) {
	case now.Format(dateKey):
		return "Today"
	case now.AddDate(0, 0, -1).Format(dateKey):
		return "Yesterday"
	}
	return date.Format("Mon Jan 02")
}

// FormatMinutes renders a minute count as "1h 05m" or "25m".
func FormatMinutes(m int) string {
	if m >= 60 {
		return fmt.Sprintf("%dh %02dm", m/60, m%60)
	}
	return fmt.Sprintf("%dm", m)
}
