package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case CSV, JSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
}

// ToFile writes sessions to path in format f.
func ToFile(f Format, sessions []timer.Session, tasks map[string]*store.Task, path string) error {
	if f == JSON {
		return ToJSON(sessions, tasks, path)
	}
	return ToCSV(sessions, tasks, path)
}

func Write(f Format, w io.Writer, sessions []timer.Session, tasks map[string]*store.Task) error {
	if f == JSON {
		return WriteJSON(w, sessions, tasks)
	}
	return WriteCSV(w, sessions, tasks)
}

// TaskIndex maps task ids to tasks for title lookups.
func TaskIndex(tasks []store.Task) map[string]*store.Task {
	m := make(map[string]*store.Task, len(tasks))
	for i := range tasks {
		m[tasks[i].ID] = &tasks[i]
	}
	return m
}
