package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

func ToCSV(sessions []timer.Session, tasks map[string]*store.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, sessions, tasks)
}

func WriteCSV(out io.Writer, sessions []timer.Session, tasks map[string]*store.Task) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Mode", "Task", "Start", "End", "Minutes", "Duration"}); err != nil {
		return err
	}

	for _, s := range sessions {
		row := []string{
			s.ID,
			s.Mode.String(),
			taskTitle(s.TaskID, tasks),
			s.StartedAt.Local().Format(time.RFC3339),
			s.EndedAt.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", s.Minutes),
			formatDuration(int64(s.Minutes) * 60),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// taskTitle is "" for sessions without a task and "Unknown" for tasks that
// were deleted since.
func taskTitle(id string, tasks map[string]*store.Task) string {
	if id == "" {
		return ""
	}
	if t, ok := tasks[id]; ok {
		return t.Title
	}
	return "Unknown"
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
