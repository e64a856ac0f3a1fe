package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID          string `json:"id"`
	Mode        string `json:"mode"`
	TaskID      string `json:"task_id,omitempty"`
	Task        string `json:"task,omitempty"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Minutes     int    `json:"minutes"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
}

func ToJSON(sessions []timer.Session, tasks map[string]*store.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, sessions, tasks)
}

func WriteJSON(w io.Writer, sessions []timer.Session, tasks map[string]*store.Task) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, s := range sessions {
		secs := int64(s.Minutes) * 60
		export.Sessions = append(export.Sessions, jsonSession{
			ID:          s.ID,
			Mode:        s.Mode.String(),
			TaskID:      s.TaskID,
			Task:        taskTitle(s.TaskID, tasks),
			StartTime:   s.StartedAt.Local().Format(time.RFC3339),
			EndTime:     s.EndedAt.Local().Format(time.RFC3339),
			Minutes:     s.Minutes,
			DurationSec: secs,
			Duration:    formatDuration(secs),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
