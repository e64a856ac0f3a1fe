package store

import (
	"time"

	"github.com/sadopc/pomo/internal/timer"
)

type Task struct {
	ID          string
	Title       string
	Completed   bool
	Estimated   int // planned work sessions
	Actual      int // completed work sessions
	Override    *timer.Override
	CreatedAt   time.Time
	CompletedAt *time.Time
}

type Setting struct {
	Key   string
	Value string
}

// SessionFilter is used to filter the session log in queries.
type SessionFilter struct {
	TaskID *string
	Mode   *timer.Mode
	From   *time.Time
	To     *time.Time
	Limit  int
}
