package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/pomo/internal/timer"
)

// AppendSession writes a completed interval to the log. Records are never
// updated afterwards.
func (s *Store) AppendSession(rec timer.Session) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	var taskID any
	if rec.TaskID != "" {
		taskID = rec.TaskID
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, mode, minutes, task_id, start_time, end_time) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Mode.String(), rec.Minutes, taskID,
		rec.StartedAt.UTC().Format(time.RFC3339), rec.EndedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("append session: %w", err)
	}
	return nil
}

func (s *Store) ListSessions(f SessionFilter) ([]timer.Session, error) {
	query := `SELECT id, mode, minutes, task_id, start_time, end_time FROM sessions WHERE 1=1`
	var args []any

	if f.TaskID != nil {
		query += ` AND task_id = ?`
		args = append(args, *f.TaskID)
	}
	if f.Mode != nil {
		query += ` AND mode = ?`
		args = append(args, f.Mode.String())
	}
	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY start_time DESC, rowid DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []timer.Session
	for rows.Next() {
		var rec timer.Session
		var mode, startTime, endTime string
		var taskID sql.NullString
		if err := rows.Scan(&rec.ID, &mode, &rec.Minutes, &taskID, &startTime, &endTime); err != nil {
			return nil, err
		}
		rec.Mode, _ = timer.ParseMode(mode)
		rec.TaskID = taskID.String
		rec.StartedAt, _ = time.Parse(time.RFC3339, startTime)
		rec.EndedAt, _ = time.Parse(time.RFC3339, endTime)
		sessions = append(sessions, rec)
	}
	return sessions, rows.Err()
}

// CountWorkSessions returns how many work sessions were logged in [from, to).
func (s *Store) CountWorkSessions(from, to time.Time) (count int, minutes int64, err error) {
	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(minutes), 0)
		FROM sessions
		WHERE mode = ?
		  AND start_time >= ? AND start_time < ?`,
		timer.Work.String(), from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	).Scan(&count, &minutes)
	return
}
