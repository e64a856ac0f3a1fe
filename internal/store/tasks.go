package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/pomo/internal/timer"
)

const keyActiveTask = "active_task"

const taskColumns = `id, title, completed, estimated, actual, override, created_at, completed_at`

func (s *Store) CreateTask(title string, estimated int) (*Task, error) {
	if title == "" {
		return nil, errors.New("insert task: empty title")
	}
	if estimated < 1 {
		estimated = 1
	}
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, title, estimated, created_at) VALUES (?, ?, ?, ?)`,
		id, title, estimated, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(id)
}

func (s *Store) GetTask(id string) (*Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

func (s *Store) ListTasks(includeCompleted bool) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if !includeCompleted {
		query += ` WHERE completed = 0`
	}
	query += ` ORDER BY completed, created_at, rowid`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTask(id, title string, estimated int) error {
	if estimated < 1 {
		estimated = 1
	}
	res, err := s.db.Exec(`UPDATE tasks SET title = ?, estimated = ? WHERE id = ?`, title, estimated, id)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return expectRow(res, id)
}

// SetTaskOverride stores per-task timer settings. An empty override clears it.
func (s *Store) SetTaskOverride(id string, o *timer.Override) error {
	value := ""
	if !o.Empty() {
		data, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("encode override: %w", err)
		}
		value = string(data)
	}
	res, err := s.db.Exec(`UPDATE tasks SET override = ? WHERE id = ?`, value, id)
	if err != nil {
		return fmt.Errorf("set task override: %w", err)
	}
	return expectRow(res, id)
}

func (s *Store) ToggleTaskComplete(id string) (*Task, error) {
	t, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}
	var completedAt any
	if !t.Completed {
		completedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err = s.db.Exec(
		`UPDATE tasks SET completed = ?, completed_at = ? WHERE id = ?`,
		boolInt(!t.Completed), completedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle task: %w", err)
	}
	return s.GetTask(id)
}

// DeleteTask removes the task and clears it as the active task. Sessions that
// referenced it keep their task id.
func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if err := expectRow(res, id); err != nil {
		return err
	}
	active, err := s.ActiveTask()
	if err != nil {
		return err
	}
	if active == id {
		return s.SetActiveTask("")
	}
	return nil
}

func (s *Store) IncrementTaskActual(id string) error {
	_, err := s.db.Exec(`UPDATE tasks SET actual = actual + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment task %s: %w", id, err)
	}
	return nil
}

// ActiveTask returns the id of the task work sessions count toward, or "".
func (s *Store) ActiveTask() (string, error) {
	return s.getState(keyActiveTask)
}

// SetActiveTask marks id as active; "" clears it.
func (s *Store) SetActiveTask(id string) error {
	return s.setState(keyActiveTask, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(r scanner) (*Task, error) {
	t := &Task{}
	var completed int
	var override, createdAt string
	var completedAt sql.NullString
	if err := r.Scan(&t.ID, &t.Title, &completed, &t.Estimated, &t.Actual, &override, &createdAt, &completedAt); err != nil {
		return nil, err
	}
	t.Completed = completed == 1
	if override != "" {
		o := &timer.Override{}
		if err := json.Unmarshal([]byte(override), o); err == nil {
			t.Override = o
		}
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if completedAt.Valid {
		ct, _ := time.Parse(time.RFC3339, completedAt.String)
		t.CompletedAt = &ct
	}
	return t, nil
}

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
