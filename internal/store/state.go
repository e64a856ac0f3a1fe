package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/sadopc/pomo/internal/timer"
)

const (
	keyTimerMode      = "timer_mode"
	keyTimerCompleted = "timer_completed"
)

func (s *Store) getState(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get state %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) setState(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO app_state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

// SaveTimerState persists the parts of the timer state that survive a
// restart: the mode and the completed-work count.
func (s *Store) SaveTimerState(st timer.State) error {
	if err := s.setState(keyTimerMode, st.Mode.String()); err != nil {
		return err
	}
	return s.setState(keyTimerCompleted, strconv.Itoa(st.CompletedWork))
}

// LoadTimerState returns the saved state, or nil when nothing was saved.
func (s *Store) LoadTimerState() (*timer.State, error) {
	mode, err := s.getState(keyTimerMode)
	if err != nil {
		return nil, err
	}
	completed, err := s.getState(keyTimerCompleted)
	if err != nil {
		return nil, err
	}
	if mode == "" && completed == "" {
		return nil, nil
	}

	st := &timer.State{}
	st.Mode, _ = timer.ParseMode(mode)
	st.CompletedWork, _ = strconv.Atoi(completed)
	return st, nil
}
