package store

import (
	"fmt"
	"strconv"

	"github.com/sadopc/pomo/internal/timer"
)

// Setting keys.
const (
	KeyWorkMinutes       = "work_minutes"
	KeyShortBreakMinutes = "short_break_minutes"
	KeyLongBreakMinutes  = "long_break_minutes"
	KeyAutoStartBreak    = "auto_start_break"
	KeyAutoStartWork     = "auto_start_work"
	KeyLongBreakInterval = "long_break_interval"
	KeyLongBreakEnabled  = "long_break_enabled"
	KeySoundEnabled      = "sound_enabled"
	KeySoundVolume       = "sound_volume"
	KeyDesktopNotify     = "desktop_notify"
)

// SettingKeys lists every known key in display order.
var SettingKeys = []string{
	KeyWorkMinutes,
	KeyShortBreakMinutes,
	KeyLongBreakMinutes,
	KeyLongBreakInterval,
	KeyLongBreakEnabled,
	KeyAutoStartBreak,
	KeyAutoStartWork,
	KeySoundEnabled,
	KeySoundVolume,
	KeyDesktopNotify,
}

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// LoadSettings reads the typed settings. Missing or unparsable values fall
// back to their defaults.
func (s *Store) LoadSettings() (timer.Settings, error) {
	out := timer.DefaultSettings()
	all, err := s.GetAllSettings()
	if err != nil {
		return out, err
	}
	for _, kv := range all {
		applySetting(&out, kv.Key, kv.Value)
	}
	return out, nil
}

// SaveSettings validates and stores every field of ts.
func (s *Store) SaveSettings(ts timer.Settings) error {
	if err := ts.Validate(); err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save settings: %w", err)
	}
	defer tx.Rollback()

	for k, v := range encodeSettings(ts) {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, v,
		); err != nil {
			return fmt.Errorf("save setting %q: %w", k, err)
		}
	}
	return tx.Commit()
}

// UpdateSetting parses value for key, validates the result and stores it.
func (s *Store) UpdateSetting(key, value string) error {
	ts, err := s.LoadSettings()
	if err != nil {
		return err
	}
	if !applySetting(&ts, key, value) {
		return fmt.Errorf("%w: bad value %q for %q", timer.ErrInvalidSettings, value, key)
	}
	return s.SaveSettings(ts)
}

// ResetSettings restores the default timer settings.
func (s *Store) ResetSettings() error {
	return s.resetTimerSettings()
}

func (s *Store) resetTimerSettings() error {
	return s.seedSettings(true)
}

func (s *Store) seedSettings(overwrite bool) error {
	stmt := `INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`
	if overwrite {
		stmt = `INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	}
	for k, v := range encodeSettings(timer.DefaultSettings()) {
		if _, err := s.db.Exec(stmt, k, v); err != nil {
			return fmt.Errorf("seed setting %q: %w", k, err)
		}
	}
	return nil
}

func encodeSettings(ts timer.Settings) map[string]string {
	return map[string]string{
		KeyWorkMinutes:       strconv.Itoa(ts.WorkMinutes),
		KeyShortBreakMinutes: strconv.Itoa(ts.ShortBreakMinutes),
		KeyLongBreakMinutes:  strconv.Itoa(ts.LongBreakMinutes),
		KeyAutoStartBreak:    strconv.FormatBool(ts.AutoStartBreak),
		KeyAutoStartWork:     strconv.FormatBool(ts.AutoStartWork),
		KeyLongBreakInterval: strconv.Itoa(ts.LongBreakInterval),
		KeyLongBreakEnabled:  strconv.FormatBool(ts.LongBreakEnabled),
		KeySoundEnabled:      strconv.FormatBool(ts.SoundEnabled),
		KeySoundVolume:       strconv.Itoa(ts.SoundVolume),
		KeyDesktopNotify:     strconv.FormatBool(ts.DesktopNotify),
	}
}

// applySetting sets one field from its stored form. It reports false for an
// unknown key or a value that does not parse.
func applySetting(ts *timer.Settings, key, value string) bool {
	setInt := func(dst *int) bool {
		n, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		*dst = n
		return true
	}
	setBool := func(dst *bool) bool {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false
		}
		*dst = b
		return true
	}

	switch key {
	case KeyWorkMinutes:
		return setInt(&ts.WorkMinutes)
	case KeyShortBreakMinutes:
		return setInt(&ts.ShortBreakMinutes)
	case KeyLongBreakMinutes:
		return setInt(&ts.LongBreakMinutes)
	case KeyLongBreakInterval:
		return setInt(&ts.LongBreakInterval)
	case KeySoundVolume:
		return setInt(&ts.SoundVolume)
	case KeyAutoStartBreak:
		return setBool(&ts.AutoStartBreak)
	case KeyAutoStartWork:
		return setBool(&ts.AutoStartWork)
	case KeyLongBreakEnabled:
		return setBool(&ts.LongBreakEnabled)
	case KeySoundEnabled:
		return setBool(&ts.SoundEnabled)
	case KeyDesktopNotify:
		return setBool(&ts.DesktopNotify)
	}
	return false
}
