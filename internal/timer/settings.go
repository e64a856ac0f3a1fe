package timer

import (
	"errors"
	"fmt"
)

// ErrInvalidSettings is wrapped by Settings.Validate.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the user-tunable values the engine reads when it needs a
// duration or has to decide a transition.
type Settings struct {
	WorkMinutes       int
	ShortBreakMinutes int
	LongBreakMinutes  int
	AutoStartBreak    bool
	AutoStartWork     bool
	LongBreakInterval int
	LongBreakEnabled  bool

	SoundEnabled  bool
	SoundVolume   int // 0-100
	DesktopNotify bool
}

func DefaultSettings() Settings {
	return Settings{
		WorkMinutes:       25,
		ShortBreakMinutes: 5,
		LongBreakMinutes:  15,
		AutoStartBreak:    true,
		AutoStartWork:     true,
		LongBreakInterval: 4,
		LongBreakEnabled:  false,
		SoundEnabled:      true,
		SoundVolume:       80,
		DesktopNotify:     true,
	}
}

// Minutes returns the configured length of mode in minutes.
func (s Settings) Minutes(m Mode) int {
	switch m {
	case ShortBreak:
		return s.ShortBreakMinutes
	case LongBreak:
		return s.LongBreakMinutes
	default:
		return s.WorkMinutes
	}
}

// Duration returns the configured length of mode in seconds.
func (s Settings) Duration(m Mode) int {
	d := s.Minutes(m) * 60
	if d < 0 {
		return 0
	}
	return d
}

// Validate reports the first out-of-range value.
func (s Settings) Validate() error {
	check := func(name string, v, lo, hi int) error {
		if v < lo || v > hi {
			return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalidSettings, name, lo, hi, v)
		}
		return nil
	}
	if err := check("work minutes", s.WorkMinutes, 1, 180); err != nil {
		return err
	}
	if err := check("short break minutes", s.ShortBreakMinutes, 1, 60); err != nil {
		return err
	}
	if err := check("long break minutes", s.LongBreakMinutes, 1, 120); err != nil {
		return err
	}
	if err := check("long break interval", s.LongBreakInterval, 1, 12); err != nil {
		return err
	}
	return check("sound volume", s.SoundVolume, 0, 100)
}

// Override holds per-task replacements; nil fields keep the base value.
type Override struct {
	WorkMinutes       *int  `json:"work_minutes,omitempty"`
	ShortBreakMinutes *int  `json:"short_break_minutes,omitempty"`
	LongBreakMinutes  *int  `json:"long_break_minutes,omitempty"`
	AutoStartBreak    *bool `json:"auto_start_break,omitempty"`
	AutoStartWork     *bool `json:"auto_start_work,omitempty"`
	LongBreakEnabled  *bool `json:"long_break_enabled,omitempty"`
}

// Empty reports whether o replaces nothing.
func (o *Override) Empty() bool {
	return o == nil || (o.WorkMinutes == nil && o.ShortBreakMinutes == nil && o.LongBreakMinutes == nil &&
		o.AutoStartBreak == nil && o.AutoStartWork == nil && o.LongBreakEnabled == nil)
}

// Apply returns s with the non-nil fields of o substituted. Zero or negative
// durations in o are ignored.
func (s Settings) Apply(o *Override) Settings {
	if o == nil {
		return s
	}
	if o.WorkMinutes != nil && *o.WorkMinutes > 0 {
		s.WorkMinutes = *o.WorkMinutes
	}
	if o.ShortBreakMinutes != nil && *o.ShortBreakMinutes > 0 {
		s.ShortBreakMinutes = *o.ShortBreakMinutes
	}
	if o.LongBreakMinutes != nil && *o.LongBreakMinutes > 0 {
		s.LongBreakMinutes = *o.LongBreakMinutes
	}
	if o.AutoStartBreak != nil {
		s.AutoStartBreak = *o.AutoStartBreak
	}
	if o.AutoStartWork != nil {
		s.AutoStartWork = *o.AutoStartWork
	}
	if o.LongBreakEnabled != nil {
		s.LongBreakEnabled = *o.LongBreakEnabled
	}
	return s
}
