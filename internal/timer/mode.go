package timer

import "fmt"

// Mode is the kind of interval the timer is counting down.
type Mode int

const (
	Work Mode = iota
	ShortBreak
	LongBreak
)

var modeNames = map[Mode]string{
	Work:       "work",
	ShortBreak: "short_break",
	LongBreak:  "long_break",
}

var modeLabels = map[Mode]string{
	Work:       "Work",
	ShortBreak: "Short Break",
	LongBreak:  "Long Break",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Label is the human-readable name shown in the UI.
func (m Mode) Label() string {
	if s, ok := modeLabels[m]; ok {
		return s
	}
	return "Unknown"
}

func (m Mode) IsBreak() bool {
	return m == ShortBreak || m == LongBreak
}

// ParseMode accepts the String form of a mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return Work, fmt.Errorf("unknown mode %q", s)
}
