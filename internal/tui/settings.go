package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

var settingLabels = map[string]string{
	store.KeyWorkMinutes:       "Work",
	store.KeyShortBreakMinutes: "Short break",
	store.KeyLongBreakMinutes:  "Long break",
	store.KeyLongBreakInterval: "Long break every",
	store.KeyLongBreakEnabled:  "Long breaks",
	store.KeyAutoStartBreak:    "Auto-start breaks",
	store.KeyAutoStartWork:     "Auto-start work",
	store.KeySoundEnabled:      "Sound",
	store.KeySoundVolume:       "Volume",
	store.KeyDesktopNotify:     "Desktop notifications",
}

type settingsModel struct {
	store  *store.Store
	engine *timer.Engine
	width  int
	height int

	values     map[string]string
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	work          *string
	shortBreak    *string
	longBreak     *string
	interval      *string
	volume        *string
	longEnabled   *bool
	autoBreak     *bool
	autoWork      *bool
	sound         *bool
	desktopNotify *bool
}

func newSettingsModel(s *store.Store, e *timer.Engine) settingsModel {
	var w, sb, lb, iv, vol string
	var le, ab, aw, snd, dn bool
	return settingsModel{
		store:         s,
		engine:        e,
		work:          &w,
		shortBreak:    &sb,
		longBreak:     &lb,
		interval:      &iv,
		volume:        &vol,
		longEnabled:   &le,
		autoBreak:     &ab,
		autoWork:      &aw,
		sound:         &snd,
		desktopNotify: &dn,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	values map[string]string
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		all, _ := s.store.GetAllSettings()
		values := make(map[string]string, len(all))
		for _, st := range all {
			values[st.Key] = st.Value
		}
		return settingsDataMsg{values: values}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.values = msg.values
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		case key.Matches(msg, keys.Reset):
			if err := s.store.ResetSettings(); err != nil {
				return s, func() tea.Msg { return errStatus("Reset settings: %v", err) }
			}
			s.engine.SettingsChanged()
			return s, tea.Batch(s.refresh(), func() tea.Msg { return statusMsg{text: "Settings reset to defaults"} })
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	ts, _ := s.store.LoadSettings()
	*s.work = strconv.Itoa(ts.WorkMinutes)
	*s.shortBreak = strconv.Itoa(ts.ShortBreakMinutes)
	*s.longBreak = strconv.Itoa(ts.LongBreakMinutes)
	*s.interval = strconv.Itoa(ts.LongBreakInterval)
	*s.volume = strconv.Itoa(ts.SoundVolume)
	*s.longEnabled = ts.LongBreakEnabled
	*s.autoBreak = ts.AutoStartBreak
	*s.autoWork = ts.AutoStartWork
	*s.sound = ts.SoundEnabled
	*s.desktopNotify = ts.DesktopNotify

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work (min)").Value(s.work).Validate(intBetween(1, 180)),
			huh.NewInput().Title("Short break (min)").Value(s.shortBreak).Validate(intBetween(1, 60)),
			huh.NewInput().Title("Long break (min)").Value(s.longBreak).Validate(intBetween(1, 120)),
			huh.NewConfirm().Title("Long breaks").Affirmative("On").Negative("Off").Value(s.longEnabled),
			huh.NewInput().Title("Pomodoros before long break").Value(s.interval).Validate(intBetween(1, 12)),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewConfirm().Title("Auto-start breaks").Affirmative("On").Negative("Off").Value(s.autoBreak),
			huh.NewConfirm().Title("Auto-start work").Affirmative("On").Negative("Off").Value(s.autoWork),
		).Title("Automation"),
		huh.NewGroup(
			huh.NewConfirm().Title("Sound").Affirmative("On").Negative("Off").Value(s.sound),
			huh.NewInput().Title("Volume (0-100)").Value(s.volume).Validate(intBetween(0, 100)),
			huh.NewConfirm().Title("Desktop notifications").Affirmative("On").Negative("Off").Value(s.desktopNotify),
		).Title("Notifications"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, tea.Batch(s.saveSettings(), s.refresh())
	}

	return s, cmd
}

func (s settingsModel) formSettings() timer.Settings {
	atoi := func(v string) int {
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return timer.Settings{
		WorkMinutes:       atoi(*s.work),
		ShortBreakMinutes: atoi(*s.shortBreak),
		LongBreakMinutes:  atoi(*s.longBreak),
		LongBreakInterval: atoi(*s.interval),
		LongBreakEnabled:  *s.longEnabled,
		AutoStartBreak:    *s.autoBreak,
		AutoStartWork:     *s.autoWork,
		SoundEnabled:      *s.sound,
		SoundVolume:       atoi(*s.volume),
		DesktopNotify:     *s.desktopNotify,
	}
}

// saveSettings persists the form and lets the engine pick up new durations.
func (s settingsModel) saveSettings() tea.Cmd {
	if err := s.store.SaveSettings(s.formSettings()); err != nil {
		return func() tea.Msg { return errStatus("Save settings: %v", err) }
	}
	s.engine.SettingsChanged()
	return func() tea.Msg { return statusMsg{text: "Settings saved"} }
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("enter: edit settings  r: reset to defaults")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, k := range store.SettingKeys {
		v, ok := s.values[k]
		if !ok {
			continue
		}
		label := lipgloss.NewStyle().Width(24).Render(settingLabels[k])
		value := highlightStyle.Render(formatSettingValue(k, v))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.KeyWorkMinutes, store.KeyShortBreakMinutes, store.KeyLongBreakMinutes:
		return v + " min"
	case store.KeyLongBreakInterval:
		return v + " pomodoros"
	case store.KeySoundVolume:
		return v + "%"
	case store.KeyLongBreakEnabled, store.KeyAutoStartBreak, store.KeyAutoStartWork,
		store.KeySoundEnabled, store.KeyDesktopNotify:
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				return "on"
			}
			return "off"
		}
	}
	return v
}
