package store

import (
	"bytes"
	"database/sql"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/pomo/internal/timer"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// appendWork is a test helper that logs a work session ending at end.
func appendWork(t *testing.T, s *Store, taskID string, end time.Time, minutes int) {
	t.Helper()
	err := s.AppendSession(timer.Session{
		Mode:      timer.Work,
		Minutes:   minutes,
		TaskID:    taskID,
		StartedAt: end.Add(-time.Duration(minutes) * time.Minute),
		EndedAt:   end,
	})
	if err != nil {
		t.Fatalf("append session: %v", err)
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
	if s.MigrationNotice() != "" {
		t.Fatalf("fresh database should have no notice, got %q", s.MigrationNotice())
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/pomo.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen, should not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if s2.MigrationNotice() != "" {
		t.Fatal("reopening a current database should not produce a notice")
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, filepath.Join("pomo", "pomo.db")) {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestMigrationFromV1ResetsSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pomo.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting(KeyWorkMinutes, "1"); err != nil {
		t.Fatal(err)
	}
	task, err := s.CreateTask("keep me", 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec("PRAGMA user_version = 1"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	if s2.MigrationNotice() == "" {
		t.Fatal("expected a migration notice")
	}
	ts, _ := s2.LoadSettings()
	if ts != timer.DefaultSettings() {
		t.Fatalf("settings should be reset, got %+v", ts)
	}
	if _, err := s2.GetTask(task.ID); err != nil {
		t.Fatalf("tasks must survive migration: %v", err)
	}
}

func TestMigrationFromUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pomo.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.SetSetting(KeyShortBreakMinutes, "9")
	s.db.Exec("PRAGMA user_version = 99")
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	if s2.MigrationNotice() != noticeUnknown {
		t.Fatalf("unexpected notice %q", s2.MigrationNotice())
	}
	v, _ := s2.GetSetting(KeyShortBreakMinutes)
	if v != "5" {
		t.Fatalf("expected reset to 5, got %s", v)
	}
	var version int
	s2.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("version should be rewritten to %d, got %d", currentVersion, version)
	}
}

func TestOpenFallsBackToMemory(t *testing.T) {
	dir := t.TempDir()
	// A directory where the database file should be makes the open fail.
	path := filepath.Join(dir, "blocked")
	if err := os.MkdirAll(filepath.Join(path, "pomo.db"), 0o755); err != nil {
		t.Fatal(err)
	}

	s, err := Open(filepath.Join(path, "pomo.db"))
	if err == nil {
		t.Fatal("expected the original error to be returned")
	}
	if s == nil {
		t.Fatal("expected an in-memory fallback store")
	}
	defer s.Close()
	if s.MigrationNotice() != noticeMemory {
		t.Fatalf("unexpected notice %q", s.MigrationNotice())
	}
	if _, err := s.CreateTask("still works", 1); err != nil {
		t.Fatalf("fallback store should be usable: %v", err)
	}
}

// ============================================================
// Settings
// ============================================================

func TestDefaultSettingsSeeded(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(SettingKeys) {
		t.Fatalf("expected %d settings, got %d", len(SettingKeys), len(all))
	}
	ts, err := s.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if ts != timer.DefaultSettings() {
		t.Fatalf("unexpected defaults: %+v", ts)
	}
}

func TestSaveAndLoadSettings(t *testing.T) {
	s := newTestStore(t)
	ts := timer.DefaultSettings()
	ts.WorkMinutes = 50
	ts.LongBreakEnabled = true
	ts.SoundVolume = 10
	if err := s.SaveSettings(ts); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got != ts {
		t.Fatalf("got %+v, want %+v", got, ts)
	}
}

func TestSaveSettingsValidates(t *testing.T) {
	s := newTestStore(t)
	ts := timer.DefaultSettings()
	ts.WorkMinutes = 0
	err := s.SaveSettings(ts)
	if !errors.Is(err, timer.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
	v, _ := s.GetSetting(KeyWorkMinutes)
	if v != "25" {
		t.Fatalf("invalid settings must not be written, got %s", v)
	}
}

func TestLoadSettingsIgnoresGarbage(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(KeyWorkMinutes, "lots")
	s.SetSetting(KeyAutoStartBreak, "maybe")
	ts, err := s.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if ts.WorkMinutes != 25 || !ts.AutoStartBreak {
		t.Fatalf("garbage should fall back to defaults: %+v", ts)
	}
}

func TestUpdateSetting(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{KeyWorkMinutes, "30", false},
		{KeyLongBreakEnabled, "true", false},
		{KeyWorkMinutes, "abc", true},
		{KeyWorkMinutes, "0", true},
		{"no_such_key", "1", true},
	}
	for _, tt := range tests {
		err := s.UpdateSetting(tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("UpdateSetting(%q, %q) err = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
		}
	}
	ts, _ := s.LoadSettings()
	if ts.WorkMinutes != 30 || !ts.LongBreakEnabled {
		t.Fatalf("updates not applied: %+v", ts)
	}
}

func TestResetSettings(t *testing.T) {
	s := newTestStore(t)
	s.UpdateSetting(KeyWorkMinutes, "45")
	if err := s.ResetSettings(); err != nil {
		t.Fatal(err)
	}
	ts, _ := s.LoadSettings()
	if ts.WorkMinutes != 25 {
		t.Fatalf("expected 25 after reset, got %d", ts.WorkMinutes)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

// ============================================================
// Tasks
// ============================================================

func TestCreateAndGetTask(t *testing.T) {
	s := newTestStore(t)
	task, err := s.CreateTask("Write report", 3)
	if err != nil {
		t.Fatal(err)
	}
	if task.ID == "" {
		t.Fatal("expected an id")
	}
	if task.Title != "Write report" || task.Estimated != 3 || task.Actual != 0 {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.Completed || task.CompletedAt != nil {
		t.Fatal("new task should be open")
	}
	if task.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}
	if task.Override != nil {
		t.Fatal("new task has no override")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateTask("", 1); err == nil {
		t.Fatal("expected error for empty title")
	}
	task, err := s.CreateTask("min estimate", 0)
	if err != nil {
		t.Fatal(err)
	}
	if task.Estimated != 1 {
		t.Fatalf("estimate should be clamped to 1, got %d", task.Estimated)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTask("missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListTasks(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateTask("A", 1)
	s.CreateTask("B", 1)
	s.ToggleTaskComplete(a.ID)

	open, err := s.ListTasks(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 1 || open[0].Title != "B" {
		t.Fatalf("expected only B, got %+v", open)
	}

	all, _ := s.ListTasks(true)
	if len(all) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(all))
	}
	if all[0].Title != "B" {
		t.Fatal("open tasks should sort first")
	}
}

func TestUpdateTask(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("Old", 1)
	if err := s.UpdateTask(task.ID, "New", 4); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetTask(task.ID)
	if got.Title != "New" || got.Estimated != 4 {
		t.Fatalf("update not applied: %+v", got)
	}
	if err := s.UpdateTask("missing", "x", 1); err == nil {
		t.Fatal("expected error for missing task")
	}
}

func TestToggleTaskComplete(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("T", 1)

	done, err := s.ToggleTaskComplete(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !done.Completed || done.CompletedAt == nil {
		t.Fatalf("task should be completed: %+v", done)
	}

	undone, _ := s.ToggleTaskComplete(task.ID)
	if undone.Completed || undone.CompletedAt != nil {
		t.Fatalf("task should be reopened: %+v", undone)
	}
}

func TestTaskOverride(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("Deep work", 2)
	work := 50
	off := false
	o := &timer.Override{WorkMinutes: &work, AutoStartBreak: &off}
	if err := s.SetTaskOverride(task.ID, o); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetTask(task.ID)
	if got.Override == nil || *got.Override.WorkMinutes != 50 || *got.Override.AutoStartBreak {
		t.Fatalf("override not stored: %+v", got.Override)
	}

	if err := s.SetTaskOverride(task.ID, &timer.Override{}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetTask(task.ID)
	if got.Override != nil {
		t.Fatal("empty override should clear")
	}
}

func TestDeleteTaskClearsActive(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateTask("A", 1)
	b, _ := s.CreateTask("B", 1)

	s.SetActiveTask(a.ID)
	if err := s.DeleteTask(b.ID); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.ActiveTask(); got != a.ID {
		t.Fatal("deleting another task must keep the active one")
	}

	if err := s.DeleteTask(a.ID); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.ActiveTask(); got != "" {
		t.Fatalf("active task should be cleared, got %q", got)
	}
	if err := s.DeleteTask(a.ID); err == nil {
		t.Fatal("deleting twice should fail")
	}
}

func TestIncrementTaskActual(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("T", 2)
	s.IncrementTaskActual(task.ID)
	s.IncrementTaskActual(task.ID)
	got, _ := s.GetTask(task.ID)
	if got.Actual != 2 {
		t.Fatalf("expected 2, got %d", got.Actual)
	}
}

func TestActiveTaskDefaultEmpty(t *testing.T) {
	s := newTestStore(t)
	id, err := s.ActiveTask()
	if err != nil {
		t.Fatal(err)
	}
	if id != "" {
		t.Fatalf("expected no active task, got %q", id)
	}
}

// ============================================================
// Sessions
// ============================================================

func TestAppendAndListSessions(t *testing.T) {
	s := newTestStore(t)
	end := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	appendWork(t, s, "task-1", end, 25)
	err := s.AppendSession(timer.Session{
		ID:        "brk",
		Mode:      timer.ShortBreak,
		Minutes:   5,
		StartedAt: end,
		EndedAt:   end.Add(5 * time.Minute),
	})
	if err != nil {
		t.Fatal(err)
	}

	all, err := s.ListSessions(SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(all))
	}
	if all[0].ID != "brk" || all[0].Mode != timer.ShortBreak || all[0].TaskID != "" {
		t.Fatalf("newest first expected: %+v", all[0])
	}
	w := all[1]
	if w.Mode != timer.Work || w.Minutes != 25 || w.TaskID != "task-1" {
		t.Fatalf("unexpected work session: %+v", w)
	}
	if !w.EndedAt.Equal(end) || !w.StartedAt.Equal(end.Add(-25*time.Minute)) {
		t.Fatalf("timestamps not round-tripped: %+v", w)
	}
	if w.ID == "" {
		t.Fatal("missing id should be generated")
	}
}

func TestListSessionsFilter(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	appendWork(t, s, "a", day.Add(10*time.Hour), 25)
	appendWork(t, s, "b", day.Add(11*time.Hour), 25)
	appendWork(t, s, "a", day.Add(34*time.Hour), 25)

	task := "a"
	got, _ := s.ListSessions(SessionFilter{TaskID: &task})
	if len(got) != 2 {
		t.Fatalf("task filter: expected 2, got %d", len(got))
	}

	from, to := day, day.Add(24*time.Hour)
	got, _ = s.ListSessions(SessionFilter{From: &from, To: &to})
	if len(got) != 2 {
		t.Fatalf("date filter: expected 2, got %d", len(got))
	}

	mode := timer.ShortBreak
	got, _ = s.ListSessions(SessionFilter{Mode: &mode})
	if len(got) != 0 {
		t.Fatalf("mode filter: expected 0, got %d", len(got))
	}

	got, _ = s.ListSessions(SessionFilter{Limit: 1})
	if len(got) != 1 {
		t.Fatalf("limit: expected 1, got %d", len(got))
	}
}

func TestCountWorkSessions(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	appendWork(t, s, "", day.Add(9*time.Hour), 25)
	appendWork(t, s, "", day.Add(10*time.Hour), 50)
	s.AppendSession(timer.Session{Mode: timer.ShortBreak, Minutes: 5, StartedAt: day.Add(11 * time.Hour), EndedAt: day.Add(11 * time.Hour)})

	n, mins, err := s.CountWorkSessions(day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || mins != 75 {
		t.Fatalf("expected 2 sessions / 75 min, got %d / %d", n, mins)
	}
}

// ============================================================
// Timer state
// ============================================================

func TestTimerStateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	st, err := s.LoadTimerState()
	if err != nil {
		t.Fatal(err)
	}
	if st != nil {
		t.Fatal("no state expected on a fresh store")
	}

	if err := s.SaveTimerState(timer.State{Mode: timer.LongBreak, CompletedWork: 8, Remaining: 10, Running: true}); err != nil {
		t.Fatal(err)
	}
	st, err = s.LoadTimerState()
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode != timer.LongBreak || st.CompletedWork != 8 {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.Running || st.Remaining != 0 {
		t.Fatal("only mode and completed count are persisted")
	}
}

// ============================================================
// Engine collaborators
// ============================================================

func TestCollaboratorsDriveEngine(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("T", 4)
	ts := timer.DefaultSettings()
	ts.WorkMinutes = 1
	ts.AutoStartBreak = false
	s.SaveSettings(ts)

	c := s.Collaborators(nil)
	e := timer.New(timer.Options{Settings: c, Tasks: c, Log: c})
	e.Subscribe(c.Observe)

	e.StartTask(task.ID)
	for i := 0; i < 60; i++ {
		e.Tick()
	}

	got, _ := s.GetTask(task.ID)
	if got.Actual != 1 {
		t.Fatalf("task actual = %d, want 1", got.Actual)
	}
	sessions, _ := s.ListSessions(SessionFilter{})
	if len(sessions) != 1 || sessions[0].TaskID != task.ID {
		t.Fatalf("expected one session for the task, got %+v", sessions)
	}
	st, _ := s.LoadTimerState()
	if st == nil || st.Mode != timer.ShortBreak || st.CompletedWork != 1 {
		t.Fatalf("timer state not persisted: %+v", st)
	}
}

func TestCollaboratorsApplyTaskOverride(t *testing.T) {
	s := newTestStore(t)
	task, _ := s.CreateTask("Long focus", 1)
	work := 50
	s.SetTaskOverride(task.ID, &timer.Override{WorkMinutes: &work})

	c := s.Collaborators(nil)
	if c.Settings().WorkMinutes != 25 {
		t.Fatal("override must only apply while the task is active")
	}
	c.SetActiveTask(task.ID)
	if c.Settings().WorkMinutes != 50 {
		t.Fatalf("expected override 50, got %d", c.Settings().WorkMinutes)
	}
	stored, _ := s.LoadSettings()
	if stored.WorkMinutes != 25 {
		t.Fatal("override must not be written into the stored settings")
	}
}

func TestCollaboratorsLogErrors(t *testing.T) {
	s := newTestStore(t)
	var buf bytes.Buffer
	c := s.Collaborators(log.New(&buf, "", 0))
	s.Close()

	c.Append(timer.Session{Mode: timer.Work, Minutes: 25})
	c.IncrementActual("x")
	if !strings.Contains(buf.String(), "append session") {
		t.Fatalf("expected logged error, got %q", buf.String())
	}
}
