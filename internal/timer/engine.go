// Package timer implements the Pomodoro countdown state machine.
//
// The engine is single-threaded: every method must be called from the same
// goroutine (the UI event loop). It never blocks and never fails; storage and
// notification side effects are handed to collaborators that are expected to
// swallow their own errors.
package timer

import (
	"strconv"
	"time"
)

// State is the observable timer state.
type State struct {
	Mode          Mode
	Remaining     int // seconds
	Running       bool
	CompletedWork int
}

// Session is the immutable record of one completed interval.
type Session struct {
	ID        string
	Mode      Mode
	Minutes   int
	TaskID    string // empty when no task was active
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration is the configured length of the session.
func (s Session) Duration() time.Duration {
	return time.Duration(s.Minutes) * time.Minute
}

type EventKind int

const (
	EventStarted EventKind = iota
	EventPaused
	EventTick
	EventModeChanged
	EventReset
	EventReconciled
	EventCompleted
	EventSettingsChanged
)

// Event is delivered to observers after every state mutation.
type Event struct {
	Kind    EventKind
	State   State
	Session *Session // set for EventCompleted
}

// SettingsSource yields the settings in effect right now.
type SettingsSource interface {
	Settings() Settings
}

// TaskTracker exposes the active task and its completion counter.
type TaskTracker interface {
	ActiveTask() string
	SetActiveTask(id string)
	IncrementActual(id string)
}

// SessionLog receives one record per completed interval.
type SessionLog interface {
	Append(Session)
}

// Notifier fires every enabled cue for the interval that just finished.
type Notifier interface {
	Notify(finished Mode, s Settings)
}

type Observer func(Event)

// Options configures New. Only Settings is required.
type Options struct {
	Settings SettingsSource
	Tasks    TaskTracker
	Log      SessionLog
	Notifier Notifier
	Now      func() time.Time
	NewID    func() string

	// Restore resumes Mode and CompletedWork from a previous run.
	Restore *State
}

// suspension is the wall-clock mark taken when the host goes to background.
type suspension struct {
	at        time.Time
	remaining int
}

type Engine struct {
	settings SettingsSource
	tasks    TaskTracker
	log      SessionLog
	notifier Notifier
	now      func() time.Time
	newID    func() string

	state  State
	hidden bool
	mark   *suspension

	observers map[int]Observer
	nextObs   int
}

func New(opts Options) *Engine {
	e := &Engine{
		settings:  opts.Settings,
		tasks:     opts.Tasks,
		log:       opts.Log,
		notifier:  opts.Notifier,
		now:       opts.Now,
		newID:     opts.NewID,
		observers: make(map[int]Observer),
	}
	if e.settings == nil {
		e.settings = staticSettings(DefaultSettings())
	}
	if e.tasks == nil {
		e.tasks = &noTasks{}
	}
	if e.log == nil {
		e.log = discardLog{}
	}
	if e.notifier == nil {
		e.notifier = silent{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = func() string { return strconv.FormatInt(e.now().UnixNano(), 36) }
	}

	if r := opts.Restore; r != nil {
		e.state.Mode = r.Mode
		e.state.CompletedWork = r.CompletedWork
	}
	e.state.Remaining = e.duration(e.state.Mode)
	return e
}

func (e *Engine) State() State { return e.state }

// Settings returns the settings currently in effect.
func (e *Engine) Settings() Settings { return e.settings.Settings() }

// Duration is the configured length of the current mode in seconds.
func (e *Engine) Duration() int { return e.duration(e.state.Mode) }

// Subscribe registers o and returns a function that removes it.
func (e *Engine) Subscribe(o Observer) (unsubscribe func()) {
	id := e.nextObs
	e.nextObs++
	e.observers[id] = o
	return func() { delete(e.observers, id) }
}

// Start begins or resumes the countdown. An exhausted countdown is reloaded
// from the current mode's duration first.
func (e *Engine) Start() {
	if e.state.Running {
		return
	}
	if e.state.Remaining <= 0 {
		e.state.Remaining = e.duration(e.state.Mode)
	}
	if e.state.Remaining <= 0 {
		return
	}
	e.run()
	e.emit(EventStarted, nil)
}

func (e *Engine) Pause() {
	if !e.state.Running {
		return
	}
	e.state.Running = false
	e.mark = nil
	e.emit(EventPaused, nil)
}

func (e *Engine) Toggle() {
	if e.state.Running {
		e.Pause()
		return
	}
	e.Start()
}

// Reset reloads the current mode and clears the completed-work count.
func (e *Engine) Reset() {
	e.state.Remaining = e.duration(e.state.Mode)
	e.state.Running = false
	e.state.CompletedWork = 0
	e.mark = nil
	e.emit(EventReset, nil)
}

// SetMode switches to m with a fresh countdown and stops the timer.
func (e *Engine) SetMode(m Mode) {
	e.switchMode(m)
	e.emit(EventModeChanged, nil)
}

// Skip abandons the current interval and moves to the next mode without
// recording a session. The running flag is carried over.
func (e *Engine) Skip() {
	next := Work
	if e.state.Mode == Work {
		next = ShortBreak
	}
	wasRunning := e.state.Running
	e.switchMode(next)
	if wasRunning && e.state.Remaining > 0 {
		e.run()
	}
	e.emit(EventModeChanged, nil)
}

// StartTask makes id the active task and starts a work interval for it.
func (e *Engine) StartTask(id string) {
	e.tasks.SetActiveTask(id)
	e.switchMode(Work)
	e.emit(EventModeChanged, nil)
	e.Start()
}

// SettingsChanged must be called after the settings source was updated.
// An idle timer picks up the new duration; a running one is clamped to it.
func (e *Engine) SettingsChanged() {
	d := e.duration(e.state.Mode)
	if !e.state.Running || e.state.Remaining > d {
		e.state.Remaining = d
	}
	if e.mark != nil && e.mark.remaining > d {
		e.mark.remaining = d
	}
	if e.state.Running && e.state.Remaining == 0 {
		e.complete(e.now())
		return
	}
	e.emit(EventSettingsChanged, nil)
}

// Tick advances the countdown by one second. Ticks that arrive while the
// timer is not running are ignored.
func (e *Engine) Tick() {
	if !e.state.Running {
		return
	}
	if e.state.Remaining > 0 {
		e.state.Remaining--
	}
	// The tick that reaches zero is reported by EventCompleted.
	if e.state.Remaining == 0 {
		e.complete(e.now())
		return
	}
	e.emit(EventTick, nil)
}

// Background records a wall-clock mark so Foreground can recompute the
// countdown without trusting ticks delivered in between.
func (e *Engine) Background() {
	if e.hidden {
		return
	}
	e.hidden = true
	if e.state.Running {
		e.mark = &suspension{at: e.now(), remaining: e.state.Remaining}
	}
}

// Foreground reconciles the countdown against the mark taken by Background.
// An interval that fully elapsed while hidden completes immediately.
func (e *Engine) Foreground() {
	if !e.hidden {
		return
	}
	e.hidden = false
	m := e.mark
	e.mark = nil
	if m == nil || !e.state.Running {
		return
	}

	elapsed := int(e.now().Sub(m.at) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	reconciled := m.remaining - elapsed
	if reconciled < 0 {
		reconciled = 0
	}
	if reconciled == 0 {
		e.state.Remaining = 0
		e.complete(m.at.Add(time.Duration(m.remaining) * time.Second))
		return
	}
	if reconciled != e.state.Remaining {
		e.state.Remaining = reconciled
		e.emit(EventReconciled, nil)
	}
}

// Hidden reports whether the host is currently backgrounded.
func (e *Engine) Hidden() bool { return e.hidden }

// complete is only reachable from Running with Remaining == 0. It leaves
// Running before any side effect, so a second call for the same interval
// cannot happen.
func (e *Engine) complete(end time.Time) {
	s := e.settings.Settings()
	finished := e.state.Mode
	e.state.Running = false
	e.mark = nil

	taskID := e.tasks.ActiveTask()
	rec := Session{
		ID:        e.newID(),
		Mode:      finished,
		Minutes:   s.Minutes(finished),
		StartedAt: end.Add(-time.Duration(s.Duration(finished)) * time.Second),
		EndedAt:   end,
	}
	if finished == Work {
		rec.TaskID = taskID
	}
	e.log.Append(rec)

	var next Mode
	var autoStart bool
	if finished == Work {
		e.state.CompletedWork++
		if taskID != "" {
			e.tasks.IncrementActual(taskID)
		}
		next = ShortBreak
		if s.LongBreakEnabled && s.LongBreakInterval > 0 && e.state.CompletedWork%s.LongBreakInterval == 0 {
			next = LongBreak
		}
		autoStart = s.AutoStartBreak
	} else {
		next = Work
		autoStart = s.AutoStartWork
	}

	e.switchMode(next)
	if autoStart && e.state.Remaining > 0 {
		e.run()
	}

	e.notifier.Notify(finished, s)
	e.emit(EventCompleted, &rec)
}

func (e *Engine) switchMode(m Mode) {
	e.state.Mode = m
	e.state.Remaining = e.duration(m)
	e.state.Running = false
	e.mark = nil
}

func (e *Engine) run() {
	e.state.Running = true
	if e.hidden {
		e.mark = &suspension{at: e.now(), remaining: e.state.Remaining}
	}
}

func (e *Engine) duration(m Mode) int {
	return e.settings.Settings().Duration(m)
}

func (e *Engine) emit(kind EventKind, rec *Session) {
	if len(e.observers) == 0 {
		return
	}
	ev := Event{Kind: kind, State: e.state, Session: rec}
	for _, o := range e.observers {
		o(ev)
	}
}

type staticSettings Settings

func (s staticSettings) Settings() Settings { return Settings(s) }

type noTasks struct{ active string }

func (n *noTasks) ActiveTask() string      { return n.active }
func (n *noTasks) SetActiveTask(id string) { n.active = id }
func (n *noTasks) IncrementActual(string)  {}

type discardLog struct{}

func (discardLog) Append(Session) {}

type silent struct{}

func (silent) Notify(Mode, Settings) {}
