package store

import (
	"io"
	"log"

	"github.com/sadopc/pomo/internal/timer"
)

// Collaborators adapts the store to the timer engine. The engine does not
// wait on or inspect persistence, so every error is logged and dropped here.
type Collaborators struct {
	store  *Store
	logger *log.Logger
}

func (s *Store) Collaborators(logger *log.Logger) *Collaborators {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Collaborators{store: s, logger: logger}
}

// Settings returns the stored settings with the active task's override
// applied.
func (c *Collaborators) Settings() timer.Settings {
	ts, err := c.store.LoadSettings()
	if err != nil {
		c.logger.Printf("load settings: %v", err)
	}
	id := c.ActiveTask()
	if id == "" {
		return ts
	}
	t, err := c.store.GetTask(id)
	if err != nil {
		c.logger.Printf("load active task: %v", err)
		return ts
	}
	return ts.Apply(t.Override)
}

func (c *Collaborators) ActiveTask() string {
	id, err := c.store.ActiveTask()
	if err != nil {
		c.logger.Printf("active task: %v", err)
	}
	return id
}

func (c *Collaborators) SetActiveTask(id string) {
	if err := c.store.SetActiveTask(id); err != nil {
		c.logger.Printf("set active task: %v", err)
	}
}

func (c *Collaborators) IncrementActual(id string) {
	if err := c.store.IncrementTaskActual(id); err != nil {
		c.logger.Printf("increment task: %v", err)
	}
}

func (c *Collaborators) Append(rec timer.Session) {
	if err := c.store.AppendSession(rec); err != nil {
		c.logger.Printf("append session: %v", err)
	}
}

// Observe persists the restartable timer state. Subscribe it to the engine.
func (c *Collaborators) Observe(ev timer.Event) {
	switch ev.Kind {
	case timer.EventModeChanged, timer.EventReset, timer.EventCompleted:
		if err := c.store.SaveTimerState(ev.State); err != nil {
			c.logger.Printf("save timer state: %v", err)
		}
	}
}
