package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sadopc/pomo/internal/notify"
	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
	"github.com/sadopc/pomo/internal/tui"
	"github.com/spf13/cobra"
)

// runLaunch starts the interactive timer. The UI owns the terminal, so
// everything is logged to a file.
func runLaunch(cmd *cobra.Command, o *options) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := tea.LogToFile(cfg.LogPath, "pomo")
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	logger := log.Default()
	if cfg.Debug {
		logger.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	s, err := store.Open(cfg.DBPath)
	if s == nil {
		return err
	}
	if err != nil {
		logger.Printf("storage unavailable, using memory: %v", err)
	}
	defer s.Close()

	out := &terminalOutput{File: os.Stdout}
	e, err := newEngine(s, notify.New(logger, out), logger)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewApp(s, e), tea.WithOutput(out), tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// newEngine builds the timer engine on top of s, resuming the mode and
// completed-work count saved by the previous run.
func newEngine(s *store.Store, n timer.Notifier, logger *log.Logger) (*timer.Engine, error) {
	restore, err := s.LoadTimerState()
	if err != nil {
		return nil, fmt.Errorf("load timer state: %w", err)
	}
	c := s.Collaborators(logger)
	e := timer.New(timer.Options{
		Settings: c,
		Tasks:    c,
		Log:      c,
		Notifier: n,
		NewID:    uuid.NewString,
		Restore:  restore,
	})
	e.Subscribe(c.Observe)
	return e, nil
}

// terminalOutput serializes writes to the terminal so the bell never lands
// inside a frame the renderer is writing. The embedded file keeps Fd and Read
// available for terminal detection.
type terminalOutput struct {
	*os.File
	mu sync.Mutex
}

func (t *terminalOutput) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.File.Write(p)
}
