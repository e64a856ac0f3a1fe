// Package notify delivers the end-of-interval cues: a terminal bell and a
// short beep pattern when sound is enabled, and a desktop notification.
package notify

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/sadopc/pomo/internal/timer"
)

type message struct {
	title string
	body  string
}

var messages = map[timer.Mode]message{
	timer.Work:       {"Pomodoro complete!", "Nice work. Time for a break."},
	timer.ShortBreak: {"Short break over", "Feeling refreshed? Let's start the next pomodoro."},
	timer.LongBreak:  {"Long break over", "Well rested. Time to start a new cycle."},
}

// tone is one step of the beep pattern.
type tone struct {
	freq  float64
	ms    int
	pause time.Duration
}

var pattern = []tone{
	{800, 100, 100 * time.Millisecond},
	{800, 100, 100 * time.Millisecond},
	{1000, 300, 0},
}

// Notifier implements timer.Notifier.
type Notifier struct {
	bell   io.Writer
	beep   func(freq float64, ms int) error
	notify func(title, body string) error
	sleep  func(time.Duration)
	run    func(func())
	logger *log.Logger
}

// New returns a notifier that rings the bell on bell, or on stdout when bell
// is nil. Writes to bell come from the UI goroutine, so it should be the same
// serialized writer the UI renders to.
func New(logger *log.Logger, bell io.Writer) *Notifier {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if bell == nil {
		bell = os.Stdout
	}
	return &Notifier{
		bell: bell,
		beep: beeep.Beep,
		notify: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
		sleep:  time.Sleep,
		run:    func(f func()) { go f() },
		logger: logger,
	}
}

// Notify fires every enabled cue for the interval that just finished. It
// returns immediately; the beep pattern and the desktop notification run in
// the background.
func (n *Notifier) Notify(finished timer.Mode, s timer.Settings) {
	sound := s.SoundEnabled && s.SoundVolume > 0
	if sound {
		if _, err := io.WriteString(n.bell, "\a"); err != nil {
			n.logger.Printf("bell: %v", err)
		}
	}
	if !sound && !s.DesktopNotify {
		return
	}
	msg := messages[finished]
	n.run(func() {
		if s.DesktopNotify {
			if err := n.notify(msg.title, msg.body); err != nil {
				n.logger.Printf("desktop notification: %v", err)
			}
		}
		if sound {
			n.playPattern()
		}
	})
}

func (n *Notifier) playPattern() {
	for _, t := range pattern {
		if err := n.beep(t.freq, t.ms); err != nil {
			n.logger.Printf("beep: %v", err)
			return
		}
		if t.pause > 0 {
			n.sleep(t.pause)
		}
	}
}
