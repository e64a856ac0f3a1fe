package notify

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/pomo/internal/timer"
)

type recorder struct {
	bell    bytes.Buffer
	logs    bytes.Buffer
	beeps   []float64
	titles  []string
	beepErr error
}

func newTestNotifier(r *recorder) *Notifier {
	n := New(log.New(&r.logs, "", 0), &r.bell)
	n.beep = func(freq float64, ms int) error {
		r.beeps = append(r.beeps, freq)
		return r.beepErr
	}
	n.notify = func(title, body string) error {
		r.titles = append(r.titles, title)
		return nil
	}
	n.sleep = func(time.Duration) {}
	n.run = func(f func()) { f() }
	return n
}

func TestNotifyAllChannels(t *testing.T) {
	r := &recorder{}
	n := newTestNotifier(r)
	n.Notify(timer.Work, timer.DefaultSettings())

	if r.bell.String() != "\a" {
		t.Fatalf("expected one bell, got %q", r.bell.String())
	}
	if len(r.beeps) != 3 || r.beeps[2] != 1000 {
		t.Fatalf("unexpected beep pattern %v", r.beeps)
	}
	if len(r.titles) != 1 || r.titles[0] != messages[timer.Work].title {
		t.Fatalf("unexpected notifications %v", r.titles)
	}
}

func TestNotifyRespectsSettings(t *testing.T) {
	tests := []struct {
		name      string
		sound     bool
		volume    int
		desktop   bool
		wantBell  bool
		wantTitle bool
	}{
		{"sound off", false, 80, true, false, true},
		{"volume zero", true, 0, true, false, true},
		{"desktop off", true, 50, false, true, false},
		{"all off", false, 80, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			n := newTestNotifier(r)
			s := timer.DefaultSettings()
			s.SoundEnabled = tt.sound
			s.SoundVolume = tt.volume
			s.DesktopNotify = tt.desktop
			n.Notify(timer.ShortBreak, s)

			if got := r.bell.Len() > 0; got != tt.wantBell {
				t.Errorf("bell = %v, want %v", got, tt.wantBell)
			}
			if got := len(r.beeps) > 0; got != tt.wantBell {
				t.Errorf("beep = %v, want %v", got, tt.wantBell)
			}
			if got := len(r.titles) > 0; got != tt.wantTitle {
				t.Errorf("desktop = %v, want %v", got, tt.wantTitle)
			}
		})
	}
}

func TestNotifyMessagePerMode(t *testing.T) {
	for _, m := range []timer.Mode{timer.Work, timer.ShortBreak, timer.LongBreak} {
		r := &recorder{}
		n := newTestNotifier(r)
		n.Notify(m, timer.DefaultSettings())
		if len(r.titles) != 1 || r.titles[0] != messages[m].title {
			t.Errorf("%s: unexpected title %v", m, r.titles)
		}
	}
}

func TestNotifyLogsBeepFailure(t *testing.T) {
	r := &recorder{beepErr: errors.New("no audio device")}
	n := newTestNotifier(r)
	n.Notify(timer.Work, timer.DefaultSettings())

	if len(r.beeps) != 1 {
		t.Fatalf("pattern should stop after the first failure, got %d beeps", len(r.beeps))
	}
	if !strings.Contains(r.logs.String(), "no audio device") {
		t.Fatalf("expected logged error, got %q", r.logs.String())
	}
}

func TestNewDefaultsBellToStdout(t *testing.T) {
	n := New(nil, nil)
	if n.bell != os.Stdout {
		t.Fatal("bell should default to stdout")
	}
}
