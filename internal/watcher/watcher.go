// Package watcher runs the foreground loop that polls for the settings key, hands the terminal to
// the settings menu and applies what the menu left behind.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/run-ticker/internal/console"
	"github.com/ensigniasec/run-ticker/internal/menu"
	"github.com/ensigniasec/run-ticker/internal/settings"
)

const defaultPollDelay = 100 * time.Millisecond

// ErrInterrupted is returned when the user presses the interrupt key.
var ErrInterrupted = errors.New("interrupted")

// KeySource polls for single keypresses without blocking. Raw mode is suspended while the menu
// reads whole lines. DiscardLine drops what is left of a line-buffered key's line.
type KeySource interface {
	Poll() (console.Key, bool)
	DiscardLine()
	Suspend() error
	Resume() error
}

// Menu runs one blocking settings session.
type Menu interface {
	Run(ctx context.Context) menu.Outcome
}

// Rebinder replaces the refresh timer's period.
type Rebinder interface {
	Rebind(periodMinutes int) error
}

// Watcher ties the key source, the menu, the refresh timer and the refresh job together.
type Watcher struct {
	keys     KeySource
	menu     Menu
	timer    Rebinder
	settings *settings.Settings
	job      func(ctx context.Context)

	keymap    keyMap
	pollDelay time.Duration
}

// Option mutates Watcher configuration.
type Option func(*Watcher)

// WithPollDelay sets the pause between key polls.
func WithPollDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollDelay = d
		}
	}
}

// New returns a Watcher that opens m on the settings key, rebinds timer after committed
// changes and runs job after every menu session that did not quit.
func New(keys KeySource, m Menu, timer Rebinder, s *settings.Settings, job func(ctx context.Context), opts ...Option) *Watcher {
	w := &Watcher{
		keys:      keys,
		menu:      m,
		timer:     timer,
		settings:  s,
		job:       job,
		keymap:    newKeyMap(),
		pollDelay: defaultPollDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until the user quits from the menu (nil), presses the interrupt key
// (ErrInterrupted) or ctx is cancelled (ctx.Err()).
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollDelay)
	defer ticker.Stop()

	for {
		if k, ok := w.keys.Poll(); ok {
			switch {
			case key.Matches(k, w.keymap.Interrupt):
				return ErrInterrupted
			case key.Matches(k, w.keymap.Settings):
				if done, err := w.openMenu(ctx); done {
					return err
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// openMenu runs one menu session and reacts to its signals. It reports done when the watcher
// should stop.
func (w *Watcher) openMenu(ctx context.Context) (bool, error) {
	w.keys.DiscardLine()
	if err := w.keys.Suspend(); err != nil {
		return true, fmt.Errorf("suspend raw mode: %w", err)
	}
	outcome := w.menu.Run(ctx)
	if err := w.keys.Resume(); err != nil {
		return true, fmt.Errorf("resume raw mode: %w", err)
	}
	logrus.Debugf("settings menu closed: %s", outcome)

	if outcome == menu.OutcomeBusy {
		return false, nil
	}
	if w.settings.ExitRequested() {
		return true, nil
	}
	if w.settings.Changed() {
		interval := w.settings.Snapshot().Interval
		if err := w.timer.Rebind(interval); err != nil {
			// Leave the signal raised so the next menu exit retries.
			logrus.Warnf("could not apply refresh interval of %d minute(s): %v", interval, err)
		} else {
			w.settings.ConsumeChanged()
		}
	}
	w.job(ctx)
	return false, nil
}
