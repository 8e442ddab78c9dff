// Package settings holds the tracker's shared, mutable configuration and the one-shot signals
// exchanged between the settings menu, the input watcher and the refresh timer.
package settings

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ensigniasec/run-ticker/internal/validate"
)

// Defaults used when no flags are supplied.
const (
	DefaultThreshold = 5.0
	DefaultInterval  = 1
)

var (
	ErrNegativeThreshold = errors.New("threshold must be non-negative")
	ErrIntervalTooSmall  = errors.New("interval must be at least 1")
)

// Values is a consistent copy of the user-tunable fields.
type Values struct {
	Threshold float64 `json:"threshold" validate:"gte=0"`
	Interval  int     `json:"interval" validate:"gte=1"`
	AIEnabled bool    `json:"ai_enabled"`
}

// Validate checks v against its constraints and maps failures to the package sentinels.
func (v Values) Validate() error {
	if math.IsNaN(v.Threshold) || math.IsInf(v.Threshold, 0) {
		return fmt.Errorf("%w: got %v", ErrNegativeThreshold, v.Threshold)
	}
	if err := validate.Struct(v); err != nil {
		switch validate.FailedField(err) {
		case "Threshold":
			return fmt.Errorf("%w: got %v", ErrNegativeThreshold, v.Threshold)
		case "Interval":
			return fmt.Errorf("%w: got %d", ErrIntervalTooSmall, v.Interval)
		default:
			return err
		}
	}
	return nil
}

// Settings is shared between the menu, the watcher and the refresh job.
// Every field, including the signals, is guarded by mu.
type Settings struct {
	mu sync.Mutex

	values Values

	changed       bool
	exitRequested bool
	menuActive    bool
}

// New returns Settings seeded with the given values, or an error if any value is out of range.
func New(initial Values) (*Settings, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &Settings{values: initial}, nil
}

// Snapshot returns threshold, interval and the AI flag taken in one critical section.
func (s *Settings) Snapshot() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values
}

// SetThreshold updates the alert threshold. Negative values are rejected and leave state unchanged.
func (s *Settings) SetThreshold(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.values
	next.Threshold = v
	if err := next.Validate(); err != nil {
		return err
	}
	s.values = next
	return nil
}

// SetInterval updates the refresh interval in minutes. Values below 1 are rejected.
func (s *Settings) SetInterval(v int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.values
	next.Interval = v
	if err := next.Validate(); err != nil {
		return err
	}
	s.values = next
	return nil
}

// ToggleAI flips the AI flag and returns the new value.
func (s *Settings) ToggleAI() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.AIEnabled = !s.values.AIEnabled
	return s.values.AIEnabled
}

// Set replaces all values at once. Readers see either the previous or the new triple.
func (s *Settings) Set(v Values) error {
	if err := v.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.values = v
	s.mu.Unlock()
	return nil
}

// MarkChanged raises the settings-changed signal.
func (s *Settings) MarkChanged() {
	s.mu.Lock()
	s.changed = true
	s.mu.Unlock()
}

// Changed reports whether the settings-changed signal is raised.
func (s *Settings) Changed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// ConsumeChanged clears the settings-changed signal and reports whether it was raised.
// Clearing an already clear signal is a no-op.
func (s *Settings) ConsumeChanged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.changed
	s.changed = false
	return was
}

// RequestExit raises the terminal exit signal. It is never cleared.
func (s *Settings) RequestExit() {
	s.mu.Lock()
	s.exitRequested = true
	s.mu.Unlock()
}

// ExitRequested reports whether the user asked to quit.
func (s *Settings) ExitRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitRequested
}

// BeginMenu marks the menu as owning the terminal. It returns false if a menu is already active.
func (s *Settings) BeginMenu() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.menuActive {
		return false
	}
	s.menuActive = true
	return true
}

// EndMenu releases the terminal.
func (s *Settings) EndMenu() {
	s.mu.Lock()
	s.menuActive = false
	s.mu.Unlock()
}

// MenuActive reports whether the settings menu currently owns the terminal.
func (s *Settings) MenuActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menuActive
}
