// Package scheduler provides the recurring refresh trigger for the market view.
//
// The trigger owns a single named job slot. Changing the refresh interval replaces the
// registration in that slot rather than adding a second one.
package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// JobName is the tag of the only job slot managed by the Timer.
const JobName = "market_update"

var (
	ErrNotStarted     = errors.New("timer not started")
	ErrAlreadyStarted = errors.New("timer already started")
	ErrInvalidPeriod  = errors.New("period must be at least 1")
)

// Timer runs a callback every N periods on gocron's own goroutines.
type Timer struct {
	mu     sync.Mutex
	cron   *gocron.Scheduler
	unit   time.Duration
	job    func()
	period int
	start  bool
	closed bool
}

// Option mutates Timer configuration.
type Option func(*Timer)

// WithUnit sets the length of one period. Defaults to a minute.
func WithUnit(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.unit = d
		}
	}
}

// WithLocation sets the scheduler's time zone. Defaults to the local zone.
func WithLocation(loc *time.Location) Option {
	return func(t *Timer) {
		if loc != nil {
			t.cron.ChangeLocation(loc)
		}
	}
}

// NewTimer creates a stopped Timer.
func NewTimer(opts ...Option) *Timer {
	cron := gocron.NewScheduler(time.Local)
	// One registration per tag, no firing at registration, no overlapping runs of the job.
	cron.TagsUnique()
	cron.WaitForScheduleAll()
	cron.SingletonModeAll()

	t := &Timer{cron: cron, unit: time.Minute}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start registers job to run every periodMinutes and starts the scheduler.
// The job is not run at registration time.
func (t *Timer) Start(periodMinutes int, job func()) error {
	if periodMinutes < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPeriod, periodMinutes)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.start || t.closed {
		return ErrAlreadyStarted
	}
	t.job = job
	if err := t.registerLocked(periodMinutes); err != nil {
		return err
	}
	t.cron.StartAsync()
	t.start = true
	logrus.Debugf("refresh timer started: every %d x %s", periodMinutes, t.unit)
	return nil
}

// Rebind replaces the job registration with one at the new period.
func (t *Timer) Rebind(periodMinutes int) error {
	if periodMinutes < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPeriod, periodMinutes)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.start || t.closed {
		return ErrNotStarted
	}
	if err := t.cron.RemoveByTag(JobName); err != nil && !errors.Is(err, gocron.ErrJobNotFoundWithTag) {
		return fmt.Errorf("remove %s: %w", JobName, err)
	}
	if err := t.registerLocked(periodMinutes); err != nil {
		return err
	}
	logrus.Debugf("refresh timer rebound: every %d x %s", periodMinutes, t.unit)
	return nil
}

// registerLocked adds the job under JobName. Caller must hold t.mu.
func (t *Timer) registerLocked(periodMinutes int) error {
	every := time.Duration(periodMinutes) * t.unit
	if _, err := t.cron.Every(every).Tag(JobName).Do(t.job); err != nil {
		return fmt.Errorf("register %s: %w", JobName, err)
	}
	t.period = periodMinutes
	return nil
}

// Stop cancels pending and future firings. Safe to call more than once.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.cron.Clear()
	t.cron.Stop()
	logrus.Debug("refresh timer stopped")
}

// Registrations returns the number of jobs registered under JobName.
func (t *Timer) Registrations() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	jobs, err := t.cron.FindJobsByTag(JobName)
	if err != nil {
		return 0
	}
	return len(jobs)
}

// Period returns the current period in units (minutes unless overridden).
func (t *Timer) Period() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period
}

// NextRun returns the next scheduled firing, or the zero time when nothing is registered.
func (t *Timer) NextRun() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	jobs, err := t.cron.FindJobsByTag(JobName)
	if err != nil || len(jobs) == 0 {
		return time.Time{}
	}
	return jobs[0].NextRun()
}
