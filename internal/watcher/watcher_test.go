package watcher

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/run-ticker/internal/console"
	"github.com/ensigniasec/run-ticker/internal/menu"
	"github.com/ensigniasec/run-ticker/internal/settings"
)

type fakeKeys struct {
	mu       sync.Mutex
	pending  []console.Key
	suspends int
	resumes  int
	raw      bool
}

func newFakeKeys(keys ...console.Key) *fakeKeys {
	return &fakeKeys{pending: keys, raw: true}
}

func (f *fakeKeys) Poll() (console.Key, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return 0, false
	}
	k := f.pending[0]
	f.pending = f.pending[1:]
	return k, true
}

func (f *fakeKeys) DiscardLine() {}

func (f *fakeKeys) Suspend() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suspends++
	f.raw = false
	return nil
}

func (f *fakeKeys) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes++
	f.raw = true
	return nil
}

// scriptedMenu replays one action per session, the way the real menu would leave the settings.
type scriptedMenu struct {
	s       *settings.Settings
	actions []func(s *settings.Settings) menu.Outcome
	calls   int
	rawSeen []bool
	keys    *fakeKeys
}

func (m *scriptedMenu) Run(context.Context) menu.Outcome {
	m.keys.mu.Lock()
	m.rawSeen = append(m.rawSeen, m.keys.raw)
	m.keys.mu.Unlock()
	a := m.actions[m.calls]
	m.calls++
	return a(m.s)
}

func commitWith(v settings.Values) func(*settings.Settings) menu.Outcome {
	return func(s *settings.Settings) menu.Outcome {
		_ = s.Set(v)
		s.MarkChanged()
		return menu.OutcomeCommitted
	}
}

func quit(s *settings.Settings) menu.Outcome {
	s.RequestExit()
	return menu.OutcomeQuit
}

type fakeTimer struct {
	mu      sync.Mutex
	periods []int
	err     error
}

func (f *fakeTimer) Rebind(p int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.periods = append(f.periods, p)
	return nil
}

type harness struct {
	s     *settings.Settings
	keys  *fakeKeys
	menu  *scriptedMenu
	timer *fakeTimer
	runs  []settings.Values
	w     *Watcher
}

func newHarness(t *testing.T, keys []console.Key, actions ...func(*settings.Settings) menu.Outcome) *harness {
	t.Helper()
	s, err := settings.New(settings.Values{Threshold: 5, Interval: 1})
	require.NoError(t, err)
	h := &harness{s: s, keys: newFakeKeys(keys...), timer: &fakeTimer{}}
	h.menu = &scriptedMenu{s: s, actions: actions, keys: h.keys}
	job := func(context.Context) { h.runs = append(h.runs, s.Snapshot()) }
	h.w = New(h.keys, h.menu, h.timer, s, job, WithPollDelay(time.Millisecond))
	return h
}

func TestRun_QuitDoesNotRunJob(t *testing.T) {
	h := newHarness(t, []console.Key{'m'}, quit)

	require.NoError(t, h.w.Run(context.Background()))
	assert.Empty(t, h.runs)
	assert.Empty(t, h.timer.periods)
	assert.True(t, h.s.ExitRequested())
}

func TestRun_CommitRebindsThenRunsJob(t *testing.T) {
	newValues := settings.Values{Threshold: 2.5, Interval: 5}
	h := newHarness(t, []console.Key{'x', 'M', 'm'}, commitWith(newValues), quit)

	require.NoError(t, h.w.Run(context.Background()))

	assert.Equal(t, []int{5}, h.timer.periods)
	assert.False(t, h.s.Changed(), "the change signal is consumed after rebinding")
	require.Len(t, h.runs, 1)
	assert.Equal(t, newValues, h.runs[0])
	assert.Equal(t, 2, h.menu.calls, "upper-case M also opens the menu")
}

func TestRun_CommitWithoutChangeStillRunsJob(t *testing.T) {
	noChange := func(*settings.Settings) menu.Outcome { return menu.OutcomeCommitted }
	h := newHarness(t, []console.Key{'m', 'm'}, noChange, quit)

	require.NoError(t, h.w.Run(context.Background()))
	assert.Empty(t, h.timer.periods)
	assert.Len(t, h.runs, 1)
}

func TestRun_RebindFailureKeepsSignal(t *testing.T) {
	h := newHarness(t, []console.Key{'m', 'm'}, commitWith(settings.Values{Threshold: 5, Interval: 3}), quit)
	h.timer.err = errors.New("not started")

	require.NoError(t, h.w.Run(context.Background()))
	assert.True(t, h.s.Changed())
	assert.Len(t, h.runs, 1)
}

func TestRun_BusyMenuIsIgnored(t *testing.T) {
	busy := func(*settings.Settings) menu.Outcome { return menu.OutcomeBusy }
	h := newHarness(t, []console.Key{'m', 'm'}, busy, quit)

	require.NoError(t, h.w.Run(context.Background()))
	assert.Empty(t, h.runs)
}

func TestRun_SuspendsRawModeAroundMenu(t *testing.T) {
	h := newHarness(t, []console.Key{'m'}, quit)

	require.NoError(t, h.w.Run(context.Background()))
	assert.Equal(t, []bool{false}, h.menu.rawSeen)
	assert.Equal(t, 1, h.keys.suspends)
	assert.Equal(t, 1, h.keys.resumes)
}

func TestRun_InterruptKey(t *testing.T) {
	h := newHarness(t, []console.Key{console.KeyCtrlC, 'm'}, quit)

	require.ErrorIs(t, h.w.Run(context.Background()), ErrInterrupted)
	assert.Zero(t, h.menu.calls)
}

func TestRun_ContextCancel(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, h.w.Run(ctx), context.DeadlineExceeded)
	assert.Empty(t, h.runs)
}

func TestRun_LineBufferedInputDrivesRealMenu(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		runs      int
		periods   []int
		threshold float64
	}{
		{name: "open and quit", input: "m\n5\n", threshold: 5},
		{name: "commit then quit", input: "m\n1\n2.5\n4\nm\n5\n", runs: 1, periods: []int{1}, threshold: 2.5},
		{name: "other lines ignored", input: "x\n\nm\n2\n3\n4\nm\n5\n", runs: 1, periods: []int{3}, threshold: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := settings.New(settings.Values{Threshold: 5, Interval: 1})
			require.NoError(t, err)
			con := console.New(strings.NewReader(tt.input))
			var out bytes.Buffer
			m := menu.New(s, con.Reader(), &out, menu.WithPauses(0, 0))
			timer := &fakeTimer{}
			runs := 0
			w := New(con, m, timer, s, func(context.Context) { runs++ }, WithPollDelay(time.Millisecond))

			require.NoError(t, w.Run(context.Background()))

			text := out.String()
			assert.NotContains(t, text, "Invalid choice")
			assert.Contains(t, text, "Exiting application...")
			assert.Equal(t, tt.runs, runs)
			assert.Equal(t, tt.periods, timer.periods)
			assert.InDelta(t, tt.threshold, s.Snapshot().Threshold, 0)
		})
	}
}
