package menu

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/run-ticker/internal/settings"
)

type pauses struct{ got []time.Duration }

func (p *pauses) sleep(d time.Duration) { p.got = append(p.got, d) }

func newMenu(t *testing.T, input string) (*Menu, *settings.Settings, *bytes.Buffer, *pauses) {
	t.Helper()
	s, err := settings.New(settings.Values{Threshold: settings.DefaultThreshold, Interval: settings.DefaultInterval})
	require.NoError(t, err)
	var out bytes.Buffer
	p := &pauses{}
	m := New(s, strings.NewReader(input), &out, WithPauses(3*time.Millisecond, time.Millisecond))
	m.sleep = p.sleep
	return m, s, &out, p
}

func TestRun_Quit(t *testing.T) {
	m, s, out, _ := newMenu(t, "5\n")

	assert.Equal(t, OutcomeQuit, m.Run(context.Background()))
	assert.True(t, s.ExitRequested())
	assert.False(t, s.MenuActive())
	assert.False(t, s.Changed())
	assert.Contains(t, out.String(), "Exiting application...")
}

func TestRun_CommitNewThreshold(t *testing.T) {
	m, s, out, _ := newMenu(t, "1\n2.5\n4\n")

	assert.Equal(t, OutcomeCommitted, m.Run(context.Background()))
	got := s.Snapshot()
	assert.InDelta(t, 2.5, got.Threshold, 0)
	assert.Equal(t, 1, got.Interval)
	assert.False(t, got.AIEnabled)
	assert.True(t, s.Changed())
	assert.False(t, s.MenuActive())
	assert.False(t, s.ExitRequested())
	assert.Contains(t, out.String(), "Threshold updated to 2.5%")
	assert.Contains(t, out.String(), "Applying changes")
}

func TestRun_UpdateIntervalAndToggleAI(t *testing.T) {
	m, s, out, _ := newMenu(t, "2\n10\n3\n3\n3\n4\n")

	assert.Equal(t, OutcomeCommitted, m.Run(context.Background()))
	got := s.Snapshot()
	assert.Equal(t, 10, got.Interval)
	assert.True(t, got.AIEnabled)
	assert.Contains(t, out.String(), "Interval updated to 10 minute(s)")
	assert.Contains(t, out.String(), "AI insights enabled")
	assert.Contains(t, out.String(), "AI insights disabled")
}

func TestRun_InvalidInputIsReportedInline(t *testing.T) {
	input := strings.Join([]string{
		"1", "abc", // not a number
		"1", "-1", // negative threshold
		"2", "1.5", // not a whole number
		"2", "0", // interval too small
		"9",  // unknown choice
		"",   // empty choice
		"4",
	}, "\n") + "\n"
	m, s, out, p := newMenu(t, input)

	assert.Equal(t, OutcomeCommitted, m.Run(context.Background()))
	assert.Equal(t, settings.Values{Threshold: 5, Interval: 1}, s.Snapshot())

	text := out.String()
	assert.Contains(t, text, "Invalid input. Please enter a number.")
	assert.Contains(t, text, "Threshold must be a positive number.")
	assert.Contains(t, text, "Please enter a whole number.")
	assert.Contains(t, text, "Interval must be at least 1 minute.")
	assert.Equal(t, 2, strings.Count(text, "Invalid choice. Please enter a number between 1 and 5."))

	// Six error pauses, then the commit pause.
	require.Len(t, p.got, 7)
	for _, d := range p.got[:6] {
		assert.Equal(t, 3*time.Millisecond, d)
	}
	assert.Equal(t, time.Millisecond, p.got[6])
}

func TestRun_RerendersEveryIteration(t *testing.T) {
	m, _, out, _ := newMenu(t, "1\n7.25\n4\n")

	m.Run(context.Background())
	text := out.String()
	assert.Equal(t, 2, strings.Count(text, "=== STOCK TRACKER SETTINGS ==="))
	assert.Contains(t, text, "1. Alert Threshold: 7.25%")
}

func TestRun_TrimsWhitespace(t *testing.T) {
	m, s, _, _ := newMenu(t, "  1 \n\t3.5  \n 4\r\n")

	assert.Equal(t, OutcomeCommitted, m.Run(context.Background()))
	assert.InDelta(t, 3.5, s.Snapshot().Threshold, 0)
}

func TestRun_EndOfInputQuits(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no input", input: ""},
		{name: "input ends at value prompt", input: "1\n"},
		{name: "input ends after a choice", input: "3\n"},
		{name: "unterminated quit", input: "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s, _, _ := newMenu(t, tt.input)
			assert.Equal(t, OutcomeQuit, m.Run(context.Background()))
			assert.True(t, s.ExitRequested())
			assert.False(t, s.MenuActive())
		})
	}
}

func TestRun_BusyWhenAlreadyActive(t *testing.T) {
	m, s, out, _ := newMenu(t, "5\n")
	require.True(t, s.BeginMenu())

	assert.Equal(t, OutcomeBusy, m.Run(context.Background()))
	assert.Empty(t, out.String())
	assert.False(t, s.ExitRequested())
	assert.True(t, s.MenuActive())
}

func TestRun_CancelledContextQuits(t *testing.T) {
	m, s, _, _ := newMenu(t, "3\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, OutcomeQuit, m.Run(ctx))
	assert.True(t, s.ExitRequested())
	assert.False(t, s.Snapshot().AIEnabled)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "busy", OutcomeBusy.String())
	assert.Equal(t, "committed", OutcomeCommitted.String())
	assert.Equal(t, "quit", OutcomeQuit.String())
}
