package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_FiresOnPeriod(t *testing.T) {
	var calls atomic.Int32
	tm := NewTimer(WithUnit(20 * time.Millisecond))
	t.Cleanup(tm.Stop)

	require.NoError(t, tm.Start(1, func() { calls.Add(1) }))

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestTimer_NoFiringAtRegistration(t *testing.T) {
	var calls atomic.Int32
	tm := NewTimer(WithUnit(time.Hour))
	t.Cleanup(tm.Stop)

	require.NoError(t, tm.Start(1, func() { calls.Add(1) }))
	time.Sleep(100 * time.Millisecond)

	assert.Zero(t, calls.Load())
	assert.True(t, tm.NextRun().After(time.Now().Add(30*time.Minute)))
}

func TestTimer_RebindKeepsSingleRegistration(t *testing.T) {
	tm := NewTimer()
	t.Cleanup(tm.Stop)

	require.NoError(t, tm.Start(1, func() {}))
	require.Equal(t, 1, tm.Registrations())
	require.Equal(t, 1, tm.Period())

	require.NoError(t, tm.Rebind(5))
	assert.Equal(t, 1, tm.Registrations())
	assert.Equal(t, 5, tm.Period())

	next := tm.NextRun()
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), next, 5*time.Second)

	for _, p := range []int{2, 3, 7} {
		require.NoError(t, tm.Rebind(p))
	}
	assert.Equal(t, 1, tm.Registrations())
	assert.Equal(t, 7, tm.Period())
}

func TestTimer_RebindChangesCadence(t *testing.T) {
	var calls atomic.Int32
	tm := NewTimer(WithUnit(20 * time.Millisecond))
	t.Cleanup(tm.Stop)

	require.NoError(t, tm.Start(1000, func() { calls.Add(1) }))
	time.Sleep(60 * time.Millisecond)
	require.Zero(t, calls.Load())

	require.NoError(t, tm.Rebind(1))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestTimer_Errors(t *testing.T) {
	tm := NewTimer()
	t.Cleanup(tm.Stop)

	require.ErrorIs(t, tm.Rebind(3), ErrNotStarted)
	require.ErrorIs(t, tm.Start(0, func() {}), ErrInvalidPeriod)

	require.NoError(t, tm.Start(1, func() {}))
	require.ErrorIs(t, tm.Start(1, func() {}), ErrAlreadyStarted)
	require.ErrorIs(t, tm.Rebind(0), ErrInvalidPeriod)
	assert.Equal(t, 1, tm.Period())
}

func TestTimer_StopCancelsFirings(t *testing.T) {
	var calls atomic.Int32
	tm := NewTimer(WithUnit(20 * time.Millisecond))

	require.NoError(t, tm.Start(1, func() { calls.Add(1) }))
	tm.Stop()
	tm.Stop()

	seen := calls.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, seen, calls.Load())
	assert.Zero(t, tm.Registrations())
	assert.ErrorIs(t, tm.Rebind(2), ErrNotStarted)
}
