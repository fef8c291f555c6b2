package websocket

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoomTimerStartStop(t *testing.T) {
	var ticks atomic.Int64
	timer := NewRoomTimer(10 * time.Millisecond)
	require.False(t, timer.IsRunning())

	timer.Start(func() { ticks.Add(1) })
	require.True(t, timer.IsRunning())

	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, 5*time.Millisecond)

	timer.Stop()
	require.False(t, timer.IsRunning())

	stopped := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	require.LessOrEqual(t, ticks.Load(), stopped+1, "ticks must cease after stop")
}

func TestRoomTimerStartIsIdempotent(t *testing.T) {
	var ticks atomic.Int64
	timer := NewRoomTimer(10 * time.Millisecond)

	timer.Start(func() { ticks.Add(1) })
	timer.Start(func() { ticks.Add(100) })

	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.Less(t, ticks.Load(), int64(100), "second start must not attach a new tick loop")

	timer.Stop()
}

func TestRoomTimerStopIsIdempotent(t *testing.T) {
	timer := NewRoomTimer(10 * time.Millisecond)
	timer.Start(func() {})

	timer.Stop()
	timer.Stop()
	require.False(t, timer.IsRunning())
}

func TestRoomTimerRestartsAfterStop(t *testing.T) {
	var ticks atomic.Int64
	timer := NewRoomTimer(10 * time.Millisecond)

	timer.Start(func() { ticks.Add(1) })
	timer.Stop()

	timer.Start(func() { ticks.Add(1) })
	require.True(t, timer.IsRunning())
	before := ticks.Load()
	require.Eventually(t, func() bool { return ticks.Load() > before }, time.Second, 5*time.Millisecond)
	timer.Stop()
}
