package websocket

import (
	"sync"
	"time"
)

// room is the set of connections watching one event, paired 1:1 with the
// timer that drives its clock. A room exists only while it has members.
type room struct {
	clients map[*Client]bool
	timer   *RoomTimer
}

func newRoom() *room {
	return &room{clients: make(map[*Client]bool)}
}

// RoomTimer owns the repeating tick for one event room. The 1:1 pairing of
// room and timer makes "room exists iff timer exists" a structural property
// instead of a bookkeeping convention.
type RoomTimer struct {
	interval time.Duration

	mu      sync.Mutex
	done    chan struct{}
	running bool
}

// NewRoomTimer creates a stopped timer with the given tick interval.
func NewRoomTimer(interval time.Duration) *RoomTimer {
	return &RoomTimer{interval: interval}
}

// Start begins ticking, invoking fn once per interval until Stop.
// Starting a running timer is a no-op.
func (t *RoomTimer) Start(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	t.running = true
	t.done = make(chan struct{})
	done := t.done

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
}

// Stop halts the tick loop. Stopping a stopped timer is a no-op.
func (t *RoomTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.running = false
	close(t.done)
}

// IsRunning reports whether the tick loop is active.
func (t *RoomTimer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}
