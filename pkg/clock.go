package pkg

import (
	"fmt"
	"sync"
	"time"
)

// Clock measures how long a game has been played. It starts paused.
type Clock struct {
	mu      sync.Mutex
	elapsed time.Duration
	since   time.Time
	running bool
	now     func() time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

func (cl *Clock) String() string {
	e := cl.Elapsed()
	return fmt.Sprintf("%d:%02d", int(e.Minutes()), int(e.Seconds())%60)
}

func (cl *Clock) Start() {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.running {
		return
	}
	cl.running = true
	cl.since = cl.now()
}

func (cl *Clock) Pause() {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if !cl.running {
		return
	}
	cl.elapsed += cl.now().Sub(cl.since)
	cl.running = false
}

func (cl *Clock) Reset() {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.elapsed = 0
	cl.running = false
}

// Sync replaces the clock state with one reported by the server
func (cl *Clock) Sync(elapsed time.Duration, running bool) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.elapsed = elapsed
	cl.running = running
	cl.since = cl.now()
}

func (cl *Clock) Running() bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	return cl.running
}

func (cl *Clock) Elapsed() time.Duration {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if !cl.running {
		return cl.elapsed
	}
	return cl.elapsed + cl.now().Sub(cl.since)
}
