// Package takeover tracks the busy-fallback timers for sessions waiting on a
// live specialist. The timer for a session is armed when the session enters a
// live-intent state and cancelled the moment an operator turn arrives; if it
// fires first, the caller's callback posts the busy-fallback prompt.
package takeover

import (
	"sync"
	"time"
)

const DefaultDelay = 15 * time.Second

type Coordinator struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
}

func New(delay time.Duration) *Coordinator {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Coordinator{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Arm starts the busy-fallback timer for a session. Re-arming replaces any
// timer already pending for that session.
func (c *Coordinator) Arm(sessionID string, fire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.timers[sessionID]; ok {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		// A stale timer that lost the re-arm race must not fire for the
		// replacement's map entry.
		pending := c.timers[sessionID] == timer
		if pending {
			delete(c.timers, sessionID)
		}
		c.mu.Unlock()
		if pending {
			fire()
		}
	})
	c.timers[sessionID] = timer
}

// Cancel stops the pending timer for a session, reporting whether one was
// still pending.
func (c *Coordinator) Cancel(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	timer, ok := c.timers[sessionID]
	if !ok {
		return false
	}
	timer.Stop()
	delete(c.timers, sessionID)
	return true
}

// Pending reports whether a session still has a timer armed.
func (c *Coordinator) Pending(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.timers[sessionID]
	return ok
}

// Stop cancels every pending timer. Used on server teardown.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
}
