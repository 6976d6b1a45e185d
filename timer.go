package web2pdf

import "time"

// CountdownTimer is a pausable deadline used across the sequential
// phases of one conversion. It is cooperative: the orchestrator polls
// Expired at phase boundaries; the timer never interrupts an in-flight
// call.
//
// Stop pauses ticking and preserves the remaining budget, so open-ended
// waits can be exempted from the overall deadline; Resume continues
// from where Stop left off. Not safe for concurrent use: a timer is
// owned by exactly one conversion at a time.
type CountdownTimer struct {
	remaining time.Duration
	startedAt time.Time
	running   bool
	now       func() time.Time // test hook
}

// NewCountdownTimer creates a disarmed timer.
func NewCountdownTimer() *CountdownTimer {
	return &CountdownTimer{now: time.Now}
}

// Start arms the timer with a fresh budget and starts it ticking.
func (t *CountdownTimer) Start(d time.Duration) {
	t.remaining = d
	t.startedAt = t.now()
	t.running = true
}

// Stop pauses the timer, preserving the remaining budget. No-op if not
// running.
func (t *CountdownTimer) Stop() {
	if !t.running {
		return
	}
	t.remaining -= t.now().Sub(t.startedAt)
	t.running = false
}

// Resume continues ticking against the preserved budget. No-op if
// already running.
func (t *CountdownTimer) Resume() {
	if t.running {
		return
	}
	t.startedAt = t.now()
	t.running = true
}

// Running reports whether the timer is currently ticking.
func (t *CountdownTimer) Running() bool { return t.running }

// Remaining returns the budget left. Negative once expired.
func (t *CountdownTimer) Remaining() time.Duration {
	if !t.running {
		return t.remaining
	}
	return t.remaining - t.now().Sub(t.startedAt)
}

// Expired is the non-blocking point check polled between phases.
func (t *CountdownTimer) Expired() bool {
	return t.Remaining() <= 0
}
