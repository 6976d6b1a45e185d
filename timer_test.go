package web2pdf

import (
	"testing"
	"time"
)

// fakeClock drives a CountdownTimer deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTimer() (*CountdownTimer, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	timer := NewCountdownTimer()
	timer.now = clock.now
	return timer, clock
}

func TestCountdownTimer_StartAndExpire(t *testing.T) {
	t.Parallel()

	timer, clock := newTestTimer()
	timer.Start(10 * time.Second)

	if !timer.Running() {
		t.Error("Running() = false after Start")
	}
	if timer.Expired() {
		t.Error("Expired() = true immediately after Start")
	}

	clock.advance(9 * time.Second)
	if timer.Expired() {
		t.Errorf("Expired() = true with %v remaining", timer.Remaining())
	}

	clock.advance(2 * time.Second)
	if !timer.Expired() {
		t.Errorf("Expired() = false with %v remaining", timer.Remaining())
	}
}

func TestCountdownTimer_StopPreservesBudget(t *testing.T) {
	t.Parallel()

	timer, clock := newTestTimer()
	timer.Start(10 * time.Second)

	clock.advance(3 * time.Second)
	timer.Stop()

	if timer.Running() {
		t.Error("Running() = true after Stop")
	}
	if got := timer.Remaining(); got != 7*time.Second {
		t.Errorf("Remaining() = %v after Stop, want 7s", got)
	}

	// Time passing while stopped does not consume the budget.
	clock.advance(time.Hour)
	if got := timer.Remaining(); got != 7*time.Second {
		t.Errorf("Remaining() = %v while stopped, want 7s", got)
	}
	if timer.Expired() {
		t.Error("Expired() = true while stopped with budget left")
	}
}

func TestCountdownTimer_ResumeContinues(t *testing.T) {
	t.Parallel()

	timer, clock := newTestTimer()
	timer.Start(10 * time.Second)

	clock.advance(4 * time.Second)
	timer.Stop()
	clock.advance(time.Minute)
	timer.Resume()

	if !timer.Running() {
		t.Error("Running() = false after Resume")
	}

	clock.advance(5 * time.Second)
	if timer.Expired() {
		t.Errorf("Expired() = true with %v remaining", timer.Remaining())
	}

	clock.advance(2 * time.Second)
	if !timer.Expired() {
		t.Errorf("Expired() = false with %v remaining", timer.Remaining())
	}
}

func TestCountdownTimer_StopResumeIdempotent(t *testing.T) {
	t.Parallel()

	timer, clock := newTestTimer()
	timer.Start(10 * time.Second)

	clock.advance(2 * time.Second)
	timer.Stop()
	timer.Stop() // second Stop must not double-subtract
	if got := timer.Remaining(); got != 8*time.Second {
		t.Errorf("Remaining() = %v after double Stop, want 8s", got)
	}

	timer.Resume()
	timer.Resume() // second Resume must not reset startedAt mid-tick
	clock.advance(3 * time.Second)
	if got := timer.Remaining(); got != 5*time.Second {
		t.Errorf("Remaining() = %v after double Resume, want 5s", got)
	}
}

func TestCountdownTimer_RestartResetsBudget(t *testing.T) {
	t.Parallel()

	timer, clock := newTestTimer()
	timer.Start(time.Second)
	clock.advance(5 * time.Second)

	if !timer.Expired() {
		t.Fatal("Expired() = false on exhausted timer")
	}

	timer.Start(10 * time.Second)
	if timer.Expired() {
		t.Error("Expired() = true after rearming")
	}
	if got := timer.Remaining(); got != 10*time.Second {
		t.Errorf("Remaining() = %v after rearming, want 10s", got)
	}
}
