package reply

import (
	"context"
	"sync"
	"time"
)

// Limiter is an opt-in throttle on completion calls, configured through
// provider.requestsPerMinute. It is off by default; without it the service
// neither queues nor backs off and upstream rate limits surface as errors.
// A nil *Limiter never waits.
//
// Calls are scheduled on a virtual timeline: each one occupies one interval
// and up to burst calls may run ahead of the wall clock.
type Limiter struct {
	mu        sync.Mutex
	interval  time.Duration
	tolerance time.Duration
	next      time.Time // earliest slot not yet handed out
	now       func() time.Time
}

// NewLimiter returns nil when ratePerMinute is not positive.
func NewLimiter(ratePerMinute float64, burst int) *Limiter {
	if ratePerMinute <= 0 {
		return nil
	}
	burst = max(burst, 1)
	interval := time.Duration(float64(time.Minute) / ratePerMinute)
	return &Limiter{
		interval:  interval,
		tolerance: time.Duration(burst-1) * interval,
		now:       time.Now,
	}
}

// reserve claims the next slot and reports how long the caller must wait
// for it. A wait beyond deadline claims nothing.
func (l *Limiter) reserve(deadline time.Time) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	slot := l.next
	if slot.Before(now) {
		slot = now
	}
	wait := slot.Sub(now) - l.tolerance
	if wait < 0 {
		wait = 0
	}
	if !deadline.IsZero() && now.Add(wait).After(deadline) {
		return wait, false
	}
	l.next = slot.Add(l.interval)
	return wait, true
}

// release hands back a slot claimed by a caller that gave up waiting.
func (l *Limiter) release() {
	l.mu.Lock()
	l.next = l.next.Add(-l.interval)
	l.mu.Unlock()
}

// Wait blocks until the caller's slot arrives or ctx is done. It returns
// context.DeadlineExceeded straight away when the slot lies past ctx's
// deadline.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, _ := ctx.Deadline()
	wait, ok := l.reserve(deadline)
	if !ok {
		return context.DeadlineExceeded
	}
	if wait == 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		l.release()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
