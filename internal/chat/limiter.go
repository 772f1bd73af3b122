package chat

import (
	"sync"
	"time"
)

// refreshLimiter drops calls arriving within interval of the last allowed
// call. It guards the room listing against rapid UI interactions hammering
// the backend, and owns its own state instead of hanging a timestamp off the
// fetch function the way the original widget did.
type refreshLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func newRefreshLimiter(interval time.Duration) *refreshLimiter {
	return &refreshLimiter{interval: interval, now: time.Now}
}

// Allow reports whether a call may proceed and, if so, stamps it.
func (l *refreshLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if !l.last.IsZero() && now.Sub(l.last) < l.interval {
		return false
	}
	l.last = now
	return true
}
