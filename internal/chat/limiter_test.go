package chat

import (
	"testing"
	"time"
)

func TestRefreshLimiter(t *testing.T) {
	now := time.Unix(1000, 0)
	limiter := newRefreshLimiter(5 * time.Second)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow() {
		t.Fatal("first call should be allowed")
	}
	if limiter.Allow() {
		t.Error("immediate second call should be dropped")
	}

	now = now.Add(4 * time.Second)
	if limiter.Allow() {
		t.Error("call inside the interval should be dropped")
	}

	now = now.Add(2 * time.Second)
	if !limiter.Allow() {
		t.Error("call after the interval should be allowed")
	}
	if limiter.Allow() {
		t.Error("interval should restart after an allowed call")
	}
}
