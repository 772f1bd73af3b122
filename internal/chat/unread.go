package chat

import (
	"github.com/puzpuzpuz/xsync/v2"
)

// UnreadTracker counts messages received for rooms the user is not actively
// viewing. It outlives room switches for the lifetime of the widget and is
// written from the socket read loop while the UI reads totals, so the counts
// live in a concurrent map.
type UnreadTracker struct {
	counts *xsync.MapOf[string, int]
}

// NewUnreadTracker returns an empty tracker.
func NewUnreadTracker() *UnreadTracker {
	return &UnreadTracker{counts: xsync.NewMapOf[int]()}
}

// Increment adds one unseen message to the room's count.
func (t *UnreadTracker) Increment(roomID string) {
	if roomID == "" {
		return
	}
	t.counts.Compute(roomID, func(old int, _ bool) (int, bool) {
		return old + 1, false
	})
}

// Reset zeroes the room's count. The currently open, non-minimized room is
// always kept at zero through this.
func (t *UnreadTracker) Reset(roomID string) {
	t.counts.Delete(roomID)
}

// Count returns the room's unseen message count.
func (t *UnreadTracker) Count(roomID string) int {
	n, _ := t.counts.Load(roomID)
	return n
}

// Total sums the counts across all rooms.
func (t *UnreadTracker) Total() int {
	total := 0
	t.counts.Range(func(_ string, n int) bool {
		total += n
		return true
	})
	return total
}

// Snapshot copies the counts for rendering.
func (t *UnreadTracker) Snapshot() map[string]int {
	out := make(map[string]int)
	t.counts.Range(func(roomID string, n int) bool {
		if n > 0 {
			out[roomID] = n
		}
		return true
	})
	return out
}

// ReplaceAll reconciles the tracker against a server-reported count map,
// dropping rooms the server no longer reports. Negative server counts are
// clamped to zero.
func (t *UnreadTracker) ReplaceAll(counts map[string]int) {
	t.counts.Range(func(roomID string, _ int) bool {
		if _, ok := counts[roomID]; !ok {
			t.counts.Delete(roomID)
		}
		return true
	})
	for roomID, n := range counts {
		if n <= 0 {
			t.counts.Delete(roomID)
			continue
		}
		t.counts.Store(roomID, n)
	}
}
