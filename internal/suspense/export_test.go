package suspense

import "time"

// SetNow replaces the tracker clock.
func (t *Tracker) SetNow(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// Slots reports the number of slots whose latest sequence is remembered.
func (t *Tracker) Slots() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots)
}
