package suspense

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nfrund/semsearch/internal/domain"
)

// retention bounds how long an idle slot remembers its latest sequence.
const retention = 30 * time.Minute

type scope struct {
	owner string
	slot  string
}

type slotState struct {
	seq     uint64
	key     string
	id      uint64
	cancel  context.CancelCauseFunc // nil when nothing is in flight
	touched time.Time
}

// Tracker orders the resolutions of every boundary slot per owner. Each
// rendered boundary carries a sequence number from Next; a resolution with
// an older sequence than one already seen for its slot is refused, and a
// newer one cancels whatever is still in flight.
type Tracker struct {
	next atomic.Uint64

	mu        sync.Mutex
	slots     map[scope]*slotState
	calls     uint64
	lastPrune time.Time
	now       func() time.Time
}

// NewTracker creates an empty Tracker. Sequence numbers start from the
// current time so pages rendered before a restart stay older than new ones.
func NewTracker() *Tracker {
	t := &Tracker{
		slots: make(map[scope]*slotState),
		now:   time.Now,
	}
	t.next.Store(uint64(time.Now().UnixNano()))
	t.lastPrune = t.now()
	return t
}

// Next returns the sequence number for a newly rendered boundary.
func (t *Tracker) Next() uint64 {
	return t.next.Add(1)
}

// Begin registers a resolution of key with sequence seq in owner's slot and
// returns the context it must run under. It returns domain.ErrSuperseded
// when a newer sequence was already seen for the slot. Otherwise any earlier
// resolution still in flight is cancelled with cause domain.ErrSuperseded.
// done must be called when the resolution finishes.
func (t *Tracker) Begin(ctx context.Context, owner, slot, key string, seq uint64) (context.Context, func(), error) {
	sc := scope{owner: owner, slot: slot}

	t.mu.Lock()
	now := t.now()
	t.pruneLocked(now)

	st := t.slots[sc]
	if st != nil && seq < st.seq {
		st.touched = now
		t.mu.Unlock()
		slog.Debug("Refusing stale boundary resolution", "slot", slot, "key", key, "seq", seq, "latest_seq", st.seq)
		return nil, nil, domain.ErrSuperseded
	}
	if st == nil {
		st = &slotState{}
		t.slots[sc] = st
	}

	prevCancel, prevKey := st.cancel, st.key
	ctx, cancel := context.WithCancelCause(ctx)
	t.calls++
	id := t.calls
	st.seq, st.key, st.id, st.cancel, st.touched = seq, key, id, cancel, now
	t.mu.Unlock()

	if prevCancel != nil {
		slog.Debug("Superseding boundary resolution", "slot", slot, "old_key", prevKey, "new_key", key)
		prevCancel(domain.ErrSuperseded)
	}

	done := func() {
		t.mu.Lock()
		if cur, ok := t.slots[sc]; ok && cur.id == id {
			cur.cancel = nil
			cur.touched = t.now()
		}
		t.mu.Unlock()
		cancel(context.Canceled)
	}
	return ctx, done, nil
}

// pruneLocked forgets idle slots untouched for longer than retention.
func (t *Tracker) pruneLocked(now time.Time) {
	if now.Sub(t.lastPrune) < retention {
		return
	}
	t.lastPrune = now
	for sc, st := range t.slots {
		if st.cancel == nil && now.Sub(st.touched) > retention {
			delete(t.slots, sc)
		}
	}
}

// Active reports the number of in-flight resolutions.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, st := range t.slots {
		if st.cancel != nil {
			n++
		}
	}
	return n
}
