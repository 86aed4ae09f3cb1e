package suspense_test

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/nfrund/semsearch/internal/domain"
	"github.com/nfrund/semsearch/internal/suspense"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	g "maragu.dev/gomponents"
)

func render(t *testing.T, n g.Node) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, n.Render(&b))
	return b.String()
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, suspense.KeyFor("tasty food"), suspense.KeyFor("tasty food"))
	assert.NotEqual(t, suspense.KeyFor("tasty food"), suspense.KeyFor("cats"))
	assert.NotEqual(t, suspense.KeyFor(""), suspense.KeyFor(" "), "keys follow the raw query")
}

func TestBoundary_RendersFallbackWithLazyLoad(t *testing.T) {
	b := suspense.Boundary{
		Query:    "tasty food",
		Seq:      7,
		Src:      "/search/results",
		Fallback: g.Text("loading…"),
	}
	html := render(t, b)

	key := suspense.KeyFor("tasty food")
	assert.Contains(t, html, `id="boundary-`+key+`"`)
	assert.Contains(t, html, `data-slot="results"`)
	assert.Contains(t, html, `aria-busy="true"`)
	assert.Contains(t, html, `hx-trigger="load"`)
	assert.Contains(t, html, `hx-swap="outerHTML"`)
	assert.Contains(t, html, "loading…")

	u, err := url.Parse(b.ContentURL())
	require.NoError(t, err)
	assert.Equal(t, "/search/results", u.Path)
	assert.Equal(t, "tasty food", u.Query().Get("q"))
	assert.Equal(t, "results", u.Query().Get("slot"))
	assert.Equal(t, key, u.Query().Get("key"))
	assert.Equal(t, "7", u.Query().Get("seq"))
}

func TestBoundary_NewQueryIsNewElement(t *testing.T) {
	first := render(t, suspense.Boundary{Query: "tasty food", Src: "/r", Fallback: g.Text("…")})
	second := render(t, suspense.Boundary{Query: "cats", Src: "/r", Fallback: g.Text("…")})

	assert.NotContains(t, second, suspense.ElementID(suspense.KeyFor("tasty food")))
	assert.Contains(t, first, suspense.ElementID(suspense.KeyFor("tasty food")))
	assert.Contains(t, second, suspense.ElementID(suspense.KeyFor("cats")))
}

func TestResolved(t *testing.T) {
	key := suspense.KeyFor("cats")
	html := render(t, suspense.Resolved("", key, g.Text("grid")))

	assert.Contains(t, html, `id="boundary-`+key+`"`)
	assert.Contains(t, html, `aria-busy="false"`)
	assert.Contains(t, html, `data-slot="results"`)
	assert.NotContains(t, html, "hx-get")
	assert.Contains(t, html, "grid")
}

func TestTracker_NextIsIncreasing(t *testing.T) {
	tr := suspense.NewTracker()
	a, b := tr.Next(), tr.Next()
	assert.Less(t, a, b)
	assert.Greater(t, suspense.NewTracker().Next(), a, "a new tracker stays ahead of earlier pages")
}

func TestTracker_SupersedesPreviousResolution(t *testing.T) {
	defer goleak.VerifyNone(t)
	tr := suspense.NewTracker()
	oldSeq, newSeq := tr.Next(), tr.Next()

	oldCtx, oldDone, err := tr.Begin(context.Background(), "client-1", "results", suspense.KeyFor("tasty food"), oldSeq)
	require.NoError(t, err)
	newCtx, newDone, err := tr.Begin(context.Background(), "client-1", "results", suspense.KeyFor("cats"), newSeq)
	require.NoError(t, err)

	<-oldCtx.Done()
	assert.True(t, errors.Is(context.Cause(oldCtx), domain.ErrSuperseded))
	assert.NoError(t, newCtx.Err(), "the newest resolution stays live")

	// Finishing the superseded one must not evict the current entry.
	oldDone()
	assert.Equal(t, 1, tr.Active())

	newDone()
	assert.Equal(t, 0, tr.Active())
	assert.Error(t, newCtx.Err())
}

func TestTracker_RefusesOlderSequence(t *testing.T) {
	tr := suspense.NewTracker()
	staleSeq, newSeq := tr.Next(), tr.Next()

	// The newer boundary's fetch reaches the server first.
	newCtx, newDone, err := tr.Begin(context.Background(), "client-1", "results", suspense.KeyFor("cats"), newSeq)
	require.NoError(t, err)

	_, _, err = tr.Begin(context.Background(), "client-1", "results", suspense.KeyFor("tasty food"), staleSeq)
	assert.ErrorIs(t, err, domain.ErrSuperseded)
	assert.NoError(t, newCtx.Err(), "a stale fetch must not cancel the newer one")

	newDone()

	// Still refused once the newer resolution has finished.
	_, _, err = tr.Begin(context.Background(), "client-1", "results", suspense.KeyFor("tasty food"), staleSeq)
	assert.ErrorIs(t, err, domain.ErrSuperseded)
}

func TestTracker_RetryWithSameSequence(t *testing.T) {
	tr := suspense.NewTracker()
	seq := tr.Next()

	first, firstDone, err := tr.Begin(context.Background(), "client-1", "results", "k1", seq)
	require.NoError(t, err)
	defer firstDone()

	second, secondDone, err := tr.Begin(context.Background(), "client-1", "results", "k1", seq)
	require.NoError(t, err)
	defer secondDone()

	<-first.Done()
	assert.ErrorIs(t, context.Cause(first), domain.ErrSuperseded)
	assert.NoError(t, second.Err())
}

func TestTracker_ScopesAreIndependent(t *testing.T) {
	tr := suspense.NewTracker()
	seq := tr.Next()

	a, doneA, err := tr.Begin(context.Background(), "client-1", "results", "k1", seq+2)
	require.NoError(t, err)
	defer doneA()
	b, doneB, err := tr.Begin(context.Background(), "client-2", "results", "k2", seq)
	require.NoError(t, err)
	defer doneB()
	c, doneC, err := tr.Begin(context.Background(), "client-1", "related", "k3", seq+1)
	require.NoError(t, err)
	defer doneC()

	assert.NoError(t, a.Err())
	assert.NoError(t, b.Err())
	assert.NoError(t, c.Err())
	assert.Equal(t, 3, tr.Active())
}

func TestTracker_ParentCancellationPropagates(t *testing.T) {
	tr := suspense.NewTracker()
	parent, cancel := context.WithCancel(context.Background())

	ctx, done, err := tr.Begin(parent, "client-1", "results", "k1", tr.Next())
	require.NoError(t, err)
	defer done()

	cancel()
	<-ctx.Done()
	assert.ErrorIs(t, context.Cause(ctx), context.Canceled)
}

func TestTracker_ForgetsIdleSlots(t *testing.T) {
	tr := suspense.NewTracker()
	now := time.Now()
	tr.SetNow(func() time.Time { return now })

	_, idleDone, err := tr.Begin(context.Background(), "client-1", "results", "k1", tr.Next())
	require.NoError(t, err)
	idleDone()
	_, busyDone, err := tr.Begin(context.Background(), "client-2", "results", "k2", tr.Next())
	require.NoError(t, err)
	defer busyDone()
	require.Equal(t, 2, tr.Slots())

	now = now.Add(time.Hour)
	_, otherDone, err := tr.Begin(context.Background(), "client-3", "results", "k3", tr.Next())
	require.NoError(t, err)
	defer otherDone()

	assert.Equal(t, 2, tr.Slots(), "the idle slot is dropped, the in-flight one is kept")
	assert.Equal(t, 2, tr.Active())
}
