// Package suspense renders declarative loading boundaries: a placeholder that
// the client replaces with lazily fetched content, keyed so that a new key is
// always a new unit of work.
package suspense

import (
	"io"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// DefaultSlot names the boundary used when none is given.
const DefaultSlot = "results"

// keyNamespace scopes boundary keys so they cannot collide with other UUIDv5 users.
var keyNamespace = uuid.MustParse("5b1f9a52-7f43-4d8e-9c1e-6a2b1f3c9d40")

// KeyFor derives the boundary key of a query. Equal queries give equal keys.
func KeyFor(query string) string {
	return uuid.NewSHA1(keyNamespace, []byte(query)).String()
}

// ElementID is the DOM id of the boundary for key.
func ElementID(key string) string {
	return "boundary-" + key
}

// Boundary is a suspension point. It renders Fallback and asks the client to
// fetch the real content from Src once the placeholder is on screen. Seq
// orders boundaries of the same slot; see Tracker.Next.
type Boundary struct {
	Slot     string
	Query    string
	Seq      uint64
	Src      string
	Fallback g.Node
}

// Key returns the boundary key for the current query.
func (b Boundary) Key() string {
	return KeyFor(b.Query)
}

// ContentURL is the address the client fetches to resolve the boundary.
func (b Boundary) ContentURL() string {
	v := url.Values{}
	v.Set("q", b.Query)
	v.Set("slot", b.slot())
	v.Set("key", b.Key())
	v.Set("seq", strconv.FormatUint(b.Seq, 10))
	return b.Src + "?" + v.Encode()
}

// Render implements gomponents.Node.
func (b Boundary) Render(w io.Writer) error {
	key := b.Key()
	return Div(
		ID(ElementID(key)),
		Class("suspense-boundary"),
		Data("slot", b.slot()),
		Data("key", key),
		Aria("busy", "true"),
		hx.Get(b.ContentURL()),
		hx.Trigger("load"),
		hx.Swap("outerHTML"),
		b.Fallback,
	).Render(w)
}

func (b Boundary) slot() string {
	if b.Slot == "" {
		return DefaultSlot
	}
	return b.Slot
}

// Resolved wraps content so it takes the place of the placeholder for key.
func Resolved(slot, key string, content g.Node) g.Node {
	if slot == "" {
		slot = DefaultSlot
	}
	return Div(
		ID(ElementID(key)),
		Class("suspense-boundary"),
		Data("slot", slot),
		Data("key", key),
		Aria("busy", "false"),
		content,
	)
}
