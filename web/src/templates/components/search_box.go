package components

import (
	"strconv"

	"github.com/nfrund/semsearch/internal/domain"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// SearchRegionID is the DOM id of the element holding the result boundary.
const SearchRegionID = "search-region"

// SearchBox renders the query form pre-filled with query. Without htmx it is
// a plain GET form to "/". With htmx it swaps only the search region in place,
// pushes the new URL and aborts an earlier submission still in flight.
func SearchBox(query string) g.Node {
	return Form(
		ID("search-form"),
		Class("search-box"),
		Role("search"),
		Method("get"),
		Action("/"),
		hx.Get("/"),
		hx.Target("#"+SearchRegionID),
		hx.Swap("outerHTML"),
		hx.PushURL("true"),
		g.Attr("hx-sync", "this:replace"),
		Label(For("q"), Class("sr-only"), g.Text("Search")),
		Input(
			Type("search"),
			ID("q"),
			Name("q"),
			Value(query),
			MaxLength(strconv.Itoa(domain.MaxQueryLength)),
			Placeholder("Search..."),
			g.Attr("autocomplete", "off"),
		),
		Button(Type("submit"), Class("search-button"), g.Text("Search")),
	)
}
