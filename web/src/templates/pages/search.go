package pages

import (
	"context"
	"strconv"

	"github.com/nfrund/semsearch/internal/view"
	"github.com/nfrund/semsearch/web/src/templates/components"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// ViewIDHeader carries the page instance id on every htmx request made from
// the page, so supersession is scoped to one open page.
const ViewIDHeader = "X-View-ID"

// SearchPageData is the view model of the search page.
type SearchPageData struct {
	Query     string
	ViewID    string
	DeployURL string
	// Results is the content of the search region, normally a suspense.Boundary.
	Results g.Node
}

// SearchContent is the body of the search page. ctx is the request context
// handed to templ components.
func SearchContent(ctx context.Context, d SearchPageData) g.Node {
	return Main(
		Class("page"),
		hx.Headers(`{"`+ViewIDHeader+`":`+strconv.Quote(d.ViewID)+`}`),
		Div(
			Class("page-header"),
			Div(H1(Class("page-title"), g.Text("Semantic Search"))),
			view.AdaptTemplToGomponent(ctx, components.DeployButton(d.DeployURL)),
		),
		Div(
			P(g.Text(`Try searching for something semantically, like "tasty food".`)),
		),
		Div(
			Div(Class("pt-2"), components.SearchBox(d.Query)),
			SearchRegion(d.Results),
		),
	)
}

// SearchRegion holds the result view. It is the fragment swapped by
// in-place searches.
func SearchRegion(content g.Node) g.Node {
	return Div(ID(components.SearchRegionID), Class("search-region"), content)
}
