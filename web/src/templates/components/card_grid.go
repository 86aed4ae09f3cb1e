package components

import (
	"fmt"
	"math"

	"github.com/nfrund/semsearch/internal/domain"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// CardGridSkeleton is the placeholder shown while results are pending.
func CardGridSkeleton(cards int) g.Node {
	skeletons := make([]g.Node, cards)
	for i := range skeletons {
		skeletons[i] = Div(
			Class("card card-skeleton"),
			Div(Class("card-image skeleton")),
			Div(Class("card-title skeleton")),
		)
	}
	return Div(
		Class("card-grid"),
		Role("status"),
		Aria("label", "Loading results"),
		g.Group(skeletons),
	)
}

// ImageGrid renders the resolved results for query.
func ImageGrid(query string, results []domain.Result) g.Node {
	if len(results) == 0 {
		return EmptyState(query)
	}
	return Div(
		Class("card-grid"),
		Data("count", fmt.Sprint(len(results))),
		g.Map(results, ImageCard),
	)
}

// ImageCard renders one result.
func ImageCard(r domain.Result) g.Node {
	return Div(
		Class("card"),
		Data("image-id", r.Image.ID),
		A(
			Href(r.Image.URL),
			Target("_blank"),
			Rel("noopener noreferrer"),
			Img(Class("card-image"), Src(r.Image.URL), Alt(r.Image.Title), g.Attr("loading", "lazy")),
		),
		Div(
			Class("card-body"),
			P(Class("card-title"), g.Text(r.Image.Title)),
			g.If(r.Score > 0,
				Span(Class("card-score"), g.Textf("%d%% match", int(math.Round(r.Score*100)))),
			),
		),
	)
}

// EmptyState is shown when the resolver returns nothing.
func EmptyState(query string) g.Node {
	msg := "No images in the catalog yet."
	if query != "" {
		msg = fmt.Sprintf("No results for %q.", query)
	}
	return Div(Class("result-empty"), P(g.Text(msg)))
}

// ErrorState is the result view's own error boundary. The retry button
// re-issues the fetch for retryURL and replaces the element with targetID.
func ErrorState(retryURL, targetID string) g.Node {
	return Div(
		Class("result-error"),
		Role("alert"),
		P(g.Text("Something went wrong while searching.")),
		Button(
			Type("button"),
			hx.Get(retryURL),
			hx.Target("#"+targetID),
			hx.Swap("outerHTML"),
			g.Text("Try again"),
		),
	)
}

// QueryTooLong replaces the result view when the query cannot be resolved
// because of its length.
func QueryTooLong(limit int) g.Node {
	return Div(
		Class("result-error"),
		Role("alert"),
		P(g.Textf("Your search is too long. Please use at most %d characters.", limit)),
	)
}
