package components

import (
	"net/http"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// ErrorPage is the body of the page shown when a browser navigation fails.
func ErrorPage(code int, message string) g.Node {
	return Main(
		Class("page"),
		H1(Class("page-title"), g.Textf("%d %s", code, http.StatusText(code))),
		P(g.Text(message)),
		P(A(Href("/"), g.Text("Back to search"))),
	)
}
