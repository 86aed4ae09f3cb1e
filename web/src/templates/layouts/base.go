package layouts

import (
	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	h "maragu.dev/gomponents/html"
)

// HTMXSrc is the htmx build loaded by every page.
const HTMXSrc = "https://unpkg.com/htmx.org@2.0.4"

// Base wraps page content in the HTML5 document shell.
func Base(title string, body ...g.Node) g.Node {
	return c.HTML5(c.HTML5Props{
		Title:    CalculateTitle(title),
		Language: "en",
		Head: []g.Node{
			h.Meta(h.Name("htmx-config"), h.Content(`{"historyCacheSize":0}`)),
			h.Link(h.Rel("stylesheet"), h.Href("/static/app.css")),
			h.Script(h.Src(HTMXSrc), h.Defer()),
		},
		Body: body,
	})
}
