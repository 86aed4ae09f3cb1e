// Package view bridges templ components into gomponents trees.
package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"maragu.dev/gomponents"
)

// TemplToGomponentAdapter wraps a templ.Component to satisfy gomponents.Node,
// so templ components can be placed in gomponents trees.
type TemplToGomponentAdapter struct {
	Component templ.Component
	Ctx       context.Context
}

// Render implements gomponents.Node. gomponents does not pass a context, so
// the one captured at construction is used, falling back to Background.
func (a *TemplToGomponentAdapter) Render(w io.Writer) error {
	ctx := a.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return a.Component.Render(ctx, w)
}

// AdaptTemplToGomponent converts a templ.Component into a gomponents.Node
// rendered under ctx, normally the request context.
func AdaptTemplToGomponent(ctx context.Context, component templ.Component) gomponents.Node {
	return &TemplToGomponentAdapter{Component: component, Ctx: ctx}
}
