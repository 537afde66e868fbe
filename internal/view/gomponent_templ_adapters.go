package view

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"maragu.dev/gomponents"
)

// gomponentComponent lets a gomponents.Node stand in for a templ.Component,
// so gomponents pages can be placed inside templ layouts.
type gomponentComponent struct {
	node gomponents.Node
}

func (a gomponentComponent) Render(_ context.Context, w io.Writer) error {
	return a.node.Render(w)
}

// AdaptGomponentToTempl converts a gomponents.Node into a templ.Component.
func AdaptGomponentToTempl(node gomponents.Node) templ.Component {
	return gomponentComponent{node: node}
}

// AdaptTemplToGomponent converts a templ.Component into a gomponents.Node.
// gomponents does not pass a context, so ctx is captured up front.
func AdaptTemplToGomponent(ctx context.Context, component templ.Component) gomponents.Node {
	return gomponents.NodeFunc(func(w io.Writer) error {
		return component.Render(ctx, w)
	})
}
