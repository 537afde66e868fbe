package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/nfrund/clashhub/internal/domain"
	"github.com/nfrund/clashhub/internal/view"
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// Base wraps page content in the site shell: head, navigation and flash
// messages. user is nil for anonymous visitors.
func Base(title string, flashes view.FlashData, user *domain.Session, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!doctype html>"); err != nil {
			return err
		}
		page := html.HTML(html.Lang("en"),
			html.Head(
				html.Meta(html.Charset("utf-8")),
				html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
				html.TitleEl(g.Text(CalculateTitle(title))),
				html.Script(html.Src(htmxSrc)),
			),
			html.Body(html.Class("min-h-screen bg-gray-50 text-gray-900"),
				navigation(user),
				flashMessages(flashes),
				html.Main(html.Class("container mx-auto p-6"),
					view.AdaptTemplToGomponent(ctx, content),
				),
			),
		)
		return page.Render(w)
	})
}

func navigation(user *domain.Session) g.Node {
	return html.Nav(html.Class("flex gap-4 p-4 border-b bg-white"),
		html.A(html.Href("/"), html.Class("font-bold"), g.Text("Clashhub")),
		html.A(html.Href("/contact"), g.Text("Contact")),
		html.Span(html.Class("ml-auto flex gap-4"), html.ID("profile"),
			g.If(user != nil, g.Group{
				html.A(html.Href("/account"), g.Text("Account Settings")),
				html.A(html.Href("/logout"), g.Text("Sign Out")),
			}),
			g.If(user == nil, g.Group{
				html.A(html.Href("/login"), g.Text("Log In")),
				html.A(html.Href("/signup"), g.Text("Sign Up")),
			}),
		),
	)
}

func flashMessages(flashes view.FlashData) g.Node {
	return html.Div(html.ID("flashes"), html.Class("container mx-auto px-6"),
		g.Map(flashes.Success, func(msg string) g.Node {
			return html.Div(html.Class("my-2 p-3 rounded bg-green-100 text-green-800"), html.Role("status"), g.Text(msg))
		}),
		g.Map(flashes.Error, func(msg string) g.Node {
			return html.Div(html.Class("my-2 p-3 rounded bg-red-100 text-red-800"), html.Role("alert"), g.Text(msg))
		}),
	)
}
