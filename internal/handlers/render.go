package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/clashhub/internal/view"
	"github.com/nfrund/clashhub/web/src/templates/layouts"
	g "maragu.dev/gomponents"
)

// renderPage wraps content in the Base layout with the pending flashes and
// the signed-in user, and renders it through the echo renderer.
func renderPage(c echo.Context, status int, title string, content g.Node) error {
	flashes := view.GetFlashData(c)
	user := view.CurrentSession(c)
	page := layouts.Base(title, flashes, user, view.AdaptGomponentToTempl(content))
	return c.Render(status, "", page)
}

// renderFragment renders an htmx fragment without the layout.
func renderFragment(c echo.Context, content g.Node) error {
	return c.Render(http.StatusOK, "", content)
}
