package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/clashhub/internal/middleware"
	"github.com/nfrund/clashhub/internal/view"
	"github.com/nfrund/clashhub/web/src/templates/pages"
)

// HomeHandler handles requests for the home and account pages.
type HomeHandler struct{}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// HomeGet handles the GET request for the home page.
func (h *HomeHandler) HomeGet(c echo.Context) error {
	// Issue the browser id before rendering so the session socket can use it.
	view.BrowserID(c)
	return renderPage(c, http.StatusOK, "Home", pages.Home(view.CurrentSession(c)))
}

// AccountGet renders the account page. It runs behind RequireSession.
func (h *HomeHandler) AccountGet(c echo.Context) error {
	return renderPage(c, http.StatusOK, "Account", pages.Account(middleware.CurrentUser(c)))
}
