package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/clashhub/internal/domain"
	"github.com/nfrund/clashhub/internal/middleware"
	"github.com/nfrund/clashhub/web/src/templates/emails"
	"github.com/nfrund/clashhub/web/src/templates/pages"
)

const (
	msgMissingFields = "Missing required fields"
	msgSendFailed    = "Failed to send email"
	msgEmailSent     = "Email sent successfully"
	msgInternal      = "Internal server error"
	msgContactThanks = "Thanks for reaching out! We will get back to you soon."
)

// ContactHandler forwards contact form submissions to the team by email.
type ContactHandler struct {
	emailer   domain.EmailSender
	from      string
	recipient string
	subject   string
}

// NewContactHandler creates a new ContactHandler. Messages are sent from
// from to recipient with subject followed by the sender's name.
func NewContactHandler(emailer domain.EmailSender, from, recipient, subject string) *ContactHandler {
	return &ContactHandler{
		emailer:   emailer,
		from:      from,
		recipient: recipient,
		subject:   subject,
	}
}

// ContactGet renders the contact page.
func (h *ContactHandler) ContactGet(c echo.Context) error {
	return renderPage(c, http.StatusOK, "Contact", pages.Contact())
}

// SendPost handles POST /api/email with a JSON or form body.
// htmx requests get an HTML fragment instead of JSON.
func (h *ContactHandler) SendPost(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to parse contact request", "error", err)
		return h.respond(c, http.StatusInternalServerError, ErrorResponse{Error: msgInternal}, msgInternal)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return h.respond(c, http.StatusBadRequest, ErrorResponse{Error: msgMissingFields}, msgMissingFields)
	}

	body, err := emails.Render(emails.ContactEmail(req.Name, req.Email, req.Message))
	if err != nil {
		logger.Error("Failed to render contact email", "error", err)
		return h.respond(c, http.StatusInternalServerError, ErrorResponse{Error: msgInternal}, msgInternal)
	}

	id, err := h.emailer.Send(ctx, domain.EmailMessage{
		From:     h.from,
		To:       h.recipient,
		ReplyTo:  req.Email,
		Subject:  h.subject + " " + req.Name,
		HTMLBody: body,
	})
	if err != nil {
		logger.Error("Failed to send contact email", "error", err)
		return h.respond(c, http.StatusInternalServerError, ErrorResponse{Error: msgSendFailed}, msgSendFailed)
	}

	logger.Info("Contact email sent", "id", id)
	return h.respond(c, http.StatusOK, ContactResponse{Message: msgEmailSent, ID: id}, msgContactThanks)
}

func (h *ContactHandler) respond(c echo.Context, status int, payload any, fragment string) error {
	if c.Request().Header.Get("HX-Request") == "true" {
		// htmx only swaps 2xx responses.
		return renderFragment(c, pages.ContactResult(status == http.StatusOK, fragment))
	}
	return c.JSON(status, payload)
}
