package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/nfrund/clashhub/internal/domain"
	"github.com/nfrund/clashhub/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	mu   sync.Mutex
	sent []domain.EmailMessage
	err  error
}

func (s *captureSender) Send(ctx context.Context, msg domain.EmailMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return "msg-1", nil
}

var tokenPattern = regexp.MustCompile(`token=([0-9a-f]+)`)

func (s *captureSender) token(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sent)
	m := tokenPattern.FindStringSubmatch(s.sent[len(s.sent)-1].HTMLBody)
	require.Len(t, m, 2)
	return m[1]
}

func setupContactTest(t *testing.T, sender domain.EmailSender) *client {
	e, _ := newTestEcho(t)
	h := handlers.NewContactHandler(sender, "noreply@clashhub.dev", "team@clashhub.dev", "New Contact Form Submission")
	e.GET("/contact", h.ContactGet)
	e.POST("/api/email", h.SendPost)
	return newClient(t, e)
}

func TestContactSend(t *testing.T) {
	t.Run("sends the message", func(t *testing.T) {
		sender := &captureSender{}
		c := setupContactTest(t, sender)

		rec := c.postJSON("/api/email", `{"name":"Chief","email":"chief@example.com","message":"Hello <team>"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, map[string]string{"message": "Email sent successfully", "id": "msg-1"}, body)

		require.Len(t, sender.sent, 1)
		msg := sender.sent[0]
		assert.Equal(t, "New Contact Form Submission Chief", msg.Subject)
		assert.Equal(t, "chief@example.com", msg.ReplyTo)
		assert.Equal(t, "team@clashhub.dev", msg.To)
		assert.Equal(t, "noreply@clashhub.dev", msg.From)
		assert.Contains(t, msg.HTMLBody, "Hello &lt;team&gt;")
	})

	t.Run("missing fields", func(t *testing.T) {
		sender := &captureSender{}
		c := setupContactTest(t, sender)

		rec := c.postJSON("/api/email", `{"name":"Chief","email":"chief@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Missing required fields"}`, rec.Body.String())
		assert.Empty(t, sender.sent)
	})

	t.Run("provider failure", func(t *testing.T) {
		c := setupContactTest(t, &captureSender{err: errors.New("resend down")})

		rec := c.postJSON("/api/email", `{"name":"Chief","email":"chief@example.com","message":"hi"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Failed to send email"}`, rec.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		c := setupContactTest(t, &captureSender{})

		rec := c.postJSON("/api/email", `{"name":`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	})

	t.Run("htmx form post gets a fragment", func(t *testing.T) {
		sender := &captureSender{}
		c := setupContactTest(t, sender)

		form := url.Values{"name": {"Chief"}, "email": {"chief@example.com"}, "message": {"hi"}}
		req := formRequest("/api/email", form)
		req.Header.Set("HX-Request", "true")
		rec := c.do(req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Thanks for reaching out!")
		assert.Len(t, sender.sent, 1)
	})

	t.Run("contact page renders", func(t *testing.T) {
		c := setupContactTest(t, &captureSender{})
		rec := c.get("/contact")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.Contains(rec.Body.String(), `hx-post="/api/email"`))
	})
}
