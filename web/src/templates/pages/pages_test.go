package pages

import (
	"bytes"
	"testing"

	"github.com/nfrund/clashhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
)

func render(t *testing.T, n g.Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, n.Render(&buf))
	return buf.String()
}

func TestPasswordFeedback(t *testing.T) {
	out := render(t, PasswordFeedback("Abcdefghijk1!", "Abcdefghijk1!"))
	assert.Equal(t, 5, bytes.Count([]byte(out), []byte(`data-satisfied="true"`)))
	assert.Contains(t, out, "Passwords match")

	out = render(t, PasswordFeedback("short", "other"))
	assert.Contains(t, out, `data-requirement="length" data-satisfied="false"`)
	assert.Contains(t, out, "Passwords do not match")

	out = render(t, PasswordFeedback("short", ""))
	assert.NotContains(t, out, "Passwords")
}

func TestForms(t *testing.T) {
	login := render(t, Login(FormData{Email: "chief@example.com"}))
	assert.Contains(t, login, `action="/login"`)
	assert.Contains(t, login, `value="chief@example.com"`)
	assert.NotContains(t, login, `name="credential"`, "no Google button without a client id")

	signup := render(t, Signup(FormData{}))
	assert.Contains(t, signup, `hx-post="/auth/password-check"`)
	assert.Contains(t, signup, `name="confirm-password"`)

	reset := render(t, ResetPassword("tok123"))
	assert.Contains(t, reset, `value="tok123"`)

	assert.Contains(t, render(t, ForgotPassword(FormData{})), `action="/forgot-password"`)
	assert.Contains(t, render(t, Contact()), `hx-post="/api/email"`)
}

func TestGoogleSignIn(t *testing.T) {
	for name, page := range map[string]func(FormData) g.Node{"login": Login, "signup": Signup} {
		t.Run(name, func(t *testing.T) {
			out := render(t, page(FormData{GoogleClientID: "1234.apps.googleusercontent.com"}))
			assert.Contains(t, out, `<script src="https://accounts.google.com/gsi/client" async defer></script>`)
			assert.Contains(t, out, `id="g_id_onload" data-client_id="1234.apps.googleusercontent.com" data-callback="onGoogleCredential"`)
			assert.Contains(t, out, `function onGoogleCredential(response)`)
			assert.Contains(t, out, `document.getElementById("google-credential").value = response.credential`)
			assert.Contains(t, out, `<form id="google-form" method="post" action="/auth/google">`)
			assert.Contains(t, out, `<input type="hidden" name="credential" id="google-credential">`)
		})
	}
}

func TestHome(t *testing.T) {
	assert.Contains(t, render(t, Home(nil)), "You are not signed in.")
	assert.Contains(t, render(t, Home(&domain.Session{Email: "chief@example.com"})), "Signed in as chief@example.com")
	assert.Contains(t, render(t, Account(&domain.Session{UserID: "player_account:1", Provider: "player"})), "player_account:1")
}
