package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/clashhub/internal/authform"
	"github.com/nfrund/clashhub/internal/domain"
	"github.com/nfrund/clashhub/internal/middleware"
	"github.com/nfrund/clashhub/internal/session"
	"github.com/nfrund/clashhub/internal/view"
	"github.com/nfrund/clashhub/web/src/templates/pages"
	"golang.org/x/sync/singleflight"
)

const (
	msgLoggedIn       = "Successfully logged in!"
	msgAccountCreated = "Account created successfully!"
	msgLoggedOut      = "Successfully logged out!"
	msgResetDone      = "Your password has been reset. Please log in."
	msgResetInvalid   = "This reset link is invalid or has expired."
)

// PasswordResetter is implemented by identity backends that complete
// password resets themselves rather than through a hosted page.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthHandler serves the credential forms. Every submission runs through a
// fresh authform.Controller.
type AuthHandler struct {
	provider domain.IdentityProvider
	sessions *session.Manager
	logger   *slog.Logger

	googleClientID string

	// inflight collapses duplicate submissions from one browser.
	inflight singleflight.Group
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(provider domain.IdentityProvider, sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		provider: provider,
		sessions: sessions,
		logger:   logger,
	}
}

// WithGoogleClientID enables the Google Identity Services button on the
// login and signup pages.
func (h *AuthHandler) WithGoogleClientID(clientID string) *AuthHandler {
	h.googleClientID = clientID
	return h
}

type submission struct {
	outcome authform.Outcome
	notice  string
}

// submissionKey identifies identical submissions: same browser, same mode
// and the same credentials.
func submissionKey(browserID string, mode authform.Mode, form authform.FormState, cred domain.FederatedCredential) string {
	digest := sha256.New()
	for _, part := range []string{form.Email, form.Password, form.ConfirmPassword, cred.ProviderID, cred.IDToken} {
		digest.Write([]byte(part))
		digest.Write([]byte{0})
	}
	return browserID + "|" + mode.String() + "|" + hex.EncodeToString(digest.Sum(nil))
}

// submit runs one form submission. Concurrent identical submissions from
// the same browser share a single provider call.
func (h *AuthHandler) submit(c echo.Context, mode authform.Mode, form authform.FormState, cred domain.FederatedCredential) submission {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	run := func() submission {
		ctrl := authform.NewController(h.provider, authform.WithLogger(logger))
		ctrl.UpdateField(authform.FieldEmail, form.Email)
		ctrl.UpdateField(authform.FieldPassword, form.Password)
		ctrl.UpdateField(authform.FieldConfirmPassword, form.ConfirmPassword)
		if mode == authform.ModeGoogleLogin {
			ctrl.SetFederatedCredential(cred)
		}
		outcome := ctrl.Submit(ctx, mode)
		return submission{outcome: outcome, notice: ctrl.Notice()}
	}

	browserID := view.BrowserID(c)
	if browserID == "" {
		return run()
	}
	v, _, shared := h.inflight.Do(submissionKey(browserID, mode, form, cred), func() (any, error) {
		return run(), nil
	})
	if shared {
		logger.Debug("Collapsed duplicate auth submission", "mode", mode.String())
	}
	return v.(submission)
}

func formFromRequest(c echo.Context) authform.FormState {
	return authform.FormState{
		Email:           c.FormValue("email"),
		Password:        c.FormValue("password"),
		ConfirmPassword: c.FormValue("confirm-password"),
	}
}

// signIn stores a successful session in the cookie and tells listeners.
func (h *AuthHandler) signIn(c echo.Context, s *domain.Session, message string) error {
	ctx := c.Request().Context()
	if err := view.StoreSession(c, s); err != nil {
		middleware.FromContext(ctx).Error("Failed to save auth session", "error", err)
		view.SetFlashError(c, authform.Unknown.Message())
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	if id := view.BrowserID(c); id != "" {
		if err := h.sessions.Set(ctx, id, s); err != nil {
			middleware.FromContext(ctx).Warn("Failed to publish session change", "error", err)
		}
	}
	view.SetFlashSuccess(c, message)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) fail(c echo.Context, failure *authform.AuthError, email, path string) error {
	view.SetFlashError(c, failure.Message)
	view.SetFormEmail(c, email)
	return c.Redirect(http.StatusSeeOther, path)
}

// LoginGet renders the login page.
func (h *AuthHandler) LoginGet(c echo.Context) error {
	return renderPage(c, http.StatusOK, "Login", pages.Login(pages.FormData{Email: view.PopFormEmail(c), GoogleClientID: h.googleClientID}))
}

// LoginPost handles the login form submission.
func (h *AuthHandler) LoginPost(c echo.Context) error {
	form := formFromRequest(c)
	form.ConfirmPassword = ""
	res := h.submit(c, authform.ModeLogin, form, domain.FederatedCredential{})
	if !res.outcome.Succeeded() {
		return h.fail(c, res.outcome.Err, form.Email, "/login")
	}
	return h.signIn(c, res.outcome.Session, msgLoggedIn)
}

// SignupGet renders the account creation page.
func (h *AuthHandler) SignupGet(c echo.Context) error {
	return renderPage(c, http.StatusOK, "Sign Up", pages.Signup(pages.FormData{Email: view.PopFormEmail(c), GoogleClientID: h.googleClientID}))
}

// SignupPost handles the account creation form submission.
func (h *AuthHandler) SignupPost(c echo.Context) error {
	form := formFromRequest(c)
	res := h.submit(c, authform.ModeSignup, form, domain.FederatedCredential{})
	if !res.outcome.Succeeded() {
		return h.fail(c, res.outcome.Err, form.Email, "/signup")
	}
	return h.signIn(c, res.outcome.Session, msgAccountCreated)
}

// ForgotPasswordGet renders the reset request page.
func (h *AuthHandler) ForgotPasswordGet(c echo.Context) error {
	return renderPage(c, http.StatusOK, "Forgot Password", pages.ForgotPassword(pages.FormData{Email: view.PopFormEmail(c)}))
}

// ForgotPasswordPost asks the provider to send a reset link.
func (h *AuthHandler) ForgotPasswordPost(c echo.Context) error {
	form := authform.FormState{Email: c.FormValue("email")}
	res := h.submit(c, authform.ModeForgotPassword, form, domain.FederatedCredential{})
	if !res.outcome.Succeeded() {
		return h.fail(c, res.outcome.Err, form.Email, "/forgot-password")
	}
	view.SetFlashSuccess(c, res.notice)
	return c.Redirect(http.StatusSeeOther, "/forgot-password")
}

// GooglePost completes a Google sign-in with the ID token posted by the
// Google Identity Services button.
func (h *AuthHandler) GooglePost(c echo.Context) error {
	cred := domain.FederatedCredential{
		ProviderID: domain.GoogleProviderID,
		IDToken:    c.FormValue("credential"),
	}
	res := h.submit(c, authform.ModeGoogleLogin, authform.FormState{}, cred)
	if !res.outcome.Succeeded() {
		return h.fail(c, res.outcome.Err, "", "/login")
	}
	return h.signIn(c, res.outcome.Session, msgLoggedIn)
}

// PasswordCheck returns the live requirement checklist for htmx.
func (h *AuthHandler) PasswordCheck(c echo.Context) error {
	return renderFragment(c, pages.PasswordFeedback(c.FormValue("password"), c.FormValue("confirm-password")))
}

// Logout signs the browser out.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	if current := view.CurrentSession(c); current != nil {
		if err := h.provider.SignOut(ctx, current); err != nil {
			logger.Warn("Provider sign-out failed", "error", err)
		}
	}
	if err := view.StoreSession(c, nil); err != nil {
		logger.Error("Failed to clear auth session", "error", err)
		view.SetFlashError(c, "Failed to log out. Please try again.")
		return c.Redirect(http.StatusSeeOther, "/")
	}
	if id := view.BrowserID(c); id != "" {
		if err := h.sessions.Clear(ctx, id); err != nil {
			logger.Warn("Failed to publish session change", "error", err)
		}
	}
	view.SetFlashSuccess(c, msgLoggedOut)
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) resetter() (PasswordResetter, bool) {
	r, ok := h.provider.(PasswordResetter)
	return r, ok
}

// ResetPasswordGet renders the form reached from a reset email.
func (h *AuthHandler) ResetPasswordGet(c echo.Context) error {
	if _, ok := h.resetter(); !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	token := c.QueryParam("token")
	if token == "" {
		view.SetFlashError(c, msgResetInvalid)
		return c.Redirect(http.StatusSeeOther, "/forgot-password")
	}
	return renderPage(c, http.StatusOK, "Reset Password", pages.ResetPassword(token))
}

// ResetPasswordPost sets the new password.
func (h *AuthHandler) ResetPasswordPost(c echo.Context) error {
	r, ok := h.resetter()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	token := c.FormValue("token")
	password := c.FormValue("password")
	back := "/reset-password?token=" + url.QueryEscape(token)

	if failure := authform.ValidateNewPassword(password, c.FormValue("confirm-password")); failure != nil {
		view.SetFlashError(c, failure.Message)
		return c.Redirect(http.StatusSeeOther, back)
	}

	if err := r.ResetPassword(c.Request().Context(), token, password); err != nil {
		failure := authform.ClassifyError(err)
		middleware.FromContext(c.Request().Context()).Warn("Password reset failed", "kind", failure.Kind.String(), "error", err)
		if failure.Kind == authform.InvalidCredential {
			view.SetFlashError(c, msgResetInvalid)
			return c.Redirect(http.StatusSeeOther, "/forgot-password")
		}
		view.SetFlashError(c, failure.Message)
		return c.Redirect(http.StatusSeeOther, back)
	}

	view.SetFlashSuccess(c, msgResetDone)
	return c.Redirect(http.StatusSeeOther, "/login")
}
