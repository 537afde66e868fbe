// Package authform owns the state of the credential forms (login, signup,
// forgot-password and Google sign-in) and drives the identity provider on
// submission.
package authform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nfrund/clashhub/internal/domain"
)

// Field names one input of the credential form.
type Field int

const (
	FieldEmail Field = iota
	FieldPassword
	FieldConfirmPassword
)

// ParseField maps an HTML input id to a Field.
func ParseField(id string) (Field, error) {
	switch id {
	case "email":
		return FieldEmail, nil
	case "password":
		return FieldPassword, nil
	case "confirm-password", "confirmPassword", "password_confirm":
		return FieldConfirmPassword, nil
	}
	return 0, fmt.Errorf("unknown form field %q", id)
}

// Mode selects which remote operation a submission performs.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
	ModeForgotPassword
	ModeGoogleLogin
)

func (m Mode) String() string {
	switch m {
	case ModeLogin:
		return "login"
	case ModeSignup:
		return "signup"
	case ModeForgotPassword:
		return "forgotPassword"
	case ModeGoogleLogin:
		return "googleLogin"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{ModeLogin, ModeSignup, ModeForgotPassword, ModeGoogleLogin} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown form mode %q", s)
}

// FormState is the transient content of the form.
type FormState struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// Outcome is the result of one submission.
type Outcome struct {
	Session *domain.Session
	Err     *AuthError
}

// Succeeded reports whether the remote operation completed.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Controller is one form instance. It is safe for concurrent use, but only
// one submission runs at a time.
type Controller struct {
	provider domain.IdentityProvider
	logger   *slog.Logger

	mu         sync.Mutex
	form       FormState
	credential domain.FederatedCredential
	loading    bool
	lastError  string
	notice     string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for failed submissions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a controller bound to an identity provider.
func NewController(provider domain.IdentityProvider, opts ...Option) *Controller {
	c := &Controller{
		provider: provider,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UpdateField sets one field and clears any displayed error or notice.
func (c *Controller) UpdateField(field Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch field {
	case FieldEmail:
		c.form.Email = value
	case FieldPassword:
		c.form.Password = value
	case FieldConfirmPassword:
		c.form.ConfirmPassword = value
	}
	c.lastError = ""
	c.notice = ""
}

// SetFederatedCredential stores the credential returned by the federated
// sign-in popup for the next googleLogin submission.
func (c *Controller) SetFederatedCredential(cred domain.FederatedCredential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = cred
}

// Reset clears the form, as when the page is left.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = FormState{}
	c.credential = domain.FederatedCredential{}
	c.lastError = ""
	c.notice = ""
}

// Form returns a copy of the current field values.
func (c *Controller) Form() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Requirements derives the password indicators from the current password.
func (c *Controller) Requirements() []Requirement {
	return PasswordRequirements(c.Form().Password)
}

// PasswordsMatch derives the confirmation indicator from the current fields.
func (c *Controller) PasswordsMatch() Match {
	form := c.Form()
	return PasswordsMatch(form.Password, form.ConfirmPassword)
}

// Loading reports whether a submission is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastError returns the message of the last failed submission.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Notice returns the confirmation text of the last successful submission,
// if the mode has one.
func (c *Controller) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

// Submit validates the form for mode and, if it passes, performs the remote
// operation. Local validation failures never reach the provider.
func (c *Controller) Submit(ctx context.Context, mode Mode) Outcome {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return Outcome{Err: validationFailure(msgInFlight)}
	}
	form, cred := c.form, c.credential
	if failure := validate(mode, form); failure != nil {
		c.lastError = failure.Message
		c.notice = ""
		c.mu.Unlock()
		return Outcome{Err: failure}
	}
	c.loading = true
	c.lastError = ""
	c.notice = ""
	c.mu.Unlock()

	session, err := c.dispatch(ctx, mode, form, cred)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		failure := ClassifyError(err)
		c.lastError = failure.Message
		c.logger.WarnContext(ctx, "Auth submission failed",
			"mode", mode.String(), "kind", failure.Kind.String(), "code", failure.Code, "error", err)
		return Outcome{Err: failure}
	}

	if mode == ModeForgotPassword {
		c.notice = msgPasswordResetSent
	}
	return Outcome{Session: session}
}

func (c *Controller) dispatch(ctx context.Context, mode Mode, form FormState, cred domain.FederatedCredential) (*domain.Session, error) {
	switch mode {
	case ModeSignup:
		return c.provider.CreateAccount(ctx, form.Email, form.Password)
	case ModeLogin:
		return c.provider.SignIn(ctx, form.Email, form.Password)
	case ModeForgotPassword:
		return nil, c.provider.SendPasswordReset(ctx, form.Email)
	case ModeGoogleLogin:
		if cred.ProviderID == "" {
			cred.ProviderID = domain.GoogleProviderID
		}
		return c.provider.SignInWithFederatedProvider(ctx, cred)
	}
	return nil, fmt.Errorf("unsupported form mode %v", mode)
}

// ValidateNewPassword checks a chosen password and its confirmation the way
// the signup form does. It returns nil when both are acceptable.
func ValidateNewPassword(password, confirm string) *AuthError {
	if password == "" {
		return validationFailure(msgMissingFields)
	}
	if confirm == "" {
		return validationFailure(msgConfirmPassword)
	}
	if PasswordsMatch(password, confirm) != MatchTrue {
		return validationFailure(msgPasswordsMismatch)
	}
	if !PasswordAcceptable(password) {
		return validationFailure(msgPasswordPolicy)
	}
	return nil
}

// validate runs the local checks for mode, in the order the form reports them.
func validate(mode Mode, form FormState) *AuthError {
	switch mode {
	case ModeSignup:
		if form.Email == "" || form.Password == "" {
			return validationFailure(msgMissingFields)
		}
		return ValidateNewPassword(form.Password, form.ConfirmPassword)
	case ModeLogin:
		if form.Email == "" || form.Password == "" {
			return validationFailure(msgMissingFields)
		}
	case ModeForgotPassword:
		if form.Email == "" {
			return validationFailure(msgMissingEmail)
		}
	case ModeGoogleLogin:
	default:
		return validationFailure(fmt.Sprintf("unsupported form mode %v", mode))
	}
	return nil
}
