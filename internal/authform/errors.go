package authform

import (
	"context"
	"errors"
	"net"

	"github.com/nfrund/clashhub/internal/domain"
)

// ErrorKind classifies why a submission failed.
type ErrorKind int

const (
	ValidationError ErrorKind = iota
	CredentialInUse
	WeakCredential
	AccountDisabled
	RateLimited
	NetworkError
	InvalidCredential
	Unknown
)

var kindNames = map[ErrorKind]string{
	ValidationError:   "validation_error",
	CredentialInUse:   "credential_in_use",
	WeakCredential:    "weak_credential",
	AccountDisabled:   "account_disabled",
	RateLimited:       "rate_limited",
	NetworkError:      "network_error",
	InvalidCredential: "invalid_credential",
	Unknown:           "unknown",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

var kindMessages = map[ErrorKind]string{
	CredentialInUse:   "This email address is already in use by another account.",
	WeakCredential:    "The password is too weak. It should be at least 6 characters.",
	AccountDisabled:   "This account has been disabled.",
	RateLimited:       "Too many failed login attempts. Please try again later.",
	NetworkError:      "Network error. Please check your internet connection.",
	InvalidCredential: "Invalid credentials. Please check your email and password.",
	Unknown:           "An unexpected error occurred. Please try again.",
}

// Message returns the user-facing text for a remote failure kind.
// ValidationError has no fixed text; its message comes from the failed check.
func (k ErrorKind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return kindMessages[Unknown]
}

// Local validation messages.
const (
	msgMissingFields     = "Please fill in all required fields"
	msgConfirmPassword   = "Please confirm your password"
	msgPasswordsMismatch = "Passwords do not match"
	msgPasswordPolicy    = "Password does not meet all requirements"
	msgMissingEmail      = "Please enter your email"
	msgInFlight          = "A request is already in progress"
	msgPasswordResetSent = "A password reset link has been sent to your email."
)

// codeKinds is the fixed lookup table from provider codes to error kinds.
var codeKinds = map[string]ErrorKind{
	domain.CodeEmailAlreadyInUse:    CredentialInUse,
	domain.CodeWeakPassword:         WeakCredential,
	domain.CodeUserDisabled:         AccountDisabled,
	domain.CodeTooManyRequests:      RateLimited,
	domain.CodeNetworkRequestFailed: NetworkError,
	domain.CodeInvalidCredential:    InvalidCredential,
	domain.CodeUserNotFound:         InvalidCredential,
	domain.CodeWrongPassword:        InvalidCredential,
	domain.CodeInvalidEmail:         InvalidCredential,
}

// KindForCode maps a provider error code to its ErrorKind.
func KindForCode(code string) ErrorKind {
	if kind, ok := codeKinds[code]; ok {
		return kind
	}
	return Unknown
}

// AuthError is the failure half of an Outcome.
type AuthError struct {
	Kind    ErrorKind
	Code    string
	Message string
	cause   error
}

func (e *AuthError) Error() string {
	return e.Kind.String() + ": " + e.Message
}

func (e *AuthError) Unwrap() error {
	return e.cause
}

func validationFailure(message string) *AuthError {
	return &AuthError{Kind: ValidationError, Message: message}
}

// ClassifyError turns an error returned by an identity provider into an
// AuthError.
func ClassifyError(err error) *AuthError {
	if err == nil {
		return nil
	}
	if code, ok := domain.ProviderCode(err); ok {
		kind := KindForCode(code)
		return &AuthError{Kind: kind, Code: code, Message: kind.Message(), cause: err}
	}

	kind := Unknown
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		kind = NetworkError
	}
	return &AuthError{Kind: kind, Message: kind.Message(), cause: err}
}
