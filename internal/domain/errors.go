package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials provided")
	ErrNotFound           = errors.New("requested resource not found")
	ErrPasswordTooLong    = fmt.Errorf("password is longer than %d bytes", MaxPasswordBytes)
)

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// Provider error codes. These follow the vocabulary of the hosted identity
// service so that every backend reports failures the same way.
const (
	CodeEmailAlreadyInUse    = "auth/email-already-in-use"
	CodeWeakPassword         = "auth/weak-password"
	CodeUserDisabled         = "auth/user-disabled"
	CodeTooManyRequests      = "auth/too-many-requests"
	CodeNetworkRequestFailed = "auth/network-request-failed"
	CodeInvalidCredential    = "auth/invalid-credential"
	CodeUserNotFound         = "auth/user-not-found"
	CodeWrongPassword        = "auth/wrong-password"
	CodeInvalidEmail         = "auth/invalid-email"
	CodeOperationNotAllowed  = "auth/operation-not-allowed"
	CodeInternalError        = "auth/internal-error"
)

// ProviderError is returned by an IdentityProvider when the remote service
// rejects an operation.
type ProviderError struct {
	Code    string
	Message string
	Err     error
}

// NewProviderError builds a ProviderError for the given code.
func NewProviderError(code, message string, cause error) *ProviderError {
	return &ProviderError{Code: code, Message: message, Err: cause}
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ProviderCode extracts the provider error code from err, if any.
func ProviderCode(err error) (string, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return "", false
}
