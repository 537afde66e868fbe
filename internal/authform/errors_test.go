package authform

import (
	"testing"

	"github.com/nfrund/clashhub/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestKindForCode(t *testing.T) {
	tests := map[string]ErrorKind{
		domain.CodeEmailAlreadyInUse:    CredentialInUse,
		domain.CodeWeakPassword:         WeakCredential,
		domain.CodeUserDisabled:         AccountDisabled,
		domain.CodeTooManyRequests:      RateLimited,
		domain.CodeNetworkRequestFailed: NetworkError,
		domain.CodeInvalidCredential:    InvalidCredential,
		domain.CodeWrongPassword:        InvalidCredential,
		"auth/something-new":            Unknown,
		"":                              Unknown,
	}
	for code, want := range tests {
		assert.Equal(t, want, KindForCode(code), code)
	}
}

func TestErrorKindMessages(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred. Please try again.", Unknown.Message())
	assert.Equal(t, "This account has been disabled.", AccountDisabled.Message())
	assert.Equal(t, Unknown.Message(), ErrorKind(99).Message())
	assert.Equal(t, "credential_in_use", CredentialInUse.String())
}
