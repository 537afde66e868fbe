package handlers

import "github.com/nfrund/clashhub/internal/domain"

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	// Fields lists per-field validation failures, when there are any.
	Fields map[string]string `json:"fields,omitempty"`
}

// ContactResponse is returned once a contact message is handed to the
// email provider.
type ContactResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// TagValidationResponse reports whether a player tag exists.
type TagValidationResponse struct {
	Valid bool `json:"valid"`
}

// AccountResponse is the DTO for a registered player account. It never
// includes the password.
type AccountResponse struct {
	ID       string                 `json:"id"`
	Username string                 `json:"username"`
	Profiles []domain.PlayerProfile `json:"profiles"`
}

// NewAccountResponse creates an AccountResponse from a domain.PlayerAccount.
func NewAccountResponse(account *domain.PlayerAccount) *AccountResponse {
	profiles := account.Profiles
	if profiles == nil {
		profiles = []domain.PlayerProfile{}
	}
	return &AccountResponse{
		ID:       account.ID,
		Username: account.Username,
		Profiles: profiles,
	}
}
