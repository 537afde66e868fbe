package authform

import "unicode/utf8"

// MinPasswordLength is the minimum number of characters a new password needs.
const MinPasswordLength = 12

// RequirementID identifies one password policy check.
type RequirementID string

const (
	RequirementLength    RequirementID = "length"
	RequirementUppercase RequirementID = "uppercase"
	RequirementLowercase RequirementID = "lowercase"
	RequirementNumber    RequirementID = "number"
	RequirementSpecial   RequirementID = "special"
)

// Requirement is one derived password indicator.
type Requirement struct {
	ID        RequirementID `json:"id"`
	Text      string        `json:"text"`
	Satisfied bool          `json:"satisfied"`
}

// PasswordRequirements evaluates the password policy. The result always
// holds the five checks in a fixed order.
func PasswordRequirements(password string) []Requirement {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}

	return []Requirement{
		{ID: RequirementLength, Text: "At least 12 characters long", Satisfied: utf8.RuneCountInString(password) >= MinPasswordLength},
		{ID: RequirementUppercase, Text: "At least one uppercase letter", Satisfied: upper},
		{ID: RequirementLowercase, Text: "At least one lowercase letter", Satisfied: lower},
		{ID: RequirementNumber, Text: "At least one number", Satisfied: digit},
		{ID: RequirementSpecial, Text: "At least one special character", Satisfied: special},
	}
}

// RequirementsMet reports whether every requirement in reqs is satisfied.
func RequirementsMet(reqs []Requirement) bool {
	for _, req := range reqs {
		if !req.Satisfied {
			return false
		}
	}
	return len(reqs) > 0
}

// PasswordAcceptable reports whether password passes the whole policy.
func PasswordAcceptable(password string) bool {
	return RequirementsMet(PasswordRequirements(password))
}

// Match is the tri-state result of comparing a password with its confirmation.
type Match int

const (
	// MatchUnknown means the confirmation field is still empty.
	MatchUnknown Match = iota
	MatchTrue
	MatchFalse
)

func (m Match) String() string {
	switch m {
	case MatchTrue:
		return "match"
	case MatchFalse:
		return "mismatch"
	default:
		return "unknown"
	}
}

// PasswordsMatch compares password and confirm. It stays MatchUnknown until
// the user has typed into the confirmation field.
func PasswordsMatch(password, confirm string) Match {
	if confirm == "" {
		return MatchUnknown
	}
	if password == confirm {
		return MatchTrue
	}
	return MatchFalse
}
