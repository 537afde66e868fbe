package handlers

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// NewValidator creates a new CustomValidator with the project's custom tags.
func NewValidator() *CustomValidator {
	v := validator.New()
	// Usernames follow the classic letters, digits and @/./+/-/_ rule.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// fieldErrors flattens validator errors into field -> rule pairs for API
// responses. Other errors yield nil.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		// Drop the struct name prefix: "RegisterRequest.profiles[0].player_tag".
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}
		out[ns] = fe.Tag()
	}
	return out
}

// ContactRequest is the DTO for the contact form endpoint.
type ContactRequest struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Email   string `json:"email" form:"email" validate:"required"`
	Message string `json:"message" form:"message" validate:"required"`
}

// ProfileRequest is one player profile in a registration.
type ProfileRequest struct {
	PlayerTag string `json:"player_tag" validate:"required,max=13"`
	// IsPrimary is optional; when absent only the first profile is primary.
	IsPrimary *bool `json:"is_primary"`
}

// RegisterRequest is the DTO for the registration API.
type RegisterRequest struct {
	Username string           `json:"username" validate:"required,max=150,username"`
	Password string           `json:"password" validate:"required"`
	Profiles []ProfileRequest `json:"profiles" validate:"required,dive"`
}
