package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/clashhub/internal/clashapi"
	"github.com/nfrund/clashhub/internal/domain"
	"github.com/nfrund/clashhub/internal/middleware"
	"github.com/nfrund/clashhub/internal/session"
	"github.com/nfrund/clashhub/internal/view"
)

const (
	msgInvalidRequest   = "Invalid request"
	msgUsernameTaken    = "A user with that username already exists."
	msgRegistrationFail = "Could not create the account."
	playerProvider      = "player"
)

// RegistrationHandler serves the player registration API.
type RegistrationHandler struct {
	players   domain.PlayerRepository
	directory domain.PlayerDirectory
	sessions  *session.Manager
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(players domain.PlayerRepository, directory domain.PlayerDirectory, sessions *session.Manager) *RegistrationHandler {
	return &RegistrationHandler{
		players:   players,
		directory: directory,
		sessions:  sessions,
	}
}

// ValidateTag handles GET /api/validate-tag/:tag.
func (h *RegistrationHandler) ValidateTag(c echo.Context) error {
	raw := c.Param("tag")
	// Echo leaves params escaped when the request has a RawPath ("%23TAG").
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	tag, ok := clashapi.NormalizeTag(raw)
	if !ok {
		return c.JSON(http.StatusBadRequest, TagValidationResponse{Valid: false})
	}

	exists, err := h.directory.PlayerExists(c.Request().Context(), tag)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Warn("Player lookup failed", "tag", tag, "error", err)
	}
	if err != nil || !exists {
		return c.JSON(http.StatusBadRequest, TagValidationResponse{Valid: false})
	}
	return c.JSON(http.StatusOK, TagValidationResponse{Valid: true})
}

// toProfiles applies the primary default: a profile without is_primary is
// primary only when it comes first.
func toProfiles(reqs []ProfileRequest) []domain.PlayerProfile {
	profiles := make([]domain.PlayerProfile, len(reqs))
	for i, p := range reqs {
		primary := i == 0
		if p.IsPrimary != nil {
			primary = *p.IsPrimary
		}
		tag, ok := clashapi.NormalizeTag(p.PlayerTag)
		if !ok {
			tag = p.PlayerTag
		}
		profiles[i] = domain.PlayerProfile{PlayerTag: tag, IsPrimary: primary}
	}
	return profiles
}

// Register handles POST /api/register. The new account is signed in.
func (h *RegistrationHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidRequest})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidRequest, Fields: fieldErrors(err)})
	}

	account, err := h.players.Create(ctx, req.Username, req.Password, toProfiles(req.Profiles))
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return c.JSON(http.StatusConflict, ErrorResponse{Error: msgUsernameTaken})
		}
		if errors.Is(err, domain.ErrPasswordTooLong) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidRequest, Fields: map[string]string{"password": "max"}})
		}
		logger.Error("Failed to create player account", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgRegistrationFail})
	}

	s := &domain.Session{UserID: account.ID, Provider: playerProvider}
	if err := view.StoreSession(c, s); err != nil {
		logger.Error("Failed to save auth session", "error", err)
	} else if id := view.BrowserID(c); id != "" {
		if err := h.sessions.Set(ctx, id, s); err != nil {
			logger.Warn("Failed to publish session change", "error", err)
		}
	}

	return c.JSON(http.StatusCreated, NewAccountResponse(account))
}
