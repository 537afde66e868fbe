package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/clashhub/internal/handlers"
	"github.com/nfrund/clashhub/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	homeHandler := handlers.NewHomeHandler()
	authHandler := handlers.NewAuthHandler(s.Identity, s.Sessions, s.Logger).WithGoogleClientID(s.Cfg.GetGoogleClientID())
	contactHandler := handlers.NewContactHandler(s.Emailer, s.Cfg.GetEmailSender(), s.Cfg.GetContactRecipient(), s.Cfg.GetContactSubject())
	registrationHandler := handlers.NewRegistrationHandler(s.Players, s.playerDirectory(), s.Sessions)
	sessionSocket := handlers.NewSessionSocket(s.Sessions, s.Cfg.GetAppBaseURL())
	rateLimiter := middleware.RateLimiter(middleware.DefaultAuthRate, 10)

	s.E.GET("/", homeHandler.HomeGet)
	s.E.GET("/account", homeHandler.AccountGet, middleware.RequireSession(nil))

	s.E.GET("/login", authHandler.LoginGet)
	s.E.POST("/login", authHandler.LoginPost, rateLimiter)
	s.E.GET("/signup", authHandler.SignupGet)
	s.E.POST("/signup", authHandler.SignupPost, rateLimiter)
	s.E.GET("/forgot-password", authHandler.ForgotPasswordGet)
	s.E.POST("/forgot-password", authHandler.ForgotPasswordPost, rateLimiter)
	s.E.GET("/reset-password", authHandler.ResetPasswordGet)
	s.E.POST("/reset-password", authHandler.ResetPasswordPost, rateLimiter)
	s.E.POST("/auth/google", authHandler.GooglePost, rateLimiter)
	s.E.POST("/auth/password-check", authHandler.PasswordCheck)
	s.E.GET("/logout", authHandler.Logout)

	s.E.GET("/contact", contactHandler.ContactGet)
	s.E.POST("/api/email", contactHandler.SendPost, rateLimiter)

	s.E.GET("/api/validate-tag/:tag", registrationHandler.ValidateTag)
	s.E.POST("/api/register", registrationHandler.Register, rateLimiter)

	s.E.GET("/ws/session", sessionSocket.Serve)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
