package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/clashhub/internal/clashapi"
	"github.com/nfrund/clashhub/internal/config"
	"github.com/nfrund/clashhub/internal/database"
	"github.com/nfrund/clashhub/internal/domain"
	"github.com/nfrund/clashhub/internal/email"
	"github.com/nfrund/clashhub/internal/handlers"
	"github.com/nfrund/clashhub/internal/identity"
	"github.com/nfrund/clashhub/internal/middleware"
	"github.com/nfrund/clashhub/internal/pubsub"
	"github.com/nfrund/clashhub/internal/rendering"
	authsession "github.com/nfrund/clashhub/internal/session"
	"github.com/surrealdb/surrealdb.go"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	DB       *surrealdb.DB
	Cfg      config.Provider
	Logger   *slog.Logger
	Emailer  domain.EmailSender
	Identity domain.IdentityProvider
	Players  domain.PlayerRepository
	Sessions *authsession.Manager

	bus *pubsub.WatermillBridge
}

func usesSurreal(cfg config.Provider) bool {
	return cfg.GetIdentityProvider() == "surreal" || cfg.GetPlayerStore() == "surreal"
}

// New wires the backends selected by cfg into a ready-to-route Server.
// A SurrealDB connection is only opened when a backend needs it.
func New(ctx context.Context, cfg config.Provider, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{Cfg: cfg, Logger: logger}

	if usesSurreal(cfg) {
		db, err := database.NewDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close(ctx)
			return nil, err
		}
		s.DB = db
	}

	emailer, err := email.NewEmailService(cfg)
	if err != nil {
		s.closeDB(ctx)
		return nil, fmt.Errorf("failed to initialize email service: %w", err)
	}
	s.Emailer = emailer

	if s.Identity, err = newIdentityProvider(cfg, s.DB, emailer, logger); err != nil {
		s.closeDB(ctx)
		return nil, err
	}
	if s.Players, err = newPlayerRepository(cfg, s.DB); err != nil {
		s.closeDB(ctx)
		return nil, err
	}

	s.bus = pubsub.NewWatermillBridge(logger)
	s.Sessions = authsession.NewManager(s.bus, s.bus)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.RequestLoggerWithConfig(requestLogConfig()))

	store := sessions.NewCookieStore([]byte(cfg.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
	}
	e.Use(session.Middleware(store))

	e.Renderer = rendering.NewUniversalRenderer()
	e.Validator = handlers.NewValidator()
	setupErrorHandling(e)

	s.E = e
	return s, nil
}

func newIdentityProvider(cfg config.Provider, db *surrealdb.DB, emailer domain.EmailSender, logger *slog.Logger) (domain.IdentityProvider, error) {
	switch cfg.GetIdentityProvider() {
	case "firebase":
		return identity.NewFirebaseProvider(cfg.GetFirebaseAPIKey(), cfg.GetFirebaseEndpoint(), cfg.GetAppBaseURL(), cfg.GetHTTPTimeout()), nil
	case "surreal":
		return database.NewIdentityStore(db, database.NewDialer(cfg), cfg.GetDBNs(), cfg.GetDBDb(), emailer, cfg.GetAppBaseURL(), logger), nil
	case "memory":
		logger.Warn("Using in-memory identity provider; accounts are lost on restart")
		p := identity.NewMemoryProvider(emailer, cfg.GetAppBaseURL())
		if cfg.GetDevGoogleLogin() {
			logger.Warn("Development Google sign-in is enabled; google:<email> signs in without verification")
			p.EnableDevGoogleLogin()
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown identity provider: %s", cfg.GetIdentityProvider())
	}
}

func newPlayerRepository(cfg config.Provider, db *surrealdb.DB) (domain.PlayerRepository, error) {
	switch cfg.GetPlayerStore() {
	case "surreal":
		return database.NewPlayerStore(db), nil
	case "memory":
		return database.NewMemoryPlayerStore(), nil
	default:
		return nil, fmt.Errorf("unknown player store: %s", cfg.GetPlayerStore())
	}
}

func (s *Server) closeDB(ctx context.Context) {
	if s.DB != nil {
		s.DB.Close(ctx)
	}
}

// Close releases the bus and the database connection.
func (s *Server) Close(ctx context.Context) error {
	var err error
	if s.bus != nil {
		err = s.bus.Close()
	}
	s.closeDB(ctx)
	return err
}

// playerDirectory returns the Clash of Clans API client.
func (s *Server) playerDirectory() domain.PlayerDirectory {
	return clashapi.NewClient(s.Cfg.GetClashAPIKey(), s.Cfg.GetClashAPIURL(), s.Cfg.GetHTTPTimeout())
}
