package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Provider exposes the application configuration. Components depend on the
// interface so tests can substitute their own values.
type Provider interface {
	GetServerAddr() string
	GetAppBaseURL() string
	GetSessionSecret() string

	GetIdentityProvider() string
	GetFirebaseAPIKey() string
	GetFirebaseEndpoint() string
	GetGoogleClientID() string
	GetDevGoogleLogin() bool

	GetDBUrl() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string
	GetPlayerStore() string

	GetEmailProvider() string
	GetEmailAPIKey() string
	GetEmailSender() string
	GetEmailOutboxDir() string
	GetContactRecipient() string
	GetContactSubject() string

	GetClashAPIKey() string
	GetClashAPIURL() string
	GetHTTPTimeout() time.Duration
}

// Config holds all configuration for the application.
type Config struct {
	ServerAddr    string
	AppBaseURL    string
	SessionSecret string

	IdentityProvider string
	FirebaseAPIKey   string
	FirebaseEndpoint string
	GoogleClientID   string
	// DevGoogleLogin lets the memory provider accept "google:<email>"
	// credentials. Never enable it outside local development.
	DevGoogleLogin bool

	DBUrl       string
	DBNs        string
	DBDb        string
	DBUser      string
	DBPass      string
	PlayerStore string

	EmailProvider    string
	EmailAPIKey      string
	EmailSender      string
	EmailOutboxDir   string
	ContactRecipient string
	ContactSubject   string

	ClashAPIKey string
	ClashAPIURL string
	HTTPTimeout time.Duration
}

// Default values applied when the environment leaves a setting empty.
const (
	DefaultServerAddr       = ":8080"
	DefaultAppBaseURL       = "http://localhost:8080"
	DefaultIdentityProvider = "memory"
	DefaultPlayerStore      = "memory"
	DefaultEmailProvider    = "log"
	DefaultEmailOutboxDir   = "tmp/outbox"
	DefaultContactSubject   = "New Contact Form Submission"
	DefaultFirebaseEndpoint = "https://identitytoolkit.googleapis.com/v1"
	DefaultClashAPIURL      = "https://api.clashofclans.com/v1"
	DefaultHTTPTimeout      = 10 * time.Second
)

// New loads configuration from a .env file (if present) and the environment.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() *Config {
	cfg := &Config{
		ServerAddr:    getenv("APP_ADDR", DefaultServerAddr),
		AppBaseURL:    getenv("APP_BASE_URL", DefaultAppBaseURL),
		SessionSecret: os.Getenv("SESSION_SECRET"),

		IdentityProvider: getenv("IDENTITY_PROVIDER", DefaultIdentityProvider),
		FirebaseAPIKey:   os.Getenv("FIREBASE_API_KEY"),
		FirebaseEndpoint: getenv("FIREBASE_ENDPOINT", DefaultFirebaseEndpoint),
		GoogleClientID:   os.Getenv("GOOGLE_CLIENT_ID"),
		DevGoogleLogin:   os.Getenv("IDENTITY_DEV_GOOGLE") == "true",

		DBUrl:       os.Getenv("SURREAL_URL"),
		DBNs:        os.Getenv("SURREAL_NS"),
		DBDb:        os.Getenv("SURREAL_DB"),
		DBUser:      os.Getenv("SURREAL_USER"),
		DBPass:      os.Getenv("SURREAL_PASS"),
		PlayerStore: getenv("PLAYER_STORE", DefaultPlayerStore),

		EmailProvider:    getenv("EMAIL_PROVIDER", DefaultEmailProvider),
		EmailAPIKey:      os.Getenv("EMAIL_API_KEY"),
		EmailSender:      os.Getenv("EMAIL_SENDER"),
		EmailOutboxDir:   getenv("EMAIL_OUTBOX_DIR", DefaultEmailOutboxDir),
		ContactRecipient: os.Getenv("CONTACT_RECIPIENT"),
		ContactSubject:   getenv("CONTACT_SUBJECT", DefaultContactSubject),

		ClashAPIKey: os.Getenv("CLASH_API_KEY"),
		ClashAPIURL: getenv("CLASH_API_URL", DefaultClashAPIURL),
		HTTPTimeout: DefaultHTTPTimeout,
	}

	if raw := os.Getenv("HTTP_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.HTTPTimeout = d
		} else {
			log.Printf("Ignoring invalid HTTP_TIMEOUT %q", raw)
		}
	}

	return cfg
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	var errs []error

	if len(c.SessionSecret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 16 characters"))
	}

	if c.DevGoogleLogin && c.IdentityProvider != "memory" {
		errs = append(errs, errors.New("IDENTITY_DEV_GOOGLE is only allowed with the memory identity provider"))
	}

	needsDB := false
	switch c.IdentityProvider {
	case "firebase":
		if c.FirebaseAPIKey == "" {
			errs = append(errs, errors.New("IDENTITY_PROVIDER is 'firebase' but FIREBASE_API_KEY is not set"))
		}
	case "surreal":
		needsDB = true
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown identity provider: %s", c.IdentityProvider))
	}

	switch c.PlayerStore {
	case "surreal":
		needsDB = true
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown player store: %s", c.PlayerStore))
	}

	if needsDB && (c.DBUrl == "" || c.DBNs == "" || c.DBDb == "") {
		errs = append(errs, errors.New("required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set"))
	}

	switch c.EmailProvider {
	case "log", "outbox":
	case "resend":
		if c.EmailAPIKey == "" {
			errs = append(errs, errors.New("email provider is 'resend' but EMAIL_API_KEY is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown email provider: %s", c.EmailProvider))
	}

	return errors.Join(errs...)
}

// UsesSurreal reports whether any backend needs a SurrealDB connection.
func (c *Config) UsesSurreal() bool {
	return c.IdentityProvider == "surreal" || c.PlayerStore == "surreal"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *Config) GetServerAddr() string    { return c.ServerAddr }
func (c *Config) GetAppBaseURL() string    { return c.AppBaseURL }
func (c *Config) GetSessionSecret() string { return c.SessionSecret }

func (c *Config) GetIdentityProvider() string { return c.IdentityProvider }
func (c *Config) GetFirebaseAPIKey() string   { return c.FirebaseAPIKey }
func (c *Config) GetFirebaseEndpoint() string { return c.FirebaseEndpoint }
func (c *Config) GetGoogleClientID() string   { return c.GoogleClientID }
func (c *Config) GetDevGoogleLogin() bool     { return c.DevGoogleLogin }

func (c *Config) GetDBUrl() string       { return c.DBUrl }
func (c *Config) GetDBNs() string        { return c.DBNs }
func (c *Config) GetDBDb() string        { return c.DBDb }
func (c *Config) GetDBUser() string      { return c.DBUser }
func (c *Config) GetDBPass() string      { return c.DBPass }
func (c *Config) GetPlayerStore() string { return c.PlayerStore }

func (c *Config) GetEmailProvider() string    { return c.EmailProvider }
func (c *Config) GetEmailAPIKey() string      { return c.EmailAPIKey }
func (c *Config) GetEmailSender() string      { return c.EmailSender }
func (c *Config) GetEmailOutboxDir() string   { return c.EmailOutboxDir }
func (c *Config) GetContactRecipient() string { return c.ContactRecipient }
func (c *Config) GetContactSubject() string   { return c.ContactSubject }

func (c *Config) GetClashAPIKey() string        { return c.ClashAPIKey }
func (c *Config) GetClashAPIURL() string        { return c.ClashAPIURL }
func (c *Config) GetHTTPTimeout() time.Duration { return c.HTTPTimeout }
