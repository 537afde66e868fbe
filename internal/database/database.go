// Package database holds the SurrealDB-backed stores: the identity store
// that uses SurrealDB record access, and the player account store behind the
// registration API.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/clashhub/internal/config"
	"github.com/surrealdb/surrealdb.go"
)

// NewDB creates and configures a new SurrealDB connection signed in as the
// configured root/namespace user.
func NewDB(ctx context.Context, cfg config.Provider) (*surrealdb.DB, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.GetDBUrl())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to surrealdb: %w", err)
	}

	authData := &surrealdb.Auth{
		Username: cfg.GetDBUser(),
		Password: cfg.GetDBPass(),
	}

	if _, err = db.SignIn(ctx, authData); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	if err = db.Use(ctx, cfg.GetDBNs(), cfg.GetDBDb()); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/db: %w", err)
	}

	slog.Info("Successfully signed in to SurrealDB")
	return db, nil
}

// Dialer opens an unauthenticated connection scoped to the configured
// namespace and database. Record access sign-up and sign-in change the
// authentication of the connection they run on, so they get their own.
type Dialer func(ctx context.Context) (*surrealdb.DB, error)

// NewDialer returns a Dialer for cfg.
func NewDialer(cfg config.Provider) Dialer {
	return func(ctx context.Context) (*surrealdb.DB, error) {
		db, err := surrealdb.FromEndpointURLString(ctx, cfg.GetDBUrl())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to surrealdb: %w", err)
		}
		if err = db.Use(ctx, cfg.GetDBNs(), cfg.GetDBDb()); err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("failed to use namespace/db: %w", err)
		}
		return db, nil
	}
}

// Schema defines the tables, indexes and record access used by the stores.
const Schema = `
DEFINE TABLE IF NOT EXISTS user SCHEMALESS
	PERMISSIONS FOR select, update WHERE id = $auth.id;
DEFINE INDEX IF NOT EXISTS user_email ON user FIELDS email UNIQUE;
DEFINE ACCESS IF NOT EXISTS account ON DATABASE TYPE RECORD
	SIGNUP ( CREATE user SET email = $email, password = crypto::argon2::generate($password) )
	SIGNIN ( SELECT * FROM user WHERE email = $email AND crypto::argon2::compare(password, $password) )
	DURATION FOR TOKEN 1h, FOR SESSION 24h;
DEFINE TABLE IF NOT EXISTS player_account SCHEMALESS;
DEFINE INDEX IF NOT EXISTS player_account_username ON player_account FIELDS username UNIQUE;
`

// Migrate applies Schema.
func Migrate(ctx context.Context, db *surrealdb.DB) error {
	if err := Execute(ctx, db, Schema, nil); err != nil {
		return WrapError(err, "failed to apply schema")
	}
	return nil
}
