package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nfrund/clashhub/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

type playerRecord struct {
	ID       string                 `json:"id"`
	Username string                 `json:"username"`
	Profiles []domain.PlayerProfile `json:"profiles"`
}

func (r *playerRecord) toDomain() *domain.PlayerAccount {
	profiles := r.Profiles
	if profiles == nil {
		profiles = []domain.PlayerProfile{}
	}
	return &domain.PlayerAccount{ID: r.ID, Username: r.Username, Profiles: profiles}
}

// PlayerStore implements domain.PlayerRepository using SurrealDB.
type PlayerStore struct {
	db *surrealdb.DB
}

// NewPlayerStore creates a new PlayerStore.
func NewPlayerStore(db *surrealdb.DB) *PlayerStore {
	return &PlayerStore{db: db}
}

// Create inserts a player account. The unique username index turns
// duplicates into domain.ErrUserAlreadyExists.
func (s *PlayerStore) Create(ctx context.Context, username, password string, profiles []domain.PlayerProfile) (*domain.PlayerAccount, error) {
	if profiles == nil {
		profiles = []domain.PlayerProfile{}
	}
	query := `
		CREATE player_account SET
			username = $username,
			password = crypto::argon2::generate($password),
			profiles = $profiles,
			created_at = time::now()
		RETURN NONE`
	username = strings.TrimSpace(username)
	err := Execute(ctx, s.db, query, map[string]any{
		"username": username,
		"password": password,
		"profiles": profiles,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, WrapError(err, "failed to create player account")
	}
	account, err := s.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errors.New("failed to create player account: no record returned")
	}
	return account, err
}

// FindByUsername returns domain.ErrNotFound when no account matches.
func (s *PlayerStore) FindByUsername(ctx context.Context, username string) (*domain.PlayerAccount, error) {
	query := "SELECT <string> id AS id, username, profiles FROM player_account WHERE username = $username"
	rec, err := QueryOne[playerRecord](ctx, s.db, query, map[string]any{"username": strings.TrimSpace(username)})
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec.toDomain(), nil
}
