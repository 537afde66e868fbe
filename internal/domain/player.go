package domain

import "context"

// PlayerProfile links an account to a Clash of Clans player tag.
type PlayerProfile struct {
	PlayerTag string `json:"player_tag"`
	IsPrimary bool   `json:"is_primary"`
}

// PlayerAccount is an account created through the registration API.
type PlayerAccount struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Profiles []PlayerProfile `json:"profiles"`
}

// PlayerRepository stores accounts created through the registration API.
// Create returns ErrUserAlreadyExists when the username is taken.
type PlayerRepository interface {
	Create(ctx context.Context, username, password string, profiles []PlayerProfile) (*PlayerAccount, error)
	FindByUsername(ctx context.Context, username string) (*PlayerAccount, error)
}

// PlayerDirectory answers whether a player tag exists in the game.
type PlayerDirectory interface {
	PlayerExists(ctx context.Context, tag string) (bool, error)
}
