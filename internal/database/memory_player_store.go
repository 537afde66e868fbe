package database

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nfrund/clashhub/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type memoryPlayer struct {
	account domain.PlayerAccount
	hash    []byte
}

// MemoryPlayerStore is an in-process domain.PlayerRepository for
// development and tests.
type MemoryPlayerStore struct {
	mu      sync.RWMutex
	players map[string]*memoryPlayer
}

// NewMemoryPlayerStore creates an empty store.
func NewMemoryPlayerStore() *MemoryPlayerStore {
	return &MemoryPlayerStore{players: make(map[string]*memoryPlayer)}
}

func copyAccount(a domain.PlayerAccount) *domain.PlayerAccount {
	a.Profiles = append([]domain.PlayerProfile{}, a.Profiles...)
	return &a
}

// Create implements domain.PlayerRepository.
func (s *MemoryPlayerStore) Create(ctx context.Context, username, password string, profiles []domain.PlayerProfile) (*domain.PlayerAccount, error) {
	username = strings.TrimSpace(username)
	if len(password) > domain.MaxPasswordBytes {
		return nil, domain.ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.players[username]; exists {
		return nil, domain.ErrUserAlreadyExists
	}
	p := &memoryPlayer{
		account: domain.PlayerAccount{
			ID:       "player_account:" + uuid.NewString(),
			Username: username,
			Profiles: append([]domain.PlayerProfile{}, profiles...),
		},
		hash: hash,
	}
	s.players[username] = p
	return copyAccount(p.account), nil
}

// FindByUsername implements domain.PlayerRepository.
func (s *MemoryPlayerStore) FindByUsername(ctx context.Context, username string) (*domain.PlayerAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[strings.TrimSpace(username)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyAccount(p.account), nil
}

// CheckPassword reports whether password matches the stored hash.
func (s *MemoryPlayerStore) CheckPassword(username, password string) bool {
	s.mu.RLock()
	p, ok := s.players[strings.TrimSpace(username)]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(p.hash, []byte(password)) == nil
}
