package database

import (
	"context"
	"strings"
	"testing"

	"github.com/nfrund/clashhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPlayerStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPlayerStore()

	profiles := []domain.PlayerProfile{{PlayerTag: "2PP", IsPrimary: true}, {PlayerTag: "9LQ"}}
	account, err := store.Create(ctx, " chief ", "hunter2hunter2", profiles)
	require.NoError(t, err)
	assert.Equal(t, "chief", account.Username)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, profiles, account.Profiles)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := store.Create(ctx, "chief", "another-password", nil)
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})

	t.Run("find", func(t *testing.T) {
		found, err := store.FindByUsername(ctx, "chief")
		require.NoError(t, err)
		assert.Equal(t, account, found)

		_, err = store.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("returned accounts are copies", func(t *testing.T) {
		found, err := store.FindByUsername(ctx, "chief")
		require.NoError(t, err)
		found.Profiles[0].PlayerTag = "CHANGED"

		again, err := store.FindByUsername(ctx, "chief")
		require.NoError(t, err)
		assert.Equal(t, "2PP", again.Profiles[0].PlayerTag)
	})

	t.Run("password too long", func(t *testing.T) {
		_, err := store.Create(ctx, "barbarian", strings.Repeat("x", domain.MaxPasswordBytes+1), nil)
		assert.ErrorIs(t, err, domain.ErrPasswordTooLong)
	})

	t.Run("password check", func(t *testing.T) {
		assert.True(t, store.CheckPassword("chief", "hunter2hunter2"))
		assert.False(t, store.CheckPassword("chief", "wrong"))
		assert.False(t, store.CheckPassword("nobody", "hunter2hunter2"))
	})
}

func TestDBError(t *testing.T) {
	base := assert.AnError
	err := NewDBError(base, "query execution failed").WithQuery("  SELECT * FROM user  ")
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "Query: SELECT * FROM user")

	wrapped := WrapError(err, "failed to apply schema")
	assert.ErrorIs(t, wrapped, base)
	assert.Contains(t, wrapped.Error(), "failed to apply schema: query execution failed")
	assert.Nil(t, WrapError(nil, "ignored"))
}

func TestHelpers(t *testing.T) {
	assert.True(t, hasLimitClause("SELECT * FROM user LIMIT 5"))
	assert.False(t, hasLimitClause("SELECT * FROM unlimited"))

	assert.False(t, isUniqueViolation(assert.AnError))
	assert.True(t, isUniqueViolation(NewDBError(errStr("Database index `player_account_username` already contains 'chief'"), "x")))
	assert.True(t, isUniqueViolation(errStr("There was a problem with the database: The record access signup query failed")))
	assert.False(t, isUniqueViolation(nil))
}

type errStr string

func (e errStr) Error() string { return string(e) }
