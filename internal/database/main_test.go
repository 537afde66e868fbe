package database

import (
	"context"
	"testing"
	"time"

	"github.com/nfrund/clashhub/internal/config"
	"github.com/nfrund/clashhub/internal/testutils"
	"github.com/surrealdb/surrealdb.go"
)

// setupDB connects to the SurrealDB instance named by SURREAL_URL, applies
// the schema and clears the tables touched by tests.
func setupDB(t *testing.T) (*surrealdb.DB, *config.Config) {
	t.Helper()
	cfg := testutils.ConfigForTests(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewDB(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		_, _ = surrealdb.Query[any](context.Background(), db, "DELETE user; DELETE player_account;", nil)
		db.Close(context.Background())
	})
	_, _ = surrealdb.Query[any](ctx, db, "DELETE user; DELETE player_account;", nil)
	return db, cfg
}
