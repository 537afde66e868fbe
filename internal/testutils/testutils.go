package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/nfrund/clashhub/internal/config"
)

// ProjectRoot walks up from the working directory to the directory holding go.mod.
func ProjectRoot(t *testing.T) string {
	t.Helper()

	path, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path
		}
		if path == filepath.Dir(path) {
			t.Fatalf("could not find project root with go.mod")
		}
		path = filepath.Dir(path)
	}
}

// ConfigForTests returns the configuration for SurrealDB integration tests.
// Values from an optional .env.test at the project root are applied with
// t.Setenv. The test is skipped in -short mode or when SURREAL_URL is unset.
func ConfigForTests(t *testing.T) *config.Config {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping SurrealDB integration test in short mode")
	}

	envFile := filepath.Join(ProjectRoot(t), ".env.test")
	if _, err := os.Stat(envFile); err == nil {
		env, err := godotenv.Read(envFile)
		if err != nil {
			t.Fatalf("failed to load .env.test file: %v", err)
		}
		for key, value := range env {
			t.Setenv(key, value)
		}
	}

	if os.Getenv("SURREAL_URL") == "" {
		t.Skip("SURREAL_URL not set")
	}
	return config.FromEnv()
}
