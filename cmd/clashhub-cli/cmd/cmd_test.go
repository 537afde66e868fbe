package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nfrund/clashhub/internal/clashapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "Clashhub CLI v"+version+"\n", out)
}

func TestPasswordCheck(t *testing.T) {
	t.Run("acceptable password", func(t *testing.T) {
		out, err := run(t, "password", "check", "Abcdefghijk1!")
		require.NoError(t, err)
		assert.Contains(t, out, "✓ At least 12 characters long")
		assert.NotContains(t, out, "✗")
	})

	t.Run("weak password", func(t *testing.T) {
		out, err := run(t, "password", "check", "short")
		assert.ErrorIs(t, err, errPasswordRejected)
		assert.Contains(t, out, "✗ At least 12 characters long")
		assert.Contains(t, out, "✓ At least one lowercase letter")
	})

	t.Run("mismatched confirmation", func(t *testing.T) {
		out, err := run(t, "password", "check", "Abcdefghijk1!", "--confirm", "Abcdefghijk1?")
		assert.ErrorIs(t, err, errPasswordRejected)
		assert.Contains(t, out, "Passwords do not match")
	})

	t.Run("matching confirmation", func(t *testing.T) {
		out, err := run(t, "password", "check", "Abcdefghijk1!", "--confirm", "Abcdefghijk1!")
		require.NoError(t, err)
		assert.Contains(t, out, "Passwords match")
	})
}

func TestTagValidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if r.URL.Path == "/players/#2PP" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	flags := []string{"--clash-api-url", srv.URL, "--clash-api-key", "test-key"}

	out, err := run(t, append([]string{"tag", "validate", "#2pp"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Normalized tag: #2PP")
	assert.Contains(t, out, "Player found")

	_, err = run(t, append([]string{"tag", "validate", "90"}, flags...)...)
	assert.ErrorIs(t, err, clashapi.ErrInvalidTag)

	_, err = run(t, append([]string{"tag", "validate", "ooo"}, flags...)...)
	assert.ErrorIs(t, err, errTagNotFound)
}

func TestTagValidate_OfflineAndEnv(t *testing.T) {
	t.Setenv("CLASHHUB_CLASH_API_URL", "http://127.0.0.1:1")

	out, err := run(t, "tag", "validate", "2PP", "--offline")
	require.NoError(t, err)
	assert.Equal(t, "Normalized tag: #2PP\n", out)

	_, err = run(t, "tag", "validate", "2PP", "--timeout", "1s")
	assert.ErrorContains(t, err, "lookup failed")
}
