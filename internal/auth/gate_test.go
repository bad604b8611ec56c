package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenModeGateAllowsEverything(t *testing.T) {
	g, err := Load("")
	require.NoError(t, err)
	assert.False(t, g.Enabled())
	assert.NoError(t, g.Authorize("anyone", ""))
}

func TestLoadEnforcesKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"acct-a":"key-a"}`), 0o600))

	g, err := Load(path)
	require.NoError(t, err)
	assert.True(t, g.Enabled())

	assert.NoError(t, g.Authorize("acct-a", "key-a"))
	assert.ErrorIs(t, g.Authorize("acct-a", "wrong"), ErrAuthFailure)
	assert.ErrorIs(t, g.Authorize("acct-a", ""), ErrNoAPIKey)
	assert.ErrorIs(t, g.Authorize("unknown", "key-a"), ErrAuthFailure)
}

func TestKeyFromHeadersPrefersStarfighterSpelling(t *testing.T) {
	headers := map[string]string{
		"X-Starfighter-Authorization":  "new",
		"X-Stockfighter-Authorization": "old",
	}
	key := KeyFromHeaders(func(name string) string { return headers[name] })
	assert.Equal(t, "new", key)

	delete(headers, "X-Starfighter-Authorization")
	key = KeyFromHeaders(func(name string) string { return headers[name] })
	assert.Equal(t, "old", key)
}
