// Package auth implements the account -> API key gate (spec component
// C8): an immutable map loaded once at startup that gatekeeps mutation and
// private reads while leaving public reads unauthenticated.
package auth

import (
	"encoding/json"
	"errors"
	"os"
)

// ErrNoAPIKey means the caller supplied no key at all (spec.md §7's
// no-api-key taxonomy entry).
var ErrNoAPIKey = errors.New("server is in authenticated mode but no API key was received")

// ErrAuthFailure means the supplied key doesn't match the account's
// stored key, or the account is unknown.
var ErrAuthFailure = errors.New("unknown account or wrong API key")

// HeaderNames are checked in order: the preferred Starfighter header
// first, falling back to the legacy Stockfighter spelling (spec.md §4.7).
var HeaderNames = []string{"X-Starfighter-Authorization", "X-Stockfighter-Authorization"}

// Gate holds the immutable account -> key map. The zero value is open
// mode: every operation is permitted.
type Gate struct {
	keys map[string]string
}

// Load reads a JSON object mapping account to API key from path. An empty
// path yields an open-mode Gate (spec.md §4.7: "when empty, all operations
// are permitted").
func Load(path string) (*Gate, error) {
	if path == "" {
		return &Gate{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var keys map[string]string
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, err
	}
	return &Gate{keys: keys}, nil
}

// Enabled reports whether the gate enforces authentication at all.
func (g *Gate) Enabled() bool {
	return g != nil && len(g.keys) > 0
}

// Authorize checks that key is the correct, non-empty API key for
// account. When the gate is disabled it always succeeds.
func (g *Gate) Authorize(account, key string) error {
	if !g.Enabled() {
		return nil
	}
	if key == "" {
		return ErrNoAPIKey
	}
	stored, ok := g.keys[account]
	if !ok || stored != key {
		return ErrAuthFailure
	}
	return nil
}

// KeyFromHeaders extracts the API key from an http.Header-shaped lookup
// function, trying each of HeaderNames in turn.
func KeyFromHeaders(get func(string) string) string {
	for _, name := range HeaderNames {
		if v := get(name); v != "" {
			return v
		}
	}
	return ""
}
