package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.MaxBooks)
	assert.Equal(t, "TESTEX", cfg.DefaultVenue)
	assert.Equal(t, "FOOBAR", cfg.DefaultSymbol)
	assert.Equal(t, 8000, cfg.Port)
	assert.False(t, cfg.Excess)
	assert.False(t, cfg.Websockets)
}

func TestOverrides(t *testing.T) {
	cfg, err := Parse([]string{"-venue", "OTHEREX", "-port", "9000", "-excess", "-ws"})
	require.NoError(t, err)
	assert.Equal(t, "OTHEREX", cfg.DefaultVenue)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.Excess)
	assert.True(t, cfg.Websockets)
}

func TestUnknownFlagErrors(t *testing.T) {
	_, err := Parse([]string{"-nosuchflag", "x"})
	assert.Error(t, err)
}
