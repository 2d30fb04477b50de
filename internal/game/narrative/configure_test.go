package narrative_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/narrative"
)

func TestNewFromConfig_Static(t *testing.T) {
	n, cleanup, err := narrative.NewFromConfig(config.NarrativeConfig{Provider: config.ProviderStatic, Timeout: time.Second}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer cleanup()
	assert.False(t, n.Available())
}

func TestNewFromConfig_Anthropic(t *testing.T) {
	n, cleanup, err := narrative.NewFromConfig(config.NarrativeConfig{
		Provider:  config.ProviderAnthropic,
		Timeout:   time.Second,
		Anthropic: config.AnthropicConfig{APIKey: "sk-test", MaxTokens: 50},
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer cleanup()
	assert.True(t, n.Available())
}

func TestNewFromConfig_Lua(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narrative.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function generate_line() return "x" end`), 0o600))

	n, cleanup, err := narrative.NewFromConfig(config.NarrativeConfig{
		Provider: config.ProviderLua,
		Timeout:  time.Second,
		Lua:      config.LuaConfig{Script: path},
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer cleanup()
	assert.True(t, n.Available())

	_, _, err = narrative.NewFromConfig(config.NarrativeConfig{
		Provider: config.ProviderLua,
		Timeout:  time.Second,
		Lua:      config.LuaConfig{Script: filepath.Join(t.TempDir(), "missing.lua")},
	}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNewFromConfig_Unknown(t *testing.T) {
	_, cleanup, err := narrative.NewFromConfig(config.NarrativeConfig{Provider: "openrouter"}, zaptest.NewLogger(t))
	assert.Error(t, err)
	assert.NotNil(t, cleanup)
}
