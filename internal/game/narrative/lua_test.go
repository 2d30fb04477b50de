package narrative_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/narrative"
)

func luaProvider(t *testing.T, body string) *narrative.LuaProvider {
	t.Helper()
	path := filepath.Join(t.TempDir(), "narrative.lua")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	p, err := narrative.NewLuaProvider(path, 0)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestLuaProvider_GenerateLine(t *testing.T) {
	p := luaProvider(t, `
		function generate_line(role, situation, roll, success)
			if success then
				return role .. " strikes with a " .. roll
			end
			return role .. " curses"
		end
	`)
	line, err := p.GenerateLine(context.Background(), narrative.Request{Role: character.RoleOrk, Roll: 5, Success: true})
	require.NoError(t, err)
	assert.Equal(t, "ork strikes with a 5", line)
}

func TestLuaProvider_NonStringResult(t *testing.T) {
	p := luaProvider(t, `function generate_line() return 42 end`)
	_, err := p.GenerateLine(context.Background(), narrative.Request{Role: character.RoleOrk})
	assert.Error(t, err)
}

func TestLuaProvider_ScriptErrorFallsBackThroughNarrator(t *testing.T) {
	p := luaProvider(t, `function generate_line() error("broken") end`)
	n := narrative.NewNarrator(p, time.Second, zaptest.NewLogger(t))
	line := n.Attempt(context.Background(), narrative.Request{Role: character.RoleTyranid, Success: true})
	assert.Equal(t, narrative.SourceFallback, line.Source)
	assert.Equal(t, "*SCREECHING ROAR* *BIOLOGICAL HORROR SOUNDS*", line.Text)
}

func TestNewLuaProvider_MissingFile(t *testing.T) {
	_, err := narrative.NewLuaProvider(filepath.Join(t.TempDir(), "missing.lua"), 0)
	assert.Error(t, err)
}

func TestLuaProvider_BundledScriptCoversEveryRole(t *testing.T) {
	p, err := narrative.NewLuaProvider(filepath.Join("..", "..", "..", "content", "scripts", "narrative.lua"), 100000)
	require.NoError(t, err)
	t.Cleanup(p.Close)

	for _, role := range character.AllRoles() {
		for _, success := range []bool{true, false} {
			line, err := p.GenerateLine(context.Background(), narrative.Request{Role: role, Roll: 4, Success: success})
			require.NoError(t, err, "role %s", role)
			assert.NotEmpty(t, line)
			assert.NotEqual(t, "...", line, "role %s has no lines", role)
		}
	}
}
