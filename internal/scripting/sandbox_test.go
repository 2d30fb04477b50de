package scripting_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/scripting"
)

func writeScript(t testing.TB, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "script.lua")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewSandboxedState_UnsafeLibsNil(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_SafeLibsAvailable(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	err := L.DoString(`
		local x = math.sqrt(4)
		assert(x == 2.0, "math.sqrt failed")
		local s = string.upper("hello")
		assert(s == "HELLO", "string.upper failed")
	`)
	assert.NoError(t, err)
}

func TestScript_Call_ReturnsValue(t *testing.T) {
	path := writeScript(t, t.TempDir(), `
		function shout(name, roll)
			return string.upper(name) .. " rolls " .. roll
		end
	`)
	s, err := scripting.Load(path, 0)
	require.NoError(t, err)
	defer s.Close()

	ret, err := s.Call(context.Background(), "shout", lua.LString("ork"), lua.LNumber(5))
	require.NoError(t, err)
	assert.Equal(t, "ORK rolls 5", ret.String())
}

func TestScript_Call_UndefinedFunction(t *testing.T) {
	s, err := scripting.Load(writeScript(t, t.TempDir(), `x = 1`), 0)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Call(context.Background(), "missing")
	assert.True(t, errors.Is(err, scripting.ErrUndefinedFunction))
}

func TestScript_Call_InstructionLimitExceeded(t *testing.T) {
	s, err := scripting.Load(writeScript(t, t.TempDir(), `function spin() while true do end end`), 50)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Call(context.Background(), "spin")
	assert.Error(t, err)

	// The VM stays usable for later calls.
	_, err = s.Call(context.Background(), "spin")
	assert.Error(t, err)
}

func TestScript_Call_HonoursContextDeadline(t *testing.T) {
	s, err := scripting.Load(writeScript(t, t.TempDir(), `function spin() while true do end end`), 1<<40)
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Call(ctx, "spin")
	assert.Error(t, err)
}

func TestLoad_TopLevelLoopHitsLimit(t *testing.T) {
	_, err := scripting.Load(writeScript(t, t.TempDir(), `while true do end`), 10)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := scripting.Load(filepath.Join(t.TempDir(), "nope.lua"), 0)
	assert.Error(t, err)
}

func TestProperty_InstructionLimitAlwaysStopsLoops(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, `function spin() while true do end end`)
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(10, 500).Draw(rt, "limit")
		s, err := scripting.Load(path, limit)
		require.NoError(rt, err)
		defer s.Close()
		_, err = s.Call(context.Background(), "spin")
		assert.Error(rt, err)
	})
}
