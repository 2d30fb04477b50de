package narrative

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// LuaFunction is the global a narrative script must define:
//
//	function generate_line(role, situation, roll, success) return "..." end
const LuaFunction = "generate_line"

// LuaProvider generates lines with a sandboxed Lua script.
type LuaProvider struct {
	script *scripting.Script
}

// NewLuaProvider loads the script at path.
//
// Postcondition: Returns a provider or an error if the script fails to load.
func NewLuaProvider(path string, instLimit int) (*LuaProvider, error) {
	s, err := scripting.Load(path, instLimit)
	if err != nil {
		return nil, err
	}
	return &LuaProvider{script: s}, nil
}

// GenerateLine calls generate_line in the script.
//
// Postcondition: Returns the string result, or an error if the script errors
// or returns a non-string.
func (p *LuaProvider) GenerateLine(ctx context.Context, req Request) (string, error) {
	ret, err := p.script.Call(ctx, LuaFunction,
		lua.LString(req.Role),
		lua.LString(req.Situation),
		lua.LNumber(req.Roll),
		lua.LBool(req.Success),
	)
	if err != nil {
		return "", err
	}
	s, ok := ret.(lua.LString)
	if !ok {
		return "", fmt.Errorf("narrative: %s returned %s, want string", LuaFunction, ret.Type())
	}
	return string(s), nil
}

// Close releases the script VM.
func (p *LuaProvider) Close() {
	p.script.Close()
}
