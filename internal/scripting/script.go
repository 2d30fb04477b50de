package scripting

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// ErrUndefinedFunction is returned by Call when the named global is not a function.
var ErrUndefinedFunction = errors.New("scripting: function not defined")

// Script owns one sandboxed VM loaded from a single file.
//
// An LState is single-threaded; Script serialises Call with a mutex.
type Script struct {
	mu        sync.Mutex
	L         *lua.LState
	path      string
	instLimit int
}

// Load creates a sandboxed VM and executes the file at path in it.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a ready Script, or an error if the file fails to load
// or exceeds the instruction limit at top level.
func Load(path string, instLimit int) (*Script, error) {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	L := NewSandboxedState()

	ctx, cancel := withBudget(context.Background(), instLimit)
	defer cancel()
	L.SetContext(ctx)
	err := L.DoFile(path)
	L.RemoveContext()
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading %q: %w", path, err)
	}
	return &Script{L: L, path: path, instLimit: instLimit}, nil
}

// Call invokes the global Lua function fn with args and returns its first
// return value. Execution stops when ctx is done or the instruction limit is
// reached, whichever comes first.
//
// Postcondition: Returns the first return value, ErrUndefinedFunction, or the
// Lua runtime error.
func (s *Script) Call(ctx context.Context, fn string, args ...lua.LValue) (lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.L.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return lua.LNil, fmt.Errorf("%w: %s in %q", ErrUndefinedFunction, fn, s.path)
	}

	cctx, cancel := withBudget(ctx, s.instLimit)
	defer cancel()
	s.L.SetContext(cctx)
	defer s.L.RemoveContext()

	if err := s.L.CallByParam(lua.P{
		Fn:      f,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		return lua.LNil, fmt.Errorf("scripting: calling %s in %q: %w", fn, s.path, err)
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret, nil
}

// Close releases the VM.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.L.Close()
}
