// Package scripting runs content scripts in a sandboxed GopherLua VM with a
// per-call instruction budget. It has no dependency on game packages.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget per call when none is configured.
const DefaultInstructionLimit = 100_000

// safeLibs are the only standard libraries a script can see.
var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// blockedGlobals are base-library functions that reach the filesystem or
// the collector.
var blockedGlobals = []string{"dofile", "loadfile", "load", "collectgarbage", "require"}

// NewSandboxedState returns a VM with base, table, string and math loaded and
// blockedGlobals removed. The instruction budget is applied per call by Script.
//
// Postcondition: Returns a non-nil LState. The caller must call L.Close().
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range safeLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// budget is a context that cancels itself once Done has been called limit
// times. The VM polls Done once per opcode, so this caps executed instructions.
type budget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func (b *budget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// withBudget derives a context from parent that also ends after limit opcodes.
//
// Precondition: limit > 0.
func withBudget(parent context.Context, limit int) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	b := &budget{Context: ctx, cancel: cancel}
	b.left.Store(int64(limit))
	return b, cancel
}
