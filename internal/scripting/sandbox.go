// Package scripting provides a sandboxed GopherLua environment for custom AI
// behavior scripts. Scripts see read-only snapshots of combat state and
// return an action choice; they never touch engine internals directly.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit caps the total number of Lua opcodes a VM may
// execute, keeping buggy scripts from stalling the combat loop.
const DefaultInstructionLimit = 100_000

// opcodeBudget is a context.Context whose Done() cancels after a fixed number
// of calls. GopherLua polls Done() once per opcode, which turns the call
// budget into an exact instruction limit.
type opcodeBudget struct {
	context.Context
	cancel    context.CancelFunc
	remaining atomic.Int64
}

func (b *opcodeBudget) Done() <-chan struct{} {
	if b.remaining.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

func newOpcodeBudget(limit int) context.Context {
	base, cancel := context.WithCancel(context.Background())
	b := &opcodeBudget{Context: base, cancel: cancel}
	b.remaining.Store(int64(limit))
	return b
}

// newSandboxedState creates an LState with only the safe standard libraries
// (base, table, string, math), the file/load globals stripped, and execution
// bounded by instLimit opcodes. instLimit <= 0 uses DefaultInstructionLimit.
//
// Postcondition: Returns a non-nil LState; the caller must Close it.
func newSandboxedState(instLimit int) *lua.LState {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetContext(newOpcodeBudget(instLimit))
	return L
}
