// Package scripting provides a sandboxed GopherLua execution environment
// for effect and enemy AI hooks. It has no dependency on game domain packages;
// all game interactions are injected via Manager callback fields.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget of one hook call when no
// scope-specific limit is configured.
const DefaultInstructionLimit = 100_000

// safeLibs are the only standard libraries opened in a sandbox.
var safeLibs = []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath}

// strippedGlobals are removed after the safe libraries load. They either reach the
// host (dofile, loadfile, load, require), tamper with the VM (collectgarbage) or
// bypass the injected dice source.
var strippedGlobals = []string{"dofile", "loadfile", "load", "collectgarbage", "require"}

// strippedMath are math functions hidden so every random draw goes through engine.dice.
var strippedMath = []string{"random", "randomseed"}

// budget is a context that cancels itself once its opcode allowance is spent.
// GopherLua's main loop calls Done once per opcode.
type budget struct {
	context.Context
	cancel    context.CancelFunc
	remaining atomic.Int64
}

func (b *budget) Done() <-chan struct{} {
	if b.remaining.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to Done.
//
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	b := &budget{Context: base, cancel: cancel}
	b.remaining.Store(int64(limit))
	return b, cancel
}

// NewSandboxedState creates a GopherLua LState with only the base, table,
// string and math libraries, no host access, no math.random, and an opcode
// budget of instLimit.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the LState and must call cancel and L.Close().
// Manager replaces the budget before every hook call.
func NewSandboxedState(instLimit int) (*lua.LState, context.CancelFunc) {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range safeLibs {
		open(L)
	}
	for _, name := range strippedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	if math, ok := L.GetGlobal(lua.MathLibName).(*lua.LTable); ok {
		for _, name := range strippedMath {
			math.RawSetString(name, lua.LNil)
		}
	}

	ctx, cancel := newCountingContext(instLimit)
	L.SetContext(ctx)
	return L, cancel
}
