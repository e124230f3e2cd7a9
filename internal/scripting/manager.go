package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
)

// GlobalScope is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no scope VM is found.
const GlobalScope = "__global__"

// EntityInfo is a snapshot of a combat participant passed to Lua callbacks.
type EntityInfo struct {
	ID        string
	Name      string
	Kind      string // "player" or "enemy"
	Health    int
	MaxHealth int
	Mana      int
	Armor     int
	Effects   []string
}

// Manager owns one sandboxed LState per scope and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook after all Load calls complete.
// Each scope's LState is single-threaded; the scope lock serializes calls into
// the same VM while allowing different scopes to run concurrently.
type Manager struct {
	mu     sync.RWMutex
	states map[string]*scopeState
	roller *dice.Roller
	logger *zap.Logger

	// Injected after construction. nil = no-op in engine.* modules.
	GetEntity     func(id string) *EntityInfo
	ListOpponents func(id string) []*EntityInfo
}

// scopeState is one VM. limit is the opcode budget granted to every CallHook.
type scopeState struct {
	mu     sync.Mutex
	L      *lua.LState
	cancel func()
	limit  int
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no loaded scopes.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil || logger == nil {
		panic("scripting.NewManager: roller and logger must not be nil")
	}
	return &Manager{
		states: make(map[string]*scopeState),
		roller: roller,
		logger: logger,
	}
}

// LoadScope creates a sandboxed VM for scope, registers all engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: Scope VM is registered, replacing any previous one; returns
// error on Lua load failure and leaves the previous VM in place.
func (m *Manager) LoadScope(scope, scriptDir string, instLimit int) error {
	if scope == "" {
		return fmt.Errorf("scripting: scope must not be empty")
	}
	return m.loadInto(scope, scriptDir, instLimit)
}

// LoadGlobal creates the GlobalScope VM for scripts shared by every scope.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(GlobalScope, scriptDir, instLimit)
}

// Scopes returns the loaded scope keys in sorted order.
func (m *Manager) Scopes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.states))
	for k := range m.states {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.states[key]; ok {
		old.mu.Lock()
		old.cancel()
		old.L.Close()
		old.mu.Unlock()
	}
	m.states[key] = &scopeState{L: L, cancel: cancel, limit: instLimit}
	m.mu.Unlock()

	m.logger.Debug("scripting: scope loaded",
		zap.String("scope", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Close releases every VM. The Manager must not be used afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, st := range m.states {
		st.mu.Lock()
		st.cancel()
		st.L.Close()
		st.mu.Unlock()
		delete(m.states, key)
	}
}

// CallHook calls the named Lua global function in scope's VM. If the scope has
// no VM, the GlobalScope VM is tried as a fallback. Each call runs under a
// fresh budget of the scope's instruction limit. Returns (LNil, nil) if the
// hook is not defined or no VM exists. Lua runtime errors, including an
// exhausted instruction budget, are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	st, ok := m.states[scope]
	if !ok {
		st = m.states[GlobalScope]
	}
	m.mu.RUnlock()

	if st == nil {
		m.logger.Info("scripting: no VM for scope",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	limit := st.limit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	st.cancel()
	ctx, cancel := newCountingContext(limit)
	st.L.SetContext(ctx)
	st.cancel = cancel

	fn := st.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if err := st.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := st.L.Get(-1)
	st.L.Pop(1)
	return ret, nil
}
