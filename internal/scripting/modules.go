package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.debug|info|warn|error(msg)
//	engine.dice.roll(expr)            -> {total, dice, modifier} | nil
//	engine.entity.get_name(id)        -> string | nil
//	engine.entity.get_health(id)      -> health, max_health | nil
//	engine.entity.get_mana(id)        -> number | nil
//	engine.entity.get_armor(id)       -> number | nil
//	engine.entity.get_effects(id)     -> {effect_id...} | nil
//	engine.entity.has_effect(id, eid) -> boolean
//	engine.combat.query(id)           -> {id, name, kind, health, max_health, mana, armor} | nil
//	engine.combat.opponents(id)       -> {{...}, ...}
//
// Every entity lookup goes through the injected callbacks and returns nil when
// the callback is unset or the id is unknown.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetGlobal("engine", engine)

	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "entity", m.entityModule(L))
	L.SetField(engine, "combat", m.combatModule(L))
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, fn := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		res, err := m.roller.RollExpr(L.CheckString(1))
		if err != nil {
			m.logger.Warn("scripting: bad dice expression", zap.Error(err))
			L.Push(lua.LNil)
			return 1
		}
		tbl := L.NewTable()
		L.SetField(tbl, "total", lua.LNumber(res.Total()))
		L.SetField(tbl, "modifier", lua.LNumber(res.Modifier))
		dice := L.NewTable()
		for _, d := range res.Dice {
			dice.Append(lua.LNumber(d))
		}
		L.SetField(tbl, "dice", dice)
		L.Push(tbl)
		return 1
	}))
	return mod
}

func (m *Manager) lookup(id string) *EntityInfo {
	if m.GetEntity == nil {
		return nil
	}
	return m.GetEntity(id)
}

func (m *Manager) entityModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "get_name", L.NewFunction(func(L *lua.LState) int {
		info := m.lookup(L.CheckString(1))
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(info.Name))
		return 1
	}))
	L.SetField(mod, "get_health", L.NewFunction(func(L *lua.LState) int {
		info := m.lookup(L.CheckString(1))
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(info.Health))
		L.Push(lua.LNumber(info.MaxHealth))
		return 2
	}))
	L.SetField(mod, "get_mana", L.NewFunction(func(L *lua.LState) int {
		info := m.lookup(L.CheckString(1))
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(info.Mana))
		return 1
	}))
	L.SetField(mod, "get_armor", L.NewFunction(func(L *lua.LState) int {
		info := m.lookup(L.CheckString(1))
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(info.Armor))
		return 1
	}))
	L.SetField(mod, "get_effects", L.NewFunction(func(L *lua.LState) int {
		info := m.lookup(L.CheckString(1))
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		tbl := L.NewTable()
		for _, id := range info.Effects {
			tbl.Append(lua.LString(id))
		}
		L.Push(tbl)
		return 1
	}))
	L.SetField(mod, "has_effect", L.NewFunction(func(L *lua.LState) int {
		info := m.lookup(L.CheckString(1))
		want := L.CheckString(2)
		found := false
		if info != nil {
			for _, id := range info.Effects {
				if id == want {
					found = true
					break
				}
			}
		}
		L.Push(lua.LBool(found))
		return 1
	}))
	return mod
}

func (m *Manager) combatModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "query", L.NewFunction(func(L *lua.LState) int {
		info := m.lookup(L.CheckString(1))
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(infoTable(L, info))
		return 1
	}))
	L.SetField(mod, "opponents", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		tbl := L.NewTable()
		if m.ListOpponents != nil {
			for _, info := range m.ListOpponents(id) {
				tbl.Append(infoTable(L, info))
			}
		}
		L.Push(tbl)
		return 1
	}))
	return mod
}

func infoTable(L *lua.LState, info *EntityInfo) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "id", lua.LString(info.ID))
	L.SetField(tbl, "name", lua.LString(info.Name))
	L.SetField(tbl, "kind", lua.LString(info.Kind))
	L.SetField(tbl, "health", lua.LNumber(info.Health))
	L.SetField(tbl, "max_health", lua.LNumber(info.MaxHealth))
	L.SetField(tbl, "mana", lua.LNumber(info.Mana))
	L.SetField(tbl, "armor", lua.LNumber(info.Armor))
	return tbl
}
