package simulation

import (
	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/entity"
	"github.com/cory-johannsen/dungeon/internal/scripting"
)

// BindScripts points the Lua engine.entity and engine.combat modules at m.
//
// Postcondition: scripts observe snapshots only; they never hold live entities.
func BindScripts(mgr *scripting.Manager, m *combat.Manager) {
	playerID := m.Player().ID
	kind := func(id string) string {
		if id == playerID {
			return "player"
		}
		return "enemy"
	}
	mgr.GetEntity = func(id string) *scripting.EntityInfo {
		e, ok := m.Entity(id)
		if !ok {
			return nil
		}
		return EntityInfo(e, kind(id))
	}
	mgr.ListOpponents = func(id string) []*scripting.EntityInfo {
		foes := m.Opponents(id)
		out := make([]*scripting.EntityInfo, 0, len(foes))
		for _, e := range foes {
			out = append(out, EntityInfo(e, kind(e.ID)))
		}
		return out
	}
}

// EntityInfo snapshots e for Lua.
func EntityInfo(e *entity.Entity, kind string) *scripting.EntityInfo {
	s := e.Stats()
	info := &scripting.EntityInfo{
		ID:        e.ID,
		Name:      e.Name,
		Kind:      kind,
		Health:    e.Health(),
		MaxHealth: s.MaxHealth,
		Mana:      e.Mana(),
		Armor:     s.Armor,
	}
	for _, a := range e.Effects.Visible() {
		info.Effects = append(info.Effects, a.Effect.ID)
	}
	return info
}
