package ai

import (
	"github.com/cory-johannsen/dungeon/internal/game/effect"
	"github.com/cory-johannsen/dungeon/internal/game/entity"
)

// AbilitySource looks up ability definitions. effect.Registry satisfies it.
type AbilitySource interface {
	Ability(id string) (*effect.AbilityDef, bool)
}

// BuildSituation constructs the planning snapshot for self during turn.
//
// Precondition: self, player and abilities must not be nil.
// Postcondition: Ready holds, in self.Abilities order, every cast ability that is
// off cooldown, affordable and not disabled.
func BuildSituation(self *entity.Enemy, player *entity.Player, turn int, abilities AbilitySource) Situation {
	sit := Situation{Self: self, Player: player, Turn: turn}
	if self.Effects.Disables("cast_ability") {
		return sit
	}
	for _, id := range self.Abilities {
		def, ok := abilities.Ability(id)
		if !ok || def.Mode != effect.ModeCast {
			continue
		}
		if !self.CooldownReady(id, turn) || self.Mana() < def.ManaCost {
			continue
		}
		if def.HealthCost > 0 && self.Health() <= def.HealthCost {
			continue
		}
		if need, ok := entity.ParseRange(def.RangeRequired); ok && need != self.Range {
			continue
		}
		sit.Ready = append(sit.Ready, def)
	}
	return sit
}
