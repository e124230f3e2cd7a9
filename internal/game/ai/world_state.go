package ai

import (
	"github.com/cory-johannsen/dungeon/internal/game/effect"
	"github.com/cory-johannsen/dungeon/internal/game/entity"
)

// Situation is the snapshot one enemy plans against.
//
// Invariant: Self and Player must not be nil.
type Situation struct {
	Self   *entity.Enemy
	Player *entity.Player
	Turn   int
	// Ready lists the cast abilities the enemy can afford and has off cooldown.
	Ready []*effect.AbilityDef
}

// OutOfReach reports whether a melee enemy must close distance before it can attack.
func (s Situation) OutOfReach() bool {
	return s.Self.Type == entity.Melee && s.Self.Range == entity.OutOfRange
}

// Wounded reports whether health has fallen below the pattern's retreat threshold.
func (s Situation) Wounded() bool {
	th := s.Self.Pattern.RetreatThreshold
	return th > 0 && s.Self.HealthFraction() < th
}

// AbilityReady reports whether at least one cast ability is usable.
func (s Situation) AbilityReady() bool { return len(s.Ready) > 0 }

// Holds evaluates a built-in method condition. The empty condition always holds.
func (s Situation) Holds(cond string) bool {
	switch cond {
	case "":
		return true
	case CondOutOfReach:
		return s.OutOfReach()
	case CondWounded:
		return s.Wounded()
	case CondAbilityReady:
		return s.AbilityReady()
	case CondHealthy:
		return !s.Wounded()
	default:
		return false
	}
}

// Weight returns the pattern probability a chance key names.
//
// Postcondition: the empty key returns 1.
func (s Situation) Weight(key string) float64 {
	p := s.Self.Pattern
	switch key {
	case ChanceAggressiveness:
		return p.Aggressiveness
	case ChanceDefensiveness:
		return 1 - p.Aggressiveness
	case ChanceAbility:
		return p.AbilityChance
	default:
		return 1
	}
}

// ResolveTarget maps a target token to an entity ID.
//
// Postcondition: "self" resolves to the enemy, everything else to the player.
func (s Situation) ResolveTarget(token string) string {
	if token == "self" {
		return s.Self.ID
	}
	return s.Player.ID
}
