package entity

import (
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

// ExperiencePerLevel is the per-level experience multiplier: reaching level n+1
// from n costs n*ExperiencePerLevel.
const ExperiencePerLevel = 100

// Player is the player-controlled combatant.
type Player struct {
	*Entity
	*inventory.Inventory
	Level      int
	Experience int
	Gold       int
}

// NewPlayer creates a level-1 Player with an empty inventory.
//
// Precondition: base.Validate() == nil; backpackSlots >= 0.
// Postcondition: resources are full; equipment modifiers flow into Stats.
func NewPlayer(id, name string, base stats.BaseStats, backpackSlots int) *Player {
	inv := inventory.New(backpackSlots)
	e := New(id, name, base)
	e.SetGear(inv)
	return &Player{Entity: e, Inventory: inv, Level: 1}
}

// Ranged reports whether the equipped weapon fires from range.
func (p *Player) Ranged() bool {
	w := p.Weapon()
	return w != nil && w.Ranged()
}

// WeaponClass returns the equipped weapon's class, or "unarmed".
func (p *Player) WeaponClass() string {
	if w := p.Weapon(); w != nil && w.Class != "" {
		return w.Class
	}
	return "unarmed"
}

// DamageType returns the equipped weapon's damage type, defaulting to physical.
func (p *Player) DamageType() string {
	if w := p.Weapon(); w != nil && w.DamageType != "" {
		return w.DamageType
	}
	return "physical"
}

// NextLevelAt returns the experience needed to reach the next level.
func (p *Player) NextLevelAt() int { return p.Level * ExperiencePerLevel }

// GainExperience adds xp and levels up as many times as the total allows.
//
// Postcondition: 0 <= Experience < NextLevelAt(); returns the number of levels gained.
func (p *Player) GainExperience(xp int) int {
	if xp <= 0 {
		return 0
	}
	p.Experience += xp
	gained := 0
	for p.Experience >= p.NextLevelAt() {
		p.Experience -= p.NextLevelAt()
		p.Level++
		gained++
	}
	return gained
}
