// Package entity models combat participants: the shared Entity core plus the
// Player and Enemy variants.
//
// Computed stats are never stored. Every Stats call projects the base block,
// gear totals, temporary modifiers and active-effect modifiers afresh.
package entity

import (
	"errors"

	"github.com/cory-johannsen/dungeon/internal/game/effect"
	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

// ErrInsufficientMana is returned when a mana cost exceeds current mana.
var ErrInsufficientMana = errors.New("entity: insufficient mana")

// ErrInsufficientHealth is returned when a health cost would be lethal.
var ErrInsufficientHealth = errors.New("entity: insufficient health")

// RangeState is the two-valued distance abstraction between combatants.
type RangeState int

const (
	InRange RangeState = iota
	OutOfRange
)

func (r RangeState) String() string {
	if r == OutOfRange {
		return "out_of_range"
	}
	return "in_range"
}

// ParseRange maps "in_range"/"out_of_range" to a RangeState. Any other value is not ok.
func ParseRange(s string) (RangeState, bool) {
	switch s {
	case "in_range":
		return InRange, true
	case "out_of_range":
		return OutOfRange, true
	}
	return InRange, false
}

// GearSource supplies the modifiers of equipped items. inventory.Inventory satisfies it.
type GearSource interface {
	Totals() stats.Modifiers
}

// TempModifier is a stat delta that lives for part of a turn.
type TempModifier struct {
	Source      string
	Modifiers   stats.Modifiers
	AppliedTurn int
	// ExpireAtTurnEnd removes the modifier at the end of the turn it was applied in.
	ExpireAtTurnEnd bool
}

// Entity is the state shared by every combatant.
//
// Invariant: Health, Mana and EnergyShield report values in [0, max].
// It is not safe for concurrent use.
type Entity struct {
	ID      string
	Name    string
	Base    stats.BaseStats
	Range   RangeState
	Effects *effect.Collection

	health       int
	mana         int
	energyShield int
	gear         GearSource
	temps        []TempModifier
	cooldowns    map[string]int
	toggles      map[string]string
}

// New creates an Entity at full resources. Unset optional stats in base take
// their defaults.
//
// Precondition: base.Validate() == nil.
func New(id, name string, base stats.BaseStats) *Entity {
	e := &Entity{
		ID:        id,
		Name:      name,
		Base:      base.WithDefaults(),
		Effects:   effect.NewCollection(),
		cooldowns: make(map[string]int),
		toggles:   make(map[string]string),
	}
	e.Refill()
	return e
}

// SetGear installs the source of equipment modifiers.
func (e *Entity) SetGear(g GearSource) { e.gear = g }

// Stats returns the computed projection of every modifier source.
func (e *Entity) Stats() stats.Stats {
	sources := make([]stats.Modifiers, 0, len(e.temps)+2)
	if e.gear != nil {
		sources = append(sources, e.gear.Totals())
	}
	for _, t := range e.temps {
		sources = append(sources, t.Modifiers)
	}
	sources = append(sources, e.Effects.Modifiers())
	return stats.Compute(e.Base, sources...)
}

// Health returns current health clamped to [0, MaxHealth].
func (e *Entity) Health() int { return clamp(e.health, e.Stats().MaxHealth) }

// Mana returns current mana clamped to [0, MaxMana].
func (e *Entity) Mana() int { return clamp(e.mana, e.Stats().MaxMana) }

// EnergyShield returns current energy shield clamped to [0, MaxEnergyShield].
func (e *Entity) EnergyShield() int { return clamp(e.energyShield, e.Stats().MaxEnergyShield) }

// Alive reports whether health is above zero.
func (e *Entity) Alive() bool { return e.Health() > 0 }

// Refill sets every resource to its computed maximum.
func (e *Entity) Refill() {
	s := e.Stats()
	e.health = s.MaxHealth
	e.mana = s.MaxMana
	e.energyShield = s.MaxEnergyShield
}

// SetHealth sets health, clamped to [0, MaxHealth].
func (e *Entity) SetHealth(v int) { e.health = clamp(v, e.Stats().MaxHealth) }

// ApplyDamage removes shield and health damage already split by the damage pipeline.
//
// Postcondition: both resources stay in [0, max].
func (e *Entity) ApplyDamage(shield, health int) {
	s := e.Stats()
	e.energyShield = clamp(clamp(e.energyShield, s.MaxEnergyShield)-max(shield, 0), s.MaxEnergyShield)
	e.health = clamp(clamp(e.health, s.MaxHealth)-max(health, 0), s.MaxHealth)
}

// Heal restores up to n health and returns the amount actually restored.
func (e *Entity) Heal(n int) int {
	if n <= 0 {
		return 0
	}
	before := e.Health()
	e.health = clamp(before+n, e.Stats().MaxHealth)
	return e.health - before
}

// RestoreMana adds up to n mana and returns the amount restored.
func (e *Entity) RestoreMana(n int) int {
	if n <= 0 {
		return 0
	}
	before := e.Mana()
	e.mana = clamp(before+n, e.Stats().MaxMana)
	return e.mana - before
}

// DrainMana removes up to n mana without failing and returns the amount removed.
func (e *Entity) DrainMana(n int) int {
	if n <= 0 {
		return 0
	}
	before := e.Mana()
	e.mana = clamp(before-n, e.Stats().MaxMana)
	return before - e.mana
}

// RestoreEnergyShield adds up to n shield and returns the amount restored.
func (e *Entity) RestoreEnergyShield(n int) int {
	if n <= 0 {
		return 0
	}
	before := e.EnergyShield()
	e.energyShield = clamp(before+n, e.Stats().MaxEnergyShield)
	return e.energyShield - before
}

// SpendMana pays a mana cost.
//
// Postcondition: on ErrInsufficientMana nothing changes.
func (e *Entity) SpendMana(n int) error {
	if n <= 0 {
		return nil
	}
	cur := e.Mana()
	if cur < n {
		return ErrInsufficientMana
	}
	e.mana = cur - n
	return nil
}

// SpendHealth pays a health cost. A cost that would reduce health to zero is refused.
func (e *Entity) SpendHealth(n int) error {
	if n <= 0 {
		return nil
	}
	cur := e.Health()
	if cur <= n {
		return ErrInsufficientHealth
	}
	e.health = cur - n
	return nil
}

// AddTemporary installs a temporary modifier applied during turn.
func (e *Entity) AddTemporary(source string, mods stats.Modifiers, turn int, expireAtTurnEnd bool) {
	e.temps = append(e.temps, TempModifier{Source: source, Modifiers: mods, AppliedTurn: turn, ExpireAtTurnEnd: expireAtTurnEnd})
}

// Temporary returns a copy of the active temporary modifiers.
func (e *Entity) Temporary() []TempModifier {
	out := make([]TempModifier, len(e.temps))
	copy(out, e.temps)
	return out
}

// ClearTemporary removes every modifier applied before turn; called at the owner's turn start.
func (e *Entity) ClearTemporary(turn int) int {
	return e.dropTemps(func(t TempModifier) bool { return t.AppliedTurn < turn })
}

// ExpireTemporary removes end-of-turn modifiers applied at or before turn.
func (e *Entity) ExpireTemporary(turn int) int {
	return e.dropTemps(func(t TempModifier) bool { return t.ExpireAtTurnEnd && t.AppliedTurn <= turn })
}

func (e *Entity) dropTemps(drop func(TempModifier) bool) int {
	before := e.snapshot()
	kept := e.temps[:0]
	n := 0
	for _, t := range e.temps {
		if drop(t) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	e.temps = kept
	e.reclamp(before)
	return n
}

type resources struct{ health, mana, shield int }

func (e *Entity) snapshot() resources {
	return resources{e.Health(), e.Mana(), e.EnergyShield()}
}

// reclamp stores the clamped values so a shrinking maximum never leaves stale overflow.
func (e *Entity) reclamp(r resources) {
	s := e.Stats()
	e.health = clamp(r.health, s.MaxHealth)
	e.mana = clamp(r.mana, s.MaxMana)
	e.energyShield = clamp(r.shield, s.MaxEnergyShield)
}

// CooldownReady reports whether ability can be used during turn.
func (e *Entity) CooldownReady(ability string, turn int) bool {
	return turn >= e.cooldowns[ability]
}

// StartCooldown makes ability unavailable for cooldown turns after turn.
func (e *Entity) StartCooldown(ability string, turn, cooldown int) {
	if cooldown > 0 {
		e.cooldowns[ability] = turn + cooldown + 1
	}
}

// Toggled returns the effect instance installed by toggle ability, if it is on.
func (e *Entity) Toggled(ability string) (string, bool) {
	id, ok := e.toggles[ability]
	return id, ok
}

// SetToggled records that ability is on and installed instanceID.
func (e *Entity) SetToggled(ability, instanceID string) { e.toggles[ability] = instanceID }

// ClearToggled records that ability is off.
func (e *Entity) ClearToggled(ability string) { delete(e.toggles, ability) }

// ResetCombatState drops temporary modifiers, cooldowns and toggle records at combat end.
func (e *Entity) ResetCombatState() {
	before := e.snapshot()
	e.temps = nil
	clear(e.cooldowns)
	clear(e.toggles)
	e.reclamp(before)
}

func clamp(v, hi int) int {
	if hi < 0 {
		hi = 0
	}
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
