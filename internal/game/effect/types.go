// Package effect implements the unified effect pipeline shared by status effects
// and equipment-granted ability effects.
//
// The Engine filters an effect list by trigger, runs each effect's pure Process
// function and returns descriptive Results. Applying those results to entities is
// the caller's job; the only state the Engine mutates is a Collection's membership
// and durations.
package effect

// Trigger names a moment in combat at which effects may fire.
type Trigger string

const (
	TriggerCombatStart  Trigger = "combat_start"
	TriggerTurnStart    Trigger = "turn_start"
	TriggerBeforeAttack Trigger = "before_attack"
	TriggerOnHit        Trigger = "on_hit"
	TriggerDamageTaken  Trigger = "damage_taken"
	TriggerOnKill       Trigger = "on_kill"
	TriggerAbilityCast  Trigger = "ability_cast"
	TriggerTurnEnd      Trigger = "turn_end"
	TriggerCombatEnd    Trigger = "combat_end"
)

var validTriggers = map[Trigger]bool{
	TriggerCombatStart:  true,
	TriggerTurnStart:    true,
	TriggerBeforeAttack: true,
	TriggerOnHit:        true,
	TriggerDamageTaken:  true,
	TriggerOnKill:       true,
	TriggerAbilityCast:  true,
	TriggerTurnEnd:      true,
	TriggerCombatEnd:    true,
}

// Valid reports whether t is a known trigger.
func (t Trigger) Valid() bool { return validTriggers[t] }

// Unit is the unit a Duration is counted in.
type Unit string

const (
	UnitTurns     Unit = "turns"
	UnitRounds    Unit = "rounds"
	UnitHits      Unit = "hits"
	UnitPermanent Unit = "permanent"
)

// DecayTrigger returns the only trigger on which durations of unit u decrement.
//
// Postcondition: ok is false for UnitPermanent and unknown units.
func (u Unit) DecayTrigger() (Trigger, bool) {
	switch u {
	case UnitTurns:
		return TriggerTurnEnd, true
	case UnitRounds:
		return TriggerCombatEnd, true
	case UnitHits:
		return TriggerDamageTaken, true
	default:
		return "", false
	}
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	switch u {
	case UnitTurns, UnitRounds, UnitHits, UnitPermanent:
		return true
	}
	return false
}

// Duration is an amount of Units.
type Duration struct {
	Amount int  `yaml:"amount"`
	Unit   Unit `yaml:"unit"`
}

// Permanent returns a duration that never decays.
func Permanent() Duration { return Duration{Unit: UnitPermanent} }

// Turns returns a turn-scoped duration.
func Turns(n int) Duration { return Duration{Amount: n, Unit: UnitTurns} }

// Rounds returns a duration that spans n combats.
func Rounds(n int) Duration { return Duration{Amount: n, Unit: UnitRounds} }

// IsPermanent reports whether d never decays automatically.
func (d Duration) IsPermanent() bool { return d.Unit == UnitPermanent }

// Family distinguishes player-visible status effects from ability effects.
type Family string

const (
	FamilyStatus  Family = "status"
	FamilyAbility Family = "ability"
)
