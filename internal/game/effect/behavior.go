package effect

import "github.com/cory-johannsen/dungeon/internal/game/stats"

// Behavior is the closed set of things an effect can do. Every implementation
// lives in this file; switches over Behavior end in a panic on an unknown case.
type Behavior interface {
	behavior()
}

// DamageOverTime deals Amount damage of DamageType to the owner per stack instance.
type DamageOverTime struct {
	Amount     int
	DamageType string
}

// HealOverTime restores Amount health to the owner.
type HealOverTime struct {
	Amount int
}

// ResourceDelta changes the owner's mana and health by fixed amounts.
// Negative mana is an upkeep cost.
type ResourceDelta struct {
	Mana   int
	Health int
}

// StatModifier contributes Modifiers to the owner's computed stats while active.
// It produces no Results.
type StatModifier struct {
	Modifiers stats.Modifiers
}

// ActionDisable forbids the listed action kinds. An empty list forbids every action.
type ActionDisable struct {
	Actions []string
}

// DamageReduction reduces incoming post-armor damage by Percent.
type DamageReduction struct {
	Percent int
}

// OnHitStatus applies StatusID to the struck target with probability Chance.
type OnHitStatus struct {
	StatusID string
	Chance   float64
}

// LifeLeech heals the owner by Percent of the damage the owner dealt.
type LifeLeech struct {
	Percent int
}

// Thorns deals Amount damage back to whoever damaged the owner.
type Thorns struct {
	Amount     int
	DamageType string
}

// Scripted delegates to a Lua hook that returns a result table.
type Scripted struct {
	Hook string
}

func (DamageOverTime) behavior()  {}
func (HealOverTime) behavior()    {}
func (ResourceDelta) behavior()   {}
func (StatModifier) behavior()    {}
func (ActionDisable) behavior()   {}
func (DamageReduction) behavior() {}
func (OnHitStatus) behavior()     {}
func (LifeLeech) behavior()       {}
func (Thorns) behavior()          {}
func (Scripted) behavior()        {}
