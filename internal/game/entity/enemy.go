package entity

import (
	"fmt"

	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

// EnemyType is an enemy's fighting style.
type EnemyType string

const (
	Melee  EnemyType = "melee"
	Ranged EnemyType = "ranged"
	Magic  EnemyType = "magic"
)

// Valid reports whether t is a known enemy type.
func (t EnemyType) Valid() bool {
	return t == Melee || t == Ranged || t == Magic
}

// AIPattern weights an enemy's intent selection.
type AIPattern struct {
	// Aggressiveness in [0,1] is the probability of preferring an attack over a defensive action.
	Aggressiveness float64 `yaml:"aggressiveness"`
	// RetreatThreshold in [0,1] is the health fraction below which the enemy turns defensive.
	RetreatThreshold float64 `yaml:"retreat_threshold"`
	// TargetSelection names how targets are chosen; the player is the only target today.
	TargetSelection string `yaml:"target_selection"`
	// AbilityChance in [0,1] is the probability of using a ready ability instead of attacking.
	AbilityChance float64 `yaml:"ability_chance"`
	// Domain names the HTN domain that plans the enemy's intents; empty uses the built-in domain.
	Domain string `yaml:"domain"`
	// Hook names an optional Lua function that may override the chosen intent kind.
	Hook string `yaml:"hook"`
}

// DefaultPattern is the pattern used by enemies that do not specify one.
func DefaultPattern() AIPattern {
	return AIPattern{Aggressiveness: 0.8, RetreatThreshold: 0.25, AbilityChance: 0.3}
}

// Validate checks that every weight is a probability.
func (p AIPattern) Validate() error {
	weights := []struct {
		name string
		v    float64
	}{
		{"aggressiveness", p.Aggressiveness},
		{"retreat_threshold", p.RetreatThreshold},
		{"ability_chance", p.AbilityChance},
	}
	for _, w := range weights {
		if w.v < 0 || w.v > 1 {
			return fmt.Errorf("ai.%s must be in [0,1], got %v", w.name, w.v)
		}
	}
	return nil
}

// IntentKind is the telegraphed kind of an enemy's next action.
type IntentKind string

const (
	IntentAttack  IntentKind = "attack"
	IntentBlock   IntentKind = "block"
	IntentAbility IntentKind = "ability"
	IntentMove    IntentKind = "move"
)

// Valid reports whether k is a known intent kind.
func (k IntentKind) Valid() bool {
	switch k {
	case IntentAttack, IntentBlock, IntentAbility, IntentMove:
		return true
	}
	return false
}

// Intent is an enemy's telegraphed next action.
type Intent struct {
	Kind        IntentKind
	TargetID    string
	AbilityID   string
	Description string
}

// Enemy is an AI-controlled combatant.
type Enemy struct {
	*Entity
	TemplateID string
	Type       EnemyType
	Pattern    AIPattern
	Intent     Intent
	LootTier   int
	Elite      bool
	Boss       bool
	Experience int
	// GoldDice is a dice expression rolled on defeat.
	GoldDice  string
	Abilities []string
}

// NewEnemy creates an Enemy at full resources.
//
// Precondition: base.Validate() == nil.
func NewEnemy(id, name string, base stats.BaseStats, typ EnemyType) *Enemy {
	return &Enemy{Entity: New(id, name, base), Type: typ, Pattern: DefaultPattern(), LootTier: 1}
}

// IsRanged reports whether the enemy attacks from range.
func (e *Enemy) IsRanged() bool { return e.Type != Melee }

// HealthFraction returns current health over max health, or 0 when max is zero.
func (e *Enemy) HealthFraction() float64 {
	m := e.Stats().MaxHealth
	if m == 0 {
		return 0
	}
	return float64(e.Health()) / float64(m)
}
