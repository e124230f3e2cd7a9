package combat

import (
	"fmt"

	"github.com/cory-johannsen/dungeon/internal/game/effect"
	"github.com/cory-johannsen/dungeon/internal/game/entity"
)

// ActionKind names an action variant. The names double as ActionDisable action ids.
type ActionKind string

const (
	KindAttack        ActionKind = "attack"
	KindBlock         ActionKind = "block"
	KindCastAbility   ActionKind = "cast_ability"
	KindToggleAbility ActionKind = "toggle_ability"
	KindMove          ActionKind = "move"
	KindEscape        ActionKind = "escape"
)

// RangeRequirement constrains the range state an action may be used from.
type RangeRequirement int

const (
	AnyRange RangeRequirement = iota
	RequireInRange
	RequireOutOfRange
)

// Satisfied reports whether r admits state.
func (r RangeRequirement) Satisfied(state entity.RangeState) bool {
	switch r {
	case RequireInRange:
		return state == entity.InRange
	case RequireOutOfRange:
		return state == entity.OutOfRange
	default:
		return true
	}
}

func (r RangeRequirement) String() string {
	switch r {
	case RequireInRange:
		return "in_range"
	case RequireOutOfRange:
		return "out_of_range"
	default:
		return "any"
	}
}

// rangeRequirementOf maps an ability's range_required field.
func rangeRequirementOf(s string) RangeRequirement {
	switch s {
	case "in_range":
		return RequireInRange
	case "out_of_range":
		return RequireOutOfRange
	default:
		return AnyRange
	}
}

// Validation is the verdict on an action before it mutates any state.
type Validation struct {
	Valid  bool
	Reason string
}

func ok() Validation { return Validation{Valid: true} }

func invalid(format string, args ...any) Validation {
	return Validation{Reason: fmt.Sprintf(format, args...)}
}

// Battle is the read-only view of a combat that actions validate against.
// Manager satisfies it.
type Battle interface {
	State() State
	Turn() int
	Player() *entity.Player
	Enemies() []*entity.Enemy
	Enemy(id string) (*entity.Enemy, bool)
	Ability(id string) (*effect.AbilityDef, bool)
	EscapeAllowed() bool
	EscapeAttemptsLeft() int
}

// Action is a player action. The set of implementations is closed.
type Action interface {
	Kind() ActionKind
	// Validate reports whether the action may resolve against b.
	Validate(b Battle) Validation
	action()
}

// Attack strikes one enemy with the equipped weapon.
type Attack struct {
	TargetID   string
	WeaponUsed string
	// HitChance and CriticalChance are percentages; zero uses the attacker's stats.
	HitChance      float64
	CriticalChance float64
	RangeRequired  RangeRequirement
}

// Block installs one turn of armor doubling plus a damage reduction.
type Block struct{}

// CastAbility uses a cast-mode ability.
type CastAbility struct {
	AbilityID string
	// TargetType is enemy, self or all_enemies.
	TargetType string
	// TargetID names the enemy struck when TargetType is enemy.
	TargetID   string
	Magnitude  int
	DamageType string
	// StatusEffect, when set, is applied to each struck target with StatusEffectChance.
	StatusEffect       string
	StatusEffectChance float64
	Duration           effect.Duration
}

// ToggleAbility turns a toggle-mode ability on or off.
type ToggleAbility struct {
	AbilityID string
	NewState  bool
}

// Move changes the player's range state relative to every enemy.
type Move struct {
	NewRange entity.RangeState
}

// Escape attempts to leave combat. SuccessChance is a probability in [0,1].
type Escape struct {
	SuccessChance float64
}

func (Attack) Kind() ActionKind        { return KindAttack }
func (Block) Kind() ActionKind         { return KindBlock }
func (CastAbility) Kind() ActionKind   { return KindCastAbility }
func (ToggleAbility) Kind() ActionKind { return KindToggleAbility }
func (Move) Kind() ActionKind          { return KindMove }
func (Escape) Kind() ActionKind        { return KindEscape }

func (Attack) action()        {}
func (Block) action()         {}
func (CastAbility) action()   {}
func (ToggleAbility) action() {}
func (Move) action()          {}
func (Escape) action()        {}

// disabled reports the common precondition of every action.
func disabled(b Battle, k ActionKind) (Validation, bool) {
	p := b.Player()
	if p == nil || !p.Alive() {
		return invalid("player cannot act"), true
	}
	if p.Effects.Disables(string(k)) {
		return invalid("%s is disabled", k), true
	}
	return Validation{}, false
}

func (a Attack) Validate(b Battle) Validation {
	if v, bad := disabled(b, KindAttack); bad {
		return v
	}
	target, found := b.Enemy(a.TargetID)
	if !found {
		return invalid("unknown target %q", a.TargetID)
	}
	if !target.Alive() {
		return invalid("%s is already defeated", target.Name)
	}
	if !a.RangeRequired.Satisfied(target.Range) {
		return invalid("%s requires %s but %s is %s", a.WeaponUsed, a.RangeRequired, target.Name, target.Range)
	}
	if a.HitChance < 0 || a.CriticalChance < 0 {
		return invalid("chances must be >= 0")
	}
	return ok()
}

func (a Block) Validate(b Battle) Validation {
	if v, bad := disabled(b, KindBlock); bad {
		return v
	}
	return ok()
}

func (a CastAbility) Validate(b Battle) Validation {
	if v, bad := disabled(b, KindCastAbility); bad {
		return v
	}
	def, found := b.Ability(a.AbilityID)
	if !found {
		return invalid("unknown ability %q", a.AbilityID)
	}
	if def.Mode != effect.ModeCast {
		return invalid("%s is not a cast ability", def.Name)
	}
	p := b.Player()
	if !grants(p, a.AbilityID) {
		return invalid("%s is not granted by equipped items", def.Name)
	}
	if !p.CooldownReady(a.AbilityID, b.Turn()) {
		return invalid("%s is on cooldown", def.Name)
	}
	if p.Mana() < def.ManaCost {
		return invalid("%s needs %d mana, have %d", def.Name, def.ManaCost, p.Mana())
	}
	if def.HealthCost > 0 && p.Health() <= def.HealthCost {
		return invalid("%s needs more than %d health", def.Name, def.HealthCost)
	}
	if a.StatusEffectChance < 0 || a.StatusEffectChance > 1 {
		return invalid("status effect chance must be in [0,1], got %v", a.StatusEffectChance)
	}
	req := rangeRequirementOf(def.RangeRequired)
	switch a.TargetType {
	case "self":
	case "all_enemies":
	case "enemy":
		target, found := b.Enemy(a.TargetID)
		if !found {
			return invalid("unknown target %q", a.TargetID)
		}
		if !target.Alive() {
			return invalid("%s is already defeated", target.Name)
		}
		if !req.Satisfied(target.Range) {
			return invalid("%s requires %s", def.Name, req)
		}
	default:
		return invalid("unknown target type %q", a.TargetType)
	}
	return ok()
}

func (a ToggleAbility) Validate(b Battle) Validation {
	if v, bad := disabled(b, KindToggleAbility); bad {
		return v
	}
	def, found := b.Ability(a.AbilityID)
	if !found {
		return invalid("unknown ability %q", a.AbilityID)
	}
	if def.Mode != effect.ModeToggle {
		return invalid("%s is not a toggle ability", def.Name)
	}
	p := b.Player()
	if !grants(p, a.AbilityID) {
		return invalid("%s is not granted by equipped items", def.Name)
	}
	if _, on := p.Toggled(a.AbilityID); on == a.NewState {
		return invalid("%s is already %s", def.Name, onOff(on))
	}
	if a.NewState && p.Mana() < def.ManaCost {
		return invalid("%s needs %d mana, have %d", def.Name, def.ManaCost, p.Mana())
	}
	return ok()
}

func (a Move) Validate(b Battle) Validation {
	if v, bad := disabled(b, KindMove); bad {
		return v
	}
	if b.Player().Range == a.NewRange {
		return invalid("already %s", a.NewRange)
	}
	return ok()
}

func (a Escape) Validate(b Battle) Validation {
	if v, bad := disabled(b, KindEscape); bad {
		return v
	}
	if !b.EscapeAllowed() {
		return invalid("escape is not possible in this encounter")
	}
	if b.EscapeAttemptsLeft() <= 0 {
		return invalid("already attempted to escape this turn")
	}
	if a.SuccessChance < 0 || a.SuccessChance > 1 {
		return invalid("success chance must be in [0,1], got %v", a.SuccessChance)
	}
	return ok()
}

func grants(p *entity.Player, abilityID string) bool {
	for _, id := range p.GrantedAbilities() {
		if id == abilityID {
			return true
		}
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// NewAttack builds an Attack on targetID with the player's equipped weapon.
// Melee weapons require the target to be in range; ranged weapons fire from either state.
func NewAttack(p *entity.Player, targetID string) Attack {
	a := Attack{TargetID: targetID, WeaponUsed: p.WeaponClass()}
	if !p.Ranged() {
		a.RangeRequired = RequireInRange
	}
	return a
}

// NewCast builds a CastAbility from the ability definition.
func NewCast(def *effect.AbilityDef, targetID string) CastAbility {
	return CastAbility{
		AbilityID:          def.ID,
		TargetType:         def.TargetType,
		TargetID:           targetID,
		Magnitude:          def.Magnitude,
		DamageType:         def.DamageType,
		StatusEffect:       def.StatusEffect,
		StatusEffectChance: def.StatusChance,
		Duration:           def.Duration,
	}
}
