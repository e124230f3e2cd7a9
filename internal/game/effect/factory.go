package effect

import (
	"fmt"

	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

const (
	// BlockID identifies the damage reduction installed by the Block action.
	BlockID = "block"
	// BlockReductionPercent is the post-armor reduction Block grants.
	BlockReductionPercent = 25
)

// Factory instantiates CombatEffects from registered definitions.
type Factory struct {
	reg *Registry
}

// NewFactory creates a Factory over reg.
//
// Precondition: reg must not be nil.
func NewFactory(reg *Registry) *Factory {
	return &Factory{reg: reg}
}

// Registry returns the definitions the factory reads.
func (f *Factory) Registry() *Registry { return f.reg }

// Status builds the effect for definition id, sourced from sourceID.
//
// Postcondition: returns an error wrapping ErrUnknownEffect when id is not registered.
func (f *Factory) Status(id, sourceID string) (*CombatEffect, error) {
	def, ok := f.reg.Effect(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, id)
	}
	return build(def, sourceID, "")
}

// StatusFor builds id like Status but overrides its duration when d has a positive amount.
func (f *Factory) StatusFor(id, sourceID string, d Duration) (*CombatEffect, error) {
	eff, err := f.Status(id, sourceID)
	if err != nil {
		return nil, err
	}
	if d.Unit.Valid() && (d.IsPermanent() || d.Amount > 0) {
		eff.Duration = d
	}
	return eff, nil
}

// Ability builds the effect installed by a toggle or passive ability.
func (f *Factory) Ability(abilityID, sourceID string) (*CombatEffect, error) {
	ab, ok := f.reg.Ability(abilityID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAbility, abilityID)
	}
	if ab.Effect == "" {
		return nil, fmt.Errorf("ability %q installs no effect", abilityID)
	}
	def, ok := f.reg.Effect(ab.Effect)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, ab.Effect)
	}
	eff, err := build(def, sourceID, abilityID)
	if err != nil {
		return nil, err
	}
	eff.Family = FamilyAbility
	if ab.Mode == ModeToggle || ab.Mode == ModePassive {
		eff.Duration = Permanent()
	}
	return eff, nil
}

func build(def *Def, sourceID, abilityID string) (*CombatEffect, error) {
	b, err := def.Behavior.Build()
	if err != nil {
		return nil, fmt.Errorf("effect %q: %w", def.ID, err)
	}
	triggers := make([]Trigger, len(def.Triggers))
	copy(triggers, def.Triggers)
	return &CombatEffect{
		ID:            def.ID,
		Name:          def.Name,
		Family:        def.Family,
		Triggers:      triggers,
		Duration:      def.Duration,
		Visible:       !def.Hidden,
		Stackable:     def.Stackable,
		MaxStacks:     def.MaxStacks,
		Behavior:      b,
		SourceID:      sourceID,
		SourceAbility: abilityID,
		LuaOnRemove:   def.LuaOnRemove,
	}, nil
}

// BlockEffect is the one-turn damage reduction installed by the Block action.
// Block's armor doubling is a temporary modifier on the entity, not part of this effect.
func BlockEffect(sourceID string) *CombatEffect {
	return &CombatEffect{
		ID:        BlockID,
		Name:      "Block",
		Family:    FamilyStatus,
		Duration:  Turns(1),
		Visible:   true,
		Behavior:  DamageReduction{Percent: BlockReductionPercent},
		SourceID:  sourceID,
		Stackable: false,
	}
}

// KeyModifierEffect is a permanent hidden stat effect installed on an enemy by a
// dungeon key modifier.
func KeyModifierEffect(id, name string, mods stats.Modifiers) *CombatEffect {
	return &CombatEffect{
		ID:       "key_modifier:" + id,
		Name:     name,
		Family:   FamilyStatus,
		Duration: Permanent(),
		Behavior: StatModifier{Modifiers: mods},
	}
}
