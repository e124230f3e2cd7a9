package effect_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dungeon/internal/game/effect"
)

const sampleEffects = `
effects:
  - id: burning
    name: Burning
    family: status
    triggers: [turn_start]
    duration: {amount: 3, unit: turns}
    stackable: true
    max_stacks: 3
    behavior: {kind: damage_over_time, amount: 4, damage_type: fire}
  - id: fury
    name: Fury
    family: ability
    hidden: true
    duration: {unit: permanent}
    behavior:
      kind: stat_modifier
      modifiers: {damage: 5, armor: -2}
abilities:
  - id: battle_fury
    name: Battle Fury
    mode: toggle
    effect: fury
  - id: ember
    name: Ember
    mode: cast
    target_type: enemy
    mana_cost: 5
    magnitude: 12
    damage_type: fire
    status_effect: burning
    status_chance: 0.5
`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadDirectory_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sample.yaml", sampleEffects)
	writeFile(t, dir, "notes.txt", "ignored")

	reg, err := effect.LoadDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"burning", "fury"}, reg.EffectIDs())

	b, ok := reg.Effect("burning")
	require.True(t, ok)
	assert.Equal(t, effect.Turns(3), b.Duration)

	ab, ok := reg.Ability("ember")
	require.True(t, ok)
	assert.Equal(t, effect.ModeCast, ab.Mode)
	assert.Equal(t, 0.5, ab.StatusChance)
}

func TestLoadDirectory_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "effects:\n  - id: x\n    colour: red\n")
	_, err := effect.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_DanglingReference(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "abilities:\n  - id: t\n    mode: toggle\n    effect: missing\n")
	_, err := effect.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_NonexistentDir(t *testing.T) {
	_, err := effect.LoadDirectory("/nonexistent/effects")
	assert.Error(t, err)
}

func TestDef_Validate(t *testing.T) {
	good := &effect.Def{ID: "x", Family: effect.FamilyStatus, Duration: effect.Turns(1), Behavior: effect.BehaviorDef{Kind: "heal_over_time", Amount: 1}}
	assert.NoError(t, good.Validate())

	bad := &effect.Def{ID: "x", Family: "curse", Triggers: []effect.Trigger{"sometimes"}, Duration: effect.Duration{Unit: "days"}, Behavior: effect.BehaviorDef{Kind: "explode"}}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "family")
	assert.Contains(t, err.Error(), "trigger")
	assert.Contains(t, err.Error(), "unit")
	assert.Contains(t, err.Error(), "behavior kind")
}

func TestFactory_StatusAndAbility(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sample.yaml", sampleEffects)
	reg, err := effect.LoadDirectory(dir)
	require.NoError(t, err)
	f := effect.NewFactory(reg)

	st, err := f.Status("burning", "e1")
	require.NoError(t, err)
	assert.True(t, st.Visible)
	assert.Equal(t, "e1", st.SourceID)
	assert.Equal(t, effect.DamageOverTime{Amount: 4, DamageType: "fire"}, st.Behavior)

	st, err = f.StatusFor("burning", "e1", effect.Turns(1))
	require.NoError(t, err)
	assert.Equal(t, effect.Turns(1), st.Duration)

	ab, err := f.Ability("battle_fury", "p1")
	require.NoError(t, err)
	assert.False(t, ab.Visible)
	assert.Equal(t, effect.FamilyAbility, ab.Family)
	assert.Equal(t, "battle_fury", ab.SourceAbility)
	assert.True(t, ab.Duration.IsPermanent())

	_, err = f.Status("nope", "e1")
	assert.True(t, errors.Is(err, effect.ErrUnknownEffect))
	_, err = f.Ability("nope", "p1")
	assert.True(t, errors.Is(err, effect.ErrUnknownAbility))
}

func TestBlockEffect(t *testing.T) {
	b := effect.BlockEffect("p1")
	assert.Equal(t, effect.BlockID, b.ID)
	assert.Equal(t, effect.Turns(1), b.Duration)
	assert.Equal(t, effect.DamageReduction{Percent: 25}, b.Behavior)
}

func TestLoadDirectory_ShippedContent(t *testing.T) {
	reg, err := effect.LoadDirectory("../../../content/effects")
	require.NoError(t, err)
	for _, id := range []string{"burning", "poisoned", "bleeding", "stunned", "chilled", "regenerating"} {
		_, ok := reg.Effect(id)
		assert.True(t, ok, "effect %q must be present", id)
	}
	for _, id := range []string{"fireball", "frost_nova", "battle_fury", "vampiric_touch", "mending"} {
		_, ok := reg.Ability(id)
		assert.True(t, ok, "ability %q must be present", id)
	}
}
