package effect_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeon/internal/game/effect"
	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

type fakeScripts struct {
	calls []string
	ret   lua.LValue
	err   error
}

func (f *fakeScripts) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	f.calls = append(f.calls, scope+":"+hook)
	return f.ret, f.err
}

func newEngine() *effect.Engine {
	return effect.NewEngine(nil, "combat", zap.NewNop())
}

func burning() *effect.CombatEffect {
	return &effect.CombatEffect{
		ID:        "burning",
		Name:      "Burning",
		Triggers:  []effect.Trigger{effect.TriggerTurnStart},
		Duration:  effect.Turns(2),
		Visible:   true,
		Stackable: true,
		MaxStacks: 3,
		Behavior:  effect.DamageOverTime{Amount: 4, DamageType: "fire"},
	}
}

func TestEngine_Process_FiltersByTrigger(t *testing.T) {
	e := newEngine()
	c := effect.NewCollection()
	e.Apply(c, "p1", burning(), 1)
	e.Apply(c, "p1", &effect.CombatEffect{
		ID: "regen", Triggers: []effect.Trigger{effect.TriggerTurnEnd},
		Duration: effect.Turns(2), Behavior: effect.HealOverTime{Amount: 3},
	}, 1)

	res := e.Process(effect.TriggerTurnStart, effect.Context{OwnerID: "p1"}, c.All())
	require.Len(t, res, 1)
	assert.Equal(t, "burning", res[0].EffectID)
	assert.Equal(t, 4, res[0].Damage)
	assert.Equal(t, "fire", res[0].DamageType)
	assert.Equal(t, "p1", res[0].TargetID)
}

func TestEngine_Process_RegistrationOrder(t *testing.T) {
	e := newEngine()
	c := effect.NewCollection()
	for _, id := range []string{"a", "b", "c"} {
		e.Apply(c, "p1", &effect.CombatEffect{
			ID: id, Triggers: []effect.Trigger{effect.TriggerTurnEnd},
			Duration: effect.Permanent(), Behavior: effect.HealOverTime{Amount: 1},
		}, 1)
	}
	res := e.Process(effect.TriggerTurnEnd, effect.Context{OwnerID: "p1"}, c.All())
	require.Len(t, res, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{res[0].EffectID, res[1].EffectID, res[2].EffectID})
}

func TestEngine_Process_DoesNotMutateCollection(t *testing.T) {
	e := newEngine()
	c := effect.NewCollection()
	a, _ := e.Apply(c, "p1", burning(), 1)
	e.Process(effect.TriggerTurnStart, effect.Context{OwnerID: "p1"}, c.All())
	assert.Equal(t, 2, a.Remaining)
	assert.Equal(t, 1, c.Len())
}

func TestEngine_Apply_StackableCapsAtMaxStacks(t *testing.T) {
	e := newEngine()
	c := effect.NewCollection()
	for i := 0; i < 3; i++ {
		_, out := e.Apply(c, "p1", burning(), 1)
		assert.Equal(t, effect.Added, out)
	}
	a, out := e.Apply(c, "p1", burning(), 1)
	assert.Nil(t, a)
	assert.Equal(t, effect.Dropped, out)
	assert.Equal(t, 3, c.Count("burning"))
}

func TestEngine_Apply_NonStackableReplacesAndFiresRemoveOnce(t *testing.T) {
	e := newEngine()
	c := effect.NewCollection()
	removed := 0
	mk := func(amount int) *effect.CombatEffect {
		return &effect.CombatEffect{
			ID: "shield_wall", Duration: effect.Turns(amount),
			Behavior: effect.DamageReduction{Percent: 10},
			OnRemove: func(*effect.Active) { removed++ },
		}
	}
	first, _ := e.Apply(c, "p1", mk(1), 1)
	e.Apply(c, "p1", &effect.CombatEffect{ID: "other", Duration: effect.Permanent(), Behavior: effect.HealOverTime{}}, 1)
	second, out := e.Apply(c, "p1", mk(3), 2)
	assert.Equal(t, effect.Replaced, out)
	assert.Equal(t, 1, removed)
	assert.NotEqual(t, first.InstanceID, second.InstanceID)
	assert.Equal(t, 1, c.Count("shield_wall"))
	assert.Equal(t, "shield_wall", c.All()[0].Effect.ID, "replacement keeps the registration slot")
	assert.Equal(t, 3, second.Remaining)

	assert.False(t, e.Remove(c, first.InstanceID))
	assert.True(t, e.Remove(c, second.InstanceID))
	assert.Equal(t, 2, removed)
}

func TestEngine_Apply_OnStackMerges(t *testing.T) {
	e := newEngine()
	c := effect.NewCollection()
	refresh := func(existing *effect.Active, incoming *effect.CombatEffect) {
		existing.Remaining = incoming.Duration.Amount
	}
	eff := &effect.CombatEffect{ID: "chilled", Duration: effect.Turns(2), Behavior: effect.StatModifier{}, OnStack: refresh}
	a, _ := e.Apply(c, "p1", eff, 1)
	a.Remaining = 1
	b, out := e.Apply(c, "p1", &effect.CombatEffect{ID: "chilled", Duration: effect.Turns(4), Behavior: effect.StatModifier{}}, 2)
	assert.Equal(t, effect.Merged, out)
	assert.Same(t, a, b)
	assert.Equal(t, 4, a.Remaining)
}

func TestEngine_Tick_DecaysOnlyMatchingUnit(t *testing.T) {
	e := newEngine()
	c := effect.NewCollection()
	turns, _ := e.Apply(c, "p1", &effect.CombatEffect{ID: "t", Duration: effect.Turns(2), Behavior: effect.StatModifier{}}, 1)
	rounds, _ := e.Apply(c, "p1", &effect.CombatEffect{ID: "r", Duration: effect.Duration{Amount: 1, Unit: effect.UnitRounds}, Behavior: effect.StatModifier{}}, 1)
	hits, _ := e.Apply(c, "p1", &effect.CombatEffect{ID: "h", Duration: effect.Duration{Amount: 2, Unit: effect.UnitHits}, Behavior: effect.StatModifier{}}, 1)
	perm, _ := e.Apply(c, "p1", &effect.CombatEffect{ID: "p", Duration: effect.Permanent(), Behavior: effect.StatModifier{}}, 1)

	e.Tick(c, effect.TriggerTurnEnd)
	assert.Equal(t, 1, turns.Remaining)
	assert.Equal(t, 1, rounds.Remaining)
	assert.Equal(t, 2, hits.Remaining)

	e.Tick(c, effect.TriggerDamageTaken)
	assert.Equal(t, 1, hits.Remaining)

	expired := e.Tick(c, effect.TriggerTurnEnd)
	require.Len(t, expired, 1)
	assert.Equal(t, "t", expired[0].Effect.ID)

	expired = e.Tick(c, effect.TriggerCombatEnd)
	require.Len(t, expired, 1)
	assert.Equal(t, "r", expired[0].Effect.ID)

	assert.True(t, c.Has("h"))
	assert.True(t, c.Has("p"))
	assert.Equal(t, 0, perm.Remaining)
}

func TestEngine_Clear_FiresEveryRemove(t *testing.T) {
	e := newEngine()
	c := effect.NewCollection()
	removed := 0
	for i := 0; i < 2; i++ {
		eff := burning()
		eff.OnRemove = func(*effect.Active) { removed++ }
		e.Apply(c, "p1", eff, 1)
	}
	e.Clear(c)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, c.Len())
}

func TestEngine_EndCombat_KeepsRoundsWithDurationLeft(t *testing.T) {
	e := newEngine()
	c := effect.NewCollection()
	removed := map[string]int{}
	onRemove := func(a *effect.Active) { removed[a.Effect.ID]++ }
	for _, eff := range []*effect.CombatEffect{
		{ID: "turns", Duration: effect.Turns(3), Behavior: effect.StatModifier{}, OnRemove: onRemove},
		{ID: "blessed", Duration: effect.Rounds(3), Behavior: effect.StatModifier{}, OnRemove: onRemove},
		{ID: "spent", Duration: effect.Rounds(1), Behavior: effect.StatModifier{}, OnRemove: onRemove},
		{ID: "hits", Duration: effect.Duration{Amount: 2, Unit: effect.UnitHits}, Behavior: effect.StatModifier{}, OnRemove: onRemove},
		{ID: "perm", Duration: effect.Permanent(), Behavior: effect.StatModifier{}, OnRemove: onRemove},
	} {
		e.Apply(c, "p1", eff, 1)
	}

	expired := e.Tick(c, effect.TriggerCombatEnd)
	require.Len(t, expired, 1)
	assert.Equal(t, "spent", expired[0].Effect.ID)

	gone := e.EndCombat(c)
	assert.Len(t, gone, 3)
	require.Equal(t, 1, c.Len())
	assert.True(t, c.Has("blessed"))
	assert.Equal(t, 2, c.Find("blessed")[0].Remaining)
	assert.Equal(t, map[string]int{"turns": 1, "spent": 1, "hits": 1, "perm": 1}, removed)

	e.Tick(c, effect.TriggerCombatEnd)
	e.EndCombat(c)
	e.Tick(c, effect.TriggerCombatEnd)
	assert.Empty(t, e.EndCombat(c))
	assert.Equal(t, 0, c.Len(), "the third combat end exhausts a three-round effect")
	assert.Equal(t, 1, removed["blessed"])
}

func TestEngine_LuaOnRemove(t *testing.T) {
	scripts := &fakeScripts{ret: lua.LNil}
	e := effect.NewEngine(scripts, "combat", zap.NewNop())
	c := effect.NewCollection()
	a, _ := e.Apply(c, "p1", &effect.CombatEffect{ID: "curse", Duration: effect.Permanent(), Behavior: effect.StatModifier{}, LuaOnRemove: "curse_lifted"}, 1)
	e.Remove(c, a.InstanceID)
	assert.Equal(t, []string{"combat:curse_lifted"}, scripts.calls)
}

func TestProcess_OnHitStatusUsesChance(t *testing.T) {
	e := newEngine()
	c := effect.NewCollection()
	e.Apply(c, "p1", &effect.CombatEffect{
		ID: "venom", Triggers: []effect.Trigger{effect.TriggerOnHit}, Duration: effect.Permanent(),
		Behavior: effect.OnHitStatus{StatusID: "poisoned", Chance: 0.3},
	}, 1)

	hit := e.Process(effect.TriggerOnHit, effect.Context{OwnerID: "p1", OtherID: "e1", Rand: fixedSrc{val: 2999}}, c.All())
	require.Len(t, hit, 1)
	assert.Equal(t, "e1", hit[0].TargetID)
	assert.Equal(t, "poisoned", hit[0].ApplyStatus)

	miss := e.Process(effect.TriggerOnHit, effect.Context{OwnerID: "p1", OtherID: "e1", Rand: fixedSrc{val: 3000}}, c.All())
	assert.Empty(t, miss)
}

func TestProcess_LeechAndThorns(t *testing.T) {
	e := newEngine()
	c := effect.NewCollection()
	e.Apply(c, "p1", &effect.CombatEffect{ID: "leech", Triggers: []effect.Trigger{effect.TriggerOnHit}, Duration: effect.Permanent(), Behavior: effect.LifeLeech{Percent: 50}}, 1)
	e.Apply(c, "p1", &effect.CombatEffect{ID: "thorns", Triggers: []effect.Trigger{effect.TriggerDamageTaken}, Duration: effect.Permanent(), Behavior: effect.Thorns{Amount: 3, DamageType: "physical"}}, 1)

	res := e.Process(effect.TriggerOnHit, effect.Context{OwnerID: "p1", OtherID: "e1", Amount: 9}, c.All())
	require.Len(t, res, 1)
	assert.Equal(t, 4, res[0].Healing)
	assert.Equal(t, "p1", res[0].TargetID)

	res = e.Process(effect.TriggerDamageTaken, effect.Context{OwnerID: "p1", OtherID: "e1", Amount: 9}, c.All())
	require.Len(t, res, 1)
	assert.Equal(t, 3, res[0].Damage)
	assert.Equal(t, "e1", res[0].TargetID)
}

func TestProcess_ScriptedReadsResultTable(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	tbl := L.NewTable()
	tbl.RawSetString("damage", lua.LNumber(7))
	tbl.RawSetString("damage_type", lua.LString("chaos"))
	tbl.RawSetString("target", lua.LString("other"))
	scripts := &fakeScripts{ret: tbl}

	e := effect.NewEngine(scripts, "combat", zap.NewNop())
	c := effect.NewCollection()
	e.Apply(c, "p1", &effect.CombatEffect{ID: "soul_burn", Triggers: []effect.Trigger{effect.TriggerOnHit}, Duration: effect.Permanent(), Behavior: effect.Scripted{Hook: "soul_burn"}}, 1)

	res := e.Process(effect.TriggerOnHit, effect.Context{OwnerID: "p1", OtherID: "e1"}, c.All())
	require.Len(t, res, 1)
	assert.Equal(t, 7, res[0].Damage)
	assert.Equal(t, "chaos", res[0].DamageType)
	assert.Equal(t, "e1", res[0].TargetID)
	assert.Equal(t, []string{"combat:soul_burn"}, scripts.calls)
}

func TestProcess_ScriptedErrorLogsWarnAndYieldsNothing(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	scripts := &fakeScripts{err: errors.New("boom")}
	e := effect.NewEngine(scripts, "combat", zap.New(core))
	c := effect.NewCollection()
	e.Apply(c, "p1", &effect.CombatEffect{ID: "s", Triggers: []effect.Trigger{effect.TriggerTurnStart}, Duration: effect.Permanent(), Behavior: effect.Scripted{Hook: "h"}}, 1)
	e.Apply(c, "p1", burning(), 1)

	res := e.Process(effect.TriggerTurnStart, effect.Context{OwnerID: "p1"}, c.All())
	require.Len(t, res, 1, "a failing hook does not stop later effects")
	assert.Equal(t, "burning", res[0].EffectID)

	warns := logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage("lua effect hook failed").All()
	require.Len(t, warns, 1)
	fields := warns[0].ContextMap()
	assert.Equal(t, "s", fields["effect"])
	assert.Equal(t, string(effect.TriggerTurnStart), fields["trigger"])
	assert.Contains(t, fields["error"], "boom")
}

func TestCollection_Queries(t *testing.T) {
	e := newEngine()
	c := effect.NewCollection()
	e.Apply(c, "p1", effect.BlockEffect("p1"), 1)
	e.Apply(c, "p1", effect.KeyModifierEffect("brutal", "Brutal", stats.Modifiers{Damage: 5}), 1)
	e.Apply(c, "p1", &effect.CombatEffect{ID: "stunned", Duration: effect.Turns(1), Visible: true, Behavior: effect.ActionDisable{}}, 1)

	assert.Equal(t, []int{effect.BlockReductionPercent}, c.DamageReductions())
	assert.Equal(t, 5, c.Modifiers().Damage)
	assert.True(t, c.Disables("attack"))
	assert.True(t, c.DisablesAll())
	assert.Len(t, c.Visible(), 2)
}

func TestPropertyEngine_StacksNeverExceedMax(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxStacks := rapid.IntRange(1, 6).Draw(rt, "max")
		applies := rapid.IntRange(0, 20).Draw(rt, "applies")
		e := newEngine()
		c := effect.NewCollection()
		for i := 0; i < applies; i++ {
			eff := burning()
			eff.MaxStacks = maxStacks
			e.Apply(c, "p1", eff, 1)
		}
		assert.LessOrEqual(rt, c.Count("burning"), maxStacks)
	})
}

func TestPropertyEngine_RemoveHookRunsOncePerInstance(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		removed := map[string]int{}
		e := newEngine()
		c := effect.NewCollection()
		n := rapid.IntRange(1, 8).Draw(rt, "n")
		for i := 0; i < n; i++ {
			eff := &effect.CombatEffect{
				ID: "x", Stackable: true, Duration: effect.Turns(rapid.IntRange(1, 3).Draw(rt, "d")),
				Behavior: effect.StatModifier{},
				OnRemove: func(a *effect.Active) { removed[a.InstanceID]++ },
			}
			e.Apply(c, "p1", eff, 1)
		}
		for i := 0; i < 4; i++ {
			e.Tick(c, effect.TriggerTurnEnd)
		}
		e.Clear(c)
		assert.Len(rt, removed, n)
		for id, count := range removed {
			assert.Equal(rt, 1, count, "instance %s", id)
		}
	})
}

func TestPropertyEngine_PermanentNeverDecays(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := newEngine()
		c := effect.NewCollection()
		e.Apply(c, "p1", &effect.CombatEffect{ID: "p", Duration: effect.Permanent(), Behavior: effect.StatModifier{}}, 1)
		triggers := []effect.Trigger{effect.TriggerTurnEnd, effect.TriggerCombatEnd, effect.TriggerDamageTaken, effect.TriggerTurnStart}
		ticks := rapid.IntRange(0, 30).Draw(rt, "ticks")
		for i := 0; i < ticks; i++ {
			e.Tick(c, rapid.SampledFrom(triggers).Draw(rt, "trigger"))
		}
		assert.True(rt, c.Has("p"))
	})
}
