package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeon/internal/scripting"
)

const shippedScripts = "../../content/scripts"

func loadShipped(t testing.TB) *scripting.Manager {
	t.Helper()
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(shippedScripts, 0))
	return mgr
}

func TestShipped_SoulBurnTick_GrowsWithTurn(t *testing.T) {
	mgr := loadShipped(t)
	call := func(turn, stacks int) *lua.LTable {
		ret, err := mgr.CallHook("effects", "soul_burn_tick",
			lua.LString("turn_start"), lua.LNumber(turn), lua.LString("player"), lua.LString(""),
			lua.LNumber(0), lua.LNumber(50), lua.LNumber(stacks))
		require.NoError(t, err)
		tbl, ok := ret.(*lua.LTable)
		require.True(t, ok, "expected table, got %T", ret)
		return tbl
	}
	first := call(1, 1)
	assert.Equal(t, lua.LNumber(3), first.RawGetString("damage"))
	assert.Equal(t, lua.LString("chaos"), first.RawGetString("damage_type"))
	assert.Equal(t, lua.LNumber(10), call(3, 2).RawGetString("damage"))
}

func TestShipped_SoulBurnRemoved_Logs(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.LoadGlobal(shippedScripts, 0))
	withEntities(mgr, &scripting.EntityInfo{ID: "player", Name: "Hero", Kind: "player"})
	_, err := mgr.CallHook("effects", "soul_burn_removed", lua.LString("player"), lua.LString("soul_burn"))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("soul_burn faded from Hero").Len())
}

func TestShipped_BruteShouldGuard(t *testing.T) {
	mgr := loadShipped(t)
	foe := &scripting.EntityInfo{ID: "player", Kind: "player", Health: 80, MaxHealth: 100}
	withEntities(mgr, foe, &scripting.EntityInfo{ID: "ogre-1", Kind: "enemy"})

	guard := func(fraction float64) lua.LValue {
		ret, err := mgr.CallHook("brute", "brute_should_guard", lua.LString("ogre-1"), lua.LNumber(fraction), lua.LNumber(2))
		require.NoError(t, err)
		return ret
	}
	assert.Equal(t, lua.LFalse, guard(0.9), "healthy brutes do not guard")
	assert.Equal(t, lua.LTrue, guard(0.2), "wounded brute facing a healthy foe guards")
	foe.Health = 30
	assert.Equal(t, lua.LFalse, guard(0.2), "wounded brute presses a wounded foe")
}

func TestShipped_WarlordOverride(t *testing.T) {
	mgr := loadShipped(t)
	override := func(kind string, fraction float64, rng string) lua.LValue {
		ret, err := mgr.CallHook("brute", "warlord_override",
			lua.LString("ogre-1"), lua.LString(kind), lua.LNumber(fraction), lua.LNumber(1), lua.LString(rng))
		require.NoError(t, err)
		return ret
	}
	assert.Equal(t, lua.LString("move"), override("attack", 0.9, "out_of_range"))
	assert.Equal(t, lua.LString("attack"), override("block", 0.1, "in_range"))
	assert.Equal(t, lua.LString("block"), override("block", 0.8, "in_range"))
}

func TestProperty_WarlordOverride_AlwaysValidIntent(t *testing.T) {
	mgr := loadShipped(t)
	rapid.Check(t, func(rt *rapid.T) {
		kind := rapid.SampledFrom([]string{"attack", "block", "ability", "move"}).Draw(rt, "kind")
		rng := rapid.SampledFrom([]string{"in_range", "out_of_range"}).Draw(rt, "range")
		fraction := rapid.Float64Range(0, 1).Draw(rt, "fraction")
		ret, err := mgr.CallHook("brute", "warlord_override",
			lua.LString("ogre-1"), lua.LString(kind), lua.LNumber(fraction), lua.LNumber(1), lua.LString(rng))
		require.NoError(rt, err)
		assert.Contains(rt, []string{"attack", "block", "ability", "move"}, lua.LVAsString(ret))
	})
}
