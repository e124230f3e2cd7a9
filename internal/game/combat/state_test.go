package combat_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeon/internal/game/combat"
)

func TestTransitions_LegalTable(t *testing.T) {
	legal := map[combat.State][]combat.State{
		combat.Initializing:        {combat.RollInitiative},
		combat.RollInitiative:      {combat.PlayerTurnStart, combat.EnemyTurnStart},
		combat.PlayerTurnStart:     {combat.PlayerActionSelect, combat.PlayerActionResolve, combat.EnemyTurnStart, combat.BetweenTurns},
		combat.PlayerActionSelect:  {combat.PlayerActionResolve},
		combat.PlayerActionResolve: {combat.EnemyTurnStart, combat.BetweenTurns, combat.CombatEnd, combat.PlayerActionSelect},
		combat.EnemyTurnStart:      {combat.EnemyIntent, combat.EnemyTurnStart, combat.PlayerTurnStart, combat.BetweenTurns},
		combat.EnemyIntent:         {combat.EnemyActionResolve},
		combat.EnemyActionResolve:  {combat.EnemyTurnStart, combat.PlayerTurnStart, combat.BetweenTurns},
		combat.BetweenTurns:        {combat.CheckVictory},
		combat.CheckVictory:        {combat.CheckDefeat, combat.CombatEnd},
		combat.CheckDefeat:         {combat.CombatEnd, combat.PlayerTurnStart, combat.EnemyTurnStart},
		combat.CombatEnd:           {combat.LootDistribution},
	}
	for _, from := range combat.AllStates {
		for _, to := range combat.AllStates {
			want := false
			for _, s := range legal[from] {
				if s == to {
					want = true
				}
			}
			assert.Equal(t, want, combat.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestState_OnlyLootDistributionIsTerminal(t *testing.T) {
	for _, s := range combat.AllStates {
		assert.Equal(t, s == combat.LootDistribution, s.Terminal(), s.String())
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "player_action_select", combat.PlayerActionSelect.String())
	assert.Equal(t, "state(99)", combat.State(99).String())
}

func TestSuccessors_ReturnsCopy(t *testing.T) {
	next := combat.Successors(combat.RollInitiative)
	require.Len(t, next, 2)
	next[0] = combat.LootDistribution
	assert.True(t, combat.CanTransition(combat.RollInitiative, combat.PlayerTurnStart))
}

func TestMachine_IllegalTransitionLeavesState(t *testing.T) {
	m := combat.NewMachine()
	err := m.Transition(combat.CombatEnd)
	assert.True(t, errors.Is(err, combat.ErrIllegalTransition))
	assert.Equal(t, combat.Initializing, m.State())
	assert.Equal(t, []combat.State{combat.Initializing}, m.History())
}

func TestProperty_Machine_FollowsTable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := combat.NewMachine()
		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			from := m.State()
			to := rapid.SampledFrom(combat.AllStates).Draw(rt, "to")
			err := m.Transition(to)
			if combat.CanTransition(from, to) {
				require.NoError(rt, err)
				assert.Equal(rt, to, m.State())
			} else {
				require.Error(rt, err)
				assert.Equal(rt, from, m.State())
			}
		}
		h := m.History()
		for i := 1; i < len(h); i++ {
			assert.True(rt, combat.CanTransition(h[i-1], h[i]), "history step %s -> %s", h[i-1], h[i])
		}
	})
}
