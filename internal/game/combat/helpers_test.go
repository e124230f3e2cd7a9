package combat_test

import (
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/dungeon/internal/game/ai"
	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/effect"
	"github.com/cory-johannsen/dungeon/internal/game/entity"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/game/loot"
	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

const contentDir = "../../../content"

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

// clampSrc returns val for every draw, clamped into [0, n).
// val 5000 makes every percentile roll 50: attacks at default accuracy hit and never crit.
type clampSrc struct{ val int }

func (c clampSrc) Intn(n int) int {
	if c.val >= n {
		return n - 1
	}
	return c.val
}

// fixedIntent makes every enemy telegraph the same intent kind at the player.
type fixedIntent entity.IntentKind

func (k fixedIntent) Choose(sit ai.Situation, _ dice.Source) entity.Intent {
	return entity.Intent{Kind: entity.IntentKind(k), TargetID: sit.Player.ID, Description: "prepares to " + string(k)}
}

// stubLoot records requests and returns canned items.
type stubLoot struct {
	items    []*inventory.Item
	err      error
	requests []loot.Request
}

func (s *stubLoot) Distribute(req loot.Request) ([]*inventory.Item, error) {
	s.requests = append(s.requests, req)
	return s.items, s.err
}

func loadRegistry(t testingT) *effect.Registry {
	t.Helper()
	reg, err := effect.LoadDirectory(contentDir + "/effects")
	require.NoError(t, err)
	return reg
}

func newDeps(t testingT, src dice.Source, chooser combat.IntentChooser) (combat.Deps, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	return combat.Deps{
		Effects: effect.NewEngine(nil, "", logger),
		Factory: effect.NewFactory(loadRegistry(t)),
		AI:      chooser,
		Roller:  dice.NewLoggedRoller(src, logger),
		Logger:  logger,
		Config:  combat.DefaultConfig(),
	}, logs
}

func newPlayer(base stats.BaseStats) *entity.Player {
	return entity.NewPlayer("player", "Hero", base, 10)
}

func newGoblin(id string, base stats.BaseStats) *entity.Enemy {
	e := entity.NewEnemy(id, "Goblin", base, entity.Melee)
	e.Experience = 20
	return e
}

func equipment(id string, slot inventory.ItemSlot, class string, abilities ...string) *inventory.Item {
	return &inventory.Item{
		ID:     id,
		Name:   id,
		Type:   inventory.TypeEquipment,
		Rarity: inventory.RarityNormal,
		Level:  1,
		Equipment: &inventory.EquipmentData{
			Slot:      slot,
			Class:     class,
			Abilities: abilities,
		},
	}
}

func equip(t testingT, p *entity.Player, it *inventory.Item) {
	t.Helper()
	require.NoError(t, p.Grant(it))
	require.NoError(t, p.Equip(it.ID, ""))
}

func newManager(t testingT, setup combat.Setup, deps combat.Deps) *combat.Manager {
	t.Helper()
	if setup.DungeonTier == 0 {
		setup.DungeonTier = 1
	}
	m, err := combat.NewManager(setup, deps)
	require.NoError(t, err)
	return m
}

func lastLog(m *combat.Manager) combat.LogEntry {
	log := m.Log()
	return log[len(log)-1]
}
