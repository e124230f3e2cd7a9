package simulation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeon/internal/config"
	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/simulation"
)

const contentDir = "../../content"

func testConfig(t testing.TB) config.Config {
	t.Helper()
	cfg, err := config.LoadFromViper(config.Defaults())
	require.NoError(t, err)
	cfg.Content.Dir = contentDir
	cfg.Content.ScriptsDir = contentDir + "/scripts"
	return cfg
}

func newRunner(t testing.TB, cfg config.Config, seed uint64) *simulation.Runner {
	t.Helper()
	content, err := simulation.LoadContent(cfg.Content.Dir)
	require.NoError(t, err)
	r, err := simulation.NewRunner(content, cfg, dice.NewSeededSource(seed), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestLoadContent_ShippedContent(t *testing.T) {
	c, err := simulation.LoadContent(contentDir)
	require.NoError(t, err)
	assert.NotEmpty(t, c.Items)
	assert.NotEmpty(t, c.Affixes)
	assert.Contains(t, c.KeyModifiers, "fortified")
	assert.Contains(t, c.Enemies.IDs(), "goblin_grunt")
	assert.NotEmpty(t, c.Domains)
}

func TestLoadContent_MissingDir(t *testing.T) {
	_, err := simulation.LoadContent(t.TempDir())
	assert.Error(t, err)
}

func TestNewRunner_UnknownKeyModifier(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.KeyModifiers = []string{"cursed"}
	content, err := simulation.LoadContent(contentDir)
	require.NoError(t, err)
	_, err = simulation.NewRunner(content, cfg, dice.NewSeededSource(1), zap.NewNop())
	assert.Error(t, err)
}

func TestRunner_NewPlayer_EquipsStarterKit(t *testing.T) {
	r := newRunner(t, testConfig(t), 3)
	p, keyID, err := r.NewPlayer()
	require.NoError(t, err)
	assert.Len(t, p.Equipped(), 3)
	assert.Equal(t, "sword", p.WeaponClass())
	assert.Equal(t, 100, p.Base.MaxHealth)
	key, ok := p.Item(keyID)
	require.True(t, ok)
	assert.Equal(t, inventory.TypeKey, key.Type)
	assert.Equal(t, inventory.InStash, p.Locate(keyID))
}

func TestRunner_NewPlayer_UnknownStarterItem(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.StarterKit = []string{"excalibur"}
	r := newRunner(t, cfg, 3)
	_, _, err := r.NewPlayer()
	assert.Error(t, err)
}

func TestRunner_NewEncounter_AppliesKeyModifiers(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.KeyModifiers = []string{"fortified"}
	r := newRunner(t, cfg, 3)
	m, err := r.NewEncounter()
	require.NoError(t, err)
	require.Len(t, m.Enemies(), 1)
	e := m.Enemies()[0]
	assert.Greater(t, e.Stats().MaxHealth, e.Base.MaxHealth)
	assert.Equal(t, e.Stats().MaxHealth, e.Health(), "enemies start at full buffed health")
}

func TestRunner_NewEncounter_UnknownEnemy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Enemies = []string{"dragon"}
	r := newRunner(t, cfg, 3)
	_, err := r.NewEncounter()
	assert.Error(t, err)
}

func TestRunner_Run_Completes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Enemies = []string{"goblin_grunt", "goblin_shaman"}
	r := newRunner(t, cfg, 42)
	m, res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, combat.LootDistribution, m.State())
	assert.Equal(t, m.ID(), res.CombatID)
	assert.Positive(t, res.TurnsElapsed)
	if res.Outcome == combat.OutcomeDefeat {
		assert.Len(t, res.Penalties, 3)
	}
}

func TestRunner_Run_Cancelled(t *testing.T) {
	r := newRunner(t, testConfig(t), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBindScripts_ExposesSnapshots(t *testing.T) {
	r := newRunner(t, testConfig(t), 5)
	m, err := r.NewEncounter()
	require.NoError(t, err)
	e, ok := m.Entity(simulation.PlayerID)
	require.True(t, ok)
	info := simulation.EntityInfo(e, "player")
	assert.Equal(t, simulation.PlayerID, info.ID)
	assert.Equal(t, e.Health(), info.Health)
	assert.Equal(t, e.Stats().Armor, info.Armor)
}

// Property: a seeded simulation always reaches loot distribution with a known outcome.
func TestProperty_Run_AlwaysFinishes(t *testing.T) {
	cfg := testConfig(t)
	content, err := simulation.LoadContent(contentDir)
	require.NoError(t, err)
	rapid.Check(t, func(rt *rapid.T) {
		c := cfg
		c.Simulation.DungeonTier = rapid.IntRange(1, 4).Draw(rt, "tier")
		c.Simulation.Enemies = rapid.SliceOfN(rapid.SampledFrom(content.Enemies.IDs()), 1, 3).Draw(rt, "enemies")
		r, err := simulation.NewRunner(content, c, dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), zap.NewNop())
		if err != nil {
			rt.Fatalf("NewRunner: %v", err)
		}
		defer r.Close()
		m, res, err := r.Run(context.Background())
		if err != nil {
			rt.Fatalf("Run: %v", err)
		}
		if m.State() != combat.LootDistribution {
			rt.Fatalf("ended in %s", m.State())
		}
		switch res.Outcome {
		case combat.OutcomeVictory, combat.OutcomeDefeat, combat.OutcomeEscape:
		default:
			rt.Fatalf("unknown outcome %q", res.Outcome)
		}
	})
}
