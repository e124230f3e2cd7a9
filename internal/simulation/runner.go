package simulation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/config"
	"github.com/cory-johannsen/dungeon/internal/game/ai"
	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/effect"
	"github.com/cory-johannsen/dungeon/internal/game/entity"
	"github.com/cory-johannsen/dungeon/internal/game/loot"
	"github.com/cory-johannsen/dungeon/internal/game/stats"
	"github.com/cory-johannsen/dungeon/internal/scripting"
)

// Script scopes used when calling Lua hooks.
const (
	EffectScope = "effects"
	AIScope     = "ai"
)

// PlayerID is the participant id of the simulated player.
const PlayerID = "player"

// Runner plays automatic encounters against loaded content.
//
// It is not safe for concurrent use: every run rebinds the shared script VMs.
type Runner struct {
	content   *Content
	cfg       config.Config
	roller    *dice.Roller
	scripts   *scripting.Manager
	chooser   *ai.Chooser
	generator *loot.Generator
	factory   *effect.Factory
	modifiers []loot.KeyModifier
	logger    *zap.Logger
}

// CombatConfig maps the file configuration onto combat rules.
func CombatConfig(c config.CombatConfig) combat.Config {
	return combat.Config{
		EquippedLossChance:    c.EquippedLossChance,
		InitiativeDie:         c.InitiativeDie,
		EscapeAttemptsPerTurn: c.EscapeAttemptsPerTurn,
		MaxInvalidActions:     c.MaxInvalidActions,
	}
}

// LootConfig maps the file configuration onto generation rules, keeping the
// default rarity table and key themes.
func LootConfig(c config.LootConfig) loot.Config {
	out := loot.DefaultConfig()
	out.EquipmentChance = c.EquipmentChance
	out.MaterialChance = c.MaterialChance
	out.KeyChance = c.KeyChance
	out.KeyUses = c.KeyUses
	return out
}

// NewRunner wires scripting, AI and loot generation for content.
//
// Precondition: content, src and logger must be non-nil; cfg must be valid.
// Postcondition: Returns a Runner owning its script VMs, or an error if scripts,
// AI domains or key modifiers fail to load.
func NewRunner(content *Content, cfg config.Config, src dice.Source, logger *zap.Logger) (*Runner, error) {
	mods, err := loot.Resolve(content.KeyModifiers, cfg.Simulation.KeyModifiers)
	if err != nil {
		return nil, err
	}

	roller := dice.NewLoggedRoller(src, logger)
	scripts := scripting.NewManager(roller, logger)
	if dir := cfg.Content.ScriptsDir; dir != "" {
		if err := scripts.LoadGlobal(dir, cfg.Content.InstructionLimit); err != nil {
			scripts.Close()
			return nil, fmt.Errorf("loading scripts from %s: %w", filepath.Clean(dir), err)
		}
	}

	reg := ai.NewRegistry()
	for _, d := range content.Domains {
		if err := reg.Register(d, scripts, d.ID); err != nil {
			scripts.Close()
			return nil, err
		}
	}

	gen, err := loot.NewGenerator(content.Items, content.Affixes, LootConfig(cfg.Loot), src, logger)
	if err != nil {
		scripts.Close()
		return nil, fmt.Errorf("creating loot generator: %w", err)
	}

	return &Runner{
		content:   content,
		cfg:       cfg,
		roller:    roller,
		scripts:   scripts,
		chooser:   ai.NewChooser(reg, scripts, AIScope, logger),
		generator: gen,
		factory:   effect.NewFactory(content.Effects),
		modifiers: mods,
		logger:    logger,
	}, nil
}

// Close releases the script VMs.
func (r *Runner) Close() { r.scripts.Close() }

// Generator returns the loot generator shared by every run.
func (r *Runner) Generator() *loot.Generator { return r.generator }

// NewPlayer builds a fresh player carrying the starter kit and a dungeon key.
//
// Postcondition: every starter item is equipped or, when its slot is taken, left in the backpack.
func (r *Runner) NewPlayer() (*entity.Player, string, error) {
	sim := r.cfg.Simulation
	p := entity.NewPlayer(PlayerID, "Adventurer", stats.BaseStats{
		MaxHealth: sim.PlayerHealth,
		MaxMana:   40,
		Damage:    4,
		Armor:     2,
	}, r.cfg.Combat.BackpackSlots)

	for _, id := range sim.StarterKit {
		it, err := r.generator.FromTemplate(id, 1)
		if err != nil {
			return nil, "", fmt.Errorf("starter kit: %w", err)
		}
		if err := p.Grant(it); err != nil {
			return nil, "", fmt.Errorf("starter kit: %w", err)
		}
		if err := p.Equip(it.ID, ""); err != nil {
			r.logger.Debug("starter item left in backpack", zap.String("template", id), zap.Error(err))
		}
	}

	key, err := r.generator.GenerateKey(max(1, sim.DungeonTier-1))
	if err != nil {
		return nil, "", fmt.Errorf("dungeon key: %w", err)
	}
	for _, m := range r.modifiers {
		key.Key.Modifiers = append(key.Key.Modifiers, m.ID)
	}
	if err := p.GrantToStash(key); err != nil {
		return nil, "", fmt.Errorf("dungeon key: %w", err)
	}
	return p, key.ID, nil
}

// NewEncounter builds a ready combat for the configured enemies and binds the
// scripts to it.
func (r *Runner) NewEncounter() (*combat.Manager, error) {
	sim := r.cfg.Simulation
	player, keyID, err := r.NewPlayer()
	if err != nil {
		return nil, err
	}
	enemies, err := r.content.Enemies.SpawnGroup(sim.Enemies, sim.DungeonTier)
	if err != nil {
		return nil, err
	}
	m, err := combat.NewManager(combat.Setup{
		Player:       player,
		Enemies:      enemies,
		DungeonTier:  sim.DungeonTier,
		KeyModifiers: r.modifiers,
		AllowEscape:  sim.AllowEscape,
		KeyItemID:    keyID,
	}, combat.Deps{
		Effects: effect.NewEngine(r.scripts, EffectScope, r.logger),
		Factory: r.factory,
		Loot:    r.generator,
		AI:      r.chooser,
		Roller:  r.roller,
		Logger:  r.logger,
		Config:  CombatConfig(r.cfg.Combat),
	})
	if err != nil {
		return nil, err
	}
	BindScripts(r.scripts, m)
	return m, nil
}

// Run plays one encounter to completion with the automatic policy.
//
// Postcondition: on success the returned Manager is in LootDistribution.
func (r *Runner) Run(ctx context.Context) (*combat.Manager, combat.Result, error) {
	m, err := r.NewEncounter()
	if err != nil {
		return nil, combat.Result{}, err
	}
	sim := r.cfg.Simulation
	policy := combat.AutoPolicy{FleeBelow: sim.FleeBelow, EscapeChance: sim.EscapeChance, UseAbilities: true}
	res, err := m.Run(ctx, policy)
	if err != nil {
		if errors.Is(err, combat.ErrCombatFaulted) {
			r.logger.Error("combat faulted", zap.String("combat", m.ID()), zap.Error(m.Err()))
		}
		return m, combat.Result{}, err
	}
	r.logger.Info("combat finished",
		zap.String("combat", res.CombatID),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("turns", res.TurnsElapsed),
		zap.Int("loot", len(res.Loot)),
	)
	return m, res, nil
}
