package loot

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
)

// EnemyDrop is the loot-relevant view of one defeated enemy.
type EnemyDrop struct {
	EnemyID  string
	LootTier int
	Elite    bool
	Boss     bool
}

// Request describes the loot for one won combat.
type Request struct {
	DungeonTier int
	Enemies     []EnemyDrop
	Modifiers   []KeyModifier
}

// Category is what a single loot roll produces.
type Category string

const (
	CategoryEquipment Category = "equipment"
	CategoryMaterial  Category = "material"
	CategoryKey       Category = "key"
)

// RollCount returns how many loot rolls e grants at dungeonTier:
// max(1, lootTier + variance) with variance in {-1, 0, +1}, one more for elites
// and 2 + floor(dungeonTier/2) more for bosses.
func RollCount(e EnemyDrop, dungeonTier int, src dice.Source) int {
	n := max(1, e.LootTier+src.Intn(3)-1)
	if e.Elite {
		n++
	}
	if e.Boss {
		n += 2 + dungeonTier/2
	}
	return n
}

// Distribute generates the loot for req.
//
// Bosses additionally drop a key for the next tier. Key modifiers are applied
// afterwards as a pass that replaces or appends items; generated items are never
// modified in place.
//
// Postcondition: returns ErrUnknownTier for DungeonTier < 1 and propagates
// ErrNoEligibleTemplate when no equipment can be generated at all.
func (g *Generator) Distribute(req Request) ([]*inventory.Item, error) {
	tier := req.DungeonTier
	if tier < 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, tier)
	}
	var items []*inventory.Item
	for _, e := range req.Enemies {
		rolls := RollCount(e, tier, g.src)
		for i := 0; i < rolls; i++ {
			it, err := g.roll(tier)
			if err != nil {
				return nil, fmt.Errorf("loot for %s: %w", e.EnemyID, err)
			}
			items = append(items, it)
		}
		if e.Boss {
			key, err := g.GenerateKey(tier)
			if err != nil {
				return nil, err
			}
			items = append(items, key)
		}
	}
	items, err := g.applyModifiers(tier, req.Modifiers, items)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("distributed loot", zap.Int("tier", tier), zap.Int("enemies", len(req.Enemies)), zap.Int("items", len(items)))
	return items, nil
}

// RollCategory draws the category of one loot roll from the configured weights.
func (g *Generator) RollCategory() Category {
	weights := []int{
		int(g.cfg.EquipmentChance * 1000),
		int(g.cfg.MaterialChance * 1000),
		int(g.cfg.KeyChance * 1000),
	}
	switch pickWeighted(weights, g.src) {
	case 1:
		return CategoryMaterial
	case 2:
		return CategoryKey
	default:
		return CategoryEquipment
	}
}

// roll performs one loot roll at tier.
func (g *Generator) roll(tier int) (*inventory.Item, error) {
	switch g.RollCategory() {
	case CategoryMaterial:
		it, err := g.GenerateMaterial(tier)
		if errors.Is(err, ErrNoEligibleTemplate) {
			g.logger.Warn("no material template, rolling equipment instead", zap.Int("tier", tier))
			return g.rollEquipment(tier)
		}
		return it, err
	case CategoryKey:
		return g.GenerateKey(tier)
	default:
		return g.rollEquipment(tier)
	}
}

// rollEquipment generates a random equipment item, falling back to normal rarity when
// the affix pool cannot satisfy the rolled rarity.
func (g *Generator) rollEquipment(tier int) (*inventory.Item, error) {
	it, err := g.GenerateRandomItem(tier)
	if errors.Is(err, ErrAffixPoolExhausted) {
		g.logger.Warn("affix pool exhausted, generating normal item", zap.Int("tier", tier), zap.Error(err))
		return g.GenerateItem(tier, inventory.RarityNormal)
	}
	return it, err
}

func (g *Generator) applyModifiers(tier int, mods []KeyModifier, items []*inventory.Item) ([]*inventory.Item, error) {
	out := make([]*inventory.Item, len(items))
	copy(out, items)
	for _, k := range mods {
		switch k.Kind {
		case ModLootTierUp:
			for i, it := range out {
				if it.Type != inventory.TypeEquipment || !dice.Chance(g.src, k.Chance) {
					continue
				}
				up, err := g.rollEquipment(tier + 1)
				if err != nil {
					g.logger.Warn("tier-up re-roll failed", zap.String("modifier", k.ID), zap.Error(err))
					continue
				}
				out[i] = up
			}
		case ModBonusItems:
			for n := 0; n < k.Count; n++ {
				it, err := g.roll(tier)
				if err != nil {
					return nil, fmt.Errorf("bonus items from %s: %w", k.ID, err)
				}
				out = append(out, it)
			}
		}
	}
	return out, nil
}
