// Package loot generates equipment, crafting materials and dungeon keys from
// weighted templates and tiered affix pools, and distributes them at the end of
// a won combat.
package loot

import (
	"errors"
	"fmt"
	"math"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
)

var (
	// ErrUnknownTier is returned for tiers below 1.
	ErrUnknownTier = errors.New("loot: unknown tier")
	// ErrNoEligibleTemplate is returned when no template of the requested type is
	// available at the requested tier.
	ErrNoEligibleTemplate = errors.New("loot: no eligible template")
	// ErrAffixPoolExhausted is returned when the filtered affix pool is smaller than
	// the number of affixes the rarity requires.
	ErrAffixPoolExhausted = errors.New("loot: affix pool exhausted")
)

// RarityConfig bounds the affix count of one rarity.
//
// Invariant: 0 <= MinAffixes <= MaxAffixes.
type RarityConfig struct {
	MinAffixes int `yaml:"min_affixes"`
	MaxAffixes int `yaml:"max_affixes"`
}

// DefaultRarities returns the reference affix bounds.
func DefaultRarities() map[inventory.Rarity]RarityConfig {
	return map[inventory.Rarity]RarityConfig{
		inventory.RarityNormal: {MinAffixes: 0, MaxAffixes: 0},
		inventory.RarityMagic:  {MinAffixes: 1, MaxAffixes: 2},
		inventory.RarityRare:   {MinAffixes: 3, MaxAffixes: 4},
		inventory.RarityUnique: {MinAffixes: 4, MaxAffixes: 5},
		inventory.RaritySet:    {MinAffixes: 2, MaxAffixes: 3},
	}
}

// rarityWeights holds, per tier starting at 1, the weights of inventory.AllRarities
// in order. Tiers beyond the table use its last row.
var rarityWeights = [][]int{
	{70, 25, 5, 0, 0},
	{55, 32, 10, 2, 1},
	{45, 35, 15, 3, 2},
	{35, 37, 20, 5, 3},
	{25, 38, 25, 7, 5},
}

// RarityWeights returns the rarity weights for tier, aligned with inventory.AllRarities.
//
// Postcondition: returns ErrUnknownTier for tier < 1.
func RarityWeights(tier int) ([]int, error) {
	if tier < 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, tier)
	}
	row := rarityWeights[min(tier, len(rarityWeights))-1]
	out := make([]int, len(row))
	copy(out, row)
	return out, nil
}

// RollRarity draws a rarity from the tier's weight table.
func RollRarity(tier int, src dice.Source) (inventory.Rarity, error) {
	w, err := RarityWeights(tier)
	if err != nil {
		return "", err
	}
	return inventory.AllRarities[pickWeighted(w, src)], nil
}

// TierMultiplier is the inherent-stat scale applied at tier: 1 + 0.15*(tier-1).
func TierMultiplier(tier int) float64 {
	if tier < 1 {
		tier = 1
	}
	return 1 + 0.15*float64(tier-1)
}

// scaleInt floors v*TierMultiplier(tier).
func scaleInt(v, tier int) int {
	return int(math.Floor(float64(v) * TierMultiplier(tier)))
}

// pickWeighted returns an index into weights chosen with probability proportional
// to its weight, or -1 when the total weight is zero.
func pickWeighted(weights []int, src dice.Source) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	roll := src.Intn(total)
	cumulative := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}
