// Package stats defines stat blocks and the pure computed-stats projection.
//
// Computed stats are never stored: every read recomputes them from the base block
// plus the modifier sources supplied by the caller.
package stats

import (
	"fmt"
	"math"
)

const (
	// DefaultAccuracy is the hit chance (percent) used when a stat block omits accuracy.
	DefaultAccuracy = 85.0
	// DefaultCriticalChance is the critical chance (percent) used when a stat block omits it.
	DefaultCriticalChance = 5.0
	// MaxResistance caps every elemental resistance (percent).
	MaxResistance = 75
)

// Resistances holds per-element damage resistance percentages.
type Resistances struct {
	Fire      int `yaml:"fire"`
	Cold      int `yaml:"cold"`
	Lightning int `yaml:"lightning"`
	Chaos     int `yaml:"chaos"`
}

func (r Resistances) add(o Resistances) Resistances {
	return Resistances{
		Fire:      r.Fire + o.Fire,
		Cold:      r.Cold + o.Cold,
		Lightning: r.Lightning + o.Lightning,
		Chaos:     r.Chaos + o.Chaos,
	}
}

// BaseStats is an entity's innate stat block.
//
// Accuracy and CriticalChance are nil when the block leaves them unset; an
// explicit zero is kept as zero.
type BaseStats struct {
	MaxHealth       int         `yaml:"max_health"`
	MaxMana         int         `yaml:"max_mana"`
	MaxEnergyShield int         `yaml:"max_energy_shield"`
	Armor           int         `yaml:"armor"`
	Damage          int         `yaml:"damage"`
	Initiative      int         `yaml:"initiative"`
	Accuracy        *float64    `yaml:"accuracy,omitempty"`
	CriticalChance  *float64    `yaml:"critical_chance,omitempty"`
	Resistances     Resistances `yaml:"resistances"`
}

// Percent returns a pointer to v for the optional BaseStats fields.
func Percent(v float64) *float64 { return &v }

// WithDefaults returns a copy of b with every unset optional field filled in.
//
// Postcondition: Accuracy and CriticalChance are non-nil and never alias b's pointers.
func (b BaseStats) WithDefaults() BaseStats {
	b.Accuracy = Percent(b.HitChance())
	b.CriticalChance = Percent(b.CritChance())
	return b
}

// HitChance returns the accuracy, or DefaultAccuracy when unset.
func (b BaseStats) HitChance() float64 { return orDefault(b.Accuracy, DefaultAccuracy) }

// CritChance returns the critical chance, or DefaultCriticalChance when unset.
func (b BaseStats) CritChance() float64 { return orDefault(b.CriticalChance, DefaultCriticalChance) }

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Validate rejects negative stat values.
func (b BaseStats) Validate() error {
	if b.MaxHealth < 1 {
		return fmt.Errorf("max_health must be >= 1, got %d", b.MaxHealth)
	}
	if b.MaxMana < 0 || b.MaxEnergyShield < 0 || b.Armor < 0 || b.Damage < 0 {
		return fmt.Errorf("mana, energy shield, armor and damage must be >= 0")
	}
	if b.HitChance() < 0 || b.CritChance() < 0 {
		return fmt.Errorf("accuracy and critical_chance must be >= 0")
	}
	return nil
}

// Stats is the computed projection of a BaseStats block and its modifiers.
type Stats struct {
	MaxHealth       int
	MaxMana         int
	MaxEnergyShield int
	Armor           int
	Damage          int
	Initiative      int
	Accuracy        float64
	CriticalChance  float64
	Resistances     Resistances
}

// Resistance returns the capped resistance for element, or 0 for unknown elements.
func (s Stats) Resistance(element string) int {
	switch element {
	case "fire":
		return s.Resistances.Fire
	case "cold":
		return s.Resistances.Cold
	case "lightning":
		return s.Resistances.Lightning
	case "chaos":
		return s.Resistances.Chaos
	default:
		return 0
	}
}

// Compute projects base plus every modifier source into a Stats value.
//
// Unset accuracy or critical chance on the base block fall back to the defaults.
//
// Postcondition: max values, armor and damage are >= 0; resistances are in
// [-100, MaxResistance]; accuracy and critical chance are in [0, 100].
func Compute(base BaseStats, sources ...Modifiers) Stats {
	var total Modifiers
	for _, m := range sources {
		total = total.Add(m)
	}

	out := Stats{
		MaxHealth:       floorZero(base.MaxHealth + total.MaxHealth),
		MaxMana:         floorZero(base.MaxMana + total.MaxMana),
		MaxEnergyShield: floorZero(base.MaxEnergyShield + total.MaxEnergyShield),
		Armor:           floorZero(base.Armor + total.Armor),
		Damage:          floorZero(base.Damage + total.Damage),
		Initiative:      base.Initiative + total.Initiative,
		Accuracy:        clampPercent(base.HitChance() + total.Accuracy),
		CriticalChance:  clampPercent(base.CritChance() + total.CriticalChance),
		Resistances:     base.Resistances.add(total.Resistances),
	}
	out.Resistances.Fire = clampResistance(out.Resistances.Fire)
	out.Resistances.Cold = clampResistance(out.Resistances.Cold)
	out.Resistances.Lightning = clampResistance(out.Resistances.Lightning)
	out.Resistances.Chaos = clampResistance(out.Resistances.Chaos)
	return out
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func clampResistance(v int) int {
	if v > MaxResistance {
		return MaxResistance
	}
	if v < -100 {
		return -100
	}
	return v
}
