package stats

import (
	"fmt"
	"math"
)

// Stat names a single modifiable stat. The names double as YAML keys in
// affix pools.
type Stat string

const (
	StatMaxHealth       Stat = "max_health"
	StatMaxMana         Stat = "max_mana"
	StatMaxEnergyShield Stat = "max_energy_shield"
	StatArmor           Stat = "armor"
	StatDamage          Stat = "damage"
	StatInitiative      Stat = "initiative"
	StatAccuracy        Stat = "accuracy"
	StatCriticalChance  Stat = "critical_chance"
	StatFireResistance  Stat = "fire_resistance"
	StatColdResistance  Stat = "cold_resistance"
	StatLightningRes    Stat = "lightning_resistance"
	StatChaosResistance Stat = "chaos_resistance"
)

// AllStats lists every Stat in a fixed order.
var AllStats = []Stat{
	StatMaxHealth, StatMaxMana, StatMaxEnergyShield, StatArmor, StatDamage,
	StatInitiative, StatAccuracy, StatCriticalChance, StatFireResistance,
	StatColdResistance, StatLightningRes, StatChaosResistance,
}

// Valid reports whether s names a known stat.
func (s Stat) Valid() bool {
	for _, known := range AllStats {
		if s == known {
			return true
		}
	}
	return false
}

// Modifiers is a set of additive stat deltas contributed by one source
// (equipment, a temporary effect, an active status).
type Modifiers struct {
	MaxHealth       int         `yaml:"max_health"`
	MaxMana         int         `yaml:"max_mana"`
	MaxEnergyShield int         `yaml:"max_energy_shield"`
	Armor           int         `yaml:"armor"`
	Damage          int         `yaml:"damage"`
	Initiative      int         `yaml:"initiative"`
	Accuracy        float64     `yaml:"accuracy"`
	CriticalChance  float64     `yaml:"critical_chance"`
	Resistances     Resistances `yaml:"resistances"`
}

// Add returns the field-wise sum of m and o.
func (m Modifiers) Add(o Modifiers) Modifiers {
	return Modifiers{
		MaxHealth:       m.MaxHealth + o.MaxHealth,
		MaxMana:         m.MaxMana + o.MaxMana,
		MaxEnergyShield: m.MaxEnergyShield + o.MaxEnergyShield,
		Armor:           m.Armor + o.Armor,
		Damage:          m.Damage + o.Damage,
		Initiative:      m.Initiative + o.Initiative,
		Accuracy:        m.Accuracy + o.Accuracy,
		CriticalChance:  m.CriticalChance + o.CriticalChance,
		Resistances:     m.Resistances.add(o.Resistances),
	}
}

// Scale multiplies every integer field by f and floors the result. Percent
// fields (accuracy, critical chance) and resistances are not scaled.
func (m Modifiers) Scale(f float64) Modifiers {
	scale := func(v int) int { return int(math.Floor(float64(v) * f)) }
	out := m
	out.MaxHealth = scale(m.MaxHealth)
	out.MaxMana = scale(m.MaxMana)
	out.MaxEnergyShield = scale(m.MaxEnergyShield)
	out.Armor = scale(m.Armor)
	out.Damage = scale(m.Damage)
	out.Initiative = scale(m.Initiative)
	return out
}

// IsZero reports whether m carries no deltas.
func (m Modifiers) IsZero() bool {
	return m == Modifiers{}
}

// With returns a copy of m with value added to stat.
//
// Precondition: stat.Valid().
func (m Modifiers) With(stat Stat, value int) (Modifiers, error) {
	switch stat {
	case StatMaxHealth:
		m.MaxHealth += value
	case StatMaxMana:
		m.MaxMana += value
	case StatMaxEnergyShield:
		m.MaxEnergyShield += value
	case StatArmor:
		m.Armor += value
	case StatDamage:
		m.Damage += value
	case StatInitiative:
		m.Initiative += value
	case StatAccuracy:
		m.Accuracy += float64(value)
	case StatCriticalChance:
		m.CriticalChance += float64(value)
	case StatFireResistance:
		m.Resistances.Fire += value
	case StatColdResistance:
		m.Resistances.Cold += value
	case StatLightningRes:
		m.Resistances.Lightning += value
	case StatChaosResistance:
		m.Resistances.Chaos += value
	default:
		return m, fmt.Errorf("stats: unknown stat %q", stat)
	}
	return m, nil
}

// Modifiers converts a BaseStats block into the equivalent Modifiers, used when a
// key modifier scales a whole enemy stat block.
func (b BaseStats) Modifiers() Modifiers {
	return Modifiers{
		MaxHealth:       b.MaxHealth,
		MaxMana:         b.MaxMana,
		MaxEnergyShield: b.MaxEnergyShield,
		Armor:           b.Armor,
		Damage:          b.Damage,
		Initiative:      b.Initiative,
		Accuracy:        b.HitChance(),
		CriticalChance:  b.CritChance(),
		Resistances:     b.Resistances,
	}
}
