package loot

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

// KeyModifierKind selects what a dungeon key modifier changes.
type KeyModifierKind string

const (
	// ModEnemyHealth raises every enemy's max health by Percent.
	ModEnemyHealth KeyModifierKind = "enemy_health"
	// ModEnemyDamage raises every enemy's damage by Percent.
	ModEnemyDamage KeyModifierKind = "enemy_damage"
	// ModLootTierUp re-rolls each generated equipment item one tier higher with Chance.
	ModLootTierUp KeyModifierKind = "loot_tier_up"
	// ModBonusItems appends Count extra loot rolls.
	ModBonusItems KeyModifierKind = "bonus_items"
)

// KeyModifier is one rule attached to a dungeon key.
type KeyModifier struct {
	ID      string          `yaml:"id"`
	Name    string          `yaml:"name"`
	Kind    KeyModifierKind `yaml:"kind"`
	Percent int             `yaml:"percent"`
	Chance  float64         `yaml:"chance"`
	Count   int             `yaml:"count"`
}

// Validate checks the modifier against its kind.
func (k KeyModifier) Validate() error {
	var errs []error
	if k.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	switch k.Kind {
	case ModEnemyHealth, ModEnemyDamage:
		if k.Percent <= 0 {
			errs = append(errs, fmt.Errorf("%s requires percent > 0", k.Kind))
		}
	case ModLootTierUp:
		if k.Chance <= 0 || k.Chance > 1 {
			errs = append(errs, fmt.Errorf("%s requires chance in (0,1], got %v", k.Kind, k.Chance))
		}
	case ModBonusItems:
		if k.Count < 1 {
			errs = append(errs, fmt.Errorf("%s requires count >= 1", k.Kind))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown kind %q", k.Kind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("key modifier %q validation failed: %v", k.ID, errs)
	}
	return nil
}

// EnemyModifiers returns the stat delta the modifier installs on an enemy with
// base stats. ok is false for modifiers that only affect loot.
func (k KeyModifier) EnemyModifiers(base stats.BaseStats) (mods stats.Modifiers, ok bool) {
	switch k.Kind {
	case ModEnemyHealth:
		return stats.Modifiers{MaxHealth: base.MaxHealth * k.Percent / 100}, true
	case ModEnemyDamage:
		return stats.Modifiers{Damage: base.Damage * k.Percent / 100}, true
	default:
		return stats.Modifiers{}, false
	}
}

// LoadKeyModifiers reads all YAML files in dir. Each file holds a `key_modifiers:` list.
func LoadKeyModifiers(dir string) (map[string]KeyModifier, error) {
	out := make(map[string]KeyModifier)
	err := eachYAML(dir, func(path string, dec *yaml.Decoder) error {
		var file struct {
			KeyModifiers []KeyModifier `yaml:"key_modifiers"`
		}
		if err := dec.Decode(&file); err != nil {
			return fmt.Errorf("cannot parse file %q: %w", path, err)
		}
		for _, k := range file.KeyModifiers {
			if err := k.Validate(); err != nil {
				return fmt.Errorf("invalid key modifier in %q: %w", path, err)
			}
			if _, dup := out[k.ID]; dup {
				return fmt.Errorf("duplicate key modifier id %q in %q", k.ID, path)
			}
			out[k.ID] = k
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LoadKeyModifiers: %w", err)
	}
	return out, nil
}

// Resolve looks up ids in mods, failing on the first unknown id.
func Resolve(mods map[string]KeyModifier, ids []string) ([]KeyModifier, error) {
	out := make([]KeyModifier, 0, len(ids))
	for _, id := range ids {
		k, ok := mods[id]
		if !ok {
			return nil, fmt.Errorf("loot: unknown key modifier %q", id)
		}
		out = append(out, k)
	}
	return out, nil
}
