package loot

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

// AffixDef is one entry of the affix pool.
type AffixDef struct {
	ID   string              `yaml:"id"`
	Name string              `yaml:"name"`
	Kind inventory.AffixKind `yaml:"kind"`
	Stat stats.Stat          `yaml:"stat"`
	Min  int                 `yaml:"min"`
	Max  int                 `yaml:"max"`
	// Level is the minimum item tier the affix may roll on.
	Level  int `yaml:"level"`
	Weight int `yaml:"weight"`
	// Slots restricts the affix to these item slots; empty allows every slot.
	Slots []inventory.ItemSlot `yaml:"slots"`
}

// Validate checks the affix definition.
//
// Postcondition: returns nil iff all fields are valid.
func (a *AffixDef) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if a.Kind != inventory.Prefix && a.Kind != inventory.Suffix {
		errs = append(errs, fmt.Errorf("kind must be prefix or suffix, got %q", a.Kind))
	}
	if !a.Stat.Valid() {
		errs = append(errs, fmt.Errorf("unknown stat %q", a.Stat))
	}
	if a.Min > a.Max {
		errs = append(errs, fmt.Errorf("min (%d) must be <= max (%d)", a.Min, a.Max))
	}
	if a.Level < 1 {
		errs = append(errs, fmt.Errorf("level must be >= 1, got %d", a.Level))
	}
	if a.Weight < 1 {
		errs = append(errs, fmt.Errorf("weight must be >= 1, got %d", a.Weight))
	}
	for _, s := range a.Slots {
		if !s.Valid() {
			errs = append(errs, fmt.Errorf("unknown slot %q", s))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("affix %q validation failed: %v", a.ID, errs)
	}
	return nil
}

// Eligible reports whether the affix may roll on an item of slot at tier.
func (a *AffixDef) Eligible(slot inventory.ItemSlot, tier int) bool {
	if a.Level > tier {
		return false
	}
	if len(a.Slots) == 0 {
		return true
	}
	for _, s := range a.Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// Roll produces a concrete affix with a value drawn from [Min, Max].
func (a *AffixDef) Roll(src dice.Source) inventory.Affix {
	return inventory.Affix{
		ID:    a.ID,
		Name:  a.Name,
		Kind:  a.Kind,
		Stat:  a.Stat,
		Value: dice.Between(src, a.Min, a.Max),
	}
}

// drawAffixes draws n distinct affixes eligible for slot at tier, each draw
// weighted by affix weight.
//
// Postcondition: returns ErrAffixPoolExhausted when fewer than n are eligible.
func drawAffixes(pool []*AffixDef, slot inventory.ItemSlot, tier, n int, src dice.Source) ([]inventory.Affix, error) {
	if n <= 0 {
		return nil, nil
	}
	var eligible []*AffixDef
	for _, a := range pool {
		if a.Eligible(slot, tier) {
			eligible = append(eligible, a)
		}
	}
	if len(eligible) < n {
		return nil, fmt.Errorf("%w: need %d for %s at tier %d, have %d", ErrAffixPoolExhausted, n, slot, tier, len(eligible))
	}
	out := make([]inventory.Affix, 0, n)
	for len(out) < n {
		weights := make([]int, len(eligible))
		for i, a := range eligible {
			weights[i] = a.Weight
		}
		i := pickWeighted(weights, src)
		out = append(out, eligible[i].Roll(src))
		eligible = append(eligible[:i], eligible[i+1:]...)
	}
	return out, nil
}

// LoadAffixes reads all *.yaml and *.yml files from dir. Each file holds an
// `affixes:` list.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid affixes or the first encountered error.
func LoadAffixes(dir string) ([]*AffixDef, error) {
	var out []*AffixDef
	seen := make(map[string]bool)
	err := eachYAML(dir, func(path string, dec *yaml.Decoder) error {
		var file struct {
			Affixes []*AffixDef `yaml:"affixes"`
		}
		if err := dec.Decode(&file); err != nil {
			return fmt.Errorf("cannot parse file %q: %w", path, err)
		}
		for _, a := range file.Affixes {
			if err := a.Validate(); err != nil {
				return fmt.Errorf("invalid affix in %q: %w", path, err)
			}
			if seen[a.ID] {
				return fmt.Errorf("duplicate affix id %q in %q", a.ID, path)
			}
			seen[a.ID] = true
			out = append(out, a)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LoadAffixes: %w", err)
	}
	return out, nil
}

// eachYAML opens every YAML file in dir with a strict decoder.
func eachYAML(dir string, fn func(path string, dec *yaml.Decoder) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read directory %q: %w", dir, err)
	}
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read file %q: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := fn(path, dec); err != nil {
			return err
		}
	}
	return nil
}
