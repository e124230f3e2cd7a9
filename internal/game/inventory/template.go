package inventory

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

// Template is the static base an item is generated from, loaded from YAML.
type Template struct {
	ID             string          `yaml:"id"`
	Name           string          `yaml:"name"`
	Type           ItemType        `yaml:"type"`
	Slot           ItemSlot        `yaml:"slot"`
	BaseType       string          `yaml:"base_type"`
	Class          string          `yaml:"class"`
	TwoHanded      bool            `yaml:"two_handed"`
	DamageType     string          `yaml:"damage_type"`
	MinDungeonTier int             `yaml:"min_dungeon_tier"`
	DropWeight     int             `yaml:"drop_weight"`
	Stats          stats.Modifiers `yaml:"stats"`
	Abilities      []string        `yaml:"abilities"`
	// Material and Quantity apply to crafting templates.
	Material string `yaml:"material"`
	Quantity int    `yaml:"quantity"`
}

// Validate checks that the template satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	switch t.Type {
	case TypeEquipment:
		if !t.Slot.Valid() {
			errs = append(errs, fmt.Errorf("slot must be a known equipment slot, got %q", t.Slot))
		}
		if t.TwoHanded && t.Slot != ItemSlotWeapon {
			errs = append(errs, errors.New("only weapons may be two-handed"))
		}
	case TypeCrafting:
		if t.Material == "" {
			errs = append(errs, errors.New("crafting template requires material"))
		}
	default:
		errs = append(errs, fmt.Errorf("type must be equipment or crafting, got %q", t.Type))
	}
	if t.MinDungeonTier < 1 {
		errs = append(errs, errors.New("min_dungeon_tier must be >= 1"))
	}
	if t.DropWeight < 1 {
		errs = append(errs, errors.New("drop_weight must be >= 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("template %q validation failed: %v", t.ID, errs)
	}
	return nil
}

// LoadTemplates reads all *.yaml and *.yml files from dir. Each file holds a list of templates.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid templates or the first encountered error.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadTemplates: cannot read directory %q: %w", dir, err)
	}

	var out []*Template
	seen := make(map[string]bool)
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadTemplates: cannot read file %q: %w", path, err)
		}
		var file struct {
			Templates []*Template `yaml:"templates"`
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("LoadTemplates: cannot parse file %q: %w", path, err)
		}
		for _, t := range file.Templates {
			if err := t.Validate(); err != nil {
				return nil, fmt.Errorf("LoadTemplates: invalid template in %q: %w", path, err)
			}
			if seen[t.ID] {
				return nil, fmt.Errorf("LoadTemplates: duplicate template id %q in %q", t.ID, path)
			}
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	return out, nil
}
