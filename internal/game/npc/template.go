// Package npc provides enemy template definitions and spawns combat-ready enemies from them.
package npc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/entity"
	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

// Template defines a reusable enemy archetype loaded from YAML.
type Template struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Type        entity.EnemyType `yaml:"type"`
	Stats       stats.BaseStats  `yaml:"stats"`
	// AI is the intent pattern; omitted fields are zero, not defaulted.
	AI         entity.AIPattern `yaml:"ai"`
	LootTier   int              `yaml:"loot_tier"`
	Elite      bool             `yaml:"elite"`
	Boss       bool             `yaml:"boss"`
	Experience int              `yaml:"experience"`
	// GoldDice is a dice expression (e.g. "2d6+3") rolled on defeat.
	GoldDice  string   `yaml:"gold_dice"`
	Abilities []string `yaml:"abilities"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Type is known, the
// stat block and AI pattern are valid, LootTier >= 1 and GoldDice parses;
// returns an error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("npc template %q: type must be melee, ranged or magic, got %q", t.ID, t.Type)
	}
	if err := t.Stats.Validate(); err != nil {
		return fmt.Errorf("npc template %q: %w", t.ID, err)
	}
	if err := t.AI.Validate(); err != nil {
		return fmt.Errorf("npc template %q: %w", t.ID, err)
	}
	if t.LootTier < 1 {
		return fmt.Errorf("npc template %q: loot_tier must be >= 1", t.ID)
	}
	if t.Experience < 0 {
		return fmt.Errorf("npc template %q: experience must be >= 0", t.ID)
	}
	if t.GoldDice != "" {
		if _, err := dice.Parse(t.GoldDice); err != nil {
			return fmt.Errorf("npc template %q: gold_dice %q: %w", t.ID, t.GoldDice, err)
		}
	}
	return nil
}

// LoadTemplateFromBytes parses a single enemy template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template with stat defaults applied, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	tmpl.Stats = tmpl.Stats.WithDefaults()
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir. Each file holds a `templates:` list.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		var file struct {
			Templates []*Template `yaml:"templates"`
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		for _, tmpl := range file.Templates {
			if err := tmpl.Validate(); err != nil {
				return nil, fmt.Errorf("loading %q: %w", path, err)
			}
			tmpl.Stats = tmpl.Stats.WithDefaults()
			templates = append(templates, tmpl)
		}
	}
	return templates, nil
}
