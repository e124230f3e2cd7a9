// Package simulation assembles content, scripting and combat into runnable encounters.
package simulation

import (
	"fmt"
	"path/filepath"

	"github.com/cory-johannsen/dungeon/internal/game/ai"
	"github.com/cory-johannsen/dungeon/internal/game/effect"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/game/loot"
	"github.com/cory-johannsen/dungeon/internal/game/npc"
)

// Content is every static definition loaded from the content directory.
type Content struct {
	Effects      *effect.Registry
	Items        []*inventory.Template
	Affixes      []*loot.AffixDef
	KeyModifiers map[string]loot.KeyModifier
	Enemies      *npc.Registry
	Domains      []*ai.Domain
}

// LoadContent reads the effects, items, affixes, key_modifiers, enemies and ai
// subdirectories of dir.
//
// Precondition: dir must be a readable directory laid out like content/.
// Postcondition: Returns fully validated content or the first error encountered.
func LoadContent(dir string) (*Content, error) {
	effects, err := effect.LoadDirectory(filepath.Join(dir, "effects"))
	if err != nil {
		return nil, fmt.Errorf("loading effects: %w", err)
	}
	items, err := inventory.LoadTemplates(filepath.Join(dir, "items"))
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	affixes, err := loot.LoadAffixes(filepath.Join(dir, "affixes"))
	if err != nil {
		return nil, fmt.Errorf("loading affixes: %w", err)
	}
	mods, err := loot.LoadKeyModifiers(filepath.Join(dir, "key_modifiers"))
	if err != nil {
		return nil, fmt.Errorf("loading key modifiers: %w", err)
	}
	templates, err := npc.LoadTemplates(filepath.Join(dir, "enemies"))
	if err != nil {
		return nil, fmt.Errorf("loading enemies: %w", err)
	}
	enemies, err := npc.NewRegistry(templates)
	if err != nil {
		return nil, fmt.Errorf("indexing enemies: %w", err)
	}
	domains, err := ai.LoadDomains(filepath.Join(dir, "ai"))
	if err != nil {
		return nil, fmt.Errorf("loading ai domains: %w", err)
	}
	return &Content{
		Effects:      effects,
		Items:        items,
		Affixes:      affixes,
		KeyModifiers: mods,
		Enemies:      enemies,
		Domains:      domains,
	}, nil
}
