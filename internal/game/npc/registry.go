package npc

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cory-johannsen/dungeon/internal/game/entity"
	"github.com/cory-johannsen/dungeon/internal/game/loot"
)

// ErrTemplateNotFound is returned when a spawn names an unknown template.
var ErrTemplateNotFound = errors.New("npc: template not found")

// Registry indexes templates by ID and spawns enemies from them.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
	counter   atomic.Uint64
}

// NewRegistry creates a Registry holding templates.
//
// Postcondition: returns an error on a duplicate template ID.
func NewRegistry(templates []*Template) (*Registry, error) {
	r := &Registry{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if _, dup := r.templates[t.ID]; dup {
			return nil, fmt.Errorf("npc.Registry: duplicate template id %q", t.ID)
		}
		r.templates[t.ID] = t
	}
	return r, nil
}

// Template returns the template with id.
func (r *Registry) Template(id string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	return t, ok
}

// IDs returns every template ID in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.templates))
	for id := range r.templates {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Spawn creates a combat-ready Enemy from templateID scaled to dungeon tier scale.
//
// Precondition: scale >= 1.
// Postcondition: Returns an Enemy with a unique ID at full resources whose health,
// mana, energy shield, armor and damage are floor(base * loot.TierMultiplier(scale)),
// or an error wrapping ErrTemplateNotFound.
func (r *Registry) Spawn(templateID string, scale int) (*entity.Enemy, error) {
	tmpl, ok := r.Template(templateID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, templateID)
	}
	if scale < 1 {
		return nil, fmt.Errorf("npc.Registry.Spawn: scale must be >= 1, got %d", scale)
	}

	n := r.counter.Add(1)
	id := fmt.Sprintf("%s-%d", tmpl.ID, n)

	base := tmpl.Stats
	f := loot.TierMultiplier(scale)
	scaled := base.Modifiers().Scale(f)
	base.MaxHealth = max(1, scaled.MaxHealth)
	base.MaxMana = scaled.MaxMana
	base.MaxEnergyShield = scaled.MaxEnergyShield
	base.Armor = scaled.Armor
	base.Damage = scaled.Damage

	e := entity.NewEnemy(id, tmpl.Name, base, tmpl.Type)
	e.TemplateID = tmpl.ID
	e.Pattern = tmpl.AI
	e.LootTier = tmpl.LootTier
	e.Elite = tmpl.Elite
	e.Boss = tmpl.Boss
	e.Experience = tmpl.Experience * scale
	e.GoldDice = tmpl.GoldDice
	e.Abilities = append([]string(nil), tmpl.Abilities...)
	return e, nil
}

// SpawnGroup spawns one enemy per template ID, failing on the first unknown ID.
func (r *Registry) SpawnGroup(templateIDs []string, scale int) ([]*entity.Enemy, error) {
	out := make([]*entity.Enemy, 0, len(templateIDs))
	for _, id := range templateIDs {
		e, err := r.Spawn(id, scale)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
