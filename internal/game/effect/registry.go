package effect

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

// ErrUnknownEffect is returned when a definition id is not registered.
var ErrUnknownEffect = errors.New("effect: unknown definition")

// ErrUnknownAbility is returned when an ability id is not registered.
var ErrUnknownAbility = errors.New("effect: unknown ability")

// BehaviorDef is the YAML shape of a Behavior. Kind selects which fields apply.
type BehaviorDef struct {
	Kind       string          `yaml:"kind"`
	Amount     int             `yaml:"amount"`
	DamageType string          `yaml:"damage_type"`
	Mana       int             `yaml:"mana"`
	Health     int             `yaml:"health"`
	Modifiers  stats.Modifiers `yaml:"modifiers"`
	Actions    []string        `yaml:"actions"`
	Percent    int             `yaml:"percent"`
	Status     string          `yaml:"status"`
	Chance     float64         `yaml:"chance"`
	Hook       string          `yaml:"hook"`
}

// Build converts the definition into its Behavior.
func (b BehaviorDef) Build() (Behavior, error) {
	switch b.Kind {
	case "damage_over_time":
		return DamageOverTime{Amount: b.Amount, DamageType: orPhysical(b.DamageType)}, nil
	case "heal_over_time":
		return HealOverTime{Amount: b.Amount}, nil
	case "resource_delta":
		return ResourceDelta{Mana: b.Mana, Health: b.Health}, nil
	case "stat_modifier":
		return StatModifier{Modifiers: b.Modifiers}, nil
	case "action_disable":
		return ActionDisable{Actions: b.Actions}, nil
	case "damage_reduction":
		if b.Percent < 0 || b.Percent > 100 {
			return nil, fmt.Errorf("damage_reduction percent must be 0-100, got %d", b.Percent)
		}
		return DamageReduction{Percent: b.Percent}, nil
	case "on_hit_status":
		if b.Status == "" {
			return nil, errors.New("on_hit_status requires status")
		}
		return OnHitStatus{StatusID: b.Status, Chance: b.Chance}, nil
	case "life_leech":
		return LifeLeech{Percent: b.Percent}, nil
	case "thorns":
		return Thorns{Amount: b.Amount, DamageType: orPhysical(b.DamageType)}, nil
	case "scripted":
		if b.Hook == "" {
			return nil, errors.New("scripted behavior requires hook")
		}
		return Scripted{Hook: b.Hook}, nil
	default:
		return nil, fmt.Errorf("unknown behavior kind %q", b.Kind)
	}
}

func orPhysical(t string) string {
	if t == "" {
		return "physical"
	}
	return t
}

// Def is the static definition of an effect, loaded from YAML.
type Def struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Family      Family      `yaml:"family"`
	Triggers    []Trigger   `yaml:"triggers"`
	Duration    Duration    `yaml:"duration"`
	Hidden      bool        `yaml:"hidden"`
	Stackable   bool        `yaml:"stackable"`
	MaxStacks   int         `yaml:"max_stacks"`
	Behavior    BehaviorDef `yaml:"behavior"`
	LuaOnRemove string      `yaml:"lua_on_remove"`
}

// Validate checks the definition's invariants.
func (d *Def) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if d.Family != FamilyStatus && d.Family != FamilyAbility {
		errs = append(errs, fmt.Sprintf("family must be status or ability, got %q", d.Family))
	}
	for _, t := range d.Triggers {
		if !t.Valid() {
			errs = append(errs, fmt.Sprintf("unknown trigger %q", t))
		}
	}
	if !d.Duration.Unit.Valid() {
		errs = append(errs, fmt.Sprintf("unknown duration unit %q", d.Duration.Unit))
	} else if !d.Duration.IsPermanent() && d.Duration.Amount < 1 {
		errs = append(errs, "duration amount must be >= 1 for non-permanent effects")
	}
	if d.MaxStacks < 0 {
		errs = append(errs, "max_stacks must be >= 0")
	}
	if _, err := d.Behavior.Build(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("effect %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// AbilityMode says how an ability is used.
type AbilityMode string

const (
	ModeCast    AbilityMode = "cast"
	ModeToggle  AbilityMode = "toggle"
	ModePassive AbilityMode = "passive"
)

// AbilityDef is an equipment-granted ability.
type AbilityDef struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Mode        AbilityMode `yaml:"mode"`
	ManaCost    int         `yaml:"mana_cost"`
	HealthCost  int         `yaml:"health_cost"`
	// Cooldown is the number of turns before a cast ability is usable again.
	Cooldown   int    `yaml:"cooldown"`
	TargetType string `yaml:"target_type"`
	Magnitude  int    `yaml:"magnitude"`
	DamageType string `yaml:"damage_type"`
	// StatusEffect is applied to struck targets with probability StatusChance.
	StatusEffect string   `yaml:"status_effect"`
	StatusChance float64  `yaml:"status_chance"`
	Duration     Duration `yaml:"duration"`
	// Effect is the definition installed while a toggle is on or a passive is equipped.
	Effect        string `yaml:"effect"`
	RangeRequired string `yaml:"range_required"`
}

// Validate checks the ability's invariants.
func (a *AbilityDef) Validate() error {
	var errs []string
	if a.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	switch a.Mode {
	case ModeCast:
		switch a.TargetType {
		case "enemy", "self", "all_enemies":
		default:
			errs = append(errs, fmt.Sprintf("target_type must be enemy, self or all_enemies, got %q", a.TargetType))
		}
	case ModeToggle, ModePassive:
		if a.Effect == "" {
			errs = append(errs, "toggle and passive abilities require effect")
		}
	default:
		errs = append(errs, fmt.Sprintf("mode must be cast, toggle or passive, got %q", a.Mode))
	}
	if a.ManaCost < 0 || a.HealthCost < 0 || a.Cooldown < 0 {
		errs = append(errs, "costs and cooldown must be >= 0")
	}
	if a.StatusChance < 0 || a.StatusChance > 1 {
		errs = append(errs, fmt.Sprintf("status_chance must be 0-1, got %v", a.StatusChance))
	}
	switch a.RangeRequired {
	case "", "in_range", "out_of_range":
	default:
		errs = append(errs, fmt.Sprintf("range_required must be in_range or out_of_range, got %q", a.RangeRequired))
	}
	if len(errs) > 0 {
		return fmt.Errorf("ability %q: %s", a.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Registry holds effect and ability definitions keyed by ID.
type Registry struct {
	effects   map[string]*Def
	abilities map[string]*AbilityDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{effects: make(map[string]*Def), abilities: make(map[string]*AbilityDef)}
}

// Register adds def, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Def) { r.effects[def.ID] = def }

// RegisterAbility adds def, overwriting any existing entry with the same ID.
func (r *Registry) RegisterAbility(def *AbilityDef) { r.abilities[def.ID] = def }

// Effect returns the definition for id.
func (r *Registry) Effect(id string) (*Def, bool) {
	d, ok := r.effects[id]
	return d, ok
}

// Ability returns the ability for id.
func (r *Registry) Ability(id string) (*AbilityDef, bool) {
	a, ok := r.abilities[id]
	return a, ok
}

// EffectIDs returns the registered effect ids sorted.
func (r *Registry) EffectIDs() []string {
	ids := make([]string, 0, len(r.effects))
	for id := range r.effects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Check verifies that every effect referenced by an ability or behavior is registered.
func (r *Registry) Check() error {
	var errs []string
	for _, a := range r.abilities {
		if a.Effect != "" {
			if _, ok := r.effects[a.Effect]; !ok {
				errs = append(errs, fmt.Sprintf("ability %q references unknown effect %q", a.ID, a.Effect))
			}
		}
		if a.StatusEffect != "" {
			if _, ok := r.effects[a.StatusEffect]; !ok {
				errs = append(errs, fmt.Sprintf("ability %q references unknown status %q", a.ID, a.StatusEffect))
			}
		}
	}
	for _, d := range r.effects {
		if d.Behavior.Kind == "on_hit_status" {
			if _, ok := r.effects[d.Behavior.Status]; !ok {
				errs = append(errs, fmt.Sprintf("effect %q references unknown status %q", d.ID, d.Behavior.Status))
			}
		}
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type contentFile struct {
	Effects   []*Def        `yaml:"effects"`
	Abilities []*AbilityDef `yaml:"abilities"`
}

// LoadDirectory reads every *.yaml file in dir. Each file may list effects and abilities.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns a Registry whose references all resolve, or an error.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var f contentFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, d := range f.Effects {
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			reg.Register(d)
		}
		for _, a := range f.Abilities {
			if err := a.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			reg.RegisterAbility(a)
		}
	}
	if err := reg.Check(); err != nil {
		return nil, fmt.Errorf("effect dir %q: %w", dir, err)
	}
	return reg, nil
}
