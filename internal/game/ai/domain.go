// Package ai plans enemy intents with a small Hierarchical Task Network (HTN).
//
// A domain decomposes the root task "behave" into primitive operators through
// ordered methods. A method applies when its built-in condition holds, its
// optional Lua precondition returns true and its optional pattern-weighted chance
// roll succeeds. The first operator reached becomes the enemy's telegraphed intent.
package ai

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dungeon/internal/game/entity"
)

// RootTask is the task every plan starts from.
const RootTask = "behave"

// Built-in method conditions.
const (
	CondOutOfReach   = "out_of_reach"
	CondWounded      = "wounded"
	CondAbilityReady = "ability_ready"
	CondHealthy      = "healthy"
)

// Chance keys naming AI pattern weights.
const (
	ChanceAggressiveness = "aggressiveness"
	ChanceDefensiveness  = "defensiveness"
	ChanceAbility        = "ability_chance"
)

var knownConditions = map[string]bool{
	"": true, CondOutOfReach: true, CondWounded: true, CondAbilityReady: true, CondHealthy: true,
}

var knownChances = map[string]bool{
	"": true, ChanceAggressiveness: true, ChanceDefensiveness: true, ChanceAbility: true,
}

var knownTargets = map[string]bool{"": true, "player": true, "self": true}

// Task is an abstract goal that can be decomposed by methods.
//
// Precondition: ID must be non-empty.
type Task struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// Method decomposes a task into an ordered list of subtasks or operator IDs.
//
// Precondition: TaskID, ID, and Subtasks must be non-empty.
type Method struct {
	TaskID string `yaml:"task"`
	ID     string `yaml:"id"`
	// Condition is a built-in predicate; empty means always.
	Condition string `yaml:"condition"`
	// Precondition is a Lua function name; empty means always applicable.
	Precondition string `yaml:"precondition"`
	// Chance names the AI pattern weight rolled to accept the method; empty means no roll.
	Chance   string   `yaml:"chance"`
	Subtasks []string `yaml:"subtasks"`
}

// Operator is a primitive action that maps directly to an intent.
//
// Precondition: ID and Action must be non-empty.
type Operator struct {
	ID     string            `yaml:"id"`
	Action entity.IntentKind `yaml:"action"`
	Target string            `yaml:"target"` // "player" or "self"
	// Description is the telegraph text shown to the player.
	Description string `yaml:"description"`
}

// Domain holds the full HTN domain loaded from a YAML file.
//
// Invariant: all Task, Method, and Operator IDs are unique within their slice.
type Domain struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Tasks       []*Task     `yaml:"tasks"`
	Methods     []*Method   `yaml:"methods"`
	Operators   []*Operator `yaml:"operators"`
}

// Validate checks required fields and every cross reference.
//
// Postcondition: Returns nil only if ids are non-empty and unique per kind, every
// method names a known task, condition and chance, every operator has a known
// action and target, and every subtask names a task or an operator. Otherwise
// the returned error joins one message per violation.
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("ai.Domain: id must not be empty")
	}
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("ai.Domain %q: "+format, append([]any{d.ID}, args...)...))
	}

	if len(d.Tasks) == 0 {
		fail("must have at least one task")
	}
	tasks := make(map[string]bool, len(d.Tasks))
	for _, t := range d.Tasks {
		switch {
		case t.ID == "":
			fail("task has empty id")
		case tasks[t.ID]:
			fail("duplicate task %q", t.ID)
		}
		tasks[t.ID] = true
	}

	ops := make(map[string]bool, len(d.Operators))
	for _, op := range d.Operators {
		switch {
		case op.ID == "":
			fail("operator has empty id")
		case ops[op.ID]:
			fail("duplicate operator %q", op.ID)
		case !op.Action.Valid():
			fail("operator %q: unknown action %q", op.ID, op.Action)
		case !knownTargets[op.Target]:
			fail("operator %q: unknown target %q", op.ID, op.Target)
		}
		ops[op.ID] = true
	}

	methods := make(map[string]bool, len(d.Methods))
	for _, m := range d.Methods {
		if m.ID == "" || methods[m.ID] {
			fail("method %q: id empty or duplicated", m.ID)
		}
		methods[m.ID] = true
		if !tasks[m.TaskID] {
			fail("method %q: unknown task %q", m.ID, m.TaskID)
		}
		if !knownConditions[m.Condition] {
			fail("method %q: unknown condition %q", m.ID, m.Condition)
		}
		if !knownChances[m.Chance] {
			fail("method %q: unknown chance %q", m.ID, m.Chance)
		}
		if len(m.Subtasks) == 0 {
			fail("method %q: no subtasks", m.ID)
		}
		for _, sub := range m.Subtasks {
			if !tasks[sub] && !ops[sub] {
				fail("method %q: subtask %q is neither a task nor an operator", m.ID, sub)
			}
		}
	}
	return errors.Join(errs...)
}

// OperatorByID returns the operator with the given ID, or false if not found.
func (d *Domain) OperatorByID(id string) (*Operator, bool) {
	for _, op := range d.Operators {
		if op.ID == id {
			return op, true
		}
	}
	return nil, false
}

// MethodsForTask returns all methods that decompose taskID, in declaration order.
func (d *Domain) MethodsForTask(taskID string) []*Method {
	var out []*Method
	for _, m := range d.Methods {
		if m.TaskID == taskID {
			out = append(out, m)
		}
	}
	return out
}

// DefaultDomain is the domain used by enemies whose pattern names none.
//
// Melee enemies out of reach close in; wounded enemies guard with probability
// 1-aggressiveness; ready abilities are used with ability_chance; otherwise the
// enemy attacks with probability aggressiveness and guards when that roll fails.
func DefaultDomain() *Domain {
	return &Domain{
		ID:          "default",
		Description: "Built-in enemy behavior",
		Tasks:       []*Task{{ID: RootTask}},
		Methods: []*Method{
			{TaskID: RootTask, ID: "close_in", Condition: CondOutOfReach, Subtasks: []string{"advance"}},
			{TaskID: RootTask, ID: "retreat", Condition: CondWounded, Chance: ChanceDefensiveness, Subtasks: []string{"guard"}},
			{TaskID: RootTask, ID: "use_ability", Condition: CondAbilityReady, Chance: ChanceAbility, Subtasks: []string{"cast"}},
			{TaskID: RootTask, ID: "press", Chance: ChanceAggressiveness, Subtasks: []string{"strike"}},
			{TaskID: RootTask, ID: "hold", Subtasks: []string{"guard"}},
		},
		Operators: []*Operator{
			{ID: "advance", Action: entity.IntentMove, Target: "self", Description: "closes the distance"},
			{ID: "guard", Action: entity.IntentBlock, Target: "self", Description: "raises its guard"},
			{ID: "cast", Action: entity.IntentAbility, Target: "player", Description: "gathers power"},
			{ID: "strike", Action: entity.IntentAttack, Target: "player", Description: "prepares to attack"},
		},
	}
}

type domainFile struct {
	Domain *Domain `yaml:"domain"`
}

// LoadDomains reads every *.yaml file in dir, one domain per file.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the domains sorted by file name, or an error naming the
// first file that fails to decode or validate. Unknown YAML keys are errors.
func LoadDomains(dir string) ([]*Domain, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDomains: %w", err)
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("ai.LoadDomains: %w", err)
	}
	domains := make([]*Domain, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: %w", err)
		}
		var f domainFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: decoding %s: %w", filepath.Base(path), err)
		}
		if f.Domain == nil {
			return nil, fmt.Errorf("ai.LoadDomains: %s has no top-level domain key", filepath.Base(path))
		}
		if err := f.Domain.Validate(); err != nil {
			return nil, fmt.Errorf("ai.LoadDomains: %s: %w", filepath.Base(path), err)
		}
		domains = append(domains, f.Domain)
	}
	return domains, nil
}
