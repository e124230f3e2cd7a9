package ai

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/entity"
)

// ScriptCaller is the interface required by the Planner to evaluate Lua preconditions.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given scope's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// PlannedAction is one primitive action produced by the planner.
type PlannedAction struct {
	Action      entity.IntentKind
	Target      string // resolved entity ID
	Description string
}

// Planner evaluates an HTN domain for a single enemy and produces an ordered
// action plan for its turn.
//
// Invariant: domain must not be nil. caller may be nil, in which case every Lua
// precondition is false.
type Planner struct {
	domain *Domain
	caller ScriptCaller
	scope  string
}

// NewPlanner constructs a Planner.
//
// Precondition: domain must not be nil.
func NewPlanner(domain *Domain, caller ScriptCaller, scope string) *Planner {
	if domain == nil {
		panic("ai.NewPlanner: domain must not be nil")
	}
	return &Planner{domain: domain, caller: caller, scope: scope}
}

// Domain returns the planner's domain.
func (p *Planner) Domain() *Domain { return p.domain }

// Plan evaluates the HTN domain against sit and returns an ordered plan.
//
// Precondition: sit.Self and sit.Player must not be nil; src must not be nil.
// Postcondition: returns non-nil slice (may be empty); never returns error for Lua failures
// (they are treated as precondition-false).
func (p *Planner) Plan(sit Situation, src dice.Source) ([]PlannedAction, error) {
	if sit.Self == nil || sit.Player == nil {
		return nil, fmt.Errorf("ai.Planner.Plan: situation self and player must not be nil")
	}

	taskQueue := []string{RootTask}
	var result []PlannedAction

	const maxDepth = 32 // guard against infinite loops
	steps := 0

	for len(taskQueue) > 0 && steps < maxDepth {
		steps++
		current := taskQueue[0]
		taskQueue = taskQueue[1:]

		if op, ok := p.domain.OperatorByID(current); ok {
			result = append(result, PlannedAction{
				Action:      op.Action,
				Target:      sit.ResolveTarget(op.Target),
				Description: op.Description,
			})
			continue
		}

		method := p.findApplicableMethod(current, sit, src)
		if method == nil {
			continue
		}

		// Prepend subtasks (preserves ordered decomposition).
		next := make([]string, 0, len(method.Subtasks)+len(taskQueue))
		next = append(next, method.Subtasks...)
		taskQueue = append(next, taskQueue...)
	}

	if result == nil {
		result = []PlannedAction{}
	}
	return result, nil
}

// findApplicableMethod returns the first Method for taskID that applies, or nil.
//
// Methods are tried in declaration order. The chance roll is drawn last so a method
// rejected by its condition consumes no randomness.
func (p *Planner) findApplicableMethod(taskID string, sit Situation, src dice.Source) *Method {
	for _, m := range p.domain.MethodsForTask(taskID) {
		if !sit.Holds(m.Condition) {
			continue
		}
		if m.Precondition != "" {
			if p.caller == nil {
				continue
			}
			val, _ := p.caller.CallHook(p.scope, m.Precondition,
				lua.LString(sit.Self.ID), lua.LNumber(sit.Self.HealthFraction()), lua.LNumber(sit.Turn))
			if val != lua.LTrue {
				continue
			}
		}
		if m.Chance != "" && !dice.Chance(src, sit.Weight(m.Chance)) {
			continue
		}
		return m
	}
	return nil
}

// Intent plans and converts the first planned action into an Intent.
//
// Postcondition: an empty plan yields a block intent.
func (p *Planner) Intent(sit Situation, src dice.Source) (entity.Intent, error) {
	plan, err := p.Plan(sit, src)
	if err != nil {
		return entity.Intent{}, err
	}
	if len(plan) == 0 {
		return buildIntent(entity.IntentBlock, sit.Self.ID, "", "raises its guard"), nil
	}
	first := plan[0]
	if first.Action == entity.IntentAbility {
		if len(sit.Ready) == 0 {
			return buildIntent(entity.IntentAttack, sit.Player.ID, "", "prepares to attack"), nil
		}
		ab := sit.Ready[src.Intn(len(sit.Ready))]
		return buildIntent(entity.IntentAbility, first.Target, ab.ID, "prepares "+ab.Name), nil
	}
	return buildIntent(first.Action, first.Target, "", first.Description), nil
}

func buildIntent(kind entity.IntentKind, target, ability, desc string) entity.Intent {
	return entity.Intent{Kind: kind, TargetID: target, AbilityID: ability, Description: desc}
}

// ChooseIntent plans with the built-in domain and no scripts.
//
// Precondition: sit.Self and sit.Player must not be nil; src must not be nil.
func ChooseIntent(sit Situation, src dice.Source) entity.Intent {
	in, err := NewPlanner(DefaultDomain(), nil, "").Intent(sit, src)
	if err != nil {
		return buildIntent(entity.IntentBlock, "", "", "hesitates")
	}
	return in
}
