package effect

import (
	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ScriptCaller invokes a named Lua hook in a script scope.
// scripting.Manager satisfies it.
type ScriptCaller interface {
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// Outcome reports what Apply did with an incoming effect.
type Outcome int

const (
	// Added means a new instance joined the collection.
	Added Outcome = iota
	// Replaced means a non-stackable instance was swapped for the incoming one in place.
	Replaced
	// Merged means the existing instance absorbed the incoming one through OnStack.
	Merged
	// Dropped means a stackable effect was already at MaxStacks.
	Dropped
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Replaced:
		return "replaced"
	case Merged:
		return "merged"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Engine runs effects at trigger points and owns collection membership and durations.
//
// One Engine is constructed per combat; it holds no per-entity state.
type Engine struct {
	scripts ScriptCaller
	scope   string
	logger  *zap.Logger
}

// NewEngine creates an Engine. scripts may be nil, in which case Scripted behaviors
// and Lua removal hooks are inert.
//
// Precondition: logger must not be nil.
func NewEngine(scripts ScriptCaller, scope string, logger *zap.Logger) *Engine {
	return &Engine{scripts: scripts, scope: scope, logger: logger}
}

// Process runs every instance in effects whose trigger set contains trigger and
// collects the successful results in slice order. A failing Lua hook is logged
// at warn and contributes no result.
//
// Postcondition: no entity or collection is modified.
func (e *Engine) Process(trigger Trigger, ctx Context, effects []*Active) []Result {
	ctx.Trigger = trigger
	ctx.scripts = e.scripts
	ctx.scriptScope = e.scope
	var out []Result
	for _, a := range effects {
		if a.removed || !a.Effect.FiresOn(trigger) {
			continue
		}
		c := ctx
		c.stacksOfEffect = countID(effects, a.Effect.ID)
		r, ok, err := a.Process(c)
		if err != nil {
			e.logger.Warn("lua effect hook failed",
				zap.String("owner", a.OwnerID), zap.String("effect", a.Effect.ID),
				zap.String("trigger", string(trigger)), zap.Error(err))
			continue
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

// Apply adds eff to c under the stacking rule.
//
// A stackable effect becomes a new instance unless MaxStacks instances already
// exist. A non-stackable effect with the same id either merges through the
// existing instance's OnStack hook or replaces it in place, which fires the old
// instance's removal hooks.
//
// Precondition: eff must not be nil.
// Postcondition: the returned instance is the one now holding eff's id, or nil when Dropped.
func (e *Engine) Apply(c *Collection, ownerID string, eff *CombatEffect, turn int) (*Active, Outcome) {
	if eff.Stackable {
		if eff.MaxStacks > 0 && c.Count(eff.ID) >= eff.MaxStacks {
			e.logger.Debug("effect dropped at max stacks",
				zap.String("owner", ownerID), zap.String("effect", eff.ID), zap.Int("max_stacks", eff.MaxStacks))
			return nil, Dropped
		}
		a := e.instance(ownerID, eff, turn)
		c.items = append(c.items, a)
		e.logger.Debug("effect applied", zap.String("owner", ownerID), zap.String("effect", eff.ID))
		return a, Added
	}

	idx := c.firstOf(eff.ID)
	if idx < 0 {
		a := e.instance(ownerID, eff, turn)
		c.items = append(c.items, a)
		e.logger.Debug("effect applied", zap.String("owner", ownerID), zap.String("effect", eff.ID))
		return a, Added
	}

	existing := c.items[idx]
	if existing.Effect.OnStack != nil {
		existing.Effect.OnStack(existing, eff)
		e.logger.Debug("effect merged", zap.String("owner", ownerID), zap.String("effect", eff.ID))
		return existing, Merged
	}
	a := e.instance(ownerID, eff, turn)
	c.items[idx] = a
	e.fireRemove(existing)
	e.logger.Debug("effect replaced", zap.String("owner", ownerID), zap.String("effect", eff.ID))
	return a, Replaced
}

// Remove deletes the instance with instanceID from c.
//
// Postcondition: returns false when no such instance exists; OnRemove ran exactly once otherwise.
func (e *Engine) Remove(c *Collection, instanceID string) bool {
	idx := c.indexOf(instanceID)
	if idx < 0 {
		return false
	}
	e.fireRemove(c.removeAt(idx))
	return true
}

// RemoveByID deletes every instance of effect id from c and returns how many were removed.
func (e *Engine) RemoveByID(c *Collection, id string) int {
	n := 0
	for idx := c.firstOf(id); idx >= 0; idx = c.firstOf(id) {
		e.fireRemove(c.removeAt(idx))
		n++
	}
	return n
}

// Tick decays every instance whose duration unit decays on trigger, then prunes
// expired instances. Instances of other units are untouched.
//
// Postcondition: permanent instances never change.
func (e *Engine) Tick(c *Collection, trigger Trigger) []*Active {
	for _, a := range c.items {
		decay, ok := a.Effect.Duration.Unit.DecayTrigger()
		if !ok || decay != trigger {
			continue
		}
		a.Remaining--
	}
	return e.Prune(c)
}

// Prune removes every expired instance, preserving the order of the rest.
func (e *Engine) Prune(c *Collection) []*Active {
	var expired []*Active
	kept := c.items[:0]
	for _, a := range c.items {
		if a.Expired() {
			expired = append(expired, a)
			continue
		}
		kept = append(kept, a)
	}
	for i := len(kept); i < len(c.items); i++ {
		c.items[i] = nil
	}
	c.items = kept
	for _, a := range expired {
		e.fireRemove(a)
	}
	return expired
}

// EndCombat removes every instance scoped to the combat that just ended and
// returns them. Rounds-unit instances with duration left carry into the next combat.
//
// Precondition: the CombatEnd tick already ran, so surviving rounds instances have Remaining > 0.
func (e *Engine) EndCombat(c *Collection) []*Active {
	var gone []*Active
	kept := c.items[:0]
	for _, a := range c.items {
		if a.Effect.Duration.Unit == UnitRounds && a.Remaining > 0 {
			kept = append(kept, a)
			continue
		}
		gone = append(gone, a)
	}
	for i := len(kept); i < len(c.items); i++ {
		c.items[i] = nil
	}
	c.items = kept
	for _, a := range gone {
		e.fireRemove(a)
	}
	return gone
}

// Clear removes every instance from c.
func (e *Engine) Clear(c *Collection) {
	items := c.items
	c.items = nil
	for _, a := range items {
		e.fireRemove(a)
	}
}

func (e *Engine) instance(ownerID string, eff *CombatEffect, turn int) *Active {
	return &Active{
		InstanceID:  uuid.NewString(),
		OwnerID:     ownerID,
		Effect:      eff,
		Remaining:   eff.Duration.Amount,
		AppliedTurn: turn,
	}
}

func (e *Engine) fireRemove(a *Active) {
	if a.removed {
		return
	}
	a.removed = true
	if a.Effect.OnRemove != nil {
		a.Effect.OnRemove(a)
	}
	if a.Effect.LuaOnRemove != "" && e.scripts != nil {
		if _, err := e.scripts.CallHook(e.scope, a.Effect.LuaOnRemove,
			lua.LString(a.OwnerID), lua.LString(a.Effect.ID)); err != nil {
			e.logger.Warn("lua on_remove hook failed",
				zap.String("effect", a.Effect.ID), zap.String("hook", a.Effect.LuaOnRemove), zap.Error(err))
		}
	}
	e.logger.Debug("effect removed", zap.String("owner", a.OwnerID), zap.String("effect", a.Effect.ID))
}

func countID(effects []*Active, id string) int {
	n := 0
	for _, a := range effects {
		if !a.removed && a.Effect.ID == id {
			n++
		}
	}
	return n
}
