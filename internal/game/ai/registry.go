package ai

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/entity"
)

// Registry indexes Planners by domain ID.
//
// Invariant: each domain ID is registered at most once.
type Registry struct {
	planners map[string]*Planner
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{planners: make(map[string]*Planner)}
}

// Register creates and stores a Planner for domain.
//
// Precondition: domain must not be nil.
// Postcondition: returns error on domain ID collision.
func (r *Registry) Register(domain *Domain, caller ScriptCaller, scope string) error {
	if _, exists := r.planners[domain.ID]; exists {
		return fmt.Errorf("ai.Registry: domain %q already registered", domain.ID)
	}
	r.planners[domain.ID] = NewPlanner(domain, caller, scope)
	return nil
}

// PlannerFor returns the Planner for domainID, or false if not registered.
func (r *Registry) PlannerFor(domainID string) (*Planner, bool) {
	p, ok := r.planners[domainID]
	return p, ok
}

// Chooser selects each enemy's intent through the planner its pattern names and
// then lets the pattern's Lua hook override the chosen kind.
type Chooser struct {
	reg      *Registry
	fallback *Planner
	scripts  ScriptCaller
	scope    string
	logger   *zap.Logger
}

// NewChooser creates a Chooser. reg and scripts may be nil.
//
// Precondition: logger must not be nil.
func NewChooser(reg *Registry, scripts ScriptCaller, scope string, logger *zap.Logger) *Chooser {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Chooser{
		reg:      reg,
		fallback: NewPlanner(DefaultDomain(), scripts, scope),
		scripts:  scripts,
		scope:    scope,
		logger:   logger,
	}
}

// Choose returns the intent for sit.Self.
//
// The Lua hook is called as hook(enemy_id, planned_kind, health_fraction, turn, range)
// and may return an intent kind string; nil or an unknown kind keeps the plan.
//
// Postcondition: the returned intent kind is always valid.
func (c *Chooser) Choose(sit Situation, src dice.Source) entity.Intent {
	planner := c.fallback
	if name := sit.Self.Pattern.Domain; name != "" {
		if p, ok := c.reg.PlannerFor(name); ok {
			planner = p
		} else {
			c.logger.Warn("unknown ai domain, using default",
				zap.String("enemy", sit.Self.ID), zap.String("domain", name))
		}
	}
	in, err := planner.Intent(sit, src)
	if err != nil {
		c.logger.Warn("ai planning failed", zap.String("enemy", sit.Self.ID), zap.Error(err))
		in = buildIntent(entity.IntentBlock, sit.Self.ID, "", "hesitates")
	}
	return c.override(sit, in, src)
}

func (c *Chooser) override(sit Situation, in entity.Intent, src dice.Source) entity.Intent {
	hook := sit.Self.Pattern.Hook
	if c.scripts == nil || hook == "" {
		return in
	}
	ret, err := c.scripts.CallHook(c.scope, hook,
		lua.LString(sit.Self.ID),
		lua.LString(in.Kind),
		lua.LNumber(sit.Self.HealthFraction()),
		lua.LNumber(sit.Turn),
		lua.LString(sit.Self.Range.String()),
	)
	if err != nil {
		c.logger.Warn("ai hook failed", zap.String("enemy", sit.Self.ID), zap.String("hook", hook), zap.Error(err))
		return in
	}
	kind := entity.IntentKind(lua.LVAsString(ret))
	if kind == "" || kind == in.Kind {
		return in
	}
	if !kind.Valid() {
		c.logger.Warn("ai hook returned unknown intent", zap.String("hook", hook), zap.String("kind", string(kind)))
		return in
	}
	switch kind {
	case entity.IntentAbility:
		if len(sit.Ready) == 0 {
			return in
		}
		ab := sit.Ready[src.Intn(len(sit.Ready))]
		return buildIntent(kind, sit.Player.ID, ab.ID, "prepares "+ab.Name)
	case entity.IntentAttack:
		return buildIntent(kind, sit.Player.ID, "", "prepares to attack")
	case entity.IntentMove:
		return buildIntent(kind, sit.Self.ID, "", "repositions")
	default:
		return buildIntent(entity.IntentBlock, sit.Self.ID, "", "raises its guard")
	}
}
