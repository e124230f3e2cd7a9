package effect

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

// CombatEffect is one effect ready to be applied to an entity.
//
// Invariant: Triggers, Duration and Behavior are fixed once the effect is applied,
// except through an OnStack merge.
type CombatEffect struct {
	ID        string
	Name      string
	Family    Family
	Triggers  []Trigger
	Duration  Duration
	Visible   bool
	Stackable bool
	// MaxStacks caps stackable instances; 0 means unbounded.
	MaxStacks int
	Behavior  Behavior

	// SourceID is the entity that created the effect; SourceAbility the ability, if any.
	SourceID      string
	SourceAbility string

	// OnStack merges an incoming non-stackable application into the existing instance.
	// When nil, the incoming effect replaces the existing one.
	OnStack func(existing *Active, incoming *CombatEffect)
	// OnRemove runs exactly once when an instance leaves its collection.
	OnRemove func(removed *Active)
	// LuaOnRemove names a Lua hook called with the owner id on removal.
	LuaOnRemove string
}

// FiresOn reports whether t is in the effect's trigger set.
func (e *CombatEffect) FiresOn(t Trigger) bool {
	for _, x := range e.Triggers {
		if x == t {
			return true
		}
	}
	return false
}

// Active is one applied instance of a CombatEffect.
type Active struct {
	InstanceID string
	OwnerID    string
	Effect     *CombatEffect
	// Remaining counts down in Effect.Duration.Unit; ignored for permanent effects.
	Remaining   int
	AppliedTurn int
	removed     bool
}

// Expired reports whether a non-permanent instance has run out.
func (a *Active) Expired() bool {
	return !a.Effect.Duration.IsPermanent() && a.Remaining <= 0
}

// Context is the read-only view an effect sees when it fires.
type Context struct {
	Trigger Trigger
	Turn    int
	// OwnerID is the entity carrying the effect.
	OwnerID string
	// OtherID is the counterpart: the struck target for on_hit, the attacker for damage_taken.
	OtherID string
	// Amount is the damage dealt (on_hit) or taken (damage_taken) that caused the trigger.
	Amount         int
	Owner          stats.Stats
	OwnerHealth    int
	OwnerMana      int
	Rand           dice.Source
	scripts        ScriptCaller
	scriptScope    string
	stacksOfEffect int
}

// Result describes a state change an effect requests. The engine never applies it.
type Result struct {
	EffectID   string
	InstanceID string
	SourceID   string
	// TargetID is the entity the change applies to.
	TargetID   string
	Damage     int
	DamageType string
	Healing    int
	Mana       int
	// ApplyStatus names an effect definition to apply to TargetID.
	ApplyStatus string
	Message     string
}

// IsEmpty reports whether r requests no change at all.
func (r Result) IsEmpty() bool {
	return r.Damage == 0 && r.Healing == 0 && r.Mana == 0 && r.ApplyStatus == "" && r.Message == ""
}

// Process runs the instance's behavior against ctx.
//
// Postcondition: ok is false when the behavior has nothing to report for ctx
// (passive behaviors, failed chance rolls, scripted hooks returning nil). A
// non-nil error is a failed Lua hook and always comes with ok false.
func (a *Active) Process(ctx Context) (Result, bool, error) {
	base := Result{EffectID: a.Effect.ID, InstanceID: a.InstanceID, SourceID: a.Effect.SourceID}
	switch b := a.Effect.Behavior.(type) {
	case DamageOverTime:
		if b.Amount <= 0 {
			return Result{}, false, nil
		}
		base.TargetID = ctx.OwnerID
		base.Damage = b.Amount
		base.DamageType = b.DamageType
		base.Message = fmt.Sprintf("%s deals %d %s damage", a.Effect.Name, b.Amount, b.DamageType)
		return base, true, nil
	case HealOverTime:
		if b.Amount <= 0 {
			return Result{}, false, nil
		}
		base.TargetID = ctx.OwnerID
		base.Healing = b.Amount
		base.Message = fmt.Sprintf("%s restores %d health", a.Effect.Name, b.Amount)
		return base, true, nil
	case ResourceDelta:
		if b.Mana == 0 && b.Health == 0 {
			return Result{}, false, nil
		}
		base.TargetID = ctx.OwnerID
		base.Mana = b.Mana
		if b.Health > 0 {
			base.Healing = b.Health
		} else if b.Health < 0 {
			base.Damage = -b.Health
			base.DamageType = "physical"
		}
		return base, true, nil
	case OnHitStatus:
		if ctx.OtherID == "" || b.StatusID == "" {
			return Result{}, false, nil
		}
		if ctx.Rand == nil || !dice.Chance(ctx.Rand, b.Chance) {
			return Result{}, false, nil
		}
		base.TargetID = ctx.OtherID
		base.ApplyStatus = b.StatusID
		base.Message = fmt.Sprintf("%s inflicts %s", a.Effect.Name, b.StatusID)
		return base, true, nil
	case LifeLeech:
		heal := ctx.Amount * b.Percent / 100
		if heal <= 0 {
			return Result{}, false, nil
		}
		base.TargetID = ctx.OwnerID
		base.Healing = heal
		base.Message = fmt.Sprintf("%s leeches %d health", a.Effect.Name, heal)
		return base, true, nil
	case Thorns:
		if ctx.OtherID == "" || b.Amount <= 0 {
			return Result{}, false, nil
		}
		base.TargetID = ctx.OtherID
		base.Damage = b.Amount
		base.DamageType = b.DamageType
		base.Message = fmt.Sprintf("%s reflects %d damage", a.Effect.Name, b.Amount)
		return base, true, nil
	case Scripted:
		return a.processScripted(ctx, b, base)
	case StatModifier, ActionDisable, DamageReduction:
		return Result{}, false, nil
	default:
		panic(fmt.Sprintf("effect: unhandled behavior %T", b))
	}
}

// processScripted calls the hook as hook(trigger, turn, owner, other, amount, health, stacks)
// and reads damage/heal/mana/apply/message/target fields from the returned table.
func (a *Active) processScripted(ctx Context, b Scripted, base Result) (Result, bool, error) {
	if ctx.scripts == nil || b.Hook == "" {
		return Result{}, false, nil
	}
	ret, err := ctx.scripts.CallHook(ctx.scriptScope, b.Hook,
		lua.LString(ctx.Trigger),
		lua.LNumber(ctx.Turn),
		lua.LString(ctx.OwnerID),
		lua.LString(ctx.OtherID),
		lua.LNumber(ctx.Amount),
		lua.LNumber(ctx.OwnerHealth),
		lua.LNumber(ctx.stacksOfEffect),
	)
	if err != nil {
		return Result{}, false, fmt.Errorf("effect %s hook %s: %w", a.Effect.ID, b.Hook, err)
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return Result{}, false, nil
	}
	base.TargetID = ctx.OwnerID
	if lua.LVAsString(tbl.RawGetString("target")) == "other" && ctx.OtherID != "" {
		base.TargetID = ctx.OtherID
	}
	base.Damage = int(lua.LVAsNumber(tbl.RawGetString("damage")))
	base.DamageType = lua.LVAsString(tbl.RawGetString("damage_type"))
	base.Healing = int(lua.LVAsNumber(tbl.RawGetString("heal")))
	base.Mana = int(lua.LVAsNumber(tbl.RawGetString("mana")))
	base.ApplyStatus = lua.LVAsString(tbl.RawGetString("apply"))
	base.Message = lua.LVAsString(tbl.RawGetString("message"))
	if base.Damage > 0 && base.DamageType == "" {
		base.DamageType = "physical"
	}
	if base.IsEmpty() {
		return Result{}, false, nil
	}
	return base, true, nil
}
