package combat

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/effect"
	"github.com/cory-johannsen/dungeon/internal/game/entity"
	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

// flow is what the state machine does after a player action resolves.
type flow int

const (
	flowContinue flow = iota
	flowSelectAgain
	flowEscaped
)

// resolvePlayerAction applies a validated action.
func (m *Manager) resolvePlayerAction(a Action) flow {
	p := m.player
	switch act := a.(type) {
	case Attack:
		target, _ := m.Enemy(act.TargetID)
		m.strike(p.Entity, target.Entity, "attack", DamageInput{
			DamageType:     p.DamageType(),
			HitChance:      act.HitChance,
			CriticalChance: act.CriticalChance,
		})
	case Block:
		m.block(p.Entity)
	case CastAbility:
		def, _ := m.Ability(act.AbilityID)
		m.castAbility(p.Entity, def, act)
	case ToggleAbility:
		def, _ := m.Ability(act.AbilityID)
		m.toggle(p.Entity, def, act.NewState)
	case Move:
		p.Range = act.NewRange
		for _, e := range m.enemies {
			if e.Alive() {
				e.Range = act.NewRange
			}
		}
		m.record(LogInfo, p.ID, "%s moves %s", p.Name, act.NewRange)
	case Escape:
		m.escapeAttempts++
		if m.roller.Chance("escape", act.SuccessChance) {
			m.record(LogEscape, p.ID, "%s escapes from combat", p.Name)
			return flowEscaped
		}
		m.record(LogEscape, p.ID, "%s fails to escape", p.Name)
		return flowSelectAgain
	default:
		panic(fmt.Sprintf("combat: unhandled action %T", a))
	}
	return flowContinue
}

// executeIntent carries out the intent an enemy telegraphed this turn.
func (m *Manager) executeIntent(e *entity.Enemy) {
	p := m.player
	in := e.Intent
	switch in.Kind {
	case entity.IntentAttack:
		if e.Type == entity.Melee && e.Range == entity.OutOfRange {
			m.record(LogAttack, e.ID, "%s cannot reach %s", e.Name, p.Name)
			return
		}
		m.strike(e.Entity, p.Entity, "attack", DamageInput{})
	case entity.IntentBlock:
		m.block(e.Entity)
	case entity.IntentAbility:
		def, ok := m.Ability(in.AbilityID)
		if !ok || def.Mode != effect.ModeCast {
			m.record(LogAbility, e.ID, "%s fumbles an unknown ability", e.Name)
			return
		}
		if !rangeRequirementOf(def.RangeRequired).Satisfied(e.Range) {
			m.record(LogAbility, e.ID, "%s cannot use %s from %s", e.Name, def.Name, e.Range)
			return
		}
		act := NewCast(def, p.ID)
		if act.TargetType == "enemy" || act.TargetType == "all_enemies" {
			act.TargetID = p.ID
		}
		m.castAbility(e.Entity, def, act)
	case entity.IntentMove:
		if e.Range == entity.OutOfRange {
			e.Range = entity.InRange
		} else {
			e.Range = entity.OutOfRange
		}
		m.record(LogInfo, e.ID, "%s moves %s", e.Name, e.Range)
		m.syncPlayerRange()
	default:
		m.logger.Warn("enemy intent has unknown kind", zap.String("enemy", e.ID), zap.String("kind", string(in.Kind)))
		m.block(e.Entity)
	}
}

// syncPlayerRange keeps the player's range InRange exactly when every living enemy is in range.
func (m *Manager) syncPlayerRange() {
	for _, e := range m.enemies {
		if e.Alive() && e.Range == entity.OutOfRange {
			m.player.Range = entity.OutOfRange
			return
		}
	}
	m.player.Range = entity.InRange
}

// strike runs one attack or damaging ability through the damage pipeline.
//
// Trigger order: before_attack on the attacker, then on a hit on_hit on the attacker,
// damage_taken on the target and hit-unit decay on the target, then on_kill.
func (m *Manager) strike(attacker, target *entity.Entity, source string, in DamageInput) Resolution {
	m.fire(effect.TriggerBeforeAttack, attacker, target, 0)
	if !attacker.Alive() || !target.Alive() {
		return Resolution{}
	}
	in.AttackerID = attacker.ID
	in.TargetID = target.ID
	in.Attacker = attacker.Stats()
	in.Target = target.Stats()
	in.TargetShield = target.EnergyShield()
	in.Reductions = target.Effects.DamageReductions()

	res := ResolveDamage(in, m.roller)
	m.history = append(m.history, DamageRecord{Turn: m.turn, Source: source, Resolution: res})
	if !res.Hit {
		m.record(LogAttack, attacker.ID, "%s attacks %s and %s", attacker.Name, target.Name, res.Message)
		return res
	}

	target.ApplyDamage(res.ShieldDamage, res.HealthDamage)
	m.tally(attacker.ID, target.ID, res.Final)
	m.record(LogDamage, attacker.ID, "%s attacks %s and %s", attacker.Name, target.Name, res.Message)

	m.fire(effect.TriggerOnHit, attacker, target, res.Final)
	m.fire(effect.TriggerDamageTaken, target, attacker, res.Final)
	m.expire(target, m.deps.Effects.Tick(target.Effects, effect.TriggerDamageTaken))
	m.checkDeath(target, attacker)
	m.checkDeath(attacker, target)
	return res
}

func (m *Manager) tally(attackerID, targetID string, n int) {
	if attackerID == m.player.ID {
		m.dealt += n
	}
	if targetID == m.player.ID {
		m.taken += n
	}
}

// checkDeath announces victim's death once and fires on_kill for killer.
func (m *Manager) checkDeath(victim, killer *entity.Entity) {
	if victim == nil || victim.Alive() || m.fallen[victim.ID] {
		return
	}
	m.fallen[victim.ID] = true
	m.record(LogDeath, victim.ID, "%s is defeated", victim.Name)
	if killer != nil && killer.Alive() {
		m.fire(effect.TriggerOnKill, killer, victim, 0)
	}
}

// block doubles the entity's armor until the end of the turn and installs the
// block damage reduction.
func (m *Manager) block(ent *entity.Entity) {
	armor := ent.Stats().Armor
	ent.AddTemporary(effect.BlockID, stats.Modifiers{Armor: armor}, m.turn, true)
	m.deps.Effects.Apply(ent.Effects, ent.ID, effect.BlockEffect(ent.ID), m.turn)
	m.record(LogAbility, ent.ID, "%s braces for impact (armor %d, %d%% reduction)",
		ent.Name, armor*2, effect.BlockReductionPercent)
}

// castAbility pays the costs of def and resolves act against its targets.
func (m *Manager) castAbility(caster *entity.Entity, def *effect.AbilityDef, act CastAbility) {
	if err := caster.SpendMana(def.ManaCost); err != nil {
		m.record(LogAbility, caster.ID, "%s lacks the mana for %s", caster.Name, def.Name)
		return
	}
	if err := caster.SpendHealth(def.HealthCost); err != nil {
		caster.RestoreMana(def.ManaCost)
		m.record(LogAbility, caster.ID, "%s lacks the health for %s", caster.Name, def.Name)
		return
	}
	caster.StartCooldown(def.ID, m.turn, def.Cooldown)
	m.record(LogAbility, caster.ID, "%s casts %s", caster.Name, def.Name)
	m.fire(effect.TriggerAbilityCast, caster, nil, 0)

	switch act.TargetType {
	case "self":
		if act.Magnitude > 0 {
			if n := caster.Heal(act.Magnitude); n > 0 {
				m.record(LogHeal, caster.ID, "%s recovers %d health", caster.Name, n)
			}
		}
		if act.StatusEffect != "" && m.roller.Chance("status:"+act.StatusEffect, act.StatusEffectChance) {
			m.applyStatus(caster, act.StatusEffect, caster.ID, act.Duration)
		}
	case "enemy":
		if target, ok := m.byID[act.TargetID]; ok {
			m.castAt(caster, target, def, act)
		}
	case "all_enemies":
		for _, target := range m.opponents(caster) {
			m.castAt(caster, target, def, act)
		}
	}
}

func (m *Manager) castAt(caster, target *entity.Entity, def *effect.AbilityDef, act CastAbility) {
	if !target.Alive() || !caster.Alive() {
		return
	}
	if act.Magnitude > 0 {
		res := m.strike(caster, target, def.ID, DamageInput{
			BaseDamage: act.Magnitude,
			DamageType: act.DamageType,
			HitChance:  100,
		})
		if !res.Hit {
			return
		}
	}
	if act.StatusEffect != "" && target.Alive() && m.roller.Chance("status:"+act.StatusEffect, act.StatusEffectChance) {
		m.applyStatus(target, act.StatusEffect, caster.ID, act.Duration)
	}
}

// opponents returns the living entities on the other side from ent.
func (m *Manager) opponents(ent *entity.Entity) []*entity.Entity {
	if ent.ID != m.player.ID {
		if m.player.Alive() {
			return []*entity.Entity{m.player.Entity}
		}
		return nil
	}
	var out []*entity.Entity
	for _, e := range m.enemies {
		if e.Alive() {
			out = append(out, e.Entity)
		}
	}
	return out
}

// toggle turns a toggle ability's effect on or off.
func (m *Manager) toggle(ent *entity.Entity, def *effect.AbilityDef, on bool) {
	if !on {
		if id, ok := ent.Toggled(def.ID); ok {
			m.deps.Effects.Remove(ent.Effects, id)
		}
		ent.ClearToggled(def.ID)
		m.record(LogAbility, ent.ID, "%s deactivates %s", ent.Name, def.Name)
		return
	}
	eff, err := m.deps.Factory.Ability(def.ID, ent.ID)
	if err != nil {
		m.logger.Warn("toggle ability unavailable", zap.String("ability", def.ID), zap.Error(err))
		m.record(LogAbility, ent.ID, "%s fails to activate %s", ent.Name, def.Name)
		return
	}
	if err := ent.SpendMana(def.ManaCost); err != nil {
		m.record(LogAbility, ent.ID, "%s lacks the mana for %s", ent.Name, def.Name)
		return
	}
	if a, _ := m.deps.Effects.Apply(ent.Effects, ent.ID, eff, m.turn); a != nil {
		ent.SetToggled(def.ID, a.InstanceID)
	}
	m.record(LogAbility, ent.ID, "%s activates %s", ent.Name, def.Name)
}

// applyStatus builds status id and applies it to target.
func (m *Manager) applyStatus(target *entity.Entity, id, sourceID string, d effect.Duration) {
	eff, err := m.deps.Factory.StatusFor(id, sourceID, d)
	if err != nil {
		m.logger.Warn("status effect unavailable", zap.String("status", id), zap.Error(err))
		return
	}
	if _, out := m.deps.Effects.Apply(target.Effects, target.ID, eff, m.turn); out == effect.Dropped {
		m.record(LogEffect, target.ID, "%s cannot stack further on %s", eff.Name, target.Name)
		return
	}
	m.record(LogEffect, target.ID, "%s is afflicted by %s", target.Name, eff.Name)
}

// fire runs owner's effects for trigger and applies every result.
func (m *Manager) fire(trigger effect.Trigger, owner, other *entity.Entity, amount int) {
	if owner == nil {
		return
	}
	ctx := effect.Context{
		Turn:        m.turn,
		OwnerID:     owner.ID,
		Amount:      amount,
		Owner:       owner.Stats(),
		OwnerHealth: owner.Health(),
		OwnerMana:   owner.Mana(),
		Rand:        m.roller,
	}
	if other != nil {
		ctx.OtherID = other.ID
	}
	for _, r := range m.deps.Effects.Process(trigger, ctx, owner.Effects.All()) {
		m.applyResult(owner, r)
	}
}

// applyResult carries out what an effect requested. Effect damage is absorbed by
// energy shield and reduced by resistance but ignores armor, and fires no triggers.
func (m *Manager) applyResult(owner *entity.Entity, r effect.Result) {
	target, ok := m.byID[r.TargetID]
	if !ok {
		target = owner
	}
	if r.Message != "" {
		m.record(LogEffect, target.ID, "%s", r.Message)
	}
	if r.Damage > 0 && target.Alive() {
		m.effectDamage(target, r)
	}
	if r.Healing > 0 && target.Alive() {
		if n := target.Heal(r.Healing); n > 0 {
			m.record(LogHeal, target.ID, "%s recovers %d health", target.Name, n)
		}
	}
	switch {
	case r.Mana > 0:
		target.RestoreMana(r.Mana)
	case r.Mana < 0:
		target.DrainMana(-r.Mana)
	}
	if r.ApplyStatus != "" && target.Alive() {
		m.applyStatus(target, r.ApplyStatus, r.SourceID, effect.Duration{})
	}
}

func (m *Manager) effectDamage(target *entity.Entity, r effect.Result) {
	dt := r.DamageType
	if dt == "" {
		dt = Physical
	}
	res := Resolution{
		AttackerID: r.SourceID,
		TargetID:   target.ID,
		DamageType: dt,
		HitChance:  100,
		Hit:        true,
		Raw:        r.Damage,
		Message:    r.Message,
	}
	remaining := r.Damage
	res.ShieldDamage = min(target.EnergyShield(), remaining)
	remaining -= res.ShieldDamage
	if remaining > 0 && dt != Physical {
		pct := target.Stats().Resistance(dt)
		after := max(remaining-int(math.Floor(float64(remaining)*float64(pct)/100)), 0)
		res.ResistMitigated = remaining - after
		remaining = after
	}
	res.HealthDamage = remaining
	res.Final = res.ShieldDamage + res.HealthDamage

	target.ApplyDamage(res.ShieldDamage, res.HealthDamage)
	m.history = append(m.history, DamageRecord{Turn: m.turn, Source: r.EffectID, Resolution: res})
	if target.ID == m.player.ID {
		m.taken += res.Final
	} else if r.SourceID == m.player.ID {
		m.dealt += res.Final
	}
	m.checkDeath(target, m.byID[r.SourceID])
}
