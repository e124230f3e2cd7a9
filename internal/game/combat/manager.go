// Package combat runs one turn-based encounter between a player and a group of
// enemies: the state machine, action resolution, the damage pipeline, defeat
// penalties and the hand-off to loot generation on victory.
package combat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/ai"
	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/effect"
	"github.com/cory-johannsen/dungeon/internal/game/entity"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
	"github.com/cory-johannsen/dungeon/internal/game/loot"
)

var (
	// ErrCombatFaulted is returned by every call after an internal transition was rejected.
	ErrCombatFaulted = errors.New("combat: faulted")
	// ErrNotAwaitingAction is returned when an action is submitted outside PlayerActionSelect.
	ErrNotAwaitingAction = errors.New("combat: not awaiting a player action")
	// ErrInvalidAction is returned when an action fails validation.
	ErrInvalidAction = errors.New("combat: invalid action")
	// ErrAlreadyStarted is returned by Start on a combat that left Initializing.
	ErrAlreadyStarted = errors.New("combat: already started")
)

// Outcome is how a combat ended.
type Outcome string

const (
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
	OutcomeEscape  Outcome = "escape"
)

// Result summarizes a finished combat.
type Result struct {
	CombatID string  `json:"combat_id"`
	Outcome  Outcome `json:"outcome"`
	// Loot lists every generated item; Ungranted the subset that did not fit in the backpack.
	Loot             []*inventory.Item `json:"loot,omitempty"`
	Ungranted        []*inventory.Item `json:"ungranted,omitempty"`
	Experience       int               `json:"experience"`
	LevelsGained     int               `json:"levels_gained"`
	Gold             int               `json:"gold"`
	Penalties        []Penalty         `json:"penalties,omitempty"`
	TotalDamageDealt int               `json:"total_damage_dealt"`
	TotalDamageTaken int               `json:"total_damage_taken"`
	TurnsElapsed     int               `json:"turns_elapsed"`
}

// Config holds the tunable combat rules.
type Config struct {
	EquippedLossChance    float64
	InitiativeDie         int
	EscapeAttemptsPerTurn int
	// MaxInvalidActions bounds consecutive rejected actions in Run.
	MaxInvalidActions int
}

// DefaultConfig returns the reference rules.
func DefaultConfig() Config {
	return Config{
		EquippedLossChance:    DefaultEquippedLossChance,
		InitiativeDie:         DefaultInitiativeDie,
		EscapeAttemptsPerTurn: 1,
		MaxInvalidActions:     32,
	}
}

// LootSource builds the loot for a won combat. loot.Generator satisfies it.
type LootSource interface {
	Distribute(req loot.Request) ([]*inventory.Item, error)
}

// IntentChooser picks each enemy's telegraphed intent. ai.Chooser satisfies it.
type IntentChooser interface {
	Choose(sit ai.Situation, src dice.Source) entity.Intent
}

// ActionSource supplies the player's action whenever the combat awaits one.
type ActionSource interface {
	NextAction(ctx context.Context, b Battle) (Action, error)
}

// ActionSourceFunc adapts a function to ActionSource.
type ActionSourceFunc func(ctx context.Context, b Battle) (Action, error)

// NextAction calls f.
func (f ActionSourceFunc) NextAction(ctx context.Context, b Battle) (Action, error) {
	return f(ctx, b)
}

// Setup describes one encounter.
type Setup struct {
	// ID identifies the combat; a random id is assigned when empty.
	ID           string
	Player       *entity.Player
	Enemies      []*entity.Enemy
	DungeonTier  int
	KeyModifiers []loot.KeyModifier
	AllowEscape  bool
	// KeyItemID is the dungeon key consumed on defeat.
	KeyItemID string
}

// Deps are the collaborators a Manager needs. Loot and AI may be nil.
type Deps struct {
	Effects *effect.Engine
	Factory *effect.Factory
	Loot    LootSource
	AI      IntentChooser
	Roller  *dice.Roller
	Logger  *zap.Logger
	Config  Config
}

// Manager orchestrates one combat.
//
// Invariant: the machine state only changes through the transition table; a
// rejected internal transition faults the combat permanently.
// It is not safe for concurrent use.
type Manager struct {
	id      string
	setup   Setup
	deps    Deps
	roller  *dice.Roller
	logger  *zap.Logger
	machine *Machine

	player  *entity.Player
	enemies []*entity.Enemy
	byID    map[string]*entity.Entity
	// fallen records participants whose death was already announced.
	fallen map[string]bool

	turn           int
	order          []Participant
	cursor         int
	pending        Action
	escapeAttempts int

	log     []LogEntry
	history []DamageRecord
	dealt   int
	taken   int

	outcome Outcome
	result  *Result
	fault   error
}

// NewManager validates setup and installs key modifiers on the enemies.
//
// Precondition: deps.Effects, deps.Factory, deps.Roller and deps.Logger must be non-nil.
// Postcondition: the Manager is in Initializing; enemies carry key modifier effects
// and start at full resources.
func NewManager(setup Setup, deps Deps) (*Manager, error) {
	if setup.Player == nil {
		return nil, errors.New("combat: setup requires a player")
	}
	if len(setup.Enemies) == 0 {
		return nil, errors.New("combat: setup requires at least one enemy")
	}
	if setup.DungeonTier < 1 {
		return nil, fmt.Errorf("combat: dungeon tier must be >= 1, got %d", setup.DungeonTier)
	}
	if deps.Effects == nil || deps.Factory == nil || deps.Roller == nil || deps.Logger == nil {
		return nil, errors.New("combat: deps require effects, factory, roller and logger")
	}
	if deps.Config == (Config{}) {
		deps.Config = DefaultConfig()
	}
	if deps.Config.InitiativeDie < 1 {
		deps.Config.InitiativeDie = DefaultInitiativeDie
	}
	if deps.Config.MaxInvalidActions < 1 {
		deps.Config.MaxInvalidActions = DefaultConfig().MaxInvalidActions
	}
	if deps.AI == nil {
		deps.AI = ai.NewChooser(nil, nil, "", deps.Logger)
	}
	if setup.ID == "" {
		setup.ID = uuid.NewString()
	}

	m := &Manager{
		id:      setup.ID,
		setup:   setup,
		deps:    deps,
		roller:  deps.Roller,
		logger:  deps.Logger.With(zap.String("combat", setup.ID)),
		machine: NewMachine(),
		player:  setup.Player,
		enemies: setup.Enemies,
		byID:    make(map[string]*entity.Entity, len(setup.Enemies)+1),
		fallen:  make(map[string]bool),
		turn:    1,
	}
	m.byID[m.player.ID] = m.player.Entity
	for _, e := range m.enemies {
		if e == nil {
			return nil, errors.New("combat: nil enemy")
		}
		if _, dup := m.byID[e.ID]; dup {
			return nil, fmt.Errorf("combat: duplicate participant id %q", e.ID)
		}
		m.byID[e.ID] = e.Entity
	}

	for _, e := range m.enemies {
		for _, mod := range setup.KeyModifiers {
			mods, ok := mod.EnemyModifiers(e.Base)
			if !ok {
				continue
			}
			m.deps.Effects.Apply(e.Effects, e.ID, effect.KeyModifierEffect(mod.ID, mod.Name, mods), 0)
		}
		e.Refill()
	}
	m.placeRanges()
	return m, nil
}

// placeRanges sets the opening distances: a ranged player starts out of reach of
// melee enemies, everything else starts in range.
func (m *Manager) placeRanges() {
	m.player.Range = entity.InRange
	for _, e := range m.enemies {
		e.Range = entity.InRange
		if m.player.Ranged() && e.Type == entity.Melee {
			e.Range = entity.OutOfRange
			m.player.Range = entity.OutOfRange
		}
	}
}

// ID returns the combat id.
func (m *Manager) ID() string { return m.id }

// State returns the current state.
func (m *Manager) State() State { return m.machine.State() }

// History returns every state entered so far.
func (m *Manager) History() []State { return m.machine.History() }

// Turn returns the current turn number, starting at 1.
func (m *Manager) Turn() int { return m.turn }

// Player returns the player.
func (m *Manager) Player() *entity.Player { return m.player }

// Enemies returns the enemies in setup order.
func (m *Manager) Enemies() []*entity.Enemy {
	out := make([]*entity.Enemy, len(m.enemies))
	copy(out, m.enemies)
	return out
}

// Enemy returns the enemy with id.
func (m *Manager) Enemy(id string) (*entity.Enemy, bool) {
	for _, e := range m.enemies {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Entity returns the participant with id, player or enemy.
func (m *Manager) Entity(id string) (*entity.Entity, bool) {
	e, ok := m.byID[id]
	return e, ok
}

// Opponents returns the living participants on the other side from id.
func (m *Manager) Opponents(id string) []*entity.Entity {
	if id == m.player.ID {
		var out []*entity.Entity
		for _, e := range m.enemies {
			if e.Alive() {
				out = append(out, e.Entity)
			}
		}
		return out
	}
	if _, ok := m.byID[id]; !ok || !m.player.Alive() {
		return nil
	}
	return []*entity.Entity{m.player.Entity}
}

// Ability returns the ability definition with id.
func (m *Manager) Ability(id string) (*effect.AbilityDef, bool) {
	return m.deps.Factory.Registry().Ability(id)
}

// EscapeAllowed reports whether this encounter permits escape.
func (m *Manager) EscapeAllowed() bool { return m.setup.AllowEscape }

// EscapeAttemptsLeft returns the escape attempts remaining this turn.
func (m *Manager) EscapeAttemptsLeft() int {
	return m.deps.Config.EscapeAttemptsPerTurn - m.escapeAttempts
}

// Order returns the initiative order.
func (m *Manager) Order() []Participant {
	out := make([]Participant, len(m.order))
	copy(out, m.order)
	return out
}

// Log returns a copy of the combat log.
func (m *Manager) Log() []LogEntry {
	out := make([]LogEntry, len(m.log))
	copy(out, m.log)
	return out
}

// DamageHistory returns a copy of every damage resolution in order.
func (m *Manager) DamageHistory() []DamageRecord {
	out := make([]DamageRecord, len(m.history))
	copy(out, m.history)
	return out
}

// Result returns the final result once the combat reached LootDistribution.
func (m *Manager) Result() (Result, bool) {
	if m.result == nil {
		return Result{}, false
	}
	return *m.result, true
}

// Err returns the fault, if any.
func (m *Manager) Err() error { return m.fault }

// Start installs passive abilities, fires combat-start triggers, rolls initiative and
// auto-advances until the player must choose or the combat ends.
//
// Postcondition: State() is PlayerActionSelect or LootDistribution unless faulted.
func (m *Manager) Start() error {
	if m.fault != nil {
		return m.fault
	}
	if m.machine.State() != Initializing {
		return ErrAlreadyStarted
	}
	m.installPassives()
	m.record(LogInfo, "", "Combat begins against %d enem%s", len(m.enemies), plural(len(m.enemies), "y", "ies"))
	if !m.to(RollInitiative) {
		return m.fault
	}
	for _, ent := range m.participants() {
		m.fire(effect.TriggerCombatStart, ent, nil, 0)
	}
	m.advance()
	return m.fault
}

// Submit validates and resolves the player's action, then auto-advances.
//
// Postcondition: an invalid or out-of-state action is logged and leaves the state unchanged.
func (m *Manager) Submit(a Action) error {
	if m.fault != nil {
		return m.fault
	}
	if a == nil {
		m.record(LogInvalid, m.player.ID, "empty action rejected")
		return fmt.Errorf("%w: nil action", ErrInvalidAction)
	}
	if st := m.machine.State(); st != PlayerActionSelect {
		m.record(LogInvalid, m.player.ID, "%s rejected: combat is in %s", a.Kind(), st)
		return fmt.Errorf("%w: state is %s", ErrNotAwaitingAction, st)
	}
	if v := a.Validate(m); !v.Valid {
		m.record(LogInvalid, m.player.ID, "%s rejected: %s", a.Kind(), v.Reason)
		return fmt.Errorf("%w: %s", ErrInvalidAction, v.Reason)
	}
	m.pending = a
	if !m.to(PlayerActionResolve) {
		return m.fault
	}
	m.advance()
	return m.fault
}

// Run drives the combat to completion, asking src for each player action.
//
// Postcondition: on success State() is LootDistribution and the Result is returned.
// Context cancellation is honored between player actions.
func (m *Manager) Run(ctx context.Context, src ActionSource) (Result, error) {
	if m.machine.State() == Initializing {
		if err := m.Start(); err != nil {
			return Result{}, err
		}
	}
	rejected := 0
	for m.machine.State() == PlayerActionSelect {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		a, err := src.NextAction(ctx, m)
		if err != nil {
			return Result{}, fmt.Errorf("combat: next action: %w", err)
		}
		if err := m.Submit(a); err != nil {
			if errors.Is(err, ErrCombatFaulted) {
				return Result{}, err
			}
			rejected++
			if rejected >= m.deps.Config.MaxInvalidActions {
				return Result{}, fmt.Errorf("combat: %d consecutive rejected actions: %w", rejected, err)
			}
			continue
		}
		rejected = 0
	}
	if m.fault != nil {
		return Result{}, m.fault
	}
	res, ok := m.Result()
	if !ok {
		return Result{}, fmt.Errorf("combat: stopped in %s without a result", m.machine.State())
	}
	return res, nil
}

// to performs an internal transition, faulting the combat when it is illegal.
func (m *Manager) to(s State) bool {
	from := m.machine.State()
	if err := m.machine.Transition(s); err != nil {
		m.fault = fmt.Errorf("%w: %v", ErrCombatFaulted, err)
		m.logger.Error("combat faulted", zap.Stringer("from", from), zap.Stringer("to", s), zap.Error(err))
		m.record(LogState, "", "combat faulted: %v", err)
		return false
	}
	m.logger.Debug("combat state", zap.Stringer("from", from), zap.Stringer("to", s), zap.Int("turn", m.turn))
	return true
}

// advance runs auto-advancing states until input is needed or the combat is over.
func (m *Manager) advance() {
	for m.fault == nil {
		switch m.machine.State() {
		case PlayerActionSelect, LootDistribution:
			return
		case RollInitiative:
			m.rollInitiative()
		case PlayerTurnStart:
			m.playerTurnStart()
		case PlayerActionResolve:
			m.playerActionResolve()
		case EnemyTurnStart:
			m.enemyTurnStart()
		case EnemyIntent:
			m.enemyIntent()
		case EnemyActionResolve:
			m.enemyActionResolve()
		case BetweenTurns:
			m.betweenTurns()
		case CheckVictory:
			m.checkVictory()
		case CheckDefeat:
			m.checkDefeat()
		case CombatEnd:
			m.combatEnd()
		default:
			m.fault = fmt.Errorf("%w: cannot advance from %s", ErrCombatFaulted, m.machine.State())
			m.logger.Error("combat faulted", zap.Error(m.fault))
		}
	}
}

func (m *Manager) rollInitiative() {
	parts := []Participant{{ID: m.player.ID, Player: true}}
	for i, e := range m.enemies {
		parts = append(parts, Participant{ID: e.ID, Index: i})
	}
	m.order = OrderInitiative(parts, func(p Participant) int {
		return m.byID[p.ID].Stats().Initiative
	}, m.roller, m.deps.Config.InitiativeDie)
	for _, p := range m.order {
		m.record(LogInfo, p.ID, "%s rolls %d for initiative (total %d)", m.byID[p.ID].Name, p.Roll, p.Total)
	}
	m.cursor = 0
	m.enter(m.order[0])
}

// enter transitions to the turn-start state of p.
func (m *Manager) enter(p Participant) {
	if p.Player {
		m.to(PlayerTurnStart)
		return
	}
	m.to(EnemyTurnStart)
}

// nextParticipant moves to the next turn in initiative order, or to BetweenTurns
// when the order is exhausted or the fight is decided.
func (m *Manager) nextParticipant() {
	m.cursor++
	if m.decided() || m.cursor >= len(m.order) {
		m.to(BetweenTurns)
		return
	}
	m.enter(m.order[m.cursor])
}

func (m *Manager) current() Participant { return m.order[m.cursor] }

func (m *Manager) currentEnemy() *entity.Enemy { return m.enemies[m.current().Index] }

func (m *Manager) decided() bool { return m.Victory() || m.Defeat() }

// Victory reports whether every enemy is defeated. A player who falls in the same
// exchange as the last enemy still wins.
func (m *Manager) Victory() bool { return m.allEnemiesDefeated() }

// Defeat reports whether the player has fallen while an enemy still stands.
//
// Postcondition: Victory and Defeat are never both true.
func (m *Manager) Defeat() bool { return !m.player.Alive() && !m.allEnemiesDefeated() }

func (m *Manager) allEnemiesDefeated() bool {
	for _, e := range m.enemies {
		if e.Alive() {
			return false
		}
	}
	return true
}

func (m *Manager) playerTurnStart() {
	p := m.player
	p.ClearTemporary(m.turn)
	m.escapeAttempts = 0
	m.fire(effect.TriggerTurnStart, p.Entity, nil, 0)
	if m.decided() {
		m.nextParticipant()
		return
	}
	if p.Effects.DisablesAll() {
		m.record(LogEffect, p.ID, "%s cannot act this turn", p.Name)
		m.pending = nil
		m.to(PlayerActionResolve)
		return
	}
	m.to(PlayerActionSelect)
}

func (m *Manager) playerActionResolve() {
	a := m.pending
	m.pending = nil
	if a == nil {
		m.nextParticipant()
		return
	}
	switch m.resolvePlayerAction(a) {
	case flowEscaped:
		m.outcome = OutcomeEscape
		m.to(CombatEnd)
	case flowSelectAgain:
		m.to(PlayerActionSelect)
	default:
		m.nextParticipant()
	}
}

func (m *Manager) enemyTurnStart() {
	e := m.currentEnemy()
	if !e.Alive() {
		m.nextParticipant()
		return
	}
	e.ClearTemporary(m.turn)
	m.fire(effect.TriggerTurnStart, e.Entity, nil, 0)
	if !e.Alive() || m.decided() {
		m.nextParticipant()
		return
	}
	if e.Effects.DisablesAll() {
		m.record(LogEffect, e.ID, "%s cannot act this turn", e.Name)
		m.nextParticipant()
		return
	}
	m.to(EnemyIntent)
}

func (m *Manager) enemyIntent() {
	e := m.currentEnemy()
	sit := ai.BuildSituation(e, m.player, m.turn, m.deps.Factory.Registry())
	e.Intent = m.deps.AI.Choose(sit, m.roller)
	m.record(LogIntent, e.ID, "%s %s", e.Name, e.Intent.Description)
	m.to(EnemyActionResolve)
}

func (m *Manager) enemyActionResolve() {
	m.executeIntent(m.currentEnemy())
	m.nextParticipant()
}

func (m *Manager) betweenTurns() {
	all := m.participants()
	for _, ent := range all {
		ent.ExpireTemporary(m.turn)
	}
	for _, ent := range all {
		if ent.Alive() {
			m.fire(effect.TriggerTurnEnd, ent, nil, 0)
		}
	}
	for _, ent := range all {
		m.expire(ent, m.deps.Effects.Tick(ent.Effects, effect.TriggerTurnEnd))
	}
	m.to(CheckVictory)
}

func (m *Manager) checkVictory() {
	if m.Victory() {
		m.outcome = OutcomeVictory
		m.to(CombatEnd)
		return
	}
	m.to(CheckDefeat)
}

func (m *Manager) checkDefeat() {
	if m.Defeat() {
		m.outcome = OutcomeDefeat
		m.to(CombatEnd)
		return
	}
	m.turn++
	m.cursor = 0
	m.enter(m.order[0])
}

func (m *Manager) combatEnd() {
	all := m.participants()
	for _, ent := range all {
		m.fire(effect.TriggerCombatEnd, ent, nil, 0)
	}
	for _, ent := range all {
		m.expire(ent, m.deps.Effects.Tick(ent.Effects, effect.TriggerCombatEnd))
	}

	res := &Result{
		CombatID:         m.id,
		Outcome:          m.outcome,
		TurnsElapsed:     m.turn,
		TotalDamageDealt: m.dealt,
		TotalDamageTaken: m.taken,
	}
	if m.outcome == OutcomeDefeat {
		res.Penalties = ApplyDefeatPenalties(m.player, m.setup.KeyItemID, m.roller, m.deps.Config.EquippedLossChance)
		for _, pen := range res.Penalties {
			m.record(LogPenalty, m.player.ID, "%s", pen.Message)
		}
	}

	for _, ent := range all {
		m.deps.Effects.EndCombat(ent.Effects)
		ent.ResetCombatState()
	}
	m.result = res
	if !m.to(LootDistribution) {
		return
	}
	if m.outcome == OutcomeVictory {
		m.distribute(res)
	}
	m.record(LogInfo, "", "Combat ends in %s after %d turn(s)", m.outcome, m.turn)
	m.logger.Info("combat finished",
		zap.String("outcome", string(m.outcome)),
		zap.Int("turns", m.turn),
		zap.Int("damage_dealt", m.dealt),
		zap.Int("damage_taken", m.taken),
		zap.Int("loot", len(res.Loot)),
	)
}

// distribute grants experience, gold and loot for a victory.
func (m *Manager) distribute(res *Result) {
	req := loot.Request{DungeonTier: m.setup.DungeonTier, Modifiers: m.setup.KeyModifiers}
	for _, e := range m.enemies {
		res.Experience += e.Experience
		if e.GoldDice != "" {
			roll, err := m.roller.RollExpr(e.GoldDice)
			if err != nil {
				m.logger.Warn("bad gold dice", zap.String("enemy", e.ID), zap.String("dice", e.GoldDice), zap.Error(err))
			} else if roll.Total() > 0 {
				res.Gold += roll.Total()
			}
		}
		req.Enemies = append(req.Enemies, loot.EnemyDrop{EnemyID: e.ID, LootTier: e.LootTier, Elite: e.Elite, Boss: e.Boss})
	}
	res.LevelsGained = m.player.GainExperience(res.Experience)
	m.player.Gold += res.Gold
	m.record(LogLoot, m.player.ID, "%s gains %d experience and %d gold", m.player.Name, res.Experience, res.Gold)
	if res.LevelsGained > 0 {
		m.record(LogInfo, m.player.ID, "%s reaches level %d", m.player.Name, m.player.Level)
	}

	if m.deps.Loot == nil {
		return
	}
	items, err := m.deps.Loot.Distribute(req)
	if err != nil {
		m.logger.Warn("loot generation failed", zap.Error(err))
		m.record(LogLoot, "", "no loot could be generated")
		return
	}
	res.Loot = items
	for _, it := range items {
		if err := m.player.Grant(it); err != nil {
			res.Ungranted = append(res.Ungranted, it)
			m.record(LogLoot, m.player.ID, "%s is left behind: %v", it.Name, err)
			continue
		}
		m.record(LogLoot, m.player.ID, "%s receives %s (%s)", m.player.Name, it.Name, it.Rarity)
	}
}

// installPassives applies every passive ability granted by the player's equipment
// or listed on an enemy.
func (m *Manager) installPassives() {
	m.installPassiveSet(m.player.Entity, m.player.GrantedAbilities())
	for _, e := range m.enemies {
		m.installPassiveSet(e.Entity, e.Abilities)
	}
}

func (m *Manager) installPassiveSet(owner *entity.Entity, abilities []string) {
	for _, id := range abilities {
		def, ok := m.Ability(id)
		if !ok || def.Mode != effect.ModePassive {
			continue
		}
		eff, err := m.deps.Factory.Ability(id, owner.ID)
		if err != nil {
			m.logger.Warn("passive ability unavailable", zap.String("ability", id), zap.Error(err))
			continue
		}
		m.deps.Effects.Apply(owner.Effects, owner.ID, eff, m.turn)
		m.record(LogAbility, owner.ID, "%s's %s is active", owner.Name, def.Name)
	}
}

// participants returns the player followed by every enemy.
func (m *Manager) participants() []*entity.Entity {
	out := make([]*entity.Entity, 0, len(m.enemies)+1)
	out = append(out, m.player.Entity)
	for _, e := range m.enemies {
		out = append(out, e.Entity)
	}
	return out
}

func (m *Manager) expire(owner *entity.Entity, gone []*effect.Active) {
	for _, a := range gone {
		if a.Effect.Visible {
			m.record(LogEffect, owner.ID, "%s on %s wears off", a.Effect.Name, owner.Name)
		}
	}
}

func (m *Manager) record(typ LogType, entityID string, format string, args ...any) {
	m.log = append(m.log, LogEntry{Turn: m.turn, Message: fmt.Sprintf(format, args...), Type: typ, EntityID: entityID})
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
