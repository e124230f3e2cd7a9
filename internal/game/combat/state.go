package combat

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned when a requested state change is not in the transition table.
var ErrIllegalTransition = errors.New("combat: illegal state transition")

// State is a phase of the combat state machine.
type State int

const (
	Initializing State = iota
	RollInitiative
	PlayerTurnStart
	PlayerActionSelect
	PlayerActionResolve
	EnemyTurnStart
	EnemyIntent
	EnemyActionResolve
	BetweenTurns
	CheckVictory
	CheckDefeat
	CombatEnd
	LootDistribution
)

// AllStates lists every state in declaration order.
var AllStates = []State{
	Initializing, RollInitiative,
	PlayerTurnStart, PlayerActionSelect, PlayerActionResolve,
	EnemyTurnStart, EnemyIntent, EnemyActionResolve,
	BetweenTurns, CheckVictory, CheckDefeat,
	CombatEnd, LootDistribution,
}

var stateNames = map[State]string{
	Initializing:        "initializing",
	RollInitiative:      "roll_initiative",
	PlayerTurnStart:     "player_turn_start",
	PlayerActionSelect:  "player_action_select",
	PlayerActionResolve: "player_action_resolve",
	EnemyTurnStart:      "enemy_turn_start",
	EnemyIntent:         "enemy_intent",
	EnemyActionResolve:  "enemy_action_resolve",
	BetweenTurns:        "between_turns",
	CheckVictory:        "check_victory",
	CheckDefeat:         "check_defeat",
	CombatEnd:           "combat_end",
	LootDistribution:    "loot_distribution",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// transitions is the complete legal successor table. A state absent from the
// table is terminal.
var transitions = map[State][]State{
	Initializing:        {RollInitiative},
	RollInitiative:      {PlayerTurnStart, EnemyTurnStart},
	PlayerTurnStart:     {PlayerActionSelect, PlayerActionResolve, EnemyTurnStart, BetweenTurns},
	PlayerActionSelect:  {PlayerActionResolve},
	PlayerActionResolve: {EnemyTurnStart, BetweenTurns, CombatEnd, PlayerActionSelect},
	EnemyTurnStart:      {EnemyIntent, EnemyTurnStart, PlayerTurnStart, BetweenTurns},
	EnemyIntent:         {EnemyActionResolve},
	EnemyActionResolve:  {EnemyTurnStart, PlayerTurnStart, BetweenTurns},
	BetweenTurns:        {CheckVictory},
	CheckVictory:        {CheckDefeat, CombatEnd},
	CheckDefeat:         {CombatEnd, PlayerTurnStart, EnemyTurnStart},
	CombatEnd:           {LootDistribution},
}

// Successors returns a copy of the legal successors of s.
func Successors(s State) []State {
	next := transitions[s]
	out := make([]State, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no successors.
func (s State) Terminal() bool { return len(transitions[s]) == 0 }

// Machine holds the current state and the path taken to reach it.
type Machine struct {
	current State
	history []State
}

// NewMachine creates a Machine in Initializing.
func NewMachine() *Machine {
	return &Machine{current: Initializing, history: []State{Initializing}}
}

// State returns the current state.
func (m *Machine) State() State { return m.current }

// History returns a copy of every state entered, in order.
func (m *Machine) History() []State {
	out := make([]State, len(m.history))
	copy(out, m.history)
	return out
}

// Transition moves to the state to.
//
// Postcondition: on ErrIllegalTransition the current state is unchanged.
func (m *Machine) Transition(to State) error {
	if !CanTransition(m.current, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.current, to)
	}
	m.current = to
	m.history = append(m.history, to)
	return nil
}
