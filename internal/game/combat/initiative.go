package combat

import (
	"cmp"
	"slices"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
)

// DefaultInitiativeDie bounds the uniform draw added to each participant's initiative stat.
const DefaultInitiativeDie = 20

// Participant is one slot in the turn order.
type Participant struct {
	ID     string
	Player bool
	// Index is the position in the manager's enemy list; unused for the player.
	Index int
	Roll  int
	Total int
}

// OrderInitiative draws a uniform value in [0, die) for every participant, adds the
// stat bonus and orders them by total, highest first. Ties keep draw order.
//
// Precondition: src must be non-nil; die > 0.
// Postcondition: the returned slice is a permutation of participants sorted descending by Total.
func OrderInitiative(participants []Participant, bonus func(Participant) int, src dice.Source, die int) []Participant {
	out := make([]Participant, len(participants))
	copy(out, participants)
	for i := range out {
		out[i].Roll = src.Intn(die)
		out[i].Total = out[i].Roll + bonus(out[i])
	}
	slices.SortStableFunc(out, func(a, b Participant) int { return cmp.Compare(b.Total, a.Total) })
	return out
}
