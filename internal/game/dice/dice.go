// Package dice provides the single randomness abstraction used by the combat core.
//
// Every random draw the core makes (initiative, hit, critical, escape, penalty and
// loot selection) goes through a Source so a seeded Source reproduces a combat exactly.
package dice

import "fmt"

// Source is the randomness provider for every draw in the core.
//
// Implementations need not be safe for concurrent use; a combat instance is
// single-threaded and owns its Source.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// percentResolution is the number of discrete steps in a Percent draw.
const percentResolution = 10000

// Percent draws a uniform value in [0, 100) with 0.01 granularity.
//
// Precondition: src must be non-nil.
// Postcondition: 0 <= result < 100.
func Percent(src Source) float64 {
	return float64(src.Intn(percentResolution)) / 100
}

// Chance reports true with probability p.
//
// Postcondition: p <= 0 always yields false; p >= 1 always yields true.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return Percent(src) < p*100
}

// Between returns a uniform int in [lo, hi]. A reversed range is swapped.
func Between(src Source, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// RollResult holds the audit trail for one dice expression evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of all kept dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the roll as "2d6+3 → [4 5] +3 = 12".
func (r RollResult) String() string {
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}
