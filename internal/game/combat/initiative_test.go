package combat_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/dice"
)

func TestOrderInitiative_TiesKeepDrawOrder(t *testing.T) {
	parts := []combat.Participant{{ID: "player", Player: true}, {ID: "g1", Index: 0}, {ID: "g2", Index: 1}}
	order := combat.OrderInitiative(parts, func(combat.Participant) int { return 0 }, clampSrc{val: 7}, 20)
	for i, p := range order {
		if p.ID != parts[i].ID {
			t.Fatalf("position %d: expected %s, got %s", i, parts[i].ID, p.ID)
		}
		if p.Roll != 7 || p.Total != 7 {
			t.Fatalf("%s: expected roll and total 7, got %d/%d", p.ID, p.Roll, p.Total)
		}
	}
}

func TestOrderInitiative_BonusOrdersHighestFirst(t *testing.T) {
	parts := []combat.Participant{{ID: "player", Player: true}, {ID: "g1"}}
	bonus := map[string]int{"player": 1, "g1": 5}
	order := combat.OrderInitiative(parts, func(p combat.Participant) int { return bonus[p.ID] }, clampSrc{val: 0}, 20)
	if order[0].ID != "g1" {
		t.Fatalf("expected g1 first, got %s", order[0].ID)
	}
}

func TestProperty_OrderInitiative_SortedPermutation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "n")
		die := rapid.IntRange(1, 30).Draw(rt, "die")
		parts := make([]combat.Participant, n)
		bonus := make(map[string]int, n)
		for i := range parts {
			id := string(rune('a' + i))
			parts[i] = combat.Participant{ID: id, Index: i, Player: i == 0}
			bonus[id] = rapid.IntRange(-5, 10).Draw(rt, "bonus")
		}
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		order := combat.OrderInitiative(parts, func(p combat.Participant) int { return bonus[p.ID] }, src, die)
		if len(order) != n {
			rt.Fatalf("expected %d participants, got %d", n, len(order))
		}
		seen := map[string]bool{}
		for i, p := range order {
			if p.Roll < 0 || p.Roll >= die {
				rt.Fatalf("roll %d outside [0,%d)", p.Roll, die)
			}
			if p.Total != p.Roll+bonus[p.ID] {
				rt.Fatalf("total %d != roll %d + bonus %d", p.Total, p.Roll, bonus[p.ID])
			}
			if i > 0 && order[i-1].Total < p.Total {
				rt.Fatalf("order not descending at %d", i)
			}
			seen[p.ID] = true
		}
		if len(seen) != n {
			rt.Fatalf("expected a permutation, got %v", order)
		}
	})
}
