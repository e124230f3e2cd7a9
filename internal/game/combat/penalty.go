package combat

import (
	"fmt"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/entity"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
)

// DefaultEquippedLossChance is the reference probability of losing one equipped item on defeat.
const DefaultEquippedLossChance = 0.25

// PenaltyKind identifies one of the defeat penalties.
type PenaltyKind string

const (
	PenaltyKeyConsumed  PenaltyKind = "key_consumed"
	PenaltyBackpackLost PenaltyKind = "backpack_lost"
	PenaltyEquippedLost PenaltyKind = "equipped_lost"
)

// Penalty records what one defeat penalty removed.
type Penalty struct {
	Kind    PenaltyKind       `json:"kind"`
	Items   []*inventory.Item `json:"items,omitempty"`
	Message string            `json:"message"`
}

// ConsumeKey removes the dungeon key keyItemID from wherever the player holds it.
//
// Postcondition: the key is no longer owned; a missing key yields an empty Penalty.
func ConsumeKey(p *entity.Player, keyItemID string) Penalty {
	pen := Penalty{Kind: PenaltyKeyConsumed, Message: "no dungeon key to consume"}
	if keyItemID == "" {
		return pen
	}
	it, err := p.Discard(keyItemID)
	if err != nil {
		return pen
	}
	pen.Items = []*inventory.Item{it}
	pen.Message = fmt.Sprintf("%s crumbles to dust", it.Name)
	return pen
}

// LoseBackpack removes every backpack item.
//
// Postcondition: the backpack is empty; equipped and stashed items are untouched.
func LoseBackpack(p *entity.Player) Penalty {
	items := p.DiscardBackpack()
	return Penalty{
		Kind:    PenaltyBackpackLost,
		Items:   items,
		Message: fmt.Sprintf("lost %d backpack item(s)", len(items)),
	}
}

// RollEquippedLoss removes one uniformly chosen equipped item with probability chance.
//
// Postcondition: at most one item is removed.
func RollEquippedLoss(p *entity.Player, src dice.Source, chance float64) Penalty {
	pen := Penalty{Kind: PenaltyEquippedLost, Message: "kept all equipped items"}
	equipped := p.Equipped()
	if len(equipped) == 0 || !dice.Chance(src, chance) {
		return pen
	}
	victim := equipped[src.Intn(len(equipped))]
	it, err := p.Discard(victim.ID)
	if err != nil {
		return pen
	}
	pen.Items = []*inventory.Item{it}
	pen.Message = fmt.Sprintf("lost equipped %s", it.Name)
	return pen
}

// ApplyDefeatPenalties runs the three penalties in order: key, backpack, equipped roll.
func ApplyDefeatPenalties(p *entity.Player, keyItemID string, src dice.Source, equippedLossChance float64) []Penalty {
	return []Penalty{
		ConsumeKey(p, keyItemID),
		LoseBackpack(p),
		RollEquippedLoss(p, src, equippedLossChance),
	}
}
