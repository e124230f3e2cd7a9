package combat

import (
	"context"

	"github.com/cory-johannsen/dungeon/internal/game/entity"
)

// AutoPolicy is a simple player ActionSource for simulations and tests.
//
// It casts the first usable granted ability, otherwise attacks the weakest
// reachable enemy, otherwise closes distance, otherwise blocks. When the player
// is below FleeBelow of max health and escape is allowed it tries to escape first.
type AutoPolicy struct {
	// FleeBelow is a health fraction; zero never flees.
	FleeBelow    float64
	EscapeChance float64
	UseAbilities bool
}

// NextAction implements ActionSource.
func (a AutoPolicy) NextAction(_ context.Context, b Battle) (Action, error) {
	return a.Choose(b), nil
}

// Choose returns a valid action for b whenever one exists.
func (a AutoPolicy) Choose(b Battle) Action {
	p := b.Player()
	if a.FleeBelow > 0 && b.EscapeAllowed() && b.EscapeAttemptsLeft() > 0 {
		if hp := p.Stats().MaxHealth; hp > 0 && float64(p.Health())/float64(hp) < a.FleeBelow {
			esc := Escape{SuccessChance: a.EscapeChance}
			if esc.Validate(b).Valid {
				return esc
			}
		}
	}

	living := livingEnemies(b)
	if a.UseAbilities && len(living) > 0 {
		for _, id := range p.GrantedAbilities() {
			def, ok := b.Ability(id)
			if !ok {
				continue
			}
			cast := NewCast(def, weakest(living).ID)
			if cast.Validate(b).Valid {
				return cast
			}
		}
	}

	var target *entity.Enemy
	for _, e := range living {
		atk := NewAttack(p, e.ID)
		if !atk.Validate(b).Valid {
			continue
		}
		if target == nil || e.Health() < target.Health() {
			target = e
		}
	}
	if target != nil {
		return NewAttack(p, target.ID)
	}

	if mv := (Move{NewRange: entity.InRange}); mv.Validate(b).Valid {
		return mv
	}
	return Block{}
}

func livingEnemies(b Battle) []*entity.Enemy {
	var out []*entity.Enemy
	for _, e := range b.Enemies() {
		if e.Alive() {
			out = append(out, e)
		}
	}
	return out
}

func weakest(es []*entity.Enemy) *entity.Enemy {
	w := es[0]
	for _, e := range es[1:] {
		if e.Health() < w.Health() {
			w = e
		}
	}
	return w
}
