package combat

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

// ArmorMitigationFactor scales target armor into a flat damage subtraction.
//
// TODO(balance): flat floor(armor*0.5) scales weakly at high armor; revisit with
// a diminishing-returns curve once content tuning is settled.
const ArmorMitigationFactor = 0.5

// CriticalMultiplier multiplies raw damage on a critical hit.
const CriticalMultiplier = 2

// Physical is the damage type that armor applies to and resistances never do.
const Physical = "physical"

// DamageInput is everything the damage pipeline reads.
type DamageInput struct {
	AttackerID string
	TargetID   string
	Attacker   stats.Stats
	Target     stats.Stats
	// TargetShield is the target's current energy shield.
	TargetShield int
	// BaseDamage replaces Attacker.Damage when > 0.
	BaseDamage int
	DamageType string
	// HitChance and CriticalChance (percent) replace the attacker's accuracy and
	// critical chance when > 0.
	HitChance      float64
	CriticalChance float64
	// Reductions are post-armor percentage reductions applied in order.
	Reductions []int
}

// Resolution is the full audit record of one damage resolution. It is produced for
// misses too.
//
// Invariant: Final == ShieldDamage + HealthDamage.
type Resolution struct {
	AttackerID string
	TargetID   string
	DamageType string

	HitRoll   float64
	HitChance float64
	Hit       bool

	CritRoll   float64
	CritChance float64
	Critical   bool

	Raw                int
	ShieldDamage       int
	ArmorMitigated     int
	ResistMitigated    int
	ReductionMitigated int
	HealthDamage       int
	Final              int
	Message            string
}

// ResolveDamage runs the hit roll, the critical roll and mitigation.
//
// Mitigation order: energy shield absorbs first regardless of damage type; the
// remainder loses floor(armor*ArmorMitigationFactor) but never drops below 1;
// elemental resistance then applies to non-physical damage; each reduction then
// takes its percentage, flooring.
//
// Precondition: src must be non-nil.
// Postcondition: the returned Resolution is fully populated; a miss has zero damage.
func ResolveDamage(in DamageInput, src dice.Source) Resolution {
	r := Resolution{
		AttackerID: in.AttackerID,
		TargetID:   in.TargetID,
		DamageType: in.DamageType,
		HitChance:  in.Attacker.Accuracy,
		CritChance: in.Attacker.CriticalChance,
	}
	if r.DamageType == "" {
		r.DamageType = Physical
	}
	if in.HitChance > 0 {
		r.HitChance = in.HitChance
	}
	if in.CriticalChance > 0 {
		r.CritChance = in.CriticalChance
	}

	r.HitRoll = dice.Percent(src)
	r.Hit = r.HitChance > 0 && r.HitRoll <= r.HitChance
	if !r.Hit {
		r.Message = fmt.Sprintf("misses (rolled %.2f against %.2f)", r.HitRoll, r.HitChance)
		return r
	}

	r.CritRoll = dice.Percent(src)
	r.Critical = r.CritChance > 0 && r.CritRoll <= r.CritChance

	raw := in.Attacker.Damage
	if in.BaseDamage > 0 {
		raw = in.BaseDamage
	}
	if raw < 0 {
		raw = 0
	}
	if r.Critical {
		raw *= CriticalMultiplier
	}
	r.Raw = raw

	remaining := raw
	r.ShieldDamage = min(max(in.TargetShield, 0), remaining)
	remaining -= r.ShieldDamage

	if remaining > 0 {
		after := remaining - armorMitigation(in.Target.Armor)
		if after < 1 {
			after = 1
		}
		r.ArmorMitigated = remaining - after
		remaining = after
	}

	if remaining > 0 && r.DamageType != Physical {
		res := in.Target.Resistance(r.DamageType)
		after := remaining - int(math.Floor(float64(remaining)*float64(res)/100))
		if after < 0 {
			after = 0
		}
		r.ResistMitigated = remaining - after
		remaining = after
	}

	for _, pct := range in.Reductions {
		if remaining <= 0 {
			break
		}
		after := int(math.Floor(float64(remaining) * float64(100-pct) / 100))
		r.ReductionMitigated += remaining - after
		remaining = after
	}

	r.HealthDamage = remaining
	r.Final = r.ShieldDamage + r.HealthDamage
	r.Message = describe(r)
	return r
}

func armorMitigation(armor int) int {
	if armor <= 0 {
		return 0
	}
	return int(math.Floor(float64(armor) * ArmorMitigationFactor))
}

func describe(r Resolution) string {
	prefix := "hits"
	if r.Critical {
		prefix = "critically hits"
	}
	msg := fmt.Sprintf("%s for %d %s damage", prefix, r.Final, r.DamageType)
	if r.ShieldDamage > 0 {
		msg += fmt.Sprintf(" (%d absorbed by energy shield)", r.ShieldDamage)
	}
	return msg
}
