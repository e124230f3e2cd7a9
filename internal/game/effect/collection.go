package effect

import "github.com/cory-johannsen/dungeon/internal/game/stats"

// Collection holds the effects applied to one entity in registration order.
//
// Only the Engine adds or removes members; everything else reads.
// It is not safe for concurrent use.
type Collection struct {
	items []*Active
}

// NewCollection creates an empty Collection.
func NewCollection() *Collection {
	return &Collection{}
}

// All returns the active instances in registration order.
//
// Postcondition: the returned slice is a copy; the instances are shared and must not be modified.
func (c *Collection) All() []*Active {
	out := make([]*Active, len(c.items))
	copy(out, c.items)
	return out
}

// Visible returns visible instances in registration order.
func (c *Collection) Visible() []*Active {
	var out []*Active
	for _, a := range c.items {
		if a.Effect.Visible {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of active instances.
func (c *Collection) Len() int { return len(c.items) }

// Has reports whether any instance of effect id is active.
func (c *Collection) Has(id string) bool {
	return c.Count(id) > 0
}

// Count returns the number of active instances of effect id.
func (c *Collection) Count(id string) int {
	n := 0
	for _, a := range c.items {
		if a.Effect.ID == id {
			n++
		}
	}
	return n
}

// Find returns the active instances of effect id in registration order.
func (c *Collection) Find(id string) []*Active {
	var out []*Active
	for _, a := range c.items {
		if a.Effect.ID == id {
			out = append(out, a)
		}
	}
	return out
}

// Modifiers sums the stat contributions of every StatModifier instance.
func (c *Collection) Modifiers() stats.Modifiers {
	var total stats.Modifiers
	for _, a := range c.items {
		if sm, ok := a.Effect.Behavior.(StatModifier); ok {
			total = total.Add(sm.Modifiers)
		}
	}
	return total
}

// Disables reports whether an active ActionDisable forbids action.
func (c *Collection) Disables(action string) bool {
	for _, a := range c.items {
		ad, ok := a.Effect.Behavior.(ActionDisable)
		if !ok {
			continue
		}
		if len(ad.Actions) == 0 {
			return true
		}
		for _, x := range ad.Actions {
			if x == action {
				return true
			}
		}
	}
	return false
}

// DisablesAll reports whether an active ActionDisable forbids every action.
func (c *Collection) DisablesAll() bool {
	for _, a := range c.items {
		if ad, ok := a.Effect.Behavior.(ActionDisable); ok && len(ad.Actions) == 0 {
			return true
		}
	}
	return false
}

// DamageReductions returns the percent of every active DamageReduction in registration order.
func (c *Collection) DamageReductions() []int {
	var out []int
	for _, a := range c.items {
		if dr, ok := a.Effect.Behavior.(DamageReduction); ok && dr.Percent > 0 {
			out = append(out, dr.Percent)
		}
	}
	return out
}

func (c *Collection) indexOf(instanceID string) int {
	for i, a := range c.items {
		if a.InstanceID == instanceID {
			return i
		}
	}
	return -1
}

func (c *Collection) firstOf(id string) int {
	for i, a := range c.items {
		if a.Effect.ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection) removeAt(i int) *Active {
	a := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	return a
}
