package inventory

// Backpack is a size-bounded ordered list of item ids.
type Backpack struct {
	MaxSlots int
	ids      []string
}

// NewBackpack creates an empty Backpack holding at most maxSlots items.
//
// Precondition: maxSlots >= 0.
func NewBackpack(maxSlots int) *Backpack {
	return &Backpack{MaxSlots: maxSlots}
}

// Add appends id.
//
// Postcondition: returns ErrBackpackFull and leaves the backpack unchanged when no slot is free.
func (b *Backpack) Add(id string) error {
	if b.Full() {
		return ErrBackpackFull
	}
	b.ids = append(b.ids, id)
	return nil
}

// Remove deletes id and reports whether it was present.
func (b *Backpack) Remove(id string) bool {
	for i, x := range b.ids {
		if x == id {
			b.ids = append(b.ids[:i], b.ids[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether id is in the backpack.
func (b *Backpack) Contains(id string) bool {
	for _, x := range b.ids {
		if x == id {
			return true
		}
	}
	return false
}

// IDs returns a snapshot copy of the held ids in insertion order.
func (b *Backpack) IDs() []string {
	out := make([]string, len(b.ids))
	copy(out, b.ids)
	return out
}

// Len returns the number of held items.
func (b *Backpack) Len() int { return len(b.ids) }

// Free returns the number of empty slots.
func (b *Backpack) Free() int { return b.MaxSlots - len(b.ids) }

// Full reports whether no slot is free.
func (b *Backpack) Full() bool { return len(b.ids) >= b.MaxSlots }

// Clear empties the backpack and returns the ids it held.
func (b *Backpack) Clear() []string {
	out := b.ids
	b.ids = nil
	return out
}

// Stash is unbounded long-term storage of item ids.
type Stash struct {
	ids []string
}

// NewStash creates an empty Stash.
func NewStash() *Stash { return &Stash{} }

// Add appends id.
func (s *Stash) Add(id string) { s.ids = append(s.ids, id) }

// Remove deletes id and reports whether it was present.
func (s *Stash) Remove(id string) bool {
	for i, x := range s.ids {
		if x == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether id is stashed.
func (s *Stash) Contains(id string) bool {
	for _, x := range s.ids {
		if x == id {
			return true
		}
	}
	return false
}

// IDs returns a snapshot copy of the stashed ids.
func (s *Stash) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
