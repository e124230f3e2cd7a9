package inventory

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

var (
	// ErrItemNotFound is returned when an id is not owned or not at the expected location.
	ErrItemNotFound = errors.New("inventory: item not found")
	// ErrBackpackFull is returned when an item cannot be placed in the backpack.
	ErrBackpackFull = errors.New("inventory: backpack full")
	// ErrSlotMismatch is returned when an item cannot occupy the requested slot.
	ErrSlotMismatch = errors.New("inventory: item does not fit slot")
	// ErrNotEquipment is returned when a non-equipment item is equipped.
	ErrNotEquipment = errors.New("inventory: item is not equipment")
	// ErrTwoHanded is returned when a shield is equipped alongside a two-handed weapon.
	ErrTwoHanded = errors.New("inventory: off hand is locked by a two-handed weapon")
	// ErrUnknownLoadout is returned when a loadout name is not saved.
	ErrUnknownLoadout = errors.New("inventory: unknown loadout")
)

// Location says where an owned item currently lives.
type Location int

const (
	Nowhere Location = iota
	Equipped
	InBackpack
	InStash
)

func (l Location) String() string {
	switch l {
	case Equipped:
		return "equipped"
	case InBackpack:
		return "backpack"
	case InStash:
		return "stash"
	default:
		return "nowhere"
	}
}

// Inventory owns every item a player has and tracks exactly one location per item.
//
// Invariant: every id in the arena is in exactly one of equipment, backpack or stash,
// and every id in those containers is in the arena.
// It is not safe for concurrent use.
type Inventory struct {
	arena     map[string]*Item
	equipment Equipment
	backpack  *Backpack
	stash     *Stash
	loadouts  map[string]Loadout
}

// New creates an empty Inventory with a backpack of backpackSlots.
func New(backpackSlots int) *Inventory {
	return &Inventory{
		arena:     make(map[string]*Item),
		equipment: make(Equipment),
		backpack:  NewBackpack(backpackSlots),
		stash:     NewStash(),
		loadouts:  make(map[string]Loadout),
	}
}

// Item returns the owned item with id.
func (inv *Inventory) Item(id string) (*Item, bool) {
	it, ok := inv.arena[id]
	return it, ok
}

// Len returns the number of owned items.
func (inv *Inventory) Len() int { return len(inv.arena) }

// Backpack returns the backpack. Callers must use Inventory methods to move items.
func (inv *Inventory) Backpack() *Backpack { return inv.backpack }

// Stash returns the stash. Callers must use Inventory methods to move items.
func (inv *Inventory) Stash() *Stash { return inv.stash }

// Equipment returns a copy of the slot map.
func (inv *Inventory) Equipment() Equipment { return inv.equipment.Clone() }

// EquippedIn returns the item in slot.
func (inv *Inventory) EquippedIn(slot Slot) (*Item, bool) {
	id := inv.equipment[slot]
	if id == "" {
		return nil, false
	}
	return inv.arena[id], true
}

// Locate returns where id lives.
func (inv *Inventory) Locate(id string) Location {
	if _, ok := inv.arena[id]; !ok {
		return Nowhere
	}
	if _, ok := inv.equipment.SlotOf(id); ok {
		return Equipped
	}
	if inv.backpack.Contains(id) {
		return InBackpack
	}
	if inv.stash.Contains(id) {
		return InStash
	}
	return Nowhere
}

// Grant takes ownership of it and places it in the backpack.
//
// Precondition: it.ID is not already owned.
// Postcondition: on ErrBackpackFull nothing changes.
func (inv *Inventory) Grant(it *Item) error {
	if _, ok := inv.arena[it.ID]; ok {
		return fmt.Errorf("inventory: item %q already owned", it.ID)
	}
	if err := inv.backpack.Add(it.ID); err != nil {
		return err
	}
	inv.arena[it.ID] = it
	return nil
}

// GrantToStash takes ownership of it and places it in the stash.
func (inv *Inventory) GrantToStash(it *Item) error {
	if _, ok := inv.arena[it.ID]; ok {
		return fmt.Errorf("inventory: item %q already owned", it.ID)
	}
	inv.arena[it.ID] = it
	inv.stash.Add(it.ID)
	return nil
}

// Equip moves id from the backpack into slot. An empty slot picks the first free
// slot the item fits, or the first fitting slot when all are taken. A displaced
// item moves to the backpack; equipping a two-handed weapon also unequips the shield.
//
// Postcondition: on error nothing changes.
func (inv *Inventory) Equip(id string, slot Slot) error {
	it, ok := inv.arena[id]
	if !ok || !inv.backpack.Contains(id) {
		return fmt.Errorf("%w: %q not in backpack", ErrItemNotFound, id)
	}
	if it.Type != TypeEquipment || it.Equipment == nil {
		return fmt.Errorf("%w: %q", ErrNotEquipment, id)
	}
	if slot == "" {
		slot = inv.pickSlot(it.Equipment.Slot)
		if slot == "" {
			return fmt.Errorf("%w: %q declares %q", ErrSlotMismatch, id, it.Equipment.Slot)
		}
	}
	if !slot.Accepts(it.Equipment.Slot) {
		return fmt.Errorf("%w: %q cannot go in %s", ErrSlotMismatch, id, slot)
	}
	if slot == SlotShield {
		if w, ok := inv.EquippedIn(SlotWeapon); ok && w.Equipment.TwoHanded {
			return ErrTwoHanded
		}
	}

	var displaced []string
	if cur := inv.equipment[slot]; cur != "" {
		displaced = append(displaced, cur)
	}
	if slot == SlotWeapon && it.Equipment.TwoHanded {
		if sh := inv.equipment[SlotShield]; sh != "" {
			displaced = append(displaced, sh)
		}
	}
	// Equipping frees the item's own backpack slot.
	if len(displaced) > inv.backpack.Free()+1 {
		return ErrBackpackFull
	}

	inv.backpack.Remove(id)
	for _, d := range displaced {
		s, _ := inv.equipment.SlotOf(d)
		delete(inv.equipment, s)
		_ = inv.backpack.Add(d)
	}
	inv.equipment[slot] = id
	return nil
}

func (inv *Inventory) pickSlot(kind ItemSlot) Slot {
	candidates := SlotsFor(kind)
	for _, s := range candidates {
		if inv.equipment[s] == "" {
			return s
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

// Unequip moves the item in slot to the backpack.
//
// Postcondition: on error nothing changes.
func (inv *Inventory) Unequip(slot Slot) error {
	id := inv.equipment[slot]
	if id == "" {
		return fmt.Errorf("%w: %s is empty", ErrItemNotFound, slot)
	}
	if err := inv.backpack.Add(id); err != nil {
		return err
	}
	delete(inv.equipment, slot)
	return nil
}

// MoveToStash moves id from the backpack to the stash.
func (inv *Inventory) MoveToStash(id string) error {
	if !inv.backpack.Remove(id) {
		return fmt.Errorf("%w: %q not in backpack", ErrItemNotFound, id)
	}
	inv.stash.Add(id)
	return nil
}

// TakeFromStash moves id from the stash to the backpack.
func (inv *Inventory) TakeFromStash(id string) error {
	if !inv.stash.Contains(id) {
		return fmt.Errorf("%w: %q not in stash", ErrItemNotFound, id)
	}
	if err := inv.backpack.Add(id); err != nil {
		return err
	}
	inv.stash.Remove(id)
	return nil
}

// Discard removes id from wherever it lives and gives up ownership.
func (inv *Inventory) Discard(id string) (*Item, error) {
	it, ok := inv.arena[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	if s, ok := inv.equipment.SlotOf(id); ok {
		delete(inv.equipment, s)
	}
	inv.backpack.Remove(id)
	inv.stash.Remove(id)
	delete(inv.arena, id)
	return it, nil
}

// DiscardBackpack gives up every backpack item and returns them in backpack order.
func (inv *Inventory) DiscardBackpack() []*Item {
	ids := inv.backpack.Clear()
	out := make([]*Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, inv.arena[id])
		delete(inv.arena, id)
	}
	return out
}

// Equipped returns the equipped items in slot order.
func (inv *Inventory) Equipped() []*Item {
	var out []*Item
	for _, s := range inv.equipment.Occupied() {
		out = append(out, inv.arena[inv.equipment[s]])
	}
	return out
}

// Totals sums the modifiers of every equipped item.
func (inv *Inventory) Totals() stats.Modifiers {
	var total stats.Modifiers
	for _, it := range inv.Equipped() {
		total = total.Add(it.Modifiers())
	}
	return total
}

// GrantedAbilities returns the ability ids of equipped items in slot order, without repeats.
func (inv *Inventory) GrantedAbilities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range inv.Equipped() {
		for _, a := range it.Equipment.Abilities {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	return out
}

// Weapon returns the equipped weapon's data, or nil when unarmed.
func (inv *Inventory) Weapon() *EquipmentData {
	if it, ok := inv.EquippedIn(SlotWeapon); ok {
		return it.Equipment
	}
	return nil
}

// Loadout is a named snapshot of equipment.
type Loadout struct {
	Name  string
	Slots Equipment
}

// SaveLoadout records the current equipment under name, replacing any existing snapshot.
func (inv *Inventory) SaveLoadout(name string) Loadout {
	lo := Loadout{Name: name, Slots: inv.equipment.Clone()}
	inv.loadouts[name] = lo
	return lo
}

// Loadouts returns the saved loadout names sorted.
func (inv *Inventory) Loadouts() []string {
	names := make([]string, 0, len(inv.loadouts))
	for n := range inv.loadouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ApplyLoadout re-equips the snapshot saved as name as a sequence of ownership
// transfers. Items taken from the stash pass through the backpack.
//
// Precondition: every item in the snapshot is still owned.
// Postcondition: on error the inventory invariant still holds, though some slots may
// already have changed.
func (inv *Inventory) ApplyLoadout(name string) error {
	lo, ok := inv.loadouts[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLoadout, name)
	}
	for _, s := range AllSlots {
		id := lo.Slots[s]
		if id == "" {
			continue
		}
		it, ok := inv.arena[id]
		if !ok {
			return fmt.Errorf("%w: loadout %q references %q", ErrItemNotFound, name, id)
		}
		if it.Equipment == nil || !s.Accepts(it.Equipment.Slot) {
			return fmt.Errorf("%w: loadout %q puts %q in %s", ErrSlotMismatch, name, id, s)
		}
	}

	for _, s := range AllSlots {
		want := lo.Slots[s]
		cur := inv.equipment[s]
		if want == cur {
			continue
		}
		if cur != "" {
			if err := inv.Unequip(s); err != nil {
				return err
			}
		}
		if want == "" {
			continue
		}
		switch inv.Locate(want) {
		case Equipped:
			from, _ := inv.equipment.SlotOf(want)
			if err := inv.Unequip(from); err != nil {
				return err
			}
		case InStash:
			if err := inv.TakeFromStash(want); err != nil {
				return err
			}
		}
		if err := inv.Equip(want, s); err != nil {
			return err
		}
	}
	return nil
}

// Check verifies the single-location invariant and returns the first violation.
func (inv *Inventory) Check() error {
	seen := make(map[string]Location)
	note := func(id string, loc Location) error {
		if _, ok := inv.arena[id]; !ok {
			return fmt.Errorf("inventory: %s holds unowned id %q", loc, id)
		}
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("inventory: %q is in both %s and %s", id, prev, loc)
		}
		seen[id] = loc
		return nil
	}
	for _, s := range inv.equipment.Occupied() {
		if err := note(inv.equipment[s], Equipped); err != nil {
			return err
		}
	}
	for _, id := range inv.backpack.IDs() {
		if err := note(id, InBackpack); err != nil {
			return err
		}
	}
	for _, id := range inv.stash.IDs() {
		if err := note(id, InStash); err != nil {
			return err
		}
	}
	if len(seen) != len(inv.arena) {
		return fmt.Errorf("inventory: %d owned items but %d placed", len(inv.arena), len(seen))
	}
	return nil
}
