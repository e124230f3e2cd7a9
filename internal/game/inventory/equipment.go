package inventory

// ItemSlot is the slot kind an equipment item declares. Rings declare "ring"
// and fit either ring slot.
type ItemSlot string

const (
	ItemSlotWeapon ItemSlot = "weapon"
	ItemSlotShield ItemSlot = "shield"
	ItemSlotHelmet ItemSlot = "helmet"
	ItemSlotChest  ItemSlot = "chest"
	ItemSlotGloves ItemSlot = "gloves"
	ItemSlotBoots  ItemSlot = "boots"
	ItemSlotAmulet ItemSlot = "amulet"
	ItemSlotRing   ItemSlot = "ring"
)

var validItemSlots = map[ItemSlot]bool{
	ItemSlotWeapon: true, ItemSlotShield: true, ItemSlotHelmet: true, ItemSlotChest: true,
	ItemSlotGloves: true, ItemSlotBoots: true, ItemSlotAmulet: true, ItemSlotRing: true,
}

// Valid reports whether s is a known item slot.
func (s ItemSlot) Valid() bool { return validItemSlots[s] }

// Slot identifies one equipment position on a player.
type Slot string

const (
	SlotWeapon Slot = "weapon"
	SlotShield Slot = "shield"
	SlotHelmet Slot = "helmet"
	SlotChest  Slot = "chest"
	SlotGloves Slot = "gloves"
	SlotBoots  Slot = "boots"
	SlotAmulet Slot = "amulet"
	SlotRing1  Slot = "ring1"
	SlotRing2  Slot = "ring2"
)

// AllSlots lists every equipment slot in display order.
var AllSlots = []Slot{SlotWeapon, SlotShield, SlotHelmet, SlotChest, SlotGloves, SlotBoots, SlotAmulet, SlotRing1, SlotRing2}

var slotDisplayNames = map[Slot]string{
	SlotWeapon: "Weapon",
	SlotShield: "Shield",
	SlotHelmet: "Helmet",
	SlotChest:  "Chest",
	SlotGloves: "Gloves",
	SlotBoots:  "Boots",
	SlotAmulet: "Amulet",
	SlotRing1:  "Ring 1",
	SlotRing2:  "Ring 2",
}

// DisplayName returns the human-readable label for s, or s itself if unknown.
func (s Slot) DisplayName() string {
	if label, ok := slotDisplayNames[s]; ok {
		return label
	}
	return string(s)
}

// Accepts reports whether an item declaring kind may occupy s.
func (s Slot) Accepts(kind ItemSlot) bool {
	switch s {
	case SlotRing1, SlotRing2:
		return kind == ItemSlotRing
	default:
		return string(s) == string(kind)
	}
}

// SlotsFor returns the slots an item of kind may occupy, in preference order.
func SlotsFor(kind ItemSlot) []Slot {
	if kind == ItemSlotRing {
		return []Slot{SlotRing1, SlotRing2}
	}
	for _, s := range AllSlots {
		if s.Accepts(kind) {
			return []Slot{s}
		}
	}
	return nil
}

// Equipment maps each slot to the id of the item equipped there.
// An empty slot has no entry.
type Equipment map[Slot]string

// Clone returns an independent copy of e.
func (e Equipment) Clone() Equipment {
	out := make(Equipment, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// SlotOf returns the slot holding id.
func (e Equipment) SlotOf(id string) (Slot, bool) {
	for _, s := range AllSlots {
		if e[s] == id && id != "" {
			return s, true
		}
	}
	return "", false
}

// Occupied returns the filled slots in display order.
func (e Equipment) Occupied() []Slot {
	var out []Slot
	for _, s := range AllSlots {
		if e[s] != "" {
			out = append(out, s)
		}
	}
	return out
}
