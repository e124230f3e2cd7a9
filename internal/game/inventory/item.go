// Package inventory holds items and the single-ownership containers that hold
// them: an arena of items keyed by id, equipment slots, a bounded backpack, the
// stash and saved loadouts.
package inventory

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/dungeon/internal/game/stats"
)

// ItemType is the broad category of an item.
type ItemType string

const (
	TypeEquipment ItemType = "equipment"
	TypeCrafting  ItemType = "crafting"
	TypeKey       ItemType = "key"
)

// Rarity bounds how many affixes an item carries.
type Rarity string

const (
	RarityNormal Rarity = "normal"
	RarityMagic  Rarity = "magic"
	RarityRare   Rarity = "rare"
	RarityUnique Rarity = "unique"
	RaritySet    Rarity = "set"
)

// AllRarities lists every rarity from least to most valuable.
var AllRarities = []Rarity{RarityNormal, RarityMagic, RarityRare, RarityUnique, RaritySet}

// Valid reports whether r is a known rarity.
func (r Rarity) Valid() bool {
	for _, x := range AllRarities {
		if r == x {
			return true
		}
	}
	return false
}

// AffixKind is prefix or suffix.
type AffixKind string

const (
	Prefix AffixKind = "prefix"
	Suffix AffixKind = "suffix"
)

// Affix is one rolled magical modifier on an item.
type Affix struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Kind  AffixKind  `json:"kind"`
	Stat  stats.Stat `json:"stat"`
	Value int        `json:"value"`
}

// EquipmentData describes a wearable item.
type EquipmentData struct {
	Slot     ItemSlot `json:"slot"`
	BaseType string   `json:"base_type"`
	// Class is the weapon class (sword, bow, staff, ...); empty for non-weapons.
	Class      string          `json:"class,omitempty"`
	TwoHanded  bool            `json:"two_handed,omitempty"`
	DamageType string          `json:"damage_type,omitempty"`
	Stats      stats.Modifiers `json:"stats"`
	Abilities  []string        `json:"abilities,omitempty"`
}

var rangedClasses = map[string]bool{"bow": true, "crossbow": true, "wand": true}

// Ranged reports whether the item is a ranged weapon.
func (d *EquipmentData) Ranged() bool { return rangedClasses[d.Class] }

// CraftingData describes a crafting material.
type CraftingData struct {
	Material string `json:"material"`
	Quantity int    `json:"quantity"`
}

// KeyData describes a dungeon key.
type KeyData struct {
	Tier          int      `json:"tier"`
	Theme         string   `json:"theme"`
	Modifiers     []string `json:"modifiers,omitempty"`
	UsesRemaining int      `json:"uses_remaining"`
}

// Item is one concrete generated item.
//
// Invariant: exactly the data block matching Type is set; normal items carry no affixes.
type Item struct {
	ID         string         `json:"id"`
	TemplateID string         `json:"template_id"`
	Name       string         `json:"name"`
	Type       ItemType       `json:"type"`
	Rarity     Rarity         `json:"rarity"`
	Level      int            `json:"level"`
	Equipment  *EquipmentData `json:"equipment,omitempty"`
	Crafting   *CraftingData  `json:"crafting,omitempty"`
	Key        *KeyData       `json:"key,omitempty"`
	Affixes    []Affix        `json:"affixes,omitempty"`
}

// Modifiers returns the item's inherent stats plus every affix.
// Non-equipment items contribute nothing.
func (it *Item) Modifiers() stats.Modifiers {
	if it.Equipment == nil {
		return stats.Modifiers{}
	}
	total := it.Equipment.Stats
	for _, a := range it.Affixes {
		if m, err := total.With(a.Stat, a.Value); err == nil {
			total = m
		}
	}
	return total
}

// Validate checks the item's structural invariants.
func (it *Item) Validate() error {
	var errs []error
	if it.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if !it.Rarity.Valid() {
		errs = append(errs, fmt.Errorf("unknown rarity %q", it.Rarity))
	}
	if it.Rarity == RarityNormal && len(it.Affixes) > 0 {
		errs = append(errs, fmt.Errorf("normal item carries %d affixes", len(it.Affixes)))
	}
	if it.Level < 1 {
		errs = append(errs, fmt.Errorf("level must be >= 1, got %d", it.Level))
	}
	switch it.Type {
	case TypeEquipment:
		if it.Equipment == nil || it.Crafting != nil || it.Key != nil {
			errs = append(errs, errors.New("equipment item must carry only equipment data"))
		}
	case TypeCrafting:
		if it.Crafting == nil || it.Equipment != nil || it.Key != nil {
			errs = append(errs, errors.New("crafting item must carry only crafting data"))
		}
	case TypeKey:
		if it.Key == nil || it.Equipment != nil || it.Crafting != nil {
			errs = append(errs, errors.New("key item must carry only key data"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown item type %q", it.Type))
	}
	for _, a := range it.Affixes {
		if !a.Stat.Valid() {
			errs = append(errs, fmt.Errorf("affix %q has unknown stat %q", a.ID, a.Stat))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q invalid: %v", it.ID, errs)
	}
	return nil
}
