package inventory_test

import (
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeon/internal/game/inventory"
)

func TestTemplate_Validate(t *testing.T) {
	ok := &inventory.Template{ID: "cap", Name: "Cap", Type: inventory.TypeEquipment, Slot: inventory.ItemSlotHelmet, MinDungeonTier: 1, DropWeight: 1}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := []*inventory.Template{
		{Name: "x", Type: inventory.TypeEquipment, Slot: inventory.ItemSlotHelmet, MinDungeonTier: 1, DropWeight: 1},
		{ID: "x", Name: "x", Type: inventory.TypeEquipment, Slot: "tail", MinDungeonTier: 1, DropWeight: 1},
		{ID: "x", Name: "x", Type: inventory.TypeEquipment, Slot: inventory.ItemSlotBoots, TwoHanded: true, MinDungeonTier: 1, DropWeight: 1},
		{ID: "x", Name: "x", Type: inventory.TypeCrafting, MinDungeonTier: 1, DropWeight: 1},
		{ID: "x", Name: "x", Type: inventory.TypeKey, MinDungeonTier: 1, DropWeight: 1},
		{ID: "x", Name: "x", Type: inventory.TypeEquipment, Slot: inventory.ItemSlotRing, MinDungeonTier: 0, DropWeight: 1},
		{ID: "x", Name: "x", Type: inventory.TypeEquipment, Slot: inventory.ItemSlotRing, MinDungeonTier: 1, DropWeight: 0},
	}
	for i, tmpl := range bad {
		if err := tmpl.Validate(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestLoadTemplates_RejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	body := "templates:\n  - {id: a, name: A, type: crafting, material: iron, min_dungeon_tier: 1, drop_weight: 1}\n"
	for _, name := range []string{"one.yaml", "two.yml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := inventory.LoadTemplates(dir); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestLoadTemplates_ShippedContent(t *testing.T) {
	templates, err := inventory.LoadTemplates("../../../content/items")
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	bySlot := map[inventory.ItemSlot]int{}
	for _, tmpl := range templates {
		if tmpl.Type == inventory.TypeEquipment {
			bySlot[tmpl.Slot]++
		}
	}
	for _, s := range []inventory.ItemSlot{
		inventory.ItemSlotWeapon, inventory.ItemSlotShield, inventory.ItemSlotHelmet, inventory.ItemSlotChest,
		inventory.ItemSlotGloves, inventory.ItemSlotBoots, inventory.ItemSlotAmulet, inventory.ItemSlotRing,
	} {
		if bySlot[s] == 0 {
			t.Errorf("no template for slot %q", s)
		}
	}
}

func TestPropertySlotsFor_AcceptsOwnKind(t *testing.T) {
	kinds := []inventory.ItemSlot{
		inventory.ItemSlotWeapon, inventory.ItemSlotShield, inventory.ItemSlotHelmet, inventory.ItemSlotChest,
		inventory.ItemSlotGloves, inventory.ItemSlotBoots, inventory.ItemSlotAmulet, inventory.ItemSlotRing,
	}
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.SampledFrom(kinds).Draw(rt, "kind")
		slots := inventory.SlotsFor(k)
		if len(slots) == 0 {
			rt.Fatalf("no slots for %q", k)
		}
		for _, s := range slots {
			if !s.Accepts(k) {
				rt.Fatalf("%s does not accept %q", s, k)
			}
		}
	})
}
