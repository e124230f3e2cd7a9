package loot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/dice"
	"github.com/cory-johannsen/dungeon/internal/game/inventory"
)

// Config holds the tunable generation rules.
type Config struct {
	// EquipmentChance, MaterialChance and KeyChance weight each loot roll's category.
	EquipmentChance float64
	MaterialChance  float64
	KeyChance       float64
	Rarities        map[inventory.Rarity]RarityConfig
	KeyThemes       []string
	KeyUses         int
}

// DefaultConfig returns the reference generation rules.
func DefaultConfig() Config {
	return Config{
		EquipmentChance: 0.7,
		MaterialChance:  0.2,
		KeyChance:       0.1,
		Rarities:        DefaultRarities(),
		KeyThemes:       []string{"crypt", "forge", "grove"},
		KeyUses:         1,
	}
}

// Validate checks that the category weights are usable.
func (c Config) Validate() error {
	var errs []error
	if c.EquipmentChance < 0 || c.MaterialChance < 0 || c.KeyChance < 0 {
		errs = append(errs, errors.New("category chances must be >= 0"))
	}
	if c.EquipmentChance+c.MaterialChance+c.KeyChance <= 0 {
		errs = append(errs, errors.New("category chances must not all be zero"))
	}
	for _, r := range inventory.AllRarities {
		rc, ok := c.Rarities[r]
		if !ok {
			errs = append(errs, fmt.Errorf("missing rarity config for %q", r))
			continue
		}
		if rc.MinAffixes < 0 || rc.MinAffixes > rc.MaxAffixes {
			errs = append(errs, fmt.Errorf("rarity %q: bad affix bounds [%d,%d]", r, rc.MinAffixes, rc.MaxAffixes))
		}
	}
	if c.Rarities[inventory.RarityNormal].MaxAffixes != 0 {
		errs = append(errs, errors.New("normal rarity must carry zero affixes"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("loot config invalid: %v", errs)
	}
	return nil
}

// Generator builds items from templates and the affix pool.
//
// Invariant: every random draw goes through src.
type Generator struct {
	equipment []*inventory.Template
	materials []*inventory.Template
	affixes   []*AffixDef
	cfg       Config
	src       dice.Source
	logger    *zap.Logger
	newID     func() string
}

// NewGenerator creates a Generator over templates (equipment and crafting) and affixes.
//
// Precondition: src and logger must not be nil.
// Postcondition: returns an error when cfg is invalid.
func NewGenerator(templates []*inventory.Template, affixes []*AffixDef, cfg Config, src dice.Source, logger *zap.Logger) (*Generator, error) {
	if cfg.Rarities == nil {
		cfg.Rarities = DefaultRarities()
	}
	if cfg.KeyUses < 1 {
		cfg.KeyUses = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{affixes: affixes, cfg: cfg, src: src, logger: logger, newID: uuid.NewString}
	for _, t := range templates {
		switch t.Type {
		case inventory.TypeEquipment:
			g.equipment = append(g.equipment, t)
		case inventory.TypeCrafting:
			g.materials = append(g.materials, t)
		}
	}
	return g, nil
}

// GenerateRandomItem builds one equipment item for tier with a rolled rarity.
//
// Postcondition: Level == tier; the affix count lies within the rarity's bounds.
func (g *Generator) GenerateRandomItem(tier int) (*inventory.Item, error) {
	rarity, err := RollRarity(tier, g.src)
	if err != nil {
		return nil, err
	}
	return g.GenerateItem(tier, rarity)
}

// GenerateItem builds one equipment item for tier at a fixed rarity.
//
// Postcondition: returns ErrNoEligibleTemplate when no equipment template has
// min_dungeon_tier <= tier, and ErrAffixPoolExhausted when the pool is too small.
func (g *Generator) GenerateItem(tier int, rarity inventory.Rarity) (*inventory.Item, error) {
	if tier < 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, tier)
	}
	rc, ok := g.cfg.Rarities[rarity]
	if !ok {
		return nil, fmt.Errorf("loot: unknown rarity %q", rarity)
	}
	t, err := pickTemplate(g.equipment, tier, g.src)
	if err != nil {
		return nil, fmt.Errorf("%w: equipment at tier %d", err, tier)
	}
	n := dice.Between(g.src, rc.MinAffixes, rc.MaxAffixes)
	affixes, err := drawAffixes(g.affixes, t.Slot, tier, n, g.src)
	if err != nil {
		return nil, err
	}
	it := g.equipmentItem(t, tier, rarity, affixes)
	g.logger.Debug("generated item",
		zap.String("item", it.ID), zap.String("template", t.ID),
		zap.String("rarity", string(rarity)), zap.Int("tier", tier), zap.Int("affixes", len(affixes)))
	return it, nil
}

// FromTemplate builds a normal-rarity equipment item from the named template.
//
// Postcondition: returns ErrNoEligibleTemplate when templateID names no equipment template.
func (g *Generator) FromTemplate(templateID string, tier int) (*inventory.Item, error) {
	if tier < 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, tier)
	}
	for _, t := range g.equipment {
		if t.ID == templateID {
			return g.equipmentItem(t, tier, inventory.RarityNormal, nil), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoEligibleTemplate, templateID)
}

func (g *Generator) equipmentItem(t *inventory.Template, tier int, rarity inventory.Rarity, affixes []inventory.Affix) *inventory.Item {
	return &inventory.Item{
		ID:         g.newID(),
		TemplateID: t.ID,
		Name:       displayName(t.Name, affixes),
		Type:       inventory.TypeEquipment,
		Rarity:     rarity,
		Level:      tier,
		Equipment: &inventory.EquipmentData{
			Slot:       t.Slot,
			BaseType:   t.BaseType,
			Class:      t.Class,
			TwoHanded:  t.TwoHanded,
			DamageType: t.DamageType,
			Stats:      t.Stats.Scale(TierMultiplier(tier)),
			Abilities:  append([]string(nil), t.Abilities...),
		},
		Affixes: affixes,
	}
}

// GenerateMaterial builds one crafting material for tier.
func (g *Generator) GenerateMaterial(tier int) (*inventory.Item, error) {
	if tier < 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, tier)
	}
	t, err := pickTemplate(g.materials, tier, g.src)
	if err != nil {
		return nil, fmt.Errorf("%w: material at tier %d", err, tier)
	}
	return &inventory.Item{
		ID:         g.newID(),
		TemplateID: t.ID,
		Name:       t.Name,
		Type:       inventory.TypeCrafting,
		Rarity:     inventory.RarityNormal,
		Level:      tier,
		Crafting:   &inventory.CraftingData{Material: t.Material, Quantity: max(1, scaleInt(t.Quantity, tier))},
	}, nil
}

// GenerateKey builds a dungeon key dropped at tier that opens a tier+1 dungeon.
func (g *Generator) GenerateKey(tier int) (*inventory.Item, error) {
	if tier < 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTier, tier)
	}
	theme := "unmarked"
	if len(g.cfg.KeyThemes) > 0 {
		theme = g.cfg.KeyThemes[g.src.Intn(len(g.cfg.KeyThemes))]
	}
	return &inventory.Item{
		ID:         g.newID(),
		TemplateID: "dungeon_key",
		Name:       fmt.Sprintf("Tier %d %s Key", tier+1, titleCase(theme)),
		Type:       inventory.TypeKey,
		Rarity:     inventory.RarityNormal,
		Level:      tier,
		Key:        &inventory.KeyData{Tier: tier + 1, Theme: theme, UsesRemaining: g.cfg.KeyUses},
	}, nil
}

// pickTemplate draws a template with MinDungeonTier <= tier, weighted by drop weight.
func pickTemplate(ts []*inventory.Template, tier int, src dice.Source) (*inventory.Template, error) {
	var eligible []*inventory.Template
	var weights []int
	for _, t := range ts {
		if t.MinDungeonTier <= tier {
			eligible = append(eligible, t)
			weights = append(weights, t.DropWeight)
		}
	}
	i := pickWeighted(weights, src)
	if i < 0 {
		return nil, ErrNoEligibleTemplate
	}
	return eligible[i], nil
}

// displayName composes first prefix, base name and first suffix.
func displayName(base string, affixes []inventory.Affix) string {
	var prefix, suffix string
	for _, a := range affixes {
		if a.Kind == inventory.Prefix && prefix == "" {
			prefix = a.Name
		}
		if a.Kind == inventory.Suffix && suffix == "" {
			suffix = a.Name
		}
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, base, suffix} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
