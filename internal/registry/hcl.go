package registry

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/idleplanner/internal/ids"
)

// RealmConfig is the HCL surface of a realm data file.
type RealmConfig struct {
	XP      *XPConfig      `hcl:"xp,block"`
	Items   []ItemConfig   `hcl:"item,block"`
	Offers  []OfferConfig  `hcl:"offer,block"`
	Actions []ActionConfig `hcl:"action,block"`
}

// XPConfig selects the xp curve: either an explicit threshold list or
// the standard curve capped at max_level.
type XPConfig struct {
	MaxLevel   int     `hcl:"max_level,optional"`
	Thresholds []int64 `hcl:"thresholds,optional"`
}

// ItemConfig declares an item.
type ItemConfig struct {
	ID   string `hcl:"id,label"`
	Sell int    `hcl:"sell,optional"`
	Heal int    `hcl:"heal,optional"`
}

// OfferConfig declares a shop offer.
type OfferConfig struct {
	ID            string  `hcl:"id,label"`
	Cost          int     `hcl:"cost"`
	Skill         string  `hcl:"skill,optional"`
	Chain         string  `hcl:"chain,optional"`
	Tier          int     `hcl:"tier,optional"`
	RequiresLevel int     `hcl:"requires_level,optional"`
	DurationScale float64 `hcl:"duration_scale,optional"`
}

// ActionConfig declares an action. Ticks may be a single value or a
// [min, max] pair for stochastic durations.
type ActionConfig struct {
	ID            string          `hcl:"id,label"`
	UnlockLevel   int             `hcl:"unlock_level,optional"`
	Ticks         []int           `hcl:"ticks"`
	Currency      int             `hcl:"currency,optional"`
	Mastery       string          `hcl:"mastery,optional"`
	ToolChain     string          `hcl:"tool_chain,optional"`
	RequiresOffer string          `hcl:"requires_offer,optional"`
	Perception    int             `hcl:"perception,optional"`
	MaxGold       int             `hcl:"max_gold,optional"`
	StunTicks     int             `hcl:"stun_ticks,optional"`
	MaxHit        int             `hcl:"max_hit,optional"`
	Variants      []VariantConfig `hcl:"variant,block"`
	Drops         []DropConfig    `hcl:"drop,block"`
}

// VariantConfig declares one recipe of an action.
type VariantConfig struct {
	XP      float64      `hcl:"xp"`
	Inputs  []FlowConfig `hcl:"input,block"`
	Outputs []FlowConfig `hcl:"output,block"`
}

// FlowConfig is a single item quantity in a variant.
type FlowConfig struct {
	Item string `hcl:"item,label"`
	Qty  int    `hcl:"qty,optional"`
}

// DropConfig is one weighted drop-table row.
type DropConfig struct {
	Item   string `hcl:"item,label"`
	Qty    int    `hcl:"qty,optional"`
	Weight int    `hcl:"weight"`
}

// SnapshotConfig is the HCL surface of a saved-game snapshot. It is
// plain data; the orchestrator converts it to an initial game state.
type SnapshotConfig struct {
	Gold      int               `hcl:"gold,optional"`
	HP        int               `hcl:"hp,optional"`
	MaxHP     int               `hcl:"max_hp,optional"`
	Capacity  int               `hcl:"capacity,optional"`
	Active    string            `hcl:"active,optional"`
	Recipe    int               `hcl:"recipe,optional"`
	Skills    []SnapshotSkill   `hcl:"skill,block"`
	Inventory []SnapshotStack   `hcl:"stack,block"`
	Owned     []SnapshotUpgrade `hcl:"owned,block"`
}

// SnapshotSkill is one skill's saved xp.
type SnapshotSkill struct {
	ID string  `hcl:"id,label"`
	XP float64 `hcl:"xp"`
}

// SnapshotStack is one saved inventory stack.
type SnapshotStack struct {
	Item string `hcl:"item,label"`
	Qty  int    `hcl:"qty"`
}

// SnapshotUpgrade is one owned shop offer.
type SnapshotUpgrade struct {
	Offer string `hcl:"offer,label"`
	Count int    `hcl:"count,optional"`
}

// LoadRealm parses a realm HCL file and builds a frozen registry.
func LoadRealm(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read realm file: %w", err)
	}
	return ParseRealm(data, path)
}

// ParseRealm builds a registry from realm HCL source.
func ParseRealm(src []byte, filename string) (*Registry, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse realm: %s", diags.Error())
	}
	var cfg RealmConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decode realm: %s", diags.Error())
	}
	return cfg.Build()
}

// Build converts the parsed config into a validated registry.
func (c *RealmConfig) Build() (*Registry, error) {
	var xp *XPTable
	switch {
	case c.XP == nil:
		xp = StandardTable(99)
	case len(c.XP.Thresholds) > 0:
		var err error
		if xp, err = NewXPTable(c.XP.Thresholds); err != nil {
			return nil, err
		}
	case c.XP.MaxLevel > 0:
		xp = StandardTable(c.XP.MaxLevel)
	default:
		xp = StandardTable(99)
	}

	items := make([]Item, 0, len(c.Items))
	for _, ic := range c.Items {
		id, err := ids.ParseItemID(ic.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{ID: id, SellValue: ic.Sell, HealValue: ic.Heal})
	}

	offers := make([]Offer, 0, len(c.Offers))
	for _, oc := range c.Offers {
		id, err := ids.ParseOfferID(oc.ID)
		if err != nil {
			return nil, err
		}
		var skill ids.SkillID
		if oc.Skill != "" {
			if skill, err = ids.ParseSkillID(oc.Skill); err != nil {
				return nil, err
			}
		}
		offers = append(offers, Offer{
			ID: id, Cost: oc.Cost, Skill: skill,
			Chain: oc.Chain, Tier: oc.Tier,
			RequiresLevel: oc.RequiresLevel,
			DurationScale: oc.DurationScale,
		})
	}

	actions := make([]Action, 0, len(c.Actions))
	for _, ac := range c.Actions {
		a, err := ac.build()
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}

	return New(actions, items, offers, xp)
}

func (ac *ActionConfig) build() (Action, error) {
	id, err := ids.ParseActionID(ac.ID)
	if err != nil {
		return Action{}, err
	}
	var minTicks, maxTicks int
	switch len(ac.Ticks) {
	case 1:
		minTicks, maxTicks = ac.Ticks[0], ac.Ticks[0]
	case 2:
		minTicks, maxTicks = ac.Ticks[0], ac.Ticks[1]
	default:
		return Action{}, fmt.Errorf("action %s: ticks must be [n] or [min, max]", ac.ID)
	}

	a := Action{
		ID: id, Skill: id.Skill(),
		UnlockLevel: max(1, ac.UnlockLevel),
		MinTicks:    minTicks, MaxTicks: maxTicks,
		Currency:   ac.Currency,
		Mastery:    MasteryCategory(ac.Mastery),
		ToolChain:  ac.ToolChain,
		Perception: ac.Perception,
		MaxGold:    ac.MaxGold,
		StunTicks:  ac.StunTicks,
		MaxHit:     ac.MaxHit,
	}
	if ac.RequiresOffer != "" {
		offer, err := ids.ParseOfferID(ac.RequiresOffer)
		if err != nil {
			return Action{}, err
		}
		a.RequiresOffer = offer
	}
	for _, vc := range ac.Variants {
		v := Variant{XP: vc.XP}
		for _, in := range vc.Inputs {
			item, err := ids.ParseItemID(in.Item)
			if err != nil {
				return Action{}, err
			}
			v.Inputs = append(v.Inputs, Input{Item: item, Quantity: max(1, in.Qty)})
		}
		for _, out := range vc.Outputs {
			item, err := ids.ParseItemID(out.Item)
			if err != nil {
				return Action{}, err
			}
			v.Outputs = append(v.Outputs, Output{Item: item, Quantity: max(1, out.Qty)})
		}
		a.Variants = append(a.Variants, v)
	}
	if len(a.Variants) == 0 {
		return Action{}, fmt.Errorf("action %s: at least one variant block required", ac.ID)
	}
	for _, dc := range ac.Drops {
		item, err := ids.ParseItemID(dc.Item)
		if err != nil {
			return Action{}, err
		}
		a.Drops = append(a.Drops, DropEntry{Item: item, Quantity: max(1, dc.Qty), Weight: dc.Weight})
	}
	return a, nil
}

// LoadSnapshot parses a saved-game snapshot HCL file.
func LoadSnapshot(path string) (*SnapshotConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return ParseSnapshot(data, path)
}

// ParseSnapshot parses snapshot HCL source.
func ParseSnapshot(src []byte, filename string) (*SnapshotConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse snapshot: %s", diags.Error())
	}
	var cfg SnapshotConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decode snapshot: %s", diags.Error())
	}
	return &cfg, nil
}
