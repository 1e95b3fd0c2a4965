// Package registry holds the frozen, read-only view of the game's static
// data: actions, items, shop offers and the skill xp table. A Registry is
// built once by the orchestrator (from HCL realm files or the bundled
// fixture realm) and shared by any number of concurrent solver runs.
package registry

import (
	"fmt"
	"sort"

	"github.com/lox/idleplanner/internal/ids"
)

// MasteryCategory selects the mastery xp rate family for an action. The
// per-category rate lives in the rate model, not here.
type MasteryCategory string

const (
	MasteryStandard MasteryCategory = "standard"
	MasteryBurn     MasteryCategory = "burn"
	MasteryCook     MasteryCategory = "cook"
	MasteryArtisan  MasteryCategory = "artisan"
)

// Input is an item requirement consumed per completed action.
type Input struct {
	Item     ids.ItemID
	Quantity int
}

// Output is an item produced per completed action.
type Output struct {
	Item     ids.ItemID
	Quantity int
}

// DropEntry is one weighted row of an action's drop table. A single roll
// happens per completed action; the empty-item row models "no drop".
type DropEntry struct {
	Item     ids.ItemID
	Quantity int
	Weight   int
}

// Variant is one recipe of an action. Every action has at least one;
// consuming actions may expose several (selected by the state's recipe
// index).
type Variant struct {
	Inputs  []Input
	Outputs []Output
	XP      float64
}

// Action is a single activity the player can select. Durations are in
// ticks; MinTicks == MaxTicks for fixed-duration actions, otherwise the
// duration is uniform over [MinTicks, MaxTicks].
type Action struct {
	ID          ids.ActionID
	Skill       ids.SkillID
	UnlockLevel int

	MinTicks int
	MaxTicks int

	// Currency awarded per completed action, before success scaling.
	Currency int

	// Drops is rolled once per completed action.
	Drops []DropEntry

	// Variants holds the action's recipes. Index 0 is the default.
	Variants []Variant

	// Success/failure parameters for pickpocket-style actions. A zero
	// Perception means the action always succeeds.
	Perception int
	MaxGold    int
	StunTicks  int
	MaxHit     int

	Mastery MasteryCategory

	// ToolChain, when set, names the upgrade chain whose owned tiers
	// scale this action's duration.
	ToolChain string

	// RequiresOffer gates the action behind an owned shop offer in
	// addition to the unlock level.
	RequiresOffer ids.OfferID
}

// Consuming reports whether the action requires input items. Variants of
// one action either all consume or none do.
func (a *Action) Consuming() bool {
	return len(a.Variants) > 0 && len(a.Variants[0].Inputs) > 0
}

// Variant returns the recipe at index i, clamped to the valid range.
func (a *Action) Variant(i int) *Variant {
	if i < 0 || i >= len(a.Variants) {
		i = 0
	}
	return &a.Variants[i]
}

// Stochastic reports whether the action has success/failure semantics.
func (a *Action) Stochastic() bool { return a.Perception > 0 }

// MeanTicks is the expected duration of one attempt ignoring modifiers.
func (a *Action) MeanTicks() float64 {
	return (float64(a.MinTicks) + float64(a.MaxTicks)) / 2
}

func (a *Action) validate(r *Registry) error {
	if a.MinTicks <= 0 || a.MaxTicks < a.MinTicks {
		return fmt.Errorf("action %s: invalid duration range [%d,%d]", a.ID, a.MinTicks, a.MaxTicks)
	}
	if len(a.Variants) == 0 {
		return fmt.Errorf("action %s: no variants", a.ID)
	}
	for _, v := range a.Variants {
		for _, in := range v.Inputs {
			if in.Quantity <= 0 {
				return fmt.Errorf("action %s: non-positive input quantity for %s", a.ID, in.Item)
			}
			if _, ok := r.items[in.Item]; !ok {
				return fmt.Errorf("action %s: unknown input item %s", a.ID, in.Item)
			}
		}
		for _, out := range v.Outputs {
			if out.Quantity <= 0 {
				return fmt.Errorf("action %s: non-positive output quantity for %s", a.ID, out.Item)
			}
			if _, ok := r.items[out.Item]; !ok {
				return fmt.Errorf("action %s: unknown output item %s", a.ID, out.Item)
			}
		}
	}
	for _, d := range a.Drops {
		if d.Weight <= 0 {
			return fmt.Errorf("action %s: non-positive drop weight", a.ID)
		}
		if d.Item != "" {
			if _, ok := r.items[d.Item]; !ok {
				return fmt.Errorf("action %s: unknown drop item %s", a.ID, d.Item)
			}
		}
	}
	if a.Stochastic() && a.MaxGold <= 0 {
		return fmt.Errorf("action %s: stochastic action with no gold ceiling", a.ID)
	}
	return nil
}

// Item is a bank item definition.
type Item struct {
	ID        ids.ItemID
	SellValue int
	HealValue int
}

// Offer is a shop purchase. Owned counts are tracked per offer id on the
// game state; offers in the same Chain form an upgrade ladder whose
// owned tiers compound.
type Offer struct {
	ID   ids.OfferID
	Cost int

	// Skill scopes the offer's effect; empty means global.
	Skill ids.SkillID

	// Chain groups tiered tools ("axe", "pickaxe"). Tier orders offers
	// within a chain; buying tier n requires owning tier n-1.
	Chain string
	Tier  int

	RequiresLevel int

	// DurationScale multiplies affected action durations; 0.9 means 10%
	// faster. 1.0 (or zero value, normalized at load) means no change.
	DurationScale float64
}

func (o *Offer) validate() error {
	if o.Cost <= 0 {
		return fmt.Errorf("offer %s: non-positive cost %d", o.ID, o.Cost)
	}
	if o.DurationScale < 0 || o.DurationScale > 1 {
		return fmt.Errorf("offer %s: duration scale %v out of range", o.ID, o.DurationScale)
	}
	if o.Chain != "" && o.Tier <= 0 {
		return fmt.Errorf("offer %s: chained offer needs a positive tier", o.ID)
	}
	return nil
}

// Registry is the frozen bundle. All lookup methods are safe for
// concurrent use; callers must treat returned pointers as read-only.
type Registry struct {
	actions map[ids.ActionID]*Action
	items   map[ids.ItemID]*Item
	offers  map[ids.OfferID]*Offer

	skills        []ids.SkillID
	actionsBySkil map[ids.SkillID][]*Action
	offersByChain map[string][]*Offer
	xp            *XPTable
}

// New builds and validates a frozen registry. The input slices are
// copied; mutating them afterwards does not affect the registry.
func New(actions []Action, items []Item, offers []Offer, xp *XPTable) (*Registry, error) {
	if xp == nil {
		return nil, fmt.Errorf("registry: nil xp table")
	}
	r := &Registry{
		actions:       make(map[ids.ActionID]*Action, len(actions)),
		items:         make(map[ids.ItemID]*Item, len(items)),
		offers:        make(map[ids.OfferID]*Offer, len(offers)),
		actionsBySkil: make(map[ids.SkillID][]*Action),
		offersByChain: make(map[string][]*Offer),
		xp:            xp,
	}

	for i := range items {
		it := items[i]
		if _, dup := r.items[it.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate item %s", it.ID)
		}
		if it.SellValue < 0 || it.HealValue < 0 {
			return nil, fmt.Errorf("registry: item %s has negative value", it.ID)
		}
		r.items[it.ID] = &it
	}

	for i := range offers {
		of := offers[i]
		if of.DurationScale == 0 {
			of.DurationScale = 1
		}
		if err := of.validate(); err != nil {
			return nil, fmt.Errorf("registry: %w", err)
		}
		if _, dup := r.offers[of.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate offer %s", of.ID)
		}
		r.offers[of.ID] = &of
		if of.Chain != "" {
			r.offersByChain[of.Chain] = append(r.offersByChain[of.Chain], r.offers[of.ID])
		}
	}
	for chain, tiers := range r.offersByChain {
		sort.Slice(tiers, func(i, j int) bool { return tiers[i].Tier < tiers[j].Tier })
		for i, of := range tiers {
			if of.Tier != i+1 {
				return nil, fmt.Errorf("registry: chain %q tiers not contiguous at %s", chain, of.ID)
			}
		}
	}

	for i := range actions {
		a := actions[i]
		if a.Mastery == "" {
			a.Mastery = MasteryStandard
		}
		if _, dup := r.actions[a.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate action %s", a.ID)
		}
		if got := a.ID.Skill(); got != a.Skill {
			return nil, fmt.Errorf("registry: action %s declares skill %s but id embeds %s", a.ID, a.Skill, got)
		}
		if a.RequiresOffer != "" {
			if _, ok := r.offers[a.RequiresOffer]; !ok {
				return nil, fmt.Errorf("registry: action %s requires unknown offer %s", a.ID, a.RequiresOffer)
			}
		}
		if err := a.validate(r); err != nil {
			return nil, fmt.Errorf("registry: %w", err)
		}
		r.actions[a.ID] = &a
		r.actionsBySkil[a.Skill] = append(r.actionsBySkil[a.Skill], r.actions[a.ID])
	}

	for skill, acts := range r.actionsBySkil {
		sort.Slice(acts, func(i, j int) bool { return acts[i].ID < acts[j].ID })
		r.skills = append(r.skills, skill)
	}
	sort.Slice(r.skills, func(i, j int) bool { return r.skills[i] < r.skills[j] })
	return r, nil
}

// Action looks up an action; nil if unknown.
func (r *Registry) Action(id ids.ActionID) *Action { return r.actions[id] }

// Item looks up an item; nil if unknown.
func (r *Registry) Item(id ids.ItemID) *Item { return r.items[id] }

// Offer looks up an offer; nil if unknown.
func (r *Registry) Offer(id ids.OfferID) *Offer { return r.offers[id] }

// Skills returns all skills with at least one action, sorted.
func (r *Registry) Skills() []ids.SkillID { return r.skills }

// ActionsForSkill returns the skill's actions sorted by id. The returned
// slice is shared; callers must not mutate it.
func (r *Registry) ActionsForSkill(skill ids.SkillID) []*Action {
	return r.actionsBySkil[skill]
}

// ChainOffers returns the offers of an upgrade chain in tier order.
func (r *Registry) ChainOffers(chain string) []*Offer { return r.offersByChain[chain] }

// Offers returns all offers sorted by id.
func (r *Registry) Offers() []*Offer {
	out := make([]*Offer, 0, len(r.offers))
	for _, of := range r.offers {
		out = append(out, of)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Actions returns all actions sorted by id.
func (r *Registry) Actions() []*Action {
	out := make([]*Action, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Items returns all items sorted by id.
func (r *Registry) Items() []*Item {
	out := make([]*Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SellValue returns the vendor price of an item, zero for unknown items.
func (r *Registry) SellValue(id ids.ItemID) int {
	if it := r.items[id]; it != nil {
		return it.SellValue
	}
	return 0
}

// XP returns the skill xp table.
func (r *Registry) XP() *XPTable { return r.xp }
