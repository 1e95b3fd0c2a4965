package gamestate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lox/idleplanner/internal/ids"
)

// SellPolicy decides which items a sell interaction liquidates. The zero
// value sells everything; SellExcept protects a keep set (typically the
// inputs of a planned consumer).
type SellPolicy struct {
	keep map[ids.ItemID]struct{}
}

// SellAll returns the policy that liquidates every stack.
func SellAll() SellPolicy { return SellPolicy{} }

// SellExcept returns a policy protecting the given items.
func SellExcept(items ...ids.ItemID) SellPolicy {
	if len(items) == 0 {
		return SellPolicy{}
	}
	keep := make(map[ids.ItemID]struct{}, len(items))
	for _, item := range items {
		keep[item] = struct{}{}
	}
	return SellPolicy{keep: keep}
}

// Keeps reports whether the policy protects an item from sale.
func (p SellPolicy) Keeps(item ids.ItemID) bool {
	_, ok := p.keep[item]
	return ok
}

// Label renders the policy for plan output.
func (p SellPolicy) Label() string {
	if len(p.keep) == 0 {
		return "sell all"
	}
	kept := make([]string, 0, len(p.keep))
	for item := range p.keep {
		kept = append(kept, ids.DisplayName(item))
	}
	sort.Strings(kept)
	return "sell all except " + strings.Join(kept, ", ")
}

// Equal reports whether two policies protect the same keep set. Watch
// construction and sell emission within one plan segment must share one
// policy value; Equal compares two such values.
func (p SellPolicy) Equal(o SellPolicy) bool {
	if len(p.keep) != len(o.keep) {
		return false
	}
	for item := range p.keep {
		if _, ok := o.keep[item]; !ok {
			return false
		}
	}
	return true
}

// SellableValue returns the vendor value of everything the policy would
// liquidate from the state's inventory.
func (s State) SellableValue(policy SellPolicy) int {
	total := 0
	for item, qty := range s.inv {
		if policy.Keeps(item) {
			continue
		}
		total += s.reg.SellValue(item) * qty
	}
	return total
}

// EffectiveCurrency is gold plus the liquidation value of the inventory
// under a sell policy; offer affordability is always measured against
// this quantity.
func (s State) EffectiveCurrency(policy SellPolicy) int {
	return s.gold + s.SellableValue(policy)
}

// Interaction is a zero-tick state transformation. Preconditions are
// checked by Available; calling Apply on an unavailable interaction is a
// programmer error and panics.
type Interaction interface {
	Apply(State) State
	Available(State) bool
	Label() string
}

// Switch selects a new activity (and recipe variant).
type Switch struct {
	Action ids.ActionID
	Recipe int
}

// Available reports whether the target action is unlocked.
func (i Switch) Available(s State) bool { return s.Unlocked(i.Action) }

// Apply selects the activity.
func (i Switch) Apply(s State) State {
	if !s.Unlocked(i.Action) {
		panic(fmt.Sprintf("switch to locked action %s", i.Action))
	}
	next := s.clone()
	next.active = i.Action
	next.recipe = i.Recipe
	return next
}

// Label renders the interaction for plan output.
func (i Switch) Label() string { return "switch to " + ids.DisplayName(i.Action) }

// Buy purchases a shop offer with raw gold.
type Buy struct {
	Offer ids.OfferID
}

// Available reports whether the offer exists, its prerequisites hold and
// the raw gold balance covers the cost.
func (i Buy) Available(s State) bool {
	offer := s.reg.Offer(i.Offer)
	if offer == nil || s.gold < offer.Cost {
		return false
	}
	if offer.Skill != "" && offer.RequiresLevel > 0 && s.Level(offer.Skill) < offer.RequiresLevel {
		return false
	}
	if offer.Chain != "" && offer.Tier > 1 && s.ChainTier(offer.Chain) < offer.Tier-1 {
		return false
	}
	return true
}

// Apply performs the purchase.
func (i Buy) Apply(s State) State {
	if !i.Available(s) {
		panic(fmt.Sprintf("buy unavailable offer %s", i.Offer))
	}
	offer := s.reg.Offer(i.Offer)
	next := s.clone()
	next.gold -= offer.Cost
	next.owned = cloneMap(s.owned)
	next.owned[i.Offer]++
	return next
}

// Label renders the interaction for plan output.
func (i Buy) Label() string { return "buy " + ids.DisplayName(i.Offer) }

// Sell liquidates inventory under a policy.
type Sell struct {
	Policy SellPolicy
}

// Available reports whether the policy would actually sell anything.
func (i Sell) Available(s State) bool {
	for item, qty := range s.inv {
		if qty > 0 && !i.Policy.Keeps(item) {
			return true
		}
	}
	return false
}

// Apply sells every non-kept stack at vendor price.
func (i Sell) Apply(s State) State {
	if !i.Available(s) {
		panic("sell with nothing to sell")
	}
	next := s.clone()
	next.inv = cloneMap(s.inv)
	for item, qty := range s.inv {
		if i.Policy.Keeps(item) {
			continue
		}
		next.gold += s.reg.SellValue(item) * qty
		delete(next.inv, item)
	}
	return next
}

// Label renders the interaction for plan output.
func (i Sell) Label() string { return i.Policy.Label() }
