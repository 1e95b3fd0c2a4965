package planner

import (
	"fmt"
	"math"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/ids"
	"github.com/lox/idleplanner/internal/rates"
)

// WaitCondition is a stop predicate over a running activity. Estimates
// are expectations under the supplied rates: zero only for an already
// satisfied condition, infinite when the rates make progress toward the
// condition impossible.
type WaitCondition interface {
	Satisfied(s gamestate.State) bool
	EstimateTicks(s gamestate.State, r rates.Rates) float64
	Label() string
}

// estimate converts a remaining quantity and its rate into an expected
// tick count: 0 when done, +Inf on zero rate, otherwise at least one
// whole tick.
func estimate(remaining, rate float64) float64 {
	if remaining <= 0 {
		return 0
	}
	if rate <= 0 {
		return math.Inf(1)
	}
	return math.Max(1, math.Ceil(remaining/rate))
}

// UntilSkillXP waits for a skill to reach an xp threshold.
type UntilSkillXP struct {
	Skill    ids.SkillID
	TargetXP float64
}

// Satisfied implements WaitCondition.
func (c UntilSkillXP) Satisfied(s gamestate.State) bool { return s.XP(c.Skill) >= c.TargetXP }

// EstimateTicks implements WaitCondition.
func (c UntilSkillXP) EstimateTicks(s gamestate.State, r rates.Rates) float64 {
	return estimate(c.TargetXP-s.XP(c.Skill), r.XP(c.Skill))
}

// Label implements WaitCondition.
func (c UntilSkillXP) Label() string {
	return fmt.Sprintf("%s xp %.0f", ids.DisplayName(c.Skill), c.TargetXP)
}

// UntilEffectiveCurrency waits for gold plus liquidation value under a
// sell policy to reach a target.
type UntilEffectiveCurrency struct {
	Target int
	Policy gamestate.SellPolicy
}

// Satisfied implements WaitCondition.
func (c UntilEffectiveCurrency) Satisfied(s gamestate.State) bool {
	return s.EffectiveCurrency(c.Policy) >= c.Target
}

// EstimateTicks implements WaitCondition.
func (c UntilEffectiveCurrency) EstimateTicks(s gamestate.State, r rates.Rates) float64 {
	return estimate(float64(c.Target-s.EffectiveCurrency(c.Policy)), effectiveRate(s, r, c.Policy))
}

// Label implements WaitCondition.
func (c UntilEffectiveCurrency) Label() string {
	return fmt.Sprintf("%d effective gold", c.Target)
}

// effectiveRate is the per-tick growth of effective currency: raw
// currency plus the vendor value of non-kept production, minus the
// vendor value of non-kept consumption.
func effectiveRate(s gamestate.State, r rates.Rates, policy gamestate.SellPolicy) float64 {
	reg := s.Registry()
	rate := r.CurrencyPerTick
	for item, perTick := range r.ItemsProduced {
		if !policy.Keeps(item) {
			rate += perTick * float64(reg.SellValue(item))
		}
	}
	for item, perTick := range r.ItemsConsumed {
		if !policy.Keeps(item) {
			rate -= perTick * float64(reg.SellValue(item))
		}
	}
	return rate
}

// UntilMasteryXP waits for one action's mastery xp threshold. The
// estimate assumes the supplied rates belong to that action.
type UntilMasteryXP struct {
	Action   ids.ActionID
	TargetXP float64
}

// Satisfied implements WaitCondition.
func (c UntilMasteryXP) Satisfied(s gamestate.State) bool {
	return s.MasteryXP(c.Action) >= c.TargetXP
}

// EstimateTicks implements WaitCondition.
func (c UntilMasteryXP) EstimateTicks(s gamestate.State, r rates.Rates) float64 {
	return estimate(c.TargetXP-s.MasteryXP(c.Action), r.MasteryXPPerTick)
}

// Label implements WaitCondition.
func (c UntilMasteryXP) Label() string {
	return fmt.Sprintf("%s mastery %.0f", ids.DisplayName(c.Action), c.TargetXP)
}

// UntilInventoryAtLeast waits for a stack to reach a count.
type UntilInventoryAtLeast struct {
	Item  ids.ItemID
	Count int
}

// Satisfied implements WaitCondition.
func (c UntilInventoryAtLeast) Satisfied(s gamestate.State) bool {
	return s.Item(c.Item) >= c.Count
}

// EstimateTicks implements WaitCondition.
func (c UntilInventoryAtLeast) EstimateTicks(s gamestate.State, r rates.Rates) float64 {
	net := r.ItemsProduced[c.Item] - r.ItemsConsumed[c.Item]
	return estimate(float64(c.Count-s.Item(c.Item)), net)
}

// Label implements WaitCondition.
func (c UntilInventoryAtLeast) Label() string {
	return fmt.Sprintf("%d %s banked", c.Count, ids.DisplayName(c.Item))
}

// UntilInventoryDelta waits for a stack to move by a delta from the
// count captured at construction.
type UntilInventoryDelta struct {
	Item  ids.ItemID
	Base  int
	Delta int
}

// NewUntilInventoryDelta captures the current count as the baseline.
func NewUntilInventoryDelta(s gamestate.State, item ids.ItemID, delta int) UntilInventoryDelta {
	return UntilInventoryDelta{Item: item, Base: s.Item(item), Delta: delta}
}

// Satisfied implements WaitCondition.
func (c UntilInventoryDelta) Satisfied(s gamestate.State) bool {
	moved := s.Item(c.Item) - c.Base
	if c.Delta >= 0 {
		return moved >= c.Delta
	}
	return moved <= c.Delta
}

// EstimateTicks implements WaitCondition.
func (c UntilInventoryDelta) EstimateTicks(s gamestate.State, r rates.Rates) float64 {
	net := r.ItemsProduced[c.Item] - r.ItemsConsumed[c.Item]
	moved := s.Item(c.Item) - c.Base
	if c.Delta >= 0 {
		return estimate(float64(c.Delta-moved), net)
	}
	return estimate(float64(moved-c.Delta), -net)
}

// Label implements WaitCondition.
func (c UntilInventoryDelta) Label() string {
	return fmt.Sprintf("%s %+d", ids.DisplayName(c.Item), c.Delta)
}

// UntilInventoryFull waits for the bank to hit capacity.
type UntilInventoryFull struct{}

// Satisfied implements WaitCondition.
func (c UntilInventoryFull) Satisfied(s gamestate.State) bool { return s.InventoryFull() }

// EstimateTicks implements WaitCondition.
func (c UntilInventoryFull) EstimateTicks(s gamestate.State, r rates.Rates) float64 {
	return estimate(float64(s.Capacity()-s.TotalItems()), netFillRate(r))
}

// Label implements WaitCondition.
func (c UntilInventoryFull) Label() string { return "inventory full" }

// UntilInventoryFraction waits for the bank to hit a capacity fraction.
type UntilInventoryFraction struct {
	Fraction float64
}

// Satisfied implements WaitCondition.
func (c UntilInventoryFraction) Satisfied(s gamestate.State) bool {
	return float64(s.TotalItems()) >= c.Fraction*float64(s.Capacity())
}

// EstimateTicks implements WaitCondition.
func (c UntilInventoryFraction) EstimateTicks(s gamestate.State, r rates.Rates) float64 {
	target := c.Fraction * float64(s.Capacity())
	return estimate(target-float64(s.TotalItems()), netFillRate(r))
}

// Label implements WaitCondition.
func (c UntilInventoryFraction) Label() string {
	return fmt.Sprintf("inventory %.0f%% full", c.Fraction*100)
}

func netFillRate(r rates.Rates) float64 {
	net := 0.0
	for _, perTick := range r.ItemsProduced {
		net += perTick
	}
	for _, perTick := range r.ItemsConsumed {
		net -= perTick
	}
	return net
}

// UntilInputsDepleted waits until an action can no longer run another
// attempt from stock.
type UntilInputsDepleted struct {
	Action ids.ActionID
	Recipe int
}

// Satisfied implements WaitCondition.
func (c UntilInputsDepleted) Satisfied(s gamestate.State) bool {
	a := s.Registry().Action(c.Action)
	if a == nil || !a.Consuming() {
		return false
	}
	for _, in := range a.Variant(c.Recipe).Inputs {
		if s.Item(in.Item) < in.Quantity {
			return true
		}
	}
	return false
}

// EstimateTicks implements WaitCondition.
func (c UntilInputsDepleted) EstimateTicks(s gamestate.State, r rates.Rates) float64 {
	if c.Satisfied(s) {
		return 0
	}
	a := s.Registry().Action(c.Action)
	soonest := math.Inf(1)
	for _, in := range a.Variant(c.Recipe).Inputs {
		rate := r.ItemsConsumed[in.Item] - r.ItemsProduced[in.Item]
		if rate <= 0 {
			continue
		}
		ticks := math.Max(1, math.Ceil(float64(s.Item(in.Item))/rate))
		soonest = math.Min(soonest, ticks)
	}
	return soonest
}

// Label implements WaitCondition.
func (c UntilInputsDepleted) Label() string {
	return ids.DisplayName(c.Action) + " inputs depleted"
}

// UntilInputsAvailable waits until an action has at least MinInputs
// whole attempts of inputs banked.
type UntilInputsAvailable struct {
	Action    ids.ActionID
	Recipe    int
	MinInputs int
}

// Satisfied implements WaitCondition.
func (c UntilInputsAvailable) Satisfied(s gamestate.State) bool {
	a := s.Registry().Action(c.Action)
	if a == nil || !a.Consuming() {
		return true
	}
	for _, in := range a.Variant(c.Recipe).Inputs {
		if s.Item(in.Item) < in.Quantity*c.MinInputs {
			return false
		}
	}
	return true
}

// EstimateTicks implements WaitCondition.
func (c UntilInputsAvailable) EstimateTicks(s gamestate.State, r rates.Rates) float64 {
	if c.Satisfied(s) {
		return 0
	}
	a := s.Registry().Action(c.Action)
	worst := 0.0
	for _, in := range a.Variant(c.Recipe).Inputs {
		need := in.Quantity*c.MinInputs - s.Item(in.Item)
		if need <= 0 {
			continue
		}
		net := r.ItemsProduced[in.Item] - r.ItemsConsumed[in.Item]
		worst = math.Max(worst, estimate(float64(need), net))
	}
	return worst
}

// Label implements WaitCondition.
func (c UntilInputsAvailable) Label() string {
	return fmt.Sprintf("%d runs of %s stocked", c.MinInputs, ids.DisplayName(c.Action))
}

// UntilExpectedDeath waits out the expected-death horizon of an
// hp-losing activity.
type UntilExpectedDeath struct{}

// Satisfied implements WaitCondition.
func (c UntilExpectedDeath) Satisfied(s gamestate.State) bool { return s.HP() <= 0 }

// EstimateTicks implements WaitCondition.
func (c UntilExpectedDeath) EstimateTicks(s gamestate.State, r rates.Rates) float64 {
	return estimate(float64(s.HP()), r.HPLossPerTick)
}

// Label implements WaitCondition.
func (c UntilExpectedDeath) Label() string { return "expected death" }

// UntilGoal waits for the overall goal.
type UntilGoal struct {
	Goal Goal
}

// Satisfied implements WaitCondition.
func (c UntilGoal) Satisfied(s gamestate.State) bool { return c.Goal.Satisfied(s) }

// EstimateTicks implements WaitCondition.
func (c UntilGoal) EstimateTicks(s gamestate.State, r rates.Rates) float64 {
	return estimate(c.Goal.Remaining(s), c.Goal.ProgressPerTick(r))
}

// Label implements WaitCondition.
func (c UntilGoal) Label() string { return c.Goal.Label() }

// AnyOf fires when any sub-condition fires.
type AnyOf struct {
	Conds []WaitCondition
}

// Satisfied implements WaitCondition.
func (c AnyOf) Satisfied(s gamestate.State) bool {
	for _, sub := range c.Conds {
		if sub.Satisfied(s) {
			return true
		}
	}
	return false
}

// EstimateTicks implements WaitCondition.
func (c AnyOf) EstimateTicks(s gamestate.State, r rates.Rates) float64 {
	_, ticks := c.Tightest(s, r)
	return ticks
}

// Tightest returns the sub-condition expected to fire first and its
// estimate. Ties resolve to the earliest listed condition, keeping the
// choice deterministic.
func (c AnyOf) Tightest(s gamestate.State, r rates.Rates) (WaitCondition, float64) {
	var best WaitCondition
	bestTicks := math.Inf(1)
	for _, sub := range c.Conds {
		ticks := sub.EstimateTicks(s, r)
		if best == nil || ticks < bestTicks {
			best, bestTicks = sub, ticks
		}
	}
	if best == nil {
		return nil, math.Inf(1)
	}
	return best, bestTicks
}

// Label implements WaitCondition.
func (c AnyOf) Label() string {
	if len(c.Conds) == 0 {
		return "never"
	}
	label := c.Conds[0].Label()
	for _, sub := range c.Conds[1:] {
		label += " | " + sub.Label()
	}
	return label
}
