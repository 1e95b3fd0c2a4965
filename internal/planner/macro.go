package planner

import (
	"fmt"
	"math"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/ids"
	"github.com/lox/idleplanner/internal/rates"
	"github.com/lox/idleplanner/internal/registry"
)

// StopRule is a macro stop in symbolic form; it binds to a concrete
// WaitCondition only at expansion time, once the trained action and the
// state are known.
type StopRule interface {
	Bind(s gamestate.State, trained ids.ActionID) (WaitCondition, bool)
	Label() string
}

// AtNextUnlockBoundary stops at the xp threshold of the skill's next
// locked action. Binds to nothing when the skill has nothing left to
// unlock by leveling.
type AtNextUnlockBoundary struct {
	Skill ids.SkillID
}

// Bind implements StopRule.
func (r AtNextUnlockBoundary) Bind(s gamestate.State, _ ids.ActionID) (WaitCondition, bool) {
	reg := s.Registry()
	level := s.Level(r.Skill)
	nextUnlock := math.MaxInt
	for _, a := range reg.ActionsForSkill(r.Skill) {
		if a.UnlockLevel > level && a.UnlockLevel < nextUnlock {
			nextUnlock = a.UnlockLevel
		}
	}
	if nextUnlock == math.MaxInt {
		return nil, false
	}
	return UntilSkillXP{Skill: r.Skill, TargetXP: float64(reg.XP().XPForLevel(nextUnlock))}, true
}

// Label implements StopRule.
func (r AtNextUnlockBoundary) Label() string {
	return ids.DisplayName(r.Skill) + " unlock boundary"
}

// AtGoalLevel stops at an absolute xp threshold.
type AtGoalLevel struct {
	Skill    ids.SkillID
	TargetXP float64
}

// Bind implements StopRule.
func (r AtGoalLevel) Bind(gamestate.State, ids.ActionID) (WaitCondition, bool) {
	return UntilSkillXP{Skill: r.Skill, TargetXP: r.TargetXP}, true
}

// Label implements StopRule.
func (r AtGoalLevel) Label() string {
	return fmt.Sprintf("%s xp %.0f", ids.DisplayName(r.Skill), r.TargetXP)
}

// WhenOfferAffordable stops when effective currency covers an offer.
type WhenOfferAffordable struct {
	Offer  ids.OfferID
	Cost   int
	Policy gamestate.SellPolicy
}

// Bind implements StopRule.
func (r WhenOfferAffordable) Bind(gamestate.State, ids.ActionID) (WaitCondition, bool) {
	return UntilEffectiveCurrency{Target: r.Cost, Policy: r.Policy}, true
}

// Label implements StopRule.
func (r WhenOfferAffordable) Label() string {
	return ids.DisplayName(r.Offer) + " affordable"
}

// WhenInputsDepleted stops when the trained action runs out of inputs.
type WhenInputsDepleted struct{}

// Bind implements StopRule.
func (r WhenInputsDepleted) Bind(s gamestate.State, trained ids.ActionID) (WaitCondition, bool) {
	a := s.Registry().Action(trained)
	if a == nil || !a.Consuming() {
		return nil, false
	}
	return UntilInputsDepleted{Action: trained}, true
}

// Label implements StopRule.
func (r WhenInputsDepleted) Label() string { return "inputs depleted" }

// Macro is a planning-time primitive that collapses an extended training
// stretch into a single search edge.
type Macro interface {
	Label() string
	macroTag()
}

// TrainSkillUntil trains one skill (optionally a specific action) until
// the primary stop or any watched stop fires.
type TrainSkillUntil struct {
	Skill   ids.SkillID
	Primary StopRule
	Watched []StopRule

	// Action pins the trained action; empty selects the best-rate
	// action at expansion time.
	Action ids.ActionID
}

func (TrainSkillUntil) macroTag() {}

// Label implements Macro.
func (m TrainSkillUntil) Label() string {
	return fmt.Sprintf("train %s until %s", ids.DisplayName(m.Skill), m.Primary.Label())
}

// TrainConsumingSkillUntil trains a consumer skill by explicitly
// modeling its paired producer/consumer cycle.
type TrainConsumingSkillUntil struct {
	Skill   ids.SkillID
	Primary StopRule
	Watched []StopRule
}

func (TrainConsumingSkillUntil) macroTag() {}

// Label implements Macro.
func (m TrainConsumingSkillUntil) Label() string {
	return fmt.Sprintf("cycle %s until %s", ids.DisplayName(m.Skill), m.Primary.Label())
}

// AcquireItem produces an item until the bank holds the quantity more
// than it does now.
type AcquireItem struct {
	Item     ids.ItemID
	Quantity int
}

func (AcquireItem) macroTag() {}

// Label implements Macro.
func (m AcquireItem) Label() string {
	return fmt.Sprintf("acquire %d %s", m.Quantity, ids.DisplayName(m.Item))
}

// EnsureStock tops an item up to an absolute floor; a no-op edge when
// already stocked.
type EnsureStock struct {
	Item     ids.ItemID
	MinTotal int
}

func (EnsureStock) macroTag() {}

// Label implements Macro.
func (m EnsureStock) Label() string {
	return fmt.Sprintf("stock %d %s", m.MinTotal, ids.DisplayName(m.Item))
}

// Expansion is the result of collapsing a macro into one edge.
type Expansion struct {
	State  gamestate.State
	Ticks  int64
	Wait   AnyOf
	Deaths int

	// Switched is the action the macro selected, empty when it kept the
	// current activity.
	Switched ids.ActionID
}

// Expander turns macros into single-edge expansions using expected
// rates.
type Expander struct {
	model *rates.Model
	heur  *Heuristic
}

// NewExpander builds a macro expander sharing the engine's rate model
// and heuristic.
func NewExpander(model *rates.Model, heur *Heuristic) *Expander {
	return &Expander{model: model, heur: heur}
}

// Expand collapses a macro into one edge. ok is false when the macro
// cannot make progress from this state (no trainable action, zero rate,
// or an unbindable primary stop).
func (e *Expander) Expand(s gamestate.State, m Macro) (Expansion, bool) {
	switch m := m.(type) {
	case TrainSkillUntil:
		return e.expandTrain(s, m.Skill, m.Action, m.Primary, m.Watched)
	case TrainConsumingSkillUntil:
		return e.expandConsuming(s, m.Skill, m.Primary, m.Watched)
	case AcquireItem:
		return e.expandStock(s, m.Item, s.Item(m.Item)+m.Quantity)
	case EnsureStock:
		return e.expandStock(s, m.Item, m.MinTotal)
	default:
		panic(fmt.Sprintf("unknown macro type %T", m))
	}
}

func (e *Expander) expandTrain(s gamestate.State, skill ids.SkillID, pinned ids.ActionID, primary StopRule, watched []StopRule) (Expansion, bool) {
	action := pinned
	if action == "" {
		best := 0.0
		for _, a := range s.UnlockedActions(skill) {
			if a.Consuming() {
				continue
			}
			if rate := e.heur.SkillRate(s, a); rate > best {
				best, action = rate, a.ID
			}
		}
	}
	if action == "" || !s.Unlocked(action) {
		return Expansion{}, false
	}

	next := s
	var switched ids.ActionID
	if s.Active() != action {
		next = gamestate.Switch{Action: action}.Apply(s)
		switched = action
	}

	r := e.model.ForAction(next, action, 0)
	return e.finish(next, action, switched, r, primary, watched)
}

// expandConsuming models a paired producer/consumer cycle: each cycle
// produces the inputs for one consumer attempt, then runs it. XP lands
// on both skills in proportion to the time each side of the cycle gets.
func (e *Expander) expandConsuming(s gamestate.State, skill ids.SkillID, primary StopRule, watched []StopRule) (Expansion, bool) {
	var consumer ids.ActionID
	best := 0.0
	for _, a := range s.UnlockedActions(skill) {
		if !a.Consuming() {
			continue
		}
		if rate, producer := e.heur.Sustainable(s, a); rate > best && producer != nil {
			best, consumer = rate, a.ID
		}
	}
	if consumer == "" {
		return Expansion{}, false
	}

	a := s.Registry().Action(consumer)
	_, producer := e.heur.Sustainable(s, a)
	if producer == nil {
		return Expansion{}, false
	}

	next := s
	var switched ids.ActionID
	if s.Active() != consumer {
		next = gamestate.Switch{Action: consumer}.Apply(s)
		switched = consumer
	}

	blended := e.cycleRates(next, a, producer)
	return e.finish(next, consumer, switched, blended, primary, watched)
}

// cycleRates blends producer and consumer flows over one full cycle:
// ceil(required / produced-per-action) producer attempts, then one
// consumer attempt.
func (e *Expander) cycleRates(s gamestate.State, consumer, producer *registry.Action) rates.Rates {
	consTicks := e.model.EffectiveDuration(s, consumer)
	prodTicks := e.model.EffectiveDuration(s, producer)

	prodRates := e.model.ForAction(s, producer.ID, 0)
	consRates := e.model.ForAction(s, consumer.ID, 0)

	attempts := 0.0
	for _, in := range consumer.Variant(0).Inputs {
		perAttempt := prodRates.ItemsProduced[in.Item] * prodTicks
		if perAttempt <= 0 {
			continue
		}
		attempts += math.Ceil(float64(in.Quantity) / perAttempt)
	}
	if attempts == 0 {
		attempts = 1
	}

	cycle := attempts*prodTicks + consTicks
	wProd := attempts * prodTicks / cycle
	wCons := consTicks / cycle

	blended := rates.Rates{
		CurrencyPerTick:  wProd*prodRates.CurrencyPerTick + wCons*consRates.CurrencyPerTick,
		MasteryXPPerTick: wCons * consRates.MasteryXPPerTick,
		HPLossPerTick:    wProd*prodRates.HPLossPerTick + wCons*consRates.HPLossPerTick,
		XPPerTickBySkill: make(map[ids.SkillID]float64, 2),
	}
	for skill, rate := range prodRates.XPPerTickBySkill {
		blended.XPPerTickBySkill[skill] += wProd * rate
	}
	for skill, rate := range consRates.XPPerTickBySkill {
		blended.XPPerTickBySkill[skill] += wCons * rate
	}
	return blended
}

func (e *Expander) expandStock(s gamestate.State, item ids.ItemID, target int) (Expansion, bool) {
	if s.Item(item) >= target {
		return Expansion{State: s, Ticks: 0, Wait: AnyOf{}}, true
	}
	producer, _ := e.heur.bestProducer(s, item)
	if producer == nil {
		return Expansion{}, false
	}

	next := s
	var switched ids.ActionID
	if s.Active() != producer.ID {
		next = gamestate.Switch{Action: producer.ID}.Apply(s)
		switched = producer.ID
	}

	r := e.model.ForAction(next, producer.ID, 0)
	cond := UntilInventoryAtLeast{Item: item, Count: target}
	composite := AnyOf{Conds: []WaitCondition{cond}}
	ticks := cond.EstimateTicks(next, r)
	if math.IsInf(ticks, 1) {
		return Expansion{}, false
	}
	advanced, deaths := advance(next, r, int64(ticks))
	return Expansion{State: advanced, Ticks: int64(ticks), Wait: composite, Deaths: deaths, Switched: switched}, true
}

func (e *Expander) finish(s gamestate.State, trained ids.ActionID, switched ids.ActionID, r rates.Rates, primary StopRule, watched []StopRule) (Expansion, bool) {
	primaryCond, ok := primary.Bind(s, trained)
	if !ok {
		return Expansion{}, false
	}
	conds := []WaitCondition{primaryCond}
	for _, rule := range watched {
		if cond, ok := rule.Bind(s, trained); ok {
			conds = append(conds, cond)
		}
	}
	composite := AnyOf{Conds: conds}

	ticks := composite.EstimateTicks(s, r)
	if math.IsInf(ticks, 1) || ticks <= 0 {
		return Expansion{}, false
	}
	advanced, deaths := advance(s, r, int64(ticks))
	return Expansion{State: advanced, Ticks: int64(ticks), Wait: composite, Deaths: deaths, Switched: switched}, true
}
