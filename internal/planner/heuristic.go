package planner

import (
	"fmt"
	"math"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/ids"
	"github.com/lox/idleplanner/internal/rates"
	"github.com/lox/idleplanner/internal/registry"
)

// bestRateCacheSize bounds the heuristic's per-level memo.
const bestRateCacheSize = 4096

// Heuristic computes an admissible lower bound on remaining ticks. The
// bound is built from best-case rates (all tool tiers owned, mastery
// bonus maxed, success chance capped) walked piecewise across unlock
// boundaries, so no future purchase or level-up can beat it. A
// Heuristic is bound to one solver run and is not safe for concurrent
// use.
type Heuristic struct {
	model *rates.Model
	value rates.ValueModel
	memo  *lru.Cache[string, float64]
}

// NewHeuristic builds a heuristic over a rate model and value model.
func NewHeuristic(model *rates.Model, value rates.ValueModel) *Heuristic {
	memo, err := lru.New[string, float64](bestRateCacheSize)
	if err != nil {
		panic(err)
	}
	return &Heuristic{model: model, value: value, memo: memo}
}

// Estimate returns a lower bound on the ticks needed to satisfy the
// goal from the state, or +Inf when no reachable action makes progress.
func (h *Heuristic) Estimate(s gamestate.State, goal Goal) float64 {
	switch g := goal.(type) {
	case ReachSkillLevel:
		return h.skillEstimate(s, g)
	case MultiSkill:
		total := 0.0
		for _, sub := range g.Subs {
			est := h.skillEstimate(s, sub)
			if math.IsInf(est, 1) {
				return est
			}
			total += est
		}
		return total
	case ReachCurrency:
		remaining := g.Remaining(s)
		if remaining <= 0 {
			return 0
		}
		best := h.bestCaseCurrencyRate(s)
		if best <= 0 {
			return math.Inf(1)
		}
		return math.Ceil(remaining / best)
	default:
		panic(fmt.Sprintf("unknown goal type %T", goal))
	}
}

// skillEstimate walks the xp span from current to target piecewise: at
// each unlock boundary the candidate action set grows, so each segment
// gets its own best-case rate. Two admissible bounds are combined: the
// raw-rate bound (xp can never flow faster than the best unconditional
// rate) and the sustainable-cycle bound credited with producer time the
// current stock already saves. The tighter one wins.
func (h *Heuristic) skillEstimate(s gamestate.State, g ReachSkillLevel) float64 {
	xp := s.XP(g.Skill)
	if xp >= g.TargetXP {
		return 0
	}
	reg := s.Registry()
	table := reg.XP()

	// Unlock thresholds strictly inside (xp, target).
	var boundaries []float64
	for _, a := range reg.ActionsForSkill(g.Skill) {
		threshold := float64(table.XPForLevel(a.UnlockLevel))
		if threshold > xp && threshold < g.TargetXP {
			boundaries = append(boundaries, threshold)
		}
	}
	sort.Float64s(boundaries)
	boundaries = append(boundaries, g.TargetXP)

	rawTotal, sustainableTotal := 0.0, 0.0
	cursor := xp
	for _, boundary := range boundaries {
		if boundary <= cursor {
			continue
		}
		level := table.LevelFor(cursor)
		raw := h.bestCaseSkillRate(g.Skill, level, true)
		if raw <= 0 {
			return math.Inf(1)
		}
		rawTotal += (boundary - cursor) / raw

		sus := h.bestCaseSkillRate(g.Skill, level, false)
		if sus <= 0 {
			sustainableTotal = math.Inf(1)
		} else if !math.IsInf(sustainableTotal, 1) {
			sustainableTotal += (boundary - cursor) / sus
		}
		cursor = boundary
	}

	bound := rawTotal
	if !math.IsInf(sustainableTotal, 1) {
		credited := sustainableTotal - h.stockSavings(s, g.Skill)
		bound = math.Max(rawTotal, credited)
	}
	return math.Ceil(bound)
}

// bestCaseSkillRate is the best xp/tick any of the skill's actions with
// an unlock level at or below the given level could ever reach. With
// raw set, consumers are taken at their unconditional rate; otherwise
// they are bounded by their best-case sustainable cycle. Offer gates
// are optimistically ignored. Memoized per (skill, level, mode).
func (h *Heuristic) bestCaseSkillRate(skill ids.SkillID, level int, raw bool) float64 {
	key := fmt.Sprintf("skill:%s@%d/%t", skill, level, raw)
	if cached, ok := h.memo.Get(key); ok {
		return cached
	}
	best := 0.0
	for _, a := range h.model.Registry().ActionsForSkill(skill) {
		if a.UnlockLevel > level {
			continue
		}
		var rate float64
		if a.Consuming() && !raw {
			rate = h.bestCaseSustainable(a)
		} else {
			rate = h.model.BestCase(a).XP(skill)
		}
		best = math.Max(best, rate)
	}
	h.memo.Add(key, best)
	return best
}

// stockSavings is the best-case producer time the bank's current stock
// of the skill's consumer inputs already covers.
func (h *Heuristic) stockSavings(s gamestate.State, skill ids.SkillID) float64 {
	seen := make(map[ids.ItemID]bool)
	savings := 0.0
	for _, a := range s.Registry().ActionsForSkill(skill) {
		if !a.Consuming() {
			continue
		}
		for _, in := range a.Variant(0).Inputs {
			if seen[in.Item] {
				continue
			}
			seen[in.Item] = true
			held := s.Item(in.Item)
			if held == 0 {
				continue
			}
			if _, ticksPerUnit := h.bestCaseProducer(in.Item); !math.IsInf(ticksPerUnit, 1) {
				savings += float64(held) * ticksPerUnit
			}
		}
	}
	return savings
}

// bestCaseSustainable bounds a consumer's steady-state xp/tick: one
// cycle produces the inputs for one attempt at best-case producer
// speed, then runs the attempt at best-case consumer speed.
func (h *Heuristic) bestCaseSustainable(consumer *registry.Action) float64 {
	v := consumer.Variant(0)
	producerTicks := 0.0
	for _, in := range v.Inputs {
		_, ticksPerUnit := h.bestCaseProducer(in.Item)
		if math.IsInf(ticksPerUnit, 1) {
			return 0
		}
		producerTicks += float64(in.Quantity) * ticksPerUnit
	}
	cycle := producerTicks + h.model.BestCaseDuration(consumer)
	if cycle <= 0 {
		return 0
	}
	return v.XP / cycle
}

// bestCaseProducer finds the fastest possible source of an item across
// the whole registry, locks ignored.
func (h *Heuristic) bestCaseProducer(item ids.ItemID) (*registry.Action, float64) {
	var best *registry.Action
	bestTicks := math.Inf(1)
	for _, a := range h.model.Registry().Actions() {
		perTick := h.model.BestCase(a).ItemsProduced[item]
		if perTick <= 0 {
			continue
		}
		if ticksPerUnit := 1 / perTick; ticksPerUnit < bestTicks {
			best, bestTicks = a, ticksPerUnit
		}
	}
	return best, bestTicks
}

// bestCaseCurrencyRate bounds effective-currency growth: the best
// scalar value/tick over every action in the registry at best-case
// rates.
func (h *Heuristic) bestCaseCurrencyRate(s gamestate.State) float64 {
	key := "currency:bestcase"
	if cached, ok := h.memo.Get(key); ok {
		return cached
	}
	best := 0.0
	for _, a := range s.Registry().Actions() {
		best = math.Max(best, h.value.Value(h.model.BestCase(a)))
	}
	h.memo.Add(key, best)
	return best
}

// --- state-grounded rates used by the candidate enumerator ---
// Unlike the bounds above, these reflect what the player can actually
// do right now; they rank candidates and never enter the cost function.

// SkillRate is one action's achievable xp/tick in its own skill under
// the current state: the raw unconditional rate for producers, the
// sustainable cycle rate for consumers.
func (h *Heuristic) SkillRate(s gamestate.State, a *registry.Action) float64 {
	if !a.Consuming() {
		return h.model.ForAction(s, a.ID, 0).XP(a.Skill)
	}
	rate, _ := h.Sustainable(s, a)
	return rate
}

// Sustainable computes a consumer's current steady-state xp/tick by
// pairing it with its best unlocked producers. The returned producer is
// the supplier of the consumer's first input (the pairing the planner
// switches to when inputs run dry); nil when an input has no unlocked
// producer.
func (h *Heuristic) Sustainable(s gamestate.State, consumer *registry.Action) (float64, *registry.Action) {
	v := consumer.Variant(0)
	consumerTicks := h.model.EffectiveDuration(s, consumer)

	producerTicks := 0.0
	var paired *registry.Action
	for _, in := range v.Inputs {
		producer, ticksPerUnit := h.bestProducer(s, in.Item)
		if producer == nil {
			// No way to restock. Existing stock still lets the raw rate
			// stand; with no stock the consumer contributes nothing.
			if s.Item(in.Item) > 0 {
				return h.model.ForAction(s, consumer.ID, 0).XP(consumer.Skill), nil
			}
			return 0, nil
		}
		if paired == nil {
			paired = producer
		}
		producerTicks += float64(in.Quantity) * ticksPerUnit
	}

	cycle := producerTicks + consumerTicks
	if cycle <= 0 {
		return 0, nil
	}
	return v.XP / cycle, paired
}

// bestProducer finds the unlocked action currently producing an item at
// the lowest ticks-per-unit. Ties resolve by registry id order.
func (h *Heuristic) bestProducer(s gamestate.State, item ids.ItemID) (*registry.Action, float64) {
	var best *registry.Action
	bestTicks := math.Inf(1)
	for _, skill := range s.Registry().Skills() {
		for _, a := range s.UnlockedActions(skill) {
			perTick := h.model.ForAction(s, a.ID, 0).ItemsProduced[item]
			if perTick <= 0 {
				continue
			}
			if ticksPerUnit := 1 / perTick; ticksPerUnit < bestTicks {
				best, bestTicks = a, ticksPerUnit
			}
		}
	}
	return best, bestTicks
}

// bestSkillRate is the best achievable xp/tick across the skill's
// unlocked actions right now; the payback baseline for upgrades.
func (h *Heuristic) bestSkillRate(s gamestate.State, skill ids.SkillID) float64 {
	best := 0.0
	for _, a := range s.UnlockedActions(skill) {
		best = math.Max(best, h.SkillRate(s, a))
	}
	return best
}

// bestCurrencyRate is the best value/tick across unlocked actions right
// now; the payback baseline for currency goals.
func (h *Heuristic) bestCurrencyRate(s gamestate.State) float64 {
	best := 0.0
	for _, skill := range s.Registry().Skills() {
		for _, a := range s.UnlockedActions(skill) {
			best = math.Max(best, h.value.Value(h.model.ForAction(s, a.ID, 0)))
		}
	}
	return best
}
