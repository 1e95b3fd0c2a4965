package planner

import (
	"fmt"
	"math"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/ids"
	"github.com/lox/idleplanner/internal/rates"
	"github.com/lox/idleplanner/internal/registry"
)

// Config tunes the candidate enumerator's branching budget.
type Config struct {
	// MaxSwitchable caps the producers proposed per goal-relevant skill
	// (for currency goals, the switches proposed in total). Consumers and
	// their paired producers are capped by MaxConsumerPairs instead.
	MaxSwitchable int

	// MaxUpgrades caps proposed purchases per decision.
	MaxUpgrades int

	// MaxConsumerPairs caps producer/consumer pairs per consuming skill,
	// heading off near-tie explosion.
	MaxConsumerPairs int

	// PaybackCapTicks excludes upgrades that take longer than this to
	// pay for themselves.
	PaybackCapTicks float64

	// AffordHorizonTicks bounds how far ahead offer-affordability
	// watches look.
	AffordHorizonTicks float64

	// UnlockHorizonLevels bounds how many levels ahead unlock watches
	// look.
	UnlockHorizonLevels int

	// ConsumerMinStock is the restock threshold for inputs-available
	// watches.
	ConsumerMinStock int
}

// DefaultConfig returns the enumerator tuning used by the engine unless
// overridden.
func DefaultConfig() Config {
	return Config{
		MaxSwitchable:       3,
		MaxUpgrades:         2,
		MaxConsumerPairs:    2,
		PaybackCapTicks:     5000,
		AffordHorizonTicks:  600,
		UnlockHorizonLevels: 10,
		ConsumerMinStock:    5,
	}
}

// OfferWatch is one offer-affordability entry of a watch set.
type OfferWatch struct {
	Offer ids.OfferID
	Cost  int
}

// ConsumerWatch is one inputs-available entry of a watch set.
type ConsumerWatch struct {
	Action    ids.ActionID
	MinInputs int
}

// WatchSet names the future events that bound the next wait edge. A
// watch never implies an action: entries here only shorten waits, they
// never generate interactions.
type WatchSet struct {
	Offers         []OfferWatch
	Unlocks        []ids.ActionID
	LevelSkills    []ids.SkillID
	MasteryActions []ids.ActionID
	Consumers      []ConsumerWatch
	InventoryFull  bool
	InputsDepleted bool
	DeathHorizon   bool

	// Policy is the segment's sell policy; affordability is measured
	// against effective currency under exactly this value.
	Policy gamestate.SellPolicy
}

// Candidates is the enumerator's proposal for one decision point.
type Candidates struct {
	Switchable []ids.ActionID
	Upgrades   []ids.OfferID
	SellPolicy gamestate.SellPolicy
	EmitSell   bool
	Watch      WatchSet
	Macros     []Macro
}

// Enumerator proposes a small deterministic branching set for each
// (state, goal). Results are cached by capability fingerprint; the
// cache is process-local and bound to one enumerator.
type Enumerator struct {
	model *rates.Model
	value rates.ValueModel
	heur  *Heuristic
	cfg   Config
	cache *lru.Cache[string, Candidates]
}

// enumeratorCacheSize bounds the fingerprint cache.
const enumeratorCacheSize = 8192

// NewEnumerator builds an enumerator sharing the engine's models.
func NewEnumerator(model *rates.Model, value rates.ValueModel, heur *Heuristic, cfg Config) *Enumerator {
	cache, err := lru.New[string, Candidates](enumeratorCacheSize)
	if err != nil {
		panic(err)
	}
	return &Enumerator{model: model, value: value, heur: heur, cfg: cfg, cache: cache}
}

// Enumerate proposes candidates for the state. Identical capability
// fingerprints yield identical proposals, including ordering.
func (e *Enumerator) Enumerate(s gamestate.State, goal Goal) Candidates {
	key := e.fingerprint(s, goal)
	if cached, ok := e.cache.Get(key); ok {
		// The emit bit depends on exact stock, which the fingerprint
		// deliberately coarsens; recompute it on every call.
		cached.EmitSell = gamestate.Sell{Policy: cached.SellPolicy}.Available(s)
		return cached
	}

	policy := e.sellPolicy(s, goal)
	c := Candidates{
		SellPolicy: policy,
		Switchable: e.switchables(s, goal),
		Upgrades:   e.upgrades(s, goal, policy),
	}
	c.EmitSell = gamestate.Sell{Policy: policy}.Available(s)
	c.Watch = e.watchSet(s, goal, c, policy)
	c.Macros = e.macros(s, goal, c)

	e.cache.Add(key, c)
	return c
}

type scoredAction struct {
	action ids.ActionID
	score  float64
}

func takeTop(scored []scoredAction, k int) []ids.ActionID {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].action < scored[j].action
	})
	out := make([]ids.ActionID, 0, k)
	seen := make(map[ids.ActionID]bool, k)
	for _, sc := range scored {
		if len(out) >= k {
			break
		}
		if sc.score <= 0 || seen[sc.action] {
			continue
		}
		seen[sc.action] = true
		out = append(out, sc.action)
	}
	return out
}

func (e *Enumerator) switchables(s gamestate.State, goal Goal) []ids.ActionID {
	if _, ok := goal.(ReachCurrency); ok {
		// Currency goals rank every unlocked action globally.
		var scored []scoredAction
		for _, skill := range s.Registry().Skills() {
			for _, a := range s.UnlockedActions(skill) {
				r := e.model.ForAction(s, a.ID, 0)
				scored = append(scored, scoredAction{a.ID, goal.ActivityValue(a.ID, r)})
			}
		}
		return takeTop(scored, e.cfg.MaxSwitchable)
	}

	var out []ids.ActionID
	seen := make(map[ids.ActionID]bool)
	add := func(id ids.ActionID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, skill := range s.Registry().Skills() {
		if !goal.SkillRelevant(skill) {
			continue
		}
		var producers, consumers []scoredAction
		for _, a := range s.UnlockedActions(skill) {
			if a.Consuming() {
				rate, paired := e.heur.Sustainable(s, a)
				if paired != nil || s.Item(a.Variant(0).Inputs[0].Item) > 0 {
					consumers = append(consumers, scoredAction{a.ID, rate})
				}
				continue
			}
			r := e.model.ForAction(s, a.ID, 0)
			producers = append(producers, scoredAction{a.ID, goal.ActivityValue(a.ID, r)})
		}

		for _, id := range takeTop(producers, e.cfg.MaxSwitchable) {
			add(id)
		}
		// Keep only the top sustainable pairs, and include both halves
		// of each pair so the search can alternate.
		for _, id := range takeTop(consumers, e.cfg.MaxConsumerPairs) {
			add(id)
			if _, paired := e.heur.Sustainable(s, s.Registry().Action(id)); paired != nil {
				add(paired.ID)
			}
		}
	}
	return out
}

// goalRate is the best goal-progress-per-tick achievable right now,
// used as the baseline for upgrade payback.
func (e *Enumerator) goalRate(s gamestate.State, goal Goal) float64 {
	switch g := goal.(type) {
	case ReachSkillLevel:
		return e.heur.bestSkillRate(s, g.Skill)
	case MultiSkill:
		total := 0.0
		for _, sub := range g.Subs {
			if !sub.Satisfied(s) {
				total += e.heur.bestSkillRate(s, sub.Skill)
			}
		}
		return total
	case ReachCurrency:
		return e.heur.bestCurrencyRate(s)
	default:
		return 0
	}
}

func (e *Enumerator) upgrades(s gamestate.State, goal Goal, policy gamestate.SellPolicy) []ids.OfferID {
	type scoredOffer struct {
		offer   ids.OfferID
		payback float64
	}
	baseline := e.goalRate(s, goal)
	horizon := s.EffectiveCurrency(policy) + int(e.cfg.AffordHorizonTicks*math.Max(baseline, e.activeEffectiveRate(s, policy)))

	var scored []scoredOffer
	for _, offer := range s.Registry().Offers() {
		if !e.offerRelevant(s, goal, offer) {
			continue
		}
		if offer.Cost > horizon {
			continue
		}
		after := e.goalRate(s.WithOwnedDelta(offer.ID, 1), goal)
		gain := after - baseline
		if gain <= 0 {
			continue
		}
		payback := float64(offer.Cost) / gain
		if payback > e.cfg.PaybackCapTicks {
			continue
		}
		scored = append(scored, scoredOffer{offer.ID, payback})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].payback != scored[j].payback {
			return scored[i].payback < scored[j].payback
		}
		return scored[i].offer < scored[j].offer
	})
	out := make([]ids.OfferID, 0, e.cfg.MaxUpgrades)
	for _, sc := range scored {
		if len(out) >= e.cfg.MaxUpgrades {
			break
		}
		out = append(out, sc.offer)
	}
	return out
}

// offerRelevant excludes offers that cannot help the goal or whose
// ladder prerequisites are not yet met.
func (e *Enumerator) offerRelevant(s gamestate.State, goal Goal, offer *registry.Offer) bool {
	if offer.Skill != "" && !goal.SkillRelevant(offer.Skill) {
		if _, ok := goal.(ReachCurrency); !ok {
			return false
		}
	}
	if offer.Chain != "" && offer.Tier > s.ChainTier(offer.Chain)+1 {
		return false
	}
	if offer.Tier > 0 && offer.Tier <= s.ChainTier(offer.Chain) {
		return false
	}
	if offer.Skill != "" && offer.RequiresLevel > 0 && s.Level(offer.Skill) < offer.RequiresLevel {
		return false
	}
	return true
}

func (e *Enumerator) activeEffectiveRate(s gamestate.State, policy gamestate.SellPolicy) float64 {
	if s.Active() == "" {
		return 0
	}
	return effectiveRate(s, e.model.ForActive(s), policy)
}

// sellPolicy picks the segment's policy: liquidate everything for
// currency goals, protect planned consumer inputs otherwise.
func (e *Enumerator) sellPolicy(s gamestate.State, goal Goal) gamestate.SellPolicy {
	if _, ok := goal.(ReachCurrency); ok {
		return gamestate.SellAll()
	}
	keep := make(map[ids.ItemID]bool)
	for _, skill := range s.Registry().Skills() {
		if !goal.SkillRelevant(skill) {
			continue
		}
		for _, a := range s.Registry().ActionsForSkill(skill) {
			if !a.Consuming() {
				continue
			}
			for _, in := range a.Variant(0).Inputs {
				keep[in.Item] = true
			}
		}
	}
	if len(keep) == 0 {
		return gamestate.SellAll()
	}
	items := make([]ids.ItemID, 0, len(keep))
	for item := range keep {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	return gamestate.SellExcept(items...)
}

func (e *Enumerator) watchSet(s gamestate.State, goal Goal, c Candidates, policy gamestate.SellPolicy) WatchSet {
	w := WatchSet{Policy: policy}
	reg := s.Registry()
	activeRates := e.model.ForActive(s)

	// Affordability watches cover every relevant offer within the
	// horizon, not just the ones worth buying; a watch never buys.
	baseline := e.goalRate(s, goal)
	horizon := s.EffectiveCurrency(policy) + int(e.cfg.AffordHorizonTicks*math.Max(baseline, e.activeEffectiveRate(s, policy)))
	for _, offer := range reg.Offers() {
		if !e.offerRelevant(s, goal, offer) {
			continue
		}
		if offer.Cost <= horizon && offer.Cost > s.Gold() {
			w.Offers = append(w.Offers, OfferWatch{Offer: offer.ID, Cost: offer.Cost})
		}
	}

	// Unlock watches for locked actions within a few level-ups.
	for _, skill := range reg.Skills() {
		if !goal.SkillRelevant(skill) {
			continue
		}
		level := s.Level(skill)
		for _, a := range reg.ActionsForSkill(skill) {
			if s.Unlocked(a.ID) || a.RequiresOffer != "" {
				continue
			}
			if a.UnlockLevel > level && a.UnlockLevel <= level+e.cfg.UnlockHorizonLevels {
				w.Unlocks = append(w.Unlocks, a.ID)
			}
		}
		if level < reg.XP().MaxLevel() {
			w.LevelSkills = append(w.LevelSkills, skill)
		}
	}

	if active := s.Active(); active != "" {
		a := reg.Action(active)
		if a != nil && goal.SkillRelevant(a.Skill) {
			w.MasteryActions = append(w.MasteryActions, active)
			if !a.Consuming() && len(activeRates.ItemsProduced) > 0 {
				w.InventoryFull = true
			}
		}
		if a != nil && a.Consuming() {
			w.InputsDepleted = true
		}
	}

	for _, id := range c.Switchable {
		a := reg.Action(id)
		if a != nil && a.Consuming() && id != s.Active() {
			w.Consumers = append(w.Consumers, ConsumerWatch{Action: id, MinInputs: e.cfg.ConsumerMinStock})
		}
	}

	if activeRates.HPLossPerTick > 0 {
		w.DeathHorizon = true
	}
	return w
}

func (e *Enumerator) macros(s gamestate.State, goal Goal, c Candidates) []Macro {
	var subs []ReachSkillLevel
	switch g := goal.(type) {
	case ReachSkillLevel:
		subs = []ReachSkillLevel{g}
	case MultiSkill:
		subs = g.Subs
	default:
		return nil
	}

	var watched []StopRule
	for _, offer := range c.Upgrades {
		if of := s.Registry().Offer(offer); of != nil {
			watched = append(watched, WhenOfferAffordable{Offer: offer, Cost: of.Cost, Policy: c.SellPolicy})
		}
	}

	var out []Macro
	for _, sub := range subs {
		if sub.Satisfied(s) || len(out) >= 2 {
			continue
		}
		stops := append([]StopRule{AtNextUnlockBoundary{Skill: sub.Skill}}, watched...)
		if e.skillConsumes(s, sub.Skill) {
			out = append(out, TrainConsumingSkillUntil{
				Skill:   sub.Skill,
				Primary: AtGoalLevel{Skill: sub.Skill, TargetXP: sub.TargetXP},
				Watched: append(stops, WhenInputsDepleted{}),
			})
		} else {
			out = append(out, TrainSkillUntil{
				Skill:   sub.Skill,
				Primary: AtGoalLevel{Skill: sub.Skill, TargetXP: sub.TargetXP},
				Watched: stops,
			})
		}
	}
	return out
}

// skillConsumes reports whether training this skill means running
// consumers: true when its best unlocked action consumes.
func (e *Enumerator) skillConsumes(s gamestate.State, skill ids.SkillID) bool {
	best, consuming := 0.0, false
	for _, a := range s.UnlockedActions(skill) {
		rate := e.heur.SkillRate(s, a)
		if rate > best {
			best, consuming = rate, a.Consuming()
		}
	}
	return consuming
}

// fingerprint is the enumerator cache key: everything Enumerate can
// observe, coarsened the same way the dominance bucket is.
func (e *Enumerator) fingerprint(s gamestate.State, goal Goal) string {
	var b strings.Builder
	b.WriteString(goal.Label())
	fmt.Fprintf(&b, "|act=%s/%d", s.Active(), s.Recipe())
	fmt.Fprintf(&b, "|gold=%d", s.Gold()/50)
	fmt.Fprintf(&b, "|inv=%d", s.TotalItems()/10)
	fmt.Fprintf(&b, "|hp=%d", s.HP()/10)
	for _, skill := range s.Registry().Skills() {
		if goal.SkillRelevant(skill) {
			fmt.Fprintf(&b, "|%s=%d", skill, s.Level(skill))
		}
	}
	for _, offer := range s.Registry().Offers() {
		if n := s.Owned(offer.ID); n > 0 {
			fmt.Fprintf(&b, "|%s*%d", offer.ID, n)
		}
		// Affordability thresholds are decision points; crossing one
		// must never be hidden by the coarse gold bucket.
		if e.offerRelevant(s, goal, offer) {
			fmt.Fprintf(&b, "|%s?%t", offer.ID, s.Gold() >= offer.Cost)
		}
	}
	for _, item := range s.Items() {
		fmt.Fprintf(&b, "|%s~%d", item, s.Item(item)/10)
	}
	return b.String()
}
