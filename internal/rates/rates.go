// Package rates predicts expected per-tick flows for any (state, action)
// pair. All randomness in the game (variable durations, success rolls,
// drop tables) is folded into the means here; the planner searches over
// these expectations and only the replay layer ever samples.
package rates

import (
	"math"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/ids"
	"github.com/lox/idleplanner/internal/registry"
)

// Rates is the expected flow bundle of one activity. Rates are
// unconditional on input availability: a consumer's rates describe
// throughput assuming infinite inputs. Decision-delta and the candidate
// enumerator account for actual stock.
type Rates struct {
	CurrencyPerTick  float64
	ItemsProduced    map[ids.ItemID]float64
	ItemsConsumed    map[ids.ItemID]float64
	XPPerTickBySkill map[ids.SkillID]float64
	MasteryXPPerTick float64
	HPLossPerTick    float64
}

// XP returns the xp rate for one skill.
func (r Rates) XP(skill ids.SkillID) float64 { return r.XPPerTickBySkill[skill] }

// Zero reports whether the activity makes no progress of any kind.
func (r Rates) Zero() bool {
	if r.CurrencyPerTick > 0 || r.MasteryXPPerTick > 0 {
		return false
	}
	for _, v := range r.ItemsProduced {
		if v > 0 {
			return false
		}
	}
	for _, v := range r.XPPerTickBySkill {
		if v > 0 {
			return false
		}
	}
	return true
}

// Model computes rates against a frozen registry. A Model is immutable
// and safe for concurrent use.
type Model struct {
	reg *registry.Registry
}

// NewModel builds a rate model over a registry.
func NewModel(reg *registry.Registry) *Model {
	return &Model{reg: reg}
}

// Registry returns the model's backing registry.
func (m *Model) Registry() *registry.Registry { return m.reg }

// ForActive computes rates for the state's selected activity; all-zero
// if the state is idle.
func (m *Model) ForActive(s gamestate.State) Rates {
	if s.Active() == "" {
		return Rates{}
	}
	return m.ForAction(s, s.Active(), s.Recipe())
}

// ForAction computes expected per-tick flows for an action under the
// given state. Unknown or locked actions yield all-zero rates; the rate
// model never errors.
func (m *Model) ForAction(s gamestate.State, id ids.ActionID, recipe int) Rates {
	a := m.reg.Action(id)
	if a == nil || !s.Unlocked(id) {
		return Rates{}
	}

	dur := m.EffectiveDuration(s, a)
	v := a.Variant(recipe)

	r := Rates{
		XPPerTickBySkill: make(map[ids.SkillID]float64, 1),
	}

	if a.Stochastic() {
		p := m.SuccessChance(s, a)
		attemptTicks := p*dur + (1-p)*(dur+float64(a.StunTicks))
		r.CurrencyPerTick = p * float64(a.MaxGold) / 2 / attemptTicks
		r.HPLossPerTick = (1 - p) * float64(a.MaxHit) / 2 / attemptTicks
		r.XPPerTickBySkill[a.Skill] = p * v.XP / attemptTicks
		r.MasteryXPPerTick = p * m.MasteryPerAction(a, dur) / attemptTicks
		return r
	}

	r.CurrencyPerTick = float64(a.Currency) / dur
	r.XPPerTickBySkill[a.Skill] = v.XP / dur
	r.MasteryXPPerTick = m.MasteryPerAction(a, dur) / dur

	if len(v.Outputs) > 0 || len(a.Drops) > 0 {
		r.ItemsProduced = make(map[ids.ItemID]float64, len(v.Outputs)+len(a.Drops))
	}
	for _, out := range v.Outputs {
		r.ItemsProduced[out.Item] += float64(out.Quantity) / dur
	}
	if len(a.Drops) > 0 {
		total := 0
		for _, d := range a.Drops {
			total += d.Weight
		}
		for _, d := range a.Drops {
			if d.Item == "" {
				continue
			}
			mean := float64(d.Quantity) * float64(d.Weight) / float64(total)
			r.ItemsProduced[d.Item] += mean / dur
		}
	}
	if len(v.Inputs) > 0 {
		r.ItemsConsumed = make(map[ids.ItemID]float64, len(v.Inputs))
		for _, in := range v.Inputs {
			r.ItemsConsumed[in.Item] = float64(in.Quantity) / dur
		}
	}
	return r
}

// EffectiveDuration resolves an action's mean duration after tool-tier
// and mastery modifiers. Always at least one tick.
func (m *Model) EffectiveDuration(s gamestate.State, a *registry.Action) float64 {
	dur := a.MeanTicks()
	if a.ToolChain != "" {
		for _, offer := range m.reg.ChainOffers(a.ToolChain) {
			if s.Owned(offer.ID) > 0 {
				dur *= offer.DurationScale
			}
		}
	}
	dur *= masteryDurationScale(s.MasteryLevel(a.ID))
	return math.Max(1, dur)
}

// masteryDurationScale speeds an action up slightly as its mastery
// grows: 0.5% per 10 mastery levels, floored at 95%.
func masteryDurationScale(masteryLevel int) float64 {
	scale := 1 - 0.005*float64(masteryLevel/10)
	return math.Max(0.95, scale)
}

// MasteryPerAction returns the mastery xp granted by one completed
// action. The per-category factors over the action's real duration are
// the piecewise family the game uses; the planner always requests this
// through the rate model rather than encoding it.
func (m *Model) MasteryPerAction(a *registry.Action, effectiveDuration float64) float64 {
	switch a.Mastery {
	case registry.MasteryBurn:
		return 0.60 * effectiveDuration
	case registry.MasteryCook:
		return 0.85 * effectiveDuration
	case registry.MasteryArtisan:
		return 1.7
	default:
		return 1.0 * effectiveDuration
	}
}

// BestCase returns state-independent upper-bound flows for an action:
// every tool tier owned, mastery duration bonus maxed and success
// chance at its ceiling. The heuristic plans against these bounds so
// that future upgrades and level-ups can never make reality beat the
// estimate.
func (m *Model) BestCase(a *registry.Action) Rates {
	dur := a.MeanTicks()
	if a.ToolChain != "" {
		for _, offer := range m.reg.ChainOffers(a.ToolChain) {
			dur *= offer.DurationScale
		}
	}
	dur *= 0.95
	dur = math.Max(1, dur)

	v := a.Variant(0)
	r := Rates{XPPerTickBySkill: make(map[ids.SkillID]float64, 1)}

	if a.Stochastic() {
		const p = 0.95
		attemptTicks := p*dur + (1-p)*(dur+float64(a.StunTicks))
		r.CurrencyPerTick = p * float64(a.MaxGold) / 2 / attemptTicks
		r.XPPerTickBySkill[a.Skill] = p * v.XP / attemptTicks
		return r
	}

	r.CurrencyPerTick = float64(a.Currency) / dur
	r.XPPerTickBySkill[a.Skill] = v.XP / dur
	if len(v.Outputs) > 0 || len(a.Drops) > 0 {
		r.ItemsProduced = make(map[ids.ItemID]float64, len(v.Outputs)+len(a.Drops))
	}
	for _, out := range v.Outputs {
		r.ItemsProduced[out.Item] += float64(out.Quantity) / dur
	}
	if len(a.Drops) > 0 {
		total := 0
		for _, d := range a.Drops {
			total += d.Weight
		}
		for _, d := range a.Drops {
			if d.Item == "" {
				continue
			}
			r.ItemsProduced[d.Item] += float64(d.Quantity) * float64(d.Weight) / float64(total) / dur
		}
	}
	if len(v.Inputs) > 0 {
		r.ItemsConsumed = make(map[ids.ItemID]float64, len(v.Inputs))
		for _, in := range v.Inputs {
			r.ItemsConsumed[in.Item] = float64(in.Quantity) / dur
		}
	}
	return r
}

// BestCaseDuration is the lower-bound duration used by BestCase.
func (m *Model) BestCaseDuration(a *registry.Action) float64 {
	dur := a.MeanTicks()
	if a.ToolChain != "" {
		for _, offer := range m.reg.ChainOffers(a.ToolChain) {
			dur *= offer.DurationScale
		}
	}
	return math.Max(1, dur*0.95)
}

// SuccessChance is the clamped success probability of a stochastic
// action: stealth grows linearly in skill level and per-action mastery
// and is measured against the action's perception.
func (m *Model) SuccessChance(s gamestate.State, a *registry.Action) float64 {
	stealth := 40 + 2*float64(s.Level(a.Skill)) + float64(s.MasteryLevel(a.ID))
	p := stealth / float64(a.Perception)
	return math.Min(0.95, math.Max(0.05, p))
}
