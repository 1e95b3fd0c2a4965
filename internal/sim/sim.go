// Package sim is the tick-level stochastic simulator the replay layer
// drives plans against. Unlike the rate model, which plans on expected
// values, the simulator samples every roll: durations, success checks,
// drops and hits. The planner never imports this package.
package sim

import (
	"math"
	rand "math/rand/v2"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/ids"
	"github.com/lox/idleplanner/internal/randutil"
	"github.com/lox/idleplanner/internal/rates"
	"github.com/lox/idleplanner/internal/registry"
)

// Event classifies what ended a simulation step early.
type Event int

const (
	// EventNone is a normally completed action attempt.
	EventNone Event = iota

	// EventIdle means no activity is selected; time cannot pass.
	EventIdle

	// EventNoInputs means the active consumer cannot afford another
	// attempt from stock.
	EventNoInputs

	// EventInventoryFull means some production was lost to a full bank.
	EventInventoryFull

	// EventDeath means hit points reached zero during the attempt; the
	// player respawned at full health.
	EventDeath
)

// StepResult is the outcome of simulating one action attempt.
type StepResult struct {
	State gamestate.State
	Ticks int64
	Event Event
}

// Simulator samples real game outcomes one action attempt at a time.
// Not safe for concurrent use; give each goroutine its own.
type Simulator struct {
	reg   *registry.Registry
	model *rates.Model
	rng   *rand.Rand
}

// New builds a simulator with a deterministic seed.
func New(reg *registry.Registry, seed int64) *Simulator {
	return NewWithRand(reg, randutil.New(seed))
}

// NewWithRand builds a simulator over an existing rand source.
func NewWithRand(reg *registry.Registry, rng *rand.Rand) *Simulator {
	return &Simulator{reg: reg, model: rates.NewModel(reg), rng: rng}
}

// Step simulates one attempt of the active action and returns the new
// state, the ticks consumed, and the event that (if anything) cut the
// attempt short. Idle and starved states consume zero ticks.
func (s *Simulator) Step(st gamestate.State) StepResult {
	active := st.Active()
	if active == "" {
		return StepResult{State: st, Event: EventIdle}
	}
	a := s.reg.Action(active)
	if a == nil || !st.Unlocked(active) {
		return StepResult{State: st, Event: EventIdle}
	}

	v := a.Variant(st.Recipe())
	for _, in := range v.Inputs {
		if st.Item(in.Item) < in.Quantity {
			return StepResult{State: st, Event: EventNoInputs}
		}
	}

	ticks := s.sampleDuration(st, a)
	event := EventNone

	if a.Stochastic() {
		return s.stepStochastic(st, a, v, ticks)
	}

	for _, in := range v.Inputs {
		st = st.WithItemDelta(in.Item, -in.Quantity)
	}
	st = st.WithXPDelta(a.Skill, v.XP)
	st = st.WithMasteryDelta(a.ID, s.model.MasteryPerAction(a, float64(ticks)))
	if a.Currency > 0 {
		st = st.WithGoldDelta(a.Currency)
	}

	for _, out := range v.Outputs {
		st, event = s.deposit(st, out.Item, out.Quantity, event)
	}
	if item, qty := s.rollDrop(a); item != "" && qty > 0 {
		st, event = s.deposit(st, item, qty, event)
	}
	return StepResult{State: st, Ticks: ticks, Event: event}
}

// stepStochastic handles success/failure attempts: gold on success,
// stun and a hit on failure, with death resolution.
func (s *Simulator) stepStochastic(st gamestate.State, a *registry.Action, v *registry.Variant, ticks int64) StepResult {
	event := EventNone
	if s.rng.Float64() < s.model.SuccessChance(st, a) {
		st = st.WithGoldDelta(s.rng.IntN(a.MaxGold + 1))
		st = st.WithXPDelta(a.Skill, v.XP)
		st = st.WithMasteryDelta(a.ID, s.model.MasteryPerAction(a, float64(ticks)))
	} else {
		ticks += int64(a.StunTicks)
		if hit := s.rng.IntN(a.MaxHit + 1); hit > 0 {
			hp := st.HP() - hit
			if hp <= 0 {
				st = st.WithHPSet(st.MaxHP())
				event = EventDeath
			} else {
				st = st.WithHPSet(hp)
			}
		}
	}
	return StepResult{State: st, Ticks: ticks, Event: event}
}

// sampleDuration draws an attempt duration: uniform over the base
// range, scaled by the same tool and mastery modifiers the rate model
// applies to means.
func (s *Simulator) sampleDuration(st gamestate.State, a *registry.Action) int64 {
	base := a.MinTicks
	if a.MaxTicks > a.MinTicks {
		base += s.rng.IntN(a.MaxTicks - a.MinTicks + 1)
	}
	scale := s.model.EffectiveDuration(st, a) / a.MeanTicks()
	return int64(math.Max(1, math.Round(float64(base)*scale)))
}

// rollDrop samples one row of the action's drop table.
func (s *Simulator) rollDrop(a *registry.Action) (ids.ItemID, int) {
	if len(a.Drops) == 0 {
		return "", 0
	}
	total := 0
	for _, d := range a.Drops {
		total += d.Weight
	}
	roll := s.rng.IntN(total)
	for _, d := range a.Drops {
		roll -= d.Weight
		if roll < 0 {
			return d.Item, d.Quantity
		}
	}
	return "", 0
}

// deposit banks produced items, clamping at capacity and flagging the
// overflow event.
func (s *Simulator) deposit(st gamestate.State, item ids.ItemID, qty int, event Event) (gamestate.State, Event) {
	space := st.Capacity() - st.TotalItems()
	if qty > space {
		qty = space
		event = EventInventoryFull
	}
	if qty > 0 {
		st = st.WithItemDelta(item, qty)
	}
	return st, event
}
