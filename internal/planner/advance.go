package planner

import (
	"math"
	"sort"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/ids"
	"github.com/lox/idleplanner/internal/rates"
)

// advance moves a state forward by dt ticks at the given expected rates
// using deterministic rounding: round-to-nearest for xp, mastery and
// currency; floor for produced items and ceil for consumed items, which
// keeps inventory projections on the safe side. Returns the new state
// and the number of expected deaths crossed during the span.
func advance(s gamestate.State, r rates.Rates, dt int64) (gamestate.State, int) {
	if dt <= 0 {
		return s, 0
	}
	span := float64(dt)

	if gold := int(math.Round(r.CurrencyPerTick * span)); gold > 0 {
		s = s.WithGoldDelta(gold)
	}

	for _, skill := range sortedSkillKeys(r.XPPerTickBySkill) {
		if xp := math.Round(r.XPPerTickBySkill[skill] * span); xp > 0 {
			s = s.WithXPDelta(skill, xp)
		}
	}

	if s.Active() != "" {
		if mxp := math.Round(r.MasteryXPPerTick * span); mxp > 0 {
			s = s.WithMasteryDelta(s.Active(), mxp)
		}
	}

	for _, item := range sortedItemKeys(r.ItemsConsumed) {
		consumed := int(math.Ceil(r.ItemsConsumed[item] * span))
		if held := s.Item(item); consumed > held {
			consumed = held
		}
		if consumed > 0 {
			s = s.WithItemDelta(item, -consumed)
		}
	}

	for _, item := range sortedItemKeys(r.ItemsProduced) {
		produced := int(math.Floor(r.ItemsProduced[item] * span))
		if space := s.Capacity() - s.TotalItems(); produced > space {
			produced = space
		}
		if produced > 0 {
			s = s.WithItemDelta(item, produced)
		}
	}

	deaths := 0
	if r.HPLossPerTick > 0 {
		hp := s.HP() - int(math.Round(r.HPLossPerTick*span))
		for hp <= 0 {
			deaths++
			hp += s.MaxHP()
		}
		s = s.WithHPSet(hp)
	}

	return s, deaths
}

func sortedSkillKeys(m map[ids.SkillID]float64) []ids.SkillID {
	keys := make([]ids.SkillID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedItemKeys(m map[ids.ItemID]float64) []ids.ItemID {
	keys := make([]ids.ItemID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
