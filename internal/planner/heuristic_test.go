package planner

import (
	"math"
	"testing"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/rates"
	"github.com/lox/idleplanner/internal/registry"
)

func newFixtureHeuristic() (*Heuristic, *registry.Registry) {
	reg := registry.Fixture()
	return NewHeuristic(rates.NewModel(reg), rates.NewVendorSell(reg)), reg
}

func TestEstimateZeroWhenSatisfied(t *testing.T) {
	h, reg := newFixtureHeuristic()
	s := gamestate.New(reg, gamestate.WithSkillXP(registry.SkillWoodcutting, 1e6))

	goal := NewReachSkillLevel(reg, registry.SkillWoodcutting, 10)
	if got := h.Estimate(s, goal); got != 0 {
		t.Fatalf("satisfied goal estimate: got %v want 0", got)
	}
}

func TestEstimateInfiniteForUnreachableSkill(t *testing.T) {
	h, reg := newFixtureHeuristic()
	s := gamestate.New(reg)

	goal := ReachSkillLevel{Skill: "t:no_such_skill", Level: 10, TargetXP: 500}
	if got := h.Estimate(s, goal); !math.IsInf(got, 1) {
		t.Fatalf("unreachable skill estimate: got %v want +Inf", got)
	}
}

func TestEstimateAccountsForUnlockBoundaries(t *testing.T) {
	h, reg := newFixtureHeuristic()
	s := gamestate.New(reg)

	// A deep woodcutting goal crosses the willow unlock at level 10;
	// the estimate must be strictly cheaper than training oak all the
	// way, because willow's best-case rate takes over past the boundary.
	goal := NewReachSkillLevel(reg, registry.SkillWoodcutting, 30)
	est := h.Estimate(s, goal)

	oak := reg.Action(registry.ActionOakTree)
	oakOnly := math.Ceil(goal.TargetXP / rates.NewModel(reg).BestCase(oak).XP(registry.SkillWoodcutting))
	if est >= oakOnly {
		t.Fatalf("piecewise estimate %v should beat single-action bound %v", est, oakOnly)
	}
	if est <= 0 {
		t.Fatalf("estimate must be positive, got %v", est)
	}
}

func TestEstimateStockCreditForConsumers(t *testing.T) {
	h, reg := newFixtureHeuristic()

	goal := NewReachSkillLevel(reg, registry.SkillFiremaking, 10)
	bare := gamestate.New(reg)
	stocked := gamestate.New(reg, gamestate.WithItem(registry.ItemOakLog, 50))

	if h.Estimate(stocked, goal) >= h.Estimate(bare, goal) {
		t.Fatalf("banked inputs must lower the consumer estimate: %v vs %v",
			h.Estimate(stocked, goal), h.Estimate(bare, goal))
	}
}

func TestEstimateMonotoneInProgress(t *testing.T) {
	h, reg := newFixtureHeuristic()
	goal := NewReachSkillLevel(reg, registry.SkillWoodcutting, 20)

	prev := math.Inf(1)
	for xp := 0.0; xp <= goal.TargetXP; xp += goal.TargetXP / 8 {
		s := gamestate.New(reg, gamestate.WithSkillXP(registry.SkillWoodcutting, xp))
		est := h.Estimate(s, goal)
		if est > prev {
			t.Fatalf("estimate rose with progress at xp %v: %v > %v", xp, est, prev)
		}
		prev = est
	}
}

func TestSustainablePairsConsumerWithProducer(t *testing.T) {
	h, reg := newFixtureHeuristic()
	s := gamestate.New(reg)

	burn := reg.Action(registry.ActionBurnOak)
	rate, producer := h.Sustainable(s, burn)
	if producer == nil || producer.ID != registry.ActionOakTree {
		t.Fatalf("burn oak should pair with the oak tree, got %v", producer)
	}
	// One log costs 3 producer ticks; burning it takes 2: 15 xp per 5
	// tick cycle.
	if got, want := rate, 3.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("sustainable rate: got %v want %v", got, want)
	}

	// The raw rate ignores supply and must exceed the sustainable one.
	raw := rates.NewModel(reg).ForAction(s, registry.ActionBurnOak, 0).XP(registry.SkillFiremaking)
	if rate >= raw {
		t.Fatalf("sustainable %v must be below raw %v", rate, raw)
	}
}

func TestSustainableWithoutProducerFallsBackToStock(t *testing.T) {
	h, reg := newFixtureHeuristic()

	// Iron smelting needs iron ore; the vein is locked at mining 15.
	bare := gamestate.New(reg, gamestate.WithSkillXP(registry.SkillSmithing,
		float64(reg.XP().XPForLevel(10))))
	smelt := reg.Action(registry.ActionSmeltFe)

	rate, producer := h.Sustainable(bare, smelt)
	if rate != 0 || producer != nil {
		t.Fatalf("no producer and no stock should be zero-rate, got %v", rate)
	}

	stocked := bare.WithItemDelta(registry.ItemIronOre, 10)
	rate, _ = h.Sustainable(stocked, smelt)
	if rate <= 0 {
		t.Fatalf("banked ore should allow the raw rate, got %v", rate)
	}
}

func TestCurrencyEstimateUsesBestCase(t *testing.T) {
	h, reg := newFixtureHeuristic()
	s := gamestate.New(reg)

	goal := NewReachCurrency(1000, rates.NewVendorSell(reg))
	est := h.Estimate(s, goal)
	if est <= 0 || math.IsInf(est, 1) {
		t.Fatalf("currency estimate out of range: %v", est)
	}

	// Owning better tools can only shrink reality, never beat the
	// best-case bound: the estimate must not grow.
	axed := gamestate.New(reg, gamestate.WithOwned(registry.OfferIronAxe, 1),
		gamestate.WithOwned(registry.OfferSteelAxe, 1))
	if h.Estimate(axed, goal) > est {
		t.Fatalf("tools must not raise the estimate: %v > %v", h.Estimate(axed, goal), est)
	}
}
