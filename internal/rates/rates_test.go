package rates

import (
	"math"
	"testing"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/registry"
)

func TestProducerRates(t *testing.T) {
	reg := registry.Fixture()
	m := NewModel(reg)
	s := gamestate.New(reg)

	r := m.ForAction(s, registry.ActionOakTree, 0)
	// Oak: 10 xp and 1 log per 3 ticks.
	if got, want := r.XP(registry.SkillWoodcutting), 10.0/3; math.Abs(got-want) > 1e-9 {
		t.Fatalf("xp rate: got %v want %v", got, want)
	}
	if got, want := r.ItemsProduced[registry.ItemOakLog], 1.0/3; math.Abs(got-want) > 1e-9 {
		t.Fatalf("log rate: got %v want %v", got, want)
	}
	if r.HPLossPerTick != 0 || r.CurrencyPerTick != 0 {
		t.Fatalf("unexpected hp/currency flow: %+v", r)
	}
}

func TestLockedAndUnknownActionsAreZero(t *testing.T) {
	reg := registry.Fixture()
	m := NewModel(reg)
	s := gamestate.New(reg)

	if r := m.ForAction(s, registry.ActionWillowTree, 0); !r.Zero() {
		t.Fatalf("locked action should be zero-rate, got %+v", r)
	}
	if r := m.ForAction(s, "ember:woodcutting/ember:ghost_tree", 0); !r.Zero() {
		t.Fatalf("unknown action should be zero-rate, got %+v", r)
	}
}

func TestConsumerRatesUnconditionalOnStock(t *testing.T) {
	reg := registry.Fixture()
	m := NewModel(reg)
	// No logs in the bank: rates still describe full throughput.
	s := gamestate.New(reg)

	r := m.ForAction(s, registry.ActionBurnOak, 0)
	if got, want := r.ItemsConsumed[registry.ItemOakLog], 0.5; math.Abs(got-want) > 1e-9 {
		t.Fatalf("consumption rate: got %v want %v", got, want)
	}
	if got, want := r.XP(registry.SkillFiremaking), 7.5; math.Abs(got-want) > 1e-9 {
		t.Fatalf("xp rate: got %v want %v", got, want)
	}
}

func TestToolTierSpeedsDuration(t *testing.T) {
	reg := registry.Fixture()
	m := NewModel(reg)

	bare := gamestate.New(reg)
	axed := gamestate.New(reg, gamestate.WithOwned(registry.OfferIronAxe, 1))

	slow := m.EffectiveDuration(bare, reg.Action(registry.ActionOakTree))
	fast := m.EffectiveDuration(axed, reg.Action(registry.ActionOakTree))
	if fast >= slow {
		t.Fatalf("iron axe should shorten duration: %v >= %v", fast, slow)
	}
	if got, want := fast, 3*0.9; math.Abs(got-want) > 1e-9 {
		t.Fatalf("duration with axe: got %v want %v", got, want)
	}
}

func TestStochasticExpectations(t *testing.T) {
	reg := registry.Fixture()
	m := NewModel(reg)
	s := gamestate.New(reg)

	a := reg.Action(registry.ActionPickpocket)
	p := m.SuccessChance(s, a)
	if p <= 0 || p >= 1 {
		t.Fatalf("success chance out of range: %v", p)
	}

	r := m.ForAction(s, registry.ActionPickpocket, 0)
	attempt := p*3 + (1-p)*(3+5)
	if got, want := r.CurrencyPerTick, p*12/2/attempt; math.Abs(got-want) > 1e-9 {
		t.Fatalf("currency rate: got %v want %v", got, want)
	}
	if got, want := r.HPLossPerTick, (1-p)*4/2/attempt; math.Abs(got-want) > 1e-9 {
		t.Fatalf("hp loss rate: got %v want %v", got, want)
	}
	if r.HPLossPerTick <= 0 {
		t.Fatal("pickpocketing must lose hp in expectation")
	}
}

func TestSuccessChanceGrowsWithLevel(t *testing.T) {
	reg := registry.Fixture()
	m := NewModel(reg)
	a := reg.Action(registry.ActionPickpocket)

	low := gamestate.New(reg)
	high := gamestate.New(reg, gamestate.WithSkillXP(registry.SkillThieving,
		float64(reg.XP().XPForLevel(50))))

	if m.SuccessChance(high, a) <= m.SuccessChance(low, a) {
		t.Fatal("success chance should grow with skill level")
	}
}

func TestMasteryCategoryRates(t *testing.T) {
	reg := registry.Fixture()
	m := NewModel(reg)

	burn := reg.Action(registry.ActionBurnOak)
	if got, want := m.MasteryPerAction(burn, 2), 1.2; math.Abs(got-want) > 1e-9 {
		t.Fatalf("burn mastery: got %v want %v", got, want)
	}
	artisan := reg.Action(registry.ActionSmeltCu)
	if got := m.MasteryPerAction(artisan, 4); got != 1.7 {
		t.Fatalf("artisan mastery is fixed 1.7, got %v", got)
	}
	standard := reg.Action(registry.ActionOakTree)
	if got := m.MasteryPerAction(standard, 3); got != 3 {
		t.Fatalf("standard mastery tracks duration, got %v", got)
	}
}

func TestVendorSellValue(t *testing.T) {
	reg := registry.Fixture()
	m := NewModel(reg)
	vm := NewVendorSell(reg)
	s := gamestate.New(reg)

	oak := vm.Value(m.ForAction(s, registry.ActionOakTree, 0))
	if got, want := oak, 5.0/3; math.Abs(got-want) > 1e-9 {
		t.Fatalf("oak value: got %v want %v", got, want)
	}

	// Smelting consumes ore worth 4 and produces a bar worth 14 every 4
	// ticks: net 10/4.
	smelt := vm.Value(m.ForAction(s, registry.ActionSmeltCu, 0))
	if got, want := smelt, 10.0/4; math.Abs(got-want) > 1e-9 {
		t.Fatalf("smelt value: got %v want %v", got, want)
	}

	burn := vm.Value(m.ForAction(s, registry.ActionBurnOak, 0))
	if burn >= 0 {
		t.Fatalf("burning logs should be negative value, got %v", burn)
	}
}
