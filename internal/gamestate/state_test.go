package gamestate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/idleplanner/internal/registry"
)

func newTestState(t *testing.T, opts ...Option) State {
	t.Helper()
	return New(registry.Fixture(), opts...)
}

func TestStateImmutability(t *testing.T) {
	base := newTestState(t, WithGold(100), WithItem(registry.ItemOakLog, 5))

	richer := base.WithGoldDelta(50)
	assert.Equal(t, 100, base.Gold())
	assert.Equal(t, 150, richer.Gold())

	trained := base.WithXPDelta(registry.SkillWoodcutting, 120)
	assert.Equal(t, 0.0, base.XP(registry.SkillWoodcutting))
	assert.Equal(t, 120.0, trained.XP(registry.SkillWoodcutting))

	stocked := base.WithItemDelta(registry.ItemOakLog, 3)
	assert.Equal(t, 5, base.Item(registry.ItemOakLog))
	assert.Equal(t, 8, stocked.Item(registry.ItemOakLog))

	mastered := base.WithMasteryDelta(registry.ActionOakTree, 40)
	assert.Equal(t, 0.0, base.MasteryXP(registry.ActionOakTree))
	assert.Equal(t, 40.0, mastered.MasteryXP(registry.ActionOakTree))
}

func TestStateInvariantPanics(t *testing.T) {
	base := newTestState(t, WithGold(10))

	assert.Panics(t, func() { base.WithGoldDelta(-11) })
	assert.Panics(t, func() { base.WithItemDelta(registry.ItemOakLog, -1) })
	assert.Panics(t, func() { base.WithXPDelta(registry.SkillWoodcutting, -1) })
}

func TestUnlockDerivation(t *testing.T) {
	base := newTestState(t)
	assert.True(t, base.Unlocked(registry.ActionOakTree))
	assert.False(t, base.Unlocked(registry.ActionWillowTree), "willow needs level 10")

	reg := base.Registry()
	lvl10 := base.WithXPDelta(registry.SkillWoodcutting, float64(reg.XP().XPForLevel(10)))
	assert.True(t, lvl10.Unlocked(registry.ActionWillowTree))
	assert.False(t, lvl10.Unlocked(registry.ActionYewTree))

	unlocked := lvl10.UnlockedActions(registry.SkillWoodcutting)
	require.Len(t, unlocked, 2)
}

func TestSwitchInteraction(t *testing.T) {
	base := newTestState(t)

	next := Switch{Action: registry.ActionOakTree}.Apply(base)
	assert.Equal(t, registry.ActionOakTree, next.Active())
	assert.Equal(t, "", string(base.Active()))

	assert.Panics(t, func() { Switch{Action: registry.ActionWillowTree}.Apply(base) })
}

func TestBuyInteraction(t *testing.T) {
	base := newTestState(t, WithGold(60))

	buy := Buy{Offer: registry.OfferIronAxe}
	require.True(t, buy.Available(base))
	next := buy.Apply(base)
	assert.Equal(t, 10, next.Gold())
	assert.Equal(t, 1, next.Owned(registry.OfferIronAxe))
	assert.Equal(t, 1, next.ChainTier("axe"))

	// Steel axe requires tier 1 owned and level 10.
	steel := Buy{Offer: registry.OfferSteelAxe}
	rich := next.WithGoldDelta(1000)
	assert.False(t, steel.Available(rich), "level gate should hold")

	leveled := rich.WithXPDelta(registry.SkillWoodcutting, float64(rich.Registry().XP().XPForLevel(10)))
	assert.True(t, steel.Available(leveled))

	poor := base
	assert.Panics(t, func() { Buy{Offer: registry.OfferSteelAxe}.Apply(poor) })
}

func TestSellInteraction(t *testing.T) {
	base := newTestState(t,
		WithItem(registry.ItemOakLog, 4),
		WithItem(registry.ItemWillowLog, 2),
	)

	all := Sell{Policy: SellAll()}
	require.True(t, all.Available(base))
	sold := all.Apply(base)
	assert.Equal(t, 4*5+2*12, sold.Gold())
	assert.Equal(t, 0, sold.TotalItems())

	keepOak := Sell{Policy: SellExcept(registry.ItemOakLog)}
	partial := keepOak.Apply(base)
	assert.Equal(t, 2*12, partial.Gold())
	assert.Equal(t, 4, partial.Item(registry.ItemOakLog))

	empty := newTestState(t)
	assert.False(t, all.Available(empty))
	assert.Panics(t, func() { all.Apply(empty) })
}

func TestEffectiveCurrency(t *testing.T) {
	base := newTestState(t, WithGold(30), WithItem(registry.ItemOakLog, 4))

	assert.Equal(t, 30+20, base.EffectiveCurrency(SellAll()))
	assert.Equal(t, 30, base.EffectiveCurrency(SellExcept(registry.ItemOakLog)))
}

func TestSellPolicyEqual(t *testing.T) {
	assert.True(t, SellAll().Equal(SellAll()))
	assert.True(t, SellExcept(registry.ItemOakLog).Equal(SellExcept(registry.ItemOakLog)))
	assert.False(t, SellAll().Equal(SellExcept(registry.ItemOakLog)))
	assert.False(t, SellExcept(registry.ItemOakLog).Equal(SellExcept(registry.ItemWillowLog)))
}

func TestFromSnapshot(t *testing.T) {
	reg := registry.Fixture()
	snap := &registry.SnapshotConfig{
		Gold:     75,
		Capacity: 30,
		Active:   string(registry.ActionOakTree),
		Skills:   []registry.SnapshotSkill{{ID: string(registry.SkillWoodcutting), XP: 500}},
		Inventory: []registry.SnapshotStack{
			{Item: string(registry.ItemOakLog), Qty: 3},
		},
		Owned: []registry.SnapshotUpgrade{{Offer: string(registry.OfferIronAxe)}},
	}
	s, err := FromSnapshot(reg, snap)
	require.NoError(t, err)
	assert.Equal(t, 75, s.Gold())
	assert.Equal(t, 30, s.Capacity())
	assert.Equal(t, registry.ActionOakTree, s.Active())
	assert.Equal(t, 500.0, s.XP(registry.SkillWoodcutting))
	assert.Equal(t, 3, s.Item(registry.ItemOakLog))
	assert.Equal(t, 1, s.Owned(registry.OfferIronAxe))

	snap.Active = string(registry.ActionYewTree)
	_, err = FromSnapshot(reg, snap)
	assert.ErrorContains(t, err, "locked")
}
