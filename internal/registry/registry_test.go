package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureRealmIsValid(t *testing.T) {
	r := Fixture()
	require.NotNil(t, r)

	assert.Len(t, r.Skills(), 5)
	assert.NotNil(t, r.Action(ActionOakTree))
	assert.Nil(t, r.Action("ember:woodcutting/ember:no_such_tree"))

	wc := r.ActionsForSkill(SkillWoodcutting)
	require.Len(t, wc, 3)
	for i := 1; i < len(wc); i++ {
		assert.Less(t, wc[i-1].ID, wc[i].ID, "actions must be sorted by id")
	}

	assert.True(t, r.Action(ActionBurnOak).Consuming())
	assert.False(t, r.Action(ActionOakTree).Consuming())
	assert.True(t, r.Action(ActionPickpocket).Stochastic())
	assert.Equal(t, 5, r.SellValue(ItemOakLog))
	assert.Equal(t, 0, r.SellValue("ember:nonexistent"))
}

func TestChainTiersContiguous(t *testing.T) {
	r := Fixture()
	axes := r.ChainOffers("axe")
	require.Len(t, axes, 2)
	assert.Equal(t, 1, axes[0].Tier)
	assert.Equal(t, 2, axes[1].Tier)
}

func TestRegistryRejectsBadData(t *testing.T) {
	xp := StandardTable(99)

	_, err := New([]Action{{
		ID: ActionOakTree, Skill: SkillWoodcutting,
		MinTicks: 0, MaxTicks: 0,
		Variants: []Variant{{XP: 1}},
	}}, nil, nil, xp)
	assert.ErrorContains(t, err, "invalid duration range")

	_, err = New([]Action{{
		ID: ActionOakTree, Skill: SkillFiremaking,
		MinTicks: 1, MaxTicks: 1,
		Variants: []Variant{{XP: 1}},
	}}, nil, nil, xp)
	assert.ErrorContains(t, err, "id embeds")

	_, err = New(nil, nil, []Offer{
		{ID: OfferIronAxe, Cost: 10, Chain: "axe", Tier: 1},
		{ID: OfferSteelAxe, Cost: 20, Chain: "axe", Tier: 3},
	}, xp)
	assert.ErrorContains(t, err, "not contiguous")
}

func TestXPTable(t *testing.T) {
	table, err := NewXPTable([]int64{0, 100, 300, 600})
	require.NoError(t, err)

	assert.Equal(t, 1, table.LevelFor(0))
	assert.Equal(t, 1, table.LevelFor(99))
	assert.Equal(t, 2, table.LevelFor(100))
	assert.Equal(t, 3, table.LevelFor(300))
	assert.Equal(t, 4, table.LevelFor(600))
	assert.Equal(t, 4, table.LevelFor(1e9))

	assert.Equal(t, int64(0), table.XPForLevel(1))
	assert.Equal(t, int64(300), table.XPForLevel(3))
	assert.Equal(t, int64(600), table.XPForLevel(40))

	next, ok := table.NextBoundary(150)
	require.True(t, ok)
	assert.Equal(t, int64(300), next)
	_, ok = table.NextBoundary(600)
	assert.False(t, ok)

	_, err = NewXPTable([]int64{0, 100, 100})
	assert.Error(t, err)
	_, err = NewXPTable([]int64{5, 100})
	assert.Error(t, err)
}

func TestStandardTableMonotone(t *testing.T) {
	table := StandardTable(99)
	assert.Equal(t, 99, table.MaxLevel())
	prev := int64(-1)
	for l := 1; l <= 99; l++ {
		xp := table.XPForLevel(l)
		require.Greater(t, xp, prev, "level %d", l)
		prev = xp
	}
}

const realmHCL = `
xp {
  thresholds = [0, 100, 300]
}

item "test:log" {
  sell = 5
}

offer "test:axe" {
  cost           = 50
  skill          = "test:woodcutting"
  chain          = "axe"
  tier           = 1
  duration_scale = 0.9
}

action "test:woodcutting/test:oak" {
  ticks      = [3]
  tool_chain = "axe"

  variant {
    xp = 10

    output "test:log" {
      qty = 1
    }
  }
}

action "test:firemaking/test:burn" {
  ticks   = [2, 4]
  mastery = "burn"

  variant {
    xp = 15

    input "test:log" {
      qty = 1
    }
  }
}
`

func TestParseRealmHCL(t *testing.T) {
	r, err := ParseRealm([]byte(realmHCL), "realm.hcl")
	require.NoError(t, err)

	oak := r.Action("test:woodcutting/test:oak")
	require.NotNil(t, oak)
	assert.Equal(t, 3, oak.MinTicks)
	assert.Equal(t, 3, oak.MaxTicks)
	assert.Equal(t, "axe", oak.ToolChain)
	assert.Equal(t, MasteryStandard, oak.Mastery)

	burn := r.Action("test:firemaking/test:burn")
	require.NotNil(t, burn)
	assert.True(t, burn.Consuming())
	assert.Equal(t, 2, burn.MinTicks)
	assert.Equal(t, 4, burn.MaxTicks)
	assert.Equal(t, MasteryBurn, burn.Mastery)

	assert.Equal(t, int64(300), r.XP().XPForLevel(3))
}

func TestBundledRealmFileMatchesFixture(t *testing.T) {
	loaded, err := LoadRealm("../../realms/ember.hcl")
	require.NoError(t, err)
	fixture := Fixture()

	require.Len(t, loaded.Actions(), len(fixture.Actions()))
	require.Len(t, loaded.Offers(), len(fixture.Offers()))
	for _, want := range fixture.Actions() {
		got := loaded.Action(want.ID)
		require.NotNil(t, got, "action %s missing from realm file", want.ID)
		assert.Equal(t, want.UnlockLevel, got.UnlockLevel, "unlock for %s", want.ID)
		assert.Equal(t, want.MinTicks, got.MinTicks, "min ticks for %s", want.ID)
		assert.Equal(t, want.MaxTicks, got.MaxTicks, "max ticks for %s", want.ID)
		assert.Equal(t, want.Variant(0).XP, got.Variant(0).XP, "xp for %s", want.ID)
		assert.Equal(t, want.Consuming(), got.Consuming(), "consuming for %s", want.ID)
	}
	for _, want := range fixture.Items() {
		assert.Equal(t, want.SellValue, loaded.SellValue(want.ID), "sell for %s", want.ID)
	}
}

const snapshotHCL = `
gold     = 250
capacity = 40
active   = "test:woodcutting/test:oak"

skill "test:woodcutting" {
  xp = 120
}

stack "test:log" {
  qty = 8
}

owned "test:axe" {
  count = 1
}
`

func TestParseSnapshotHCL(t *testing.T) {
	snap, err := ParseSnapshot([]byte(snapshotHCL), "save.hcl")
	require.NoError(t, err)
	assert.Equal(t, 250, snap.Gold)
	assert.Equal(t, 40, snap.Capacity)
	assert.Equal(t, "test:woodcutting/test:oak", snap.Active)
	require.Len(t, snap.Skills, 1)
	assert.Equal(t, 120.0, snap.Skills[0].XP)
	require.Len(t, snap.Inventory, 1)
	assert.Equal(t, 8, snap.Inventory[0].Qty)
}
