package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/registry"
)

func TestStepProducerAccrues(t *testing.T) {
	reg := registry.Fixture()
	s := New(reg, 42)
	st := gamestate.New(reg,
		gamestate.WithActive(registry.ActionOakTree),
		gamestate.WithCapacity(100),
	)

	res := s.Step(st)
	require.Equal(t, EventNone, res.Event)
	assert.Equal(t, int64(3), res.Ticks)
	assert.Equal(t, 1, res.State.Item(registry.ItemOakLog))
	assert.Equal(t, 10.0, res.State.XP(registry.SkillWoodcutting))
	assert.Greater(t, res.State.MasteryXP(registry.ActionOakTree), 0.0)
}

func TestStepIdleAndLocked(t *testing.T) {
	reg := registry.Fixture()
	s := New(reg, 1)

	idle := s.Step(gamestate.New(reg))
	assert.Equal(t, EventIdle, idle.Event)
	assert.Equal(t, int64(0), idle.Ticks)

	// Willow trees unlock at woodcutting 10; a fresh state is level 1.
	locked := s.Step(gamestate.New(reg, gamestate.WithActive(registry.ActionWillowTree)))
	assert.Equal(t, EventIdle, locked.Event)
	assert.Equal(t, int64(0), locked.Ticks)
}

func TestStepConsumerStarvation(t *testing.T) {
	reg := registry.Fixture()
	s := New(reg, 7)
	st := gamestate.New(reg,
		gamestate.WithActive(registry.ActionBurnOak),
		gamestate.WithItem(registry.ItemOakLog, 1),
	)

	first := s.Step(st)
	require.Equal(t, EventNone, first.Event)
	assert.Equal(t, 0, first.State.Item(registry.ItemOakLog))
	assert.Equal(t, 15.0, first.State.XP(registry.SkillFiremaking))

	second := s.Step(first.State)
	assert.Equal(t, EventNoInputs, second.Event)
	assert.Equal(t, int64(0), second.Ticks)
}

func TestStepInventoryFull(t *testing.T) {
	reg := registry.Fixture()
	s := New(reg, 3)
	st := gamestate.New(reg,
		gamestate.WithActive(registry.ActionOakTree),
		gamestate.WithCapacity(2),
		gamestate.WithItem(registry.ItemOakLog, 2),
	)

	res := s.Step(st)
	assert.Equal(t, EventInventoryFull, res.Event)
	assert.Equal(t, 2, res.State.TotalItems())
}

func TestStepStochasticDeterministicPerSeed(t *testing.T) {
	reg := registry.Fixture()
	st := gamestate.New(reg, gamestate.WithActive(registry.ActionPickpocket))

	runs := func(seed int64) (gold int, ticks int64) {
		s := New(reg, seed)
		cur := st
		for i := 0; i < 50; i++ {
			res := s.Step(cur)
			cur = res.State
			ticks += res.Ticks
		}
		return cur.Gold(), ticks
	}

	goldA, ticksA := runs(99)
	goldB, ticksB := runs(99)
	assert.Equal(t, goldA, goldB, "same seed must replay identically")
	assert.Equal(t, ticksA, ticksB)

	goldC, _ := runs(100)
	// Different seeds almost surely diverge over 50 attempts.
	assert.NotEqual(t, goldA, goldC)
}

func TestStepStochasticOutcomesWithinBounds(t *testing.T) {
	reg := registry.Fixture()
	s := New(reg, 5)
	a := reg.Action(registry.ActionPickpocket)
	cur := gamestate.New(reg, gamestate.WithActive(registry.ActionPickpocket))

	for i := 0; i < 200; i++ {
		res := s.Step(cur)
		require.GreaterOrEqual(t, res.Ticks, int64(a.MinTicks))
		require.LessOrEqual(t, res.Ticks, int64(a.MaxTicks+a.StunTicks))
		require.GreaterOrEqual(t, res.State.HP(), 1)
		cur = res.State
	}
	assert.Greater(t, cur.Gold(), 0, "200 attempts should land some gold")
}
