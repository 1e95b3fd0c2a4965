package replay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/planner"
	"github.com/lox/idleplanner/internal/rates"
	"github.com/lox/idleplanner/internal/registry"
	"github.com/lox/idleplanner/internal/sim"
)

func planFor(t *testing.T, reg *registry.Registry, st gamestate.State, goal planner.Goal) *planner.Plan {
	t.Helper()
	res := planner.NewSolver(reg, planner.Options{}).Solve(context.Background(), st, goal)
	require.True(t, res.Success(), "solve failed: %s", res.Failure)
	return res.Plan
}

func TestExecuteCurrencyPlan(t *testing.T) {
	reg := registry.Fixture()
	st := gamestate.New(reg,
		gamestate.WithActive(registry.ActionOakTree),
		gamestate.WithCapacity(500),
	)
	goal := planner.NewReachCurrency(100, rates.NewVendorSell(reg))
	plan := planFor(t, reg, st, goal)

	e := NewExecutor(reg, sim.New(reg, 42), nil)
	result := e.Execute(st, plan)

	require.False(t, result.Diverged, "boundaries: %+v", result.Boundaries)
	assert.GreaterOrEqual(t, result.FinalState.Gold(), 100)
	for _, b := range result.Boundaries {
		assert.Equal(t, Expected, b.Class, "boundary %q", b.Reason)
	}
	// Oak trees are deterministic 3 tick actions: reality should land
	// near the expectation.
	assert.InDelta(t, float64(result.PlannedTicks), float64(result.ActualTicks),
		float64(result.PlannedTicks)/2)
}

func TestExecuteConsumerPlanAlternates(t *testing.T) {
	reg := registry.Fixture()
	st := gamestate.New(reg,
		gamestate.WithItem(registry.ItemOakLog, 5),
		gamestate.WithActive(registry.ActionBurnOak),
		gamestate.WithCapacity(500),
	)
	goal := planner.NewReachSkillLevel(reg, registry.SkillFiremaking, 5)
	plan := planFor(t, reg, st, goal)

	e := NewExecutor(reg, sim.New(reg, 7), nil)
	result := e.Execute(st, plan)

	require.False(t, result.Diverged, "boundaries: %+v", result.Boundaries)
	assert.GreaterOrEqual(t, result.FinalState.XP(registry.SkillFiremaking), goal.TargetXP)
}

func TestExecuteReportsUnavailableInteraction(t *testing.T) {
	reg := registry.Fixture()
	st := gamestate.New(reg)

	// A hand-built plan that buys an axe it cannot afford.
	plan := &planner.Plan{
		Steps: []planner.Step{
			planner.InteractionStep{Interaction: gamestate.Buy{Offer: registry.OfferIronAxe}},
		},
	}

	e := NewExecutor(reg, sim.New(reg, 1), nil)
	result := e.Execute(st, plan)

	require.True(t, result.Diverged)
	require.Len(t, result.Boundaries, 1)
	assert.Equal(t, Unexpected, result.Boundaries[0].Class)
	assert.Contains(t, result.Boundaries[0].Reason, "unavailable")
}

func TestExecuteReportsNoProgress(t *testing.T) {
	reg := registry.Fixture()
	// Idle state: a wait can never advance.
	st := gamestate.New(reg)
	plan := &planner.Plan{
		Steps: []planner.Step{
			planner.WaitStep{
				Ticks:     10,
				Condition: planner.UntilSkillXP{Skill: registry.SkillWoodcutting, TargetXP: 100},
			},
		},
		TotalTicks: 10,
	}

	e := NewExecutor(reg, sim.New(reg, 1), nil)
	result := e.Execute(st, plan)

	require.True(t, result.Diverged)
	require.Len(t, result.Boundaries, 1)
	assert.Equal(t, Unexpected, result.Boundaries[0].Class)
	assert.Contains(t, result.Boundaries[0].Reason, "no progress")
}

func TestExecuteMacroWithRestocking(t *testing.T) {
	reg := registry.Fixture()
	st := gamestate.New(reg, gamestate.WithCapacity(500))

	// A hand-built consuming macro: the executor must alternate between
	// burning and chopping on its own.
	target := float64(reg.XP().XPForLevel(3))
	cond := planner.UntilSkillXP{Skill: registry.SkillFiremaking, TargetXP: target}
	plan := &planner.Plan{
		Steps: []planner.Step{
			planner.MacroStep{
				Macro: planner.TrainConsumingSkillUntil{
					Skill:   registry.SkillFiremaking,
					Primary: planner.AtGoalLevel{Skill: registry.SkillFiremaking, TargetXP: target},
				},
				Ticks:     800,
				Condition: planner.AnyOf{Conds: []planner.WaitCondition{cond}},
				Switched:  registry.ActionBurnOak,
			},
		},
		TotalTicks: 800,
	}

	e := NewExecutor(reg, sim.New(reg, 21), nil)
	result := e.Execute(st, plan)

	require.False(t, result.Diverged, "boundaries: %+v", result.Boundaries)
	assert.GreaterOrEqual(t, result.FinalState.XP(registry.SkillFiremaking), target)
	assert.Greater(t, result.FinalState.XP(registry.SkillWoodcutting), 0.0,
		"restocking must have trained the producer")
}

func TestExecuteCountsDeaths(t *testing.T) {
	reg := registry.Fixture()
	st := gamestate.New(reg,
		gamestate.WithActive(registry.ActionPickpocket),
		gamestate.WithHP(4, 4),
	)
	plan := &planner.Plan{
		Steps: []planner.Step{
			planner.WaitStep{
				Ticks:     4000,
				Condition: planner.UntilSkillXP{Skill: registry.SkillThieving, TargetXP: 300},
			},
		},
		TotalTicks: 4000,
	}

	e := NewExecutor(reg, sim.New(reg, 13), nil)
	result := e.Execute(st, plan)
	require.False(t, result.Diverged, "boundaries: %+v", result.Boundaries)
	assert.Greater(t, result.Deaths, 0, "4 max hp against max hit 4 must die sometimes")
}

func TestSummary(t *testing.T) {
	s := Summary(ExecutionResult{
		PlannedTicks: 100,
		ActualTicks:  110,
		Boundaries: []Boundary{
			{Class: Expected}, {Class: Unexpected},
		},
	})
	assert.Contains(t, s, "planned=100")
	assert.Contains(t, s, "expected=1")
	assert.Contains(t, s, "unexpected=1")
}
