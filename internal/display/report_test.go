package display

import (
	"strings"
	"testing"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/planner"
	"github.com/lox/idleplanner/internal/registry"
)

func plainStyles() *Styles { return &Styles{NoColour: true} }

func TestRenderPlan(t *testing.T) {
	reg := registry.Fixture()
	goal := planner.NewReachSkillLevel(reg, registry.SkillWoodcutting, 10)
	plan := &planner.Plan{
		Steps: []planner.Step{
			planner.InteractionStep{Interaction: gamestate.Switch{Action: registry.ActionOakTree}},
			planner.WaitStep{
				Ticks:     120,
				Condition: planner.UntilSkillXP{Skill: registry.SkillWoodcutting, TargetXP: 400},
			},
		},
		TotalTicks:       120,
		InteractionCount: 1,
		Segments:         []planner.SegmentMarker{{Index: 1, Reason: "woodcutting xp 400"}},
	}

	out := RenderPlan(plainStyles(), goal, plan)
	if !strings.Contains(out, "switch to oak tree") {
		t.Fatalf("missing switch step:\n%s", out)
	}
	if !strings.Contains(out, "[120 ticks]") {
		t.Fatalf("missing tick annotation:\n%s", out)
	}
	if !strings.Contains(out, "segment") {
		t.Fatalf("missing segment marker:\n%s", out)
	}
	if !strings.Contains(out, "total: 120 ticks, 1 interactions") {
		t.Fatalf("missing totals:\n%s", out)
	}
}

func TestRenderEmptyPlan(t *testing.T) {
	reg := registry.Fixture()
	goal := planner.NewReachSkillLevel(reg, registry.SkillWoodcutting, 1)
	out := RenderPlan(plainStyles(), goal, &planner.Plan{})
	if !strings.Contains(out, "nothing to do") {
		t.Fatalf("empty plan should say so:\n%s", out)
	}
}
