package planner

import (
	"testing"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/registry"
)

func TestCompressMergesAdjacentWaits(t *testing.T) {
	condA := UntilSkillXP{Skill: registry.SkillWoodcutting, TargetXP: 100}
	condB := UntilSkillXP{Skill: registry.SkillWoodcutting, TargetXP: 300}

	p := Plan{
		Steps: []Step{
			WaitStep{Ticks: 40, Condition: condA},
			WaitStep{Ticks: 60, Condition: condB},
		},
		TotalTicks: 100,
	}
	out := Compress(p)

	if len(out.Steps) != 1 {
		t.Fatalf("steps after compression: got %d want 1", len(out.Steps))
	}
	w, ok := out.Steps[0].(WaitStep)
	if !ok {
		t.Fatalf("expected a wait step, got %T", out.Steps[0])
	}
	if w.Ticks != 100 {
		t.Fatalf("merged ticks: got %d want 100", w.Ticks)
	}
	// The surviving condition is the last one: it encodes the actual
	// stop reason.
	if w.Condition != WaitCondition(condB) {
		t.Fatalf("surviving condition: got %v", w.Condition.Label())
	}
	if out.TotalTicks != 100 {
		t.Fatalf("total ticks must be preserved: got %d", out.TotalTicks)
	}
}

func TestCompressDropsRedundantSwitches(t *testing.T) {
	cond := UntilSkillXP{Skill: registry.SkillWoodcutting, TargetXP: 100}
	p := Plan{
		Steps: []Step{
			InteractionStep{Interaction: gamestate.Switch{Action: registry.ActionOakTree}},
			WaitStep{Ticks: 10, Condition: cond},
			InteractionStep{Interaction: gamestate.Switch{Action: registry.ActionOakTree}},
			WaitStep{Ticks: 10, Condition: cond},
		},
		TotalTicks:       20,
		InteractionCount: 2,
	}
	out := Compress(p)

	switches := 0
	for _, step := range out.Steps {
		if in, ok := step.(InteractionStep); ok {
			if _, isSwitch := in.Interaction.(gamestate.Switch); isSwitch {
				switches++
			}
		}
	}
	if switches != 1 {
		t.Fatalf("redundant switch should collapse: got %d switches", switches)
	}
	if out.InteractionCount != 1 {
		t.Fatalf("interaction count: got %d want 1", out.InteractionCount)
	}
	if out.TotalTicks != 20 {
		t.Fatalf("total ticks: got %d want 20", out.TotalTicks)
	}
}

func TestCompressKeepsDistinctSwitches(t *testing.T) {
	cond := UntilSkillXP{Skill: registry.SkillFiremaking, TargetXP: 50}
	p := Plan{
		Steps: []Step{
			InteractionStep{Interaction: gamestate.Switch{Action: registry.ActionOakTree}},
			WaitStep{Ticks: 15, Condition: cond},
			InteractionStep{Interaction: gamestate.Switch{Action: registry.ActionBurnOak}},
			WaitStep{Ticks: 10, Condition: cond},
		},
		TotalTicks:       25,
		InteractionCount: 2,
	}
	out := Compress(p)
	if len(out.Steps) != 4 {
		t.Fatalf("distinct switches must survive: got %d steps", len(out.Steps))
	}
}

func TestSegmentMarkers(t *testing.T) {
	goalCond := UntilGoal{Goal: ReachSkillLevel{Skill: registry.SkillWoodcutting, Level: 10, TargetXP: 100}}
	unlockCond := UntilSkillXP{Skill: registry.SkillWoodcutting, TargetXP: 50}
	p := Plan{
		Steps: []Step{
			WaitStep{Ticks: 20, Condition: unlockCond},
			InteractionStep{Interaction: gamestate.Buy{Offer: registry.OfferIronAxe}},
			WaitStep{Ticks: 30, Condition: goalCond},
		},
		TotalTicks: 50,
	}
	out := Compress(p)

	if len(out.Segments) != 2 {
		t.Fatalf("segments: got %d want 2 (%+v)", len(out.Segments), out.Segments)
	}
	if out.Segments[0].Index != 0 {
		t.Fatalf("first boundary should be the non-goal wait, got index %d", out.Segments[0].Index)
	}
	if out.Segments[1].Index != 1 {
		t.Fatalf("second boundary should be the purchase, got index %d", out.Segments[1].Index)
	}
}
