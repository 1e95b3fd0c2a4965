package display

import (
	"fmt"
	"strings"

	"github.com/lox/idleplanner/internal/planner"
	"github.com/lox/idleplanner/internal/replay"
)

// RenderPlan formats a plan as a numbered step list with segment
// markers and totals.
func RenderPlan(styles *Styles, goal planner.Goal, plan *planner.Plan) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Plan: "+goal.Label()) + "\n")
	if plan.Empty() {
		b.WriteString(styles.Good.Render("goal already satisfied; nothing to do") + "\n")
		return b.String()
	}

	segments := make(map[int]string, len(plan.Segments))
	for _, mark := range plan.Segments {
		segments[mark.Index] = mark.Reason
	}

	for i, step := range plan.Steps {
		if reason, ok := segments[i]; ok {
			b.WriteString(styles.Segment.Render("  -- segment: "+reason) + "\n")
		}
		line := fmt.Sprintf("%3d. %s", i+1, step.Label())
		if ticks := step.StepTicks(); ticks > 0 {
			line += styles.Ticks.Render(fmt.Sprintf("  [%d ticks]", ticks))
		}
		b.WriteString(styles.Step.Render(line) + "\n")
	}

	b.WriteString(styles.Header.Render(fmt.Sprintf(
		"total: %d ticks, %d interactions", plan.TotalTicks, plan.InteractionCount)))
	if plan.ExpectedDeaths > 0 {
		b.WriteString(styles.Bad.Render(fmt.Sprintf("  expected deaths: %d", plan.ExpectedDeaths)))
	}
	b.WriteString("\n")
	return b.String()
}

// RenderProfile formats search statistics.
func RenderProfile(styles *Styles, profile planner.Profile) string {
	return styles.Dim.Render("search: "+profile.String()) + "\n"
}

// RenderExecution formats a replay result, highlighting unexpected
// boundaries.
func RenderExecution(styles *Styles, result replay.ExecutionResult) string {
	var b strings.Builder
	b.WriteString(styles.Header.Render("Replay: "+replay.Summary(result)) + "\n")
	for _, boundary := range result.Boundaries {
		line := fmt.Sprintf("  step %d: %s (planned %d, actual %d)",
			boundary.StepIndex+1, boundary.Reason, boundary.PlannedTicks, boundary.ActualTicks)
		if boundary.Class == replay.Expected {
			b.WriteString(styles.Good.Render(line) + "\n")
		} else {
			b.WriteString(styles.Bad.Render(line) + "\n")
		}
	}
	return b.String()
}
