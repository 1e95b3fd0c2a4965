package planner

import (
	"fmt"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/ids"
)

// Step is one entry of a plan: a zero-tick interaction, a timed wait, or
// a collapsed macro edge.
type Step interface {
	Label() string
	StepTicks() int64
}

// InteractionStep wraps a zero-tick interaction.
type InteractionStep struct {
	Interaction gamestate.Interaction
}

// Label implements Step.
func (s InteractionStep) Label() string { return s.Interaction.Label() }

// StepTicks implements Step.
func (s InteractionStep) StepTicks() int64 { return 0 }

// WaitStep advances time until its condition fired.
type WaitStep struct {
	Ticks     int64
	Condition WaitCondition
}

// Label implements Step.
func (s WaitStep) Label() string {
	return fmt.Sprintf("wait %d ticks until %s", s.Ticks, s.Condition.Label())
}

// StepTicks implements Step.
func (s WaitStep) StepTicks() int64 { return s.Ticks }

// MacroStep is a collapsed training stretch. Switched records the
// activity the macro selected on entry, empty if it kept the current
// one.
type MacroStep struct {
	Macro     Macro
	Ticks     int64
	Condition WaitCondition
	Switched  ids.ActionID
}

// Label implements Step.
func (s MacroStep) Label() string {
	return fmt.Sprintf("%s (%d ticks)", s.Macro.Label(), s.Ticks)
}

// StepTicks implements Step.
func (s MacroStep) StepTicks() int64 { return s.Ticks }

// SegmentMarker tags a step index where the plan crosses a natural
// replanning boundary.
type SegmentMarker struct {
	Index  int
	Reason string
}

// Plan is the terminal artifact of a successful solve: the ordered
// steps plus totals and search diagnostics.
type Plan struct {
	Steps            []Step
	TotalTicks       int64
	InteractionCount int
	ExpectedDeaths   int
	Segments         []SegmentMarker

	ExpandedNodes int64
	EnqueuedNodes int64
}

// Empty reports whether the plan has no steps (goal already met).
func (p Plan) Empty() bool { return len(p.Steps) == 0 }

// Compress merges adjacent waits (summing ticks, keeping the last
// condition, which encodes the actual stop reason) and drops switches
// to the already-active action. Totals are preserved.
func Compress(p Plan) Plan {
	out := p
	out.Steps = nil
	out.Segments = nil

	var active ids.ActionID = "\x00unknown"
	for _, step := range p.Steps {
		switch step := step.(type) {
		case WaitStep:
			if len(out.Steps) > 0 {
				if prev, ok := out.Steps[len(out.Steps)-1].(WaitStep); ok {
					out.Steps[len(out.Steps)-1] = WaitStep{
						Ticks:     prev.Ticks + step.Ticks,
						Condition: step.Condition,
					}
					continue
				}
			}
			out.Steps = append(out.Steps, step)
		case InteractionStep:
			if sw, ok := step.Interaction.(gamestate.Switch); ok {
				if sw.Action == active {
					out.InteractionCount--
					continue
				}
				active = sw.Action
			}
			out.Steps = append(out.Steps, step)
		case MacroStep:
			if step.Switched != "" {
				active = step.Switched
			}
			out.Steps = append(out.Steps, step)
		default:
			out.Steps = append(out.Steps, step)
		}
	}

	out.Segments = markSegments(out.Steps)
	return out
}

// markSegments tags natural replanning boundaries: purchases, sells and
// waits that ended for a reason other than the goal itself.
func markSegments(steps []Step) []SegmentMarker {
	var marks []SegmentMarker
	for i, step := range steps {
		switch step := step.(type) {
		case InteractionStep:
			switch step.Interaction.(type) {
			case gamestate.Buy:
				marks = append(marks, SegmentMarker{Index: i, Reason: step.Label()})
			}
		case WaitStep:
			if _, isGoal := step.Condition.(UntilGoal); !isGoal {
				marks = append(marks, SegmentMarker{Index: i, Reason: step.Condition.Label()})
			}
		case MacroStep:
			marks = append(marks, SegmentMarker{Index: i, Reason: step.Macro.Label()})
		}
	}
	return marks
}
