// Package replay executes a plan against the stochastic simulator and
// reports where and why each wait actually ended. The planner promises
// expectations; replay measures reality and classifies every boundary
// so the orchestrator can decide where to re-plan.
package replay

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/ids"
	"github.com/lox/idleplanner/internal/planner"
	"github.com/lox/idleplanner/internal/rates"
	"github.com/lox/idleplanner/internal/registry"
	"github.com/lox/idleplanner/internal/sim"
)

// BoundaryClass separates boundaries the plan anticipated from ones it
// did not.
type BoundaryClass string

const (
	// Expected covers the goal being reached, inputs depleting per
	// plan, and wait conditions firing.
	Expected BoundaryClass = "expected"

	// Unexpected covers unaffordable purchases, unavailable actions and
	// waits that made no progress.
	Unexpected BoundaryClass = "unexpected"
)

// Boundary records why one plan step's execution ended.
type Boundary struct {
	StepIndex    int
	Reason       string
	Class        BoundaryClass
	PlannedTicks int64
	ActualTicks  int64
}

// ExecutionResult is the outcome of replaying a whole plan.
type ExecutionResult struct {
	FinalState   gamestate.State
	PlannedTicks int64
	ActualTicks  int64
	Deaths       int
	Boundaries   []Boundary

	// Diverged is set when execution stopped before the last step.
	Diverged bool
}

// SlackFactor is how far past a wait's planned ticks execution runs
// before declaring the wait overrun.
const SlackFactor = 1.5

// restockAttempts is how many attempts of inputs a macro banks before
// switching back to its consumer.
const restockAttempts = 5

// Executor replays plans. Not safe for concurrent use.
type Executor struct {
	reg    *registry.Registry
	sim    *sim.Simulator
	model  *rates.Model
	logger *log.Logger
}

// NewExecutor builds an executor over a simulator. A nil logger
// disables logging.
func NewExecutor(reg *registry.Registry, simulator *sim.Simulator, logger *log.Logger) *Executor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Executor{
		reg:    reg,
		sim:    simulator,
		model:  rates.NewModel(reg),
		logger: logger,
	}
}

// Execute replays the plan step by step. Execution stops at the first
// unexpected boundary; the result carries everything observed so far.
func (e *Executor) Execute(st gamestate.State, plan *planner.Plan) ExecutionResult {
	result := ExecutionResult{PlannedTicks: plan.TotalTicks}

	for i, step := range plan.Steps {
		switch step := step.(type) {
		case planner.InteractionStep:
			if !step.Interaction.Available(st) {
				result.Boundaries = append(result.Boundaries, Boundary{
					StepIndex: i,
					Reason:    "unavailable: " + step.Label(),
					Class:     Unexpected,
				})
				result.Diverged = true
				result.FinalState = st
				return result
			}
			st = step.Interaction.Apply(st)

		case planner.WaitStep:
			var boundary Boundary
			st, boundary = e.runWait(st, i, step.Condition, step.Ticks, &result)
			result.Boundaries = append(result.Boundaries, boundary)
			if boundary.Class == Unexpected {
				result.Diverged = true
				result.FinalState = st
				return result
			}

		case planner.MacroStep:
			var boundary Boundary
			st, boundary = e.runMacro(st, i, step, &result)
			result.Boundaries = append(result.Boundaries, boundary)
			if boundary.Class == Unexpected {
				result.Diverged = true
				result.FinalState = st
				return result
			}
		}
	}

	result.FinalState = st
	return result
}

// runWait drives the simulator until the wait condition fires, an
// earlier boundary interrupts, or the slack budget runs out.
func (e *Executor) runWait(st gamestate.State, stepIndex int, cond planner.WaitCondition, plannedTicks int64, result *ExecutionResult) (gamestate.State, Boundary) {
	budget := int64(math.Ceil(float64(plannedTicks)*SlackFactor)) + 1
	elapsed := int64(0)

	for {
		if cond.Satisfied(st) {
			e.logger.Debug("wait ended", "step", stepIndex, "reason", cond.Label(),
				"planned", plannedTicks, "actual", elapsed)
			return st, Boundary{
				StepIndex: stepIndex, Reason: cond.Label(), Class: Expected,
				PlannedTicks: plannedTicks, ActualTicks: elapsed,
			}
		}
		if elapsed >= budget {
			return st, Boundary{
				StepIndex: stepIndex, Reason: "overran: " + cond.Label(), Class: Unexpected,
				PlannedTicks: plannedTicks, ActualTicks: elapsed,
			}
		}

		res := e.sim.Step(st)
		st = res.State
		elapsed += res.Ticks
		result.ActualTicks += res.Ticks

		switch res.Event {
		case sim.EventIdle:
			return st, Boundary{
				StepIndex: stepIndex, Reason: "no progress possible", Class: Unexpected,
				PlannedTicks: plannedTicks, ActualTicks: elapsed,
			}
		case sim.EventNoInputs:
			// Depletion satisfies a depletion wait; anywhere else it is
			// a divergence.
			if cond.Satisfied(st) {
				continue
			}
			return st, Boundary{
				StepIndex: stepIndex, Reason: "inputs depleted", Class: Unexpected,
				PlannedTicks: plannedTicks, ActualTicks: elapsed,
			}
		case sim.EventDeath:
			result.Deaths++
		case sim.EventInventoryFull:
			if cond.Satisfied(st) {
				continue
			}
			return st, Boundary{
				StepIndex: stepIndex, Reason: "inventory full", Class: Unexpected,
				PlannedTicks: plannedTicks, ActualTicks: elapsed,
			}
		}
	}
}

// runMacro replays a collapsed training stretch: the macro's switch,
// then its composite wait with automatic producer/consumer alternation
// when the trained action starves.
func (e *Executor) runMacro(st gamestate.State, stepIndex int, step planner.MacroStep, result *ExecutionResult) (gamestate.State, Boundary) {
	trained := step.Switched
	if trained == "" {
		trained = st.Active()
	}
	if trained != "" && st.Active() != trained {
		sw := gamestate.Switch{Action: trained}
		if !sw.Available(st) {
			return st, Boundary{
				StepIndex: stepIndex, Reason: "unavailable: " + sw.Label(), Class: Unexpected,
			}
		}
		st = sw.Apply(st)
	}

	cond := step.Condition
	budget := int64(math.Ceil(float64(step.Ticks)*SlackFactor)) + 1
	elapsed := int64(0)

	for {
		if cond.Satisfied(st) {
			return st, Boundary{
				StepIndex: stepIndex, Reason: cond.Label(), Class: Expected,
				PlannedTicks: step.Ticks, ActualTicks: elapsed,
			}
		}
		if elapsed >= budget {
			return st, Boundary{
				StepIndex: stepIndex, Reason: "overran: " + step.Macro.Label(), Class: Unexpected,
				PlannedTicks: step.Ticks, ActualTicks: elapsed,
			}
		}

		res := e.sim.Step(st)
		st = res.State
		elapsed += res.Ticks
		result.ActualTicks += res.Ticks

		switch res.Event {
		case sim.EventIdle:
			return st, Boundary{
				StepIndex: stepIndex, Reason: "no progress possible", Class: Unexpected,
				PlannedTicks: step.Ticks, ActualTicks: elapsed,
			}
		case sim.EventNoInputs:
			next, ok := e.restockTarget(st)
			if !ok {
				return st, Boundary{
					StepIndex: stepIndex, Reason: "inputs depleted", Class: Unexpected,
					PlannedTicks: step.Ticks, ActualTicks: elapsed,
				}
			}
			st = gamestate.Switch{Action: next}.Apply(st)
		case sim.EventDeath:
			result.Deaths++
		default:
			// While producing for a starved consumer, hop back once the
			// stock covers a batch of attempts.
			if trained != "" && st.Active() != trained {
				refill := planner.UntilInputsAvailable{Action: trained, MinInputs: restockAttempts}
				if refill.Satisfied(st) {
					st = gamestate.Switch{Action: trained}.Apply(st)
				}
			}
		}
	}
}

// restockTarget picks the best unlocked producer for the active
// consumer's first missing input.
func (e *Executor) restockTarget(st gamestate.State) (ids.ActionID, bool) {
	a := e.reg.Action(st.Active())
	if a == nil || !a.Consuming() {
		return "", false
	}
	for _, in := range a.Variant(st.Recipe()).Inputs {
		if st.Item(in.Item) >= in.Quantity {
			continue
		}
		var best ids.ActionID
		bestRate := 0.0
		for _, skill := range e.reg.Skills() {
			for _, candidate := range st.UnlockedActions(skill) {
				rate := e.model.ForAction(st, candidate.ID, 0).ItemsProduced[in.Item]
				if rate > bestRate {
					best, bestRate = candidate.ID, rate
				}
			}
		}
		if best == "" {
			return "", false
		}
		return best, true
	}
	return "", false
}

// Summary renders the boundary list for logs.
func Summary(result ExecutionResult) string {
	expected, unexpected := 0, 0
	for _, b := range result.Boundaries {
		if b.Class == Expected {
			expected++
		} else {
			unexpected++
		}
	}
	return fmt.Sprintf("planned=%d actual=%d deaths=%d boundaries=%d expected=%d unexpected=%d",
		result.PlannedTicks, result.ActualTicks, result.Deaths,
		len(result.Boundaries), expected, unexpected)
}
