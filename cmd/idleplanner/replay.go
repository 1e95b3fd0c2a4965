package main

import (
	"context"
	"fmt"
	"time"

	"github.com/lox/idleplanner/cmd/idleplanner/shared"
	"github.com/lox/idleplanner/internal/display"
	"github.com/lox/idleplanner/internal/planner"
	"github.com/lox/idleplanner/internal/randutil"
	"github.com/lox/idleplanner/internal/replay"
	"github.com/lox/idleplanner/internal/sim"
)

// ReplayCmd plans once, then replays the plan repeatedly against the
// stochastic simulator to measure how the expectation holds up.
type ReplayCmd struct {
	Realm    string `help:"Realm HCL file (bundled fixture realm when empty)"`
	Snapshot string `help:"Saved-game snapshot HCL file"`

	Currency int      `help:"Target raw gold balance"`
	Skill    []string `help:"Skill targets as <skill_id>=<level>, repeatable"`

	Runs    int           `default:"20" help:"Number of independent replay runs"`
	Seed    int64         `default:"1" help:"Base seed; each run derives its own stream"`
	Timeout time.Duration `default:"60s" help:"Wall-clock budget for the solve"`
	Verbose bool          `short:"v" help:"Verbose logging"`
}

// Run implements the kong command.
func (c *ReplayCmd) Run() error {
	logger := shared.SetupLogger(c.Verbose)
	ctx := shared.SetupSignalHandler(logger)

	reg, initial, err := loadWorld(c.Realm, c.Snapshot)
	if err != nil {
		return err
	}
	goals, err := buildGoals(reg, c.Currency, c.Skill, false)
	if err != nil {
		return err
	}
	goal := goals[0]

	solveCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	result := planner.NewSolver(reg, planner.Options{Logger: logger}).Solve(solveCtx, initial, goal)
	if !result.Success() {
		return fmt.Errorf("solve failed: %s", result.Failure)
	}

	styles := display.DefaultStyles()
	fmt.Print(display.RenderPlan(styles, goal, result.Plan))

	var (
		totalActual int64
		deaths      int
		diverged    int
	)
	for run := 0; run < c.Runs; run++ {
		seed := randutil.Derive(c.Seed, run)
		executor := replay.NewExecutor(reg, sim.New(reg, seed), logger)
		outcome := executor.Execute(initial, result.Plan)
		totalActual += outcome.ActualTicks
		deaths += outcome.Deaths
		if outcome.Diverged {
			diverged++
			logger.Info("replay diverged", "run", run, "summary", replay.Summary(outcome))
		}
	}

	mean := float64(totalActual) / float64(c.Runs)
	fmt.Printf("replays=%d planned=%d mean_actual=%.1f drift=%+.1f%% deaths=%d diverged=%d\n",
		c.Runs, result.Plan.TotalTicks, mean,
		100*(mean-float64(result.Plan.TotalTicks))/float64(max(1, result.Plan.TotalTicks)),
		deaths, diverged)
	return nil
}
