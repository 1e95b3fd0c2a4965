package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/idleplanner/cmd/idleplanner/shared"
	"github.com/lox/idleplanner/internal/display"
	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/ids"
	"github.com/lox/idleplanner/internal/planner"
	"github.com/lox/idleplanner/internal/rates"
	"github.com/lox/idleplanner/internal/registry"
	"github.com/lox/idleplanner/internal/replay"
	"github.com/lox/idleplanner/internal/sim"
)

// SolveCmd plans a route to one or more goals.
type SolveCmd struct {
	Realm    string `help:"Realm HCL file (bundled fixture realm when empty)"`
	Snapshot string `help:"Saved-game snapshot HCL file"`

	Currency int      `help:"Target raw gold balance"`
	Skill    []string `help:"Skill targets as <skill_id>=<level>, repeatable"`

	Parallel bool          `help:"Solve each target as an independent goal, concurrently"`
	Timeout  time.Duration `default:"60s" help:"Wall-clock budget per solve"`
	MaxNodes int           `help:"Node expansion budget (engine default when 0)"`
	Watch    bool          `help:"Show live search progress"`
	Replay   bool          `help:"Verify the plan against the stochastic simulator"`
	Seed     int64         `default:"1" help:"Simulator seed for --replay"`
	Verbose  bool          `short:"v" help:"Verbose logging"`
}

// Run implements the kong command.
func (c *SolveCmd) Run() error {
	logger := shared.SetupLogger(c.Verbose)
	ctx := shared.SetupSignalHandler(logger)

	reg, initial, err := loadWorld(c.Realm, c.Snapshot)
	if err != nil {
		return err
	}
	goals, err := buildGoals(reg, c.Currency, c.Skill, c.Parallel)
	if err != nil {
		return err
	}

	styles := display.DefaultStyles()
	if c.Parallel && len(goals) > 1 {
		return c.solveParallel(ctx, logger, styles, reg, initial, goals)
	}
	for _, goal := range goals {
		if err := c.solveOne(ctx, logger, styles, reg, initial, goal); err != nil {
			return err
		}
	}
	return nil
}

// solveParallel runs independent goals concurrently over the shared
// frozen registry; each solve owns its queue, caches and arena.
func (c *SolveCmd) solveParallel(ctx context.Context, logger *log.Logger, styles *display.Styles, reg *registry.Registry, initial gamestate.State, goals []planner.Goal) error {
	type outcome struct {
		goal   planner.Goal
		result planner.Result
	}
	outcomes := make([]outcome, len(goals))

	g, ctx := errgroup.WithContext(ctx)
	for i, goal := range goals {
		g.Go(func() error {
			solveCtx, cancel := context.WithTimeout(ctx, c.Timeout)
			defer cancel()
			solver := planner.NewSolver(reg, planner.Options{
				MaxExpandedNodes: c.MaxNodes,
				Logger:           logger,
			})
			outcomes[i] = outcome{goal: goal, result: solver.Solve(solveCtx, initial, goal)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, o := range outcomes {
		if err := c.report(styles, reg, initial, o.goal, o.result); err != nil {
			return err
		}
	}
	return nil
}

func (c *SolveCmd) solveOne(ctx context.Context, logger *log.Logger, styles *display.Styles, reg *registry.Registry, initial gamestate.State, goal planner.Goal) error {
	solveCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	opts := planner.Options{
		MaxExpandedNodes: c.MaxNodes,
		Logger:           logger,
	}

	var (
		program *tea.Program
		updates chan planner.Progress
		done    chan struct{}
	)
	if c.Watch {
		updates = make(chan planner.Progress, 16)
		done = make(chan struct{})
		program = tea.NewProgram(display.NewProgressModel(goal.Label(), updates, done))
		opts.Progress = func(p planner.Progress) {
			select {
			case updates <- p:
			default:
			}
		}
		go func() {
			if _, err := program.Run(); err != nil {
				logger.Error("progress display failed", "err", err)
			}
		}()
	}

	result := planner.NewSolver(reg, opts).Solve(solveCtx, initial, goal)

	if c.Watch {
		close(done)
		program.Wait()
	}
	return c.report(styles, reg, initial, goal, result)
}

func (c *SolveCmd) report(styles *display.Styles, reg *registry.Registry, initial gamestate.State, goal planner.Goal, result planner.Result) error {
	if !result.Success() {
		fmt.Fprintf(os.Stderr, "no plan for %s: %s (best progress %.0f)\n",
			goal.Label(), result.Failure, result.BestProgress)
		fmt.Fprint(os.Stderr, display.RenderProfile(styles, result.Profile))
		return fmt.Errorf("solve failed: %s", result.Failure)
	}

	fmt.Print(display.RenderPlan(styles, goal, result.Plan))
	fmt.Print(display.RenderProfile(styles, result.Profile))

	if c.Replay {
		executor := replay.NewExecutor(reg, sim.New(reg, c.Seed), nil)
		fmt.Print(display.RenderExecution(styles, executor.Execute(initial, result.Plan)))
	}
	return nil
}

// loadWorld resolves the registry and initial state from flags,
// defaulting to the bundled fixture realm and a fresh save.
func loadWorld(realmPath, snapshotPath string) (*registry.Registry, gamestate.State, error) {
	var reg *registry.Registry
	if realmPath == "" {
		reg = registry.Fixture()
	} else {
		var err error
		if reg, err = registry.LoadRealm(realmPath); err != nil {
			return nil, gamestate.State{}, err
		}
	}

	if snapshotPath == "" {
		return reg, gamestate.New(reg), nil
	}
	snap, err := registry.LoadSnapshot(snapshotPath)
	if err != nil {
		return nil, gamestate.State{}, err
	}
	initial, err := gamestate.FromSnapshot(reg, snap)
	if err != nil {
		return nil, gamestate.State{}, err
	}
	return reg, initial, nil
}

// buildGoals converts flags into goal values. Multiple skill targets
// combine into one multi-skill goal unless parallel solving splits
// them.
func buildGoals(reg *registry.Registry, currency int, skillSpecs []string, parallel bool) ([]planner.Goal, error) {
	var goals []planner.Goal
	if currency > 0 {
		goals = append(goals, planner.NewReachCurrency(currency, rates.NewVendorSell(reg)))
	}

	var subs []planner.ReachSkillLevel
	for _, target := range skillSpecs {
		name, levelStr, ok := strings.Cut(target, "=")
		if !ok {
			return nil, fmt.Errorf("skill target %q must be <skill_id>=<level>", target)
		}
		skill, err := ids.ParseSkillID(name)
		if err != nil {
			return nil, err
		}
		level, err := strconv.Atoi(levelStr)
		if err != nil || level < 2 {
			return nil, fmt.Errorf("skill target %q has an invalid level", target)
		}
		subs = append(subs, planner.NewReachSkillLevel(reg, skill, level))
	}

	switch {
	case len(subs) == 1:
		goals = append(goals, subs[0])
	case len(subs) > 1 && parallel:
		for _, sub := range subs {
			goals = append(goals, sub)
		}
	case len(subs) > 1:
		goals = append(goals, planner.NewMultiSkill(subs...))
	}

	if len(goals) == 0 {
		return nil, fmt.Errorf("no goal given: use --currency or --skill")
	}
	return goals, nil
}
