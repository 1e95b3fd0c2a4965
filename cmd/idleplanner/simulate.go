package main

import (
	"fmt"

	"github.com/lox/idleplanner/cmd/idleplanner/shared"
	"github.com/lox/idleplanner/internal/gamestate"
	"github.com/lox/idleplanner/internal/ids"
	"github.com/lox/idleplanner/internal/sim"
)

// SimulateCmd free-runs the stochastic simulator from a snapshot,
// useful for sanity-checking realm data against the rate model.
type SimulateCmd struct {
	Realm    string `help:"Realm HCL file (bundled fixture realm when empty)"`
	Snapshot string `help:"Saved-game snapshot HCL file"`

	Action  string `help:"Activity to run (snapshot's active action when empty)"`
	Ticks   int64  `default:"1000" help:"Tick budget"`
	Seed    int64  `default:"1" help:"Simulator seed"`
	Verbose bool   `short:"v" help:"Verbose logging"`
}

// Run implements the kong command.
func (c *SimulateCmd) Run() error {
	logger := shared.SetupLogger(c.Verbose)

	reg, st, err := loadWorld(c.Realm, c.Snapshot)
	if err != nil {
		return err
	}
	if c.Action != "" {
		action, err := ids.ParseActionID(c.Action)
		if err != nil {
			return err
		}
		if !st.Unlocked(action) {
			return fmt.Errorf("action %s is locked for this snapshot", action)
		}
		st = gamestate.Switch{Action: action}.Apply(st)
	}
	if st.Active() == "" {
		return fmt.Errorf("nothing to simulate: no active action; use --action")
	}

	simulator := sim.New(reg, c.Seed)
	elapsed := int64(0)
	deaths := 0
	for elapsed < c.Ticks {
		res := simulator.Step(st)
		if res.Event == sim.EventIdle || res.Event == sim.EventNoInputs {
			logger.Warn("simulation stalled", "event", res.Event, "elapsed", elapsed)
			break
		}
		if res.Event == sim.EventDeath {
			deaths++
		}
		st = res.State
		elapsed += res.Ticks
	}

	fmt.Printf("ran %d ticks on %s: gold=%d deaths=%d bank=%d/%d\n",
		elapsed, ids.DisplayName(st.Active()), st.Gold(), deaths, st.TotalItems(), st.Capacity())
	for _, skill := range reg.Skills() {
		if xp := st.XP(skill); xp > 0 {
			fmt.Printf("  %-16s level %-3d xp %.0f\n", ids.DisplayName(skill), st.Level(skill), xp)
		}
	}
	return nil
}
