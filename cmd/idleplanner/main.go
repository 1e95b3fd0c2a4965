package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"V" help:"Show version"`
	Solve    SolveCmd         `cmd:"" help:"Plan the fastest route to a goal"`
	Replay   ReplayCmd        `cmd:"" help:"Plan, then replay the plan against the stochastic simulator"`
	Simulate SimulateCmd      `cmd:"" help:"Free-run the simulator from a snapshot"`
	Registry RegistryCmd      `cmd:"" help:"Inspect a realm's actions, items and offers"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("idleplanner"),
		kong.Description("Minimum-time planner for idle game progression"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
