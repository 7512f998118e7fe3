package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/decksim/internal/config"
	"github.com/lox/decksim/internal/simulator"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Config  string           `arg:"" help:"Simulation file (HCL)" type:"existingfile"`
	Trials  *int             `short:"t" help:"Override the configured trial count"`
	Draw    *int             `short:"d" help:"Override the configured draw count"`
	Seed    *int64           `help:"RNG seed for reproducible results"`
	Workers int              `short:"w" default:"1" help:"Number of parallel trial workers"`
	Verbose bool             `short:"v" help:"Verbose logging"`
	Version kong.VersionFlag `help:"Show version"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("decksim"),
		kong.Description("Monte Carlo opening-hand odds for custom card decks"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	var logger *log.Logger
	if cli.Verbose {
		logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.DebugLevel})
	} else {
		logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.InfoLevel})
	}

	err := run(&cli, logger)
	ctx.FatalIfErrorf(err)
}

func run(cli *CLI, logger *log.Logger) error {
	sim, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if cli.Trials != nil {
		sim.Trials = *cli.Trials
	}
	if cli.Draw != nil {
		sim.Draw = *cli.Draw
	}
	if cli.Seed != nil {
		sim.Seed = *cli.Seed
	}

	def, err := sim.Definition()
	if err != nil {
		return err
	}

	runner, err := simulator.New(simulator.Config{
		Definition:   def,
		DrawCount:    sim.Draw,
		Combinations: sim.Combos(),
		Trials:       sim.Trials,
		Seed:         sim.Seed,
		Workers:      cli.Workers,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	for _, warning := range runner.Warnings() {
		logger.Warn(warning.String())
	}
	logger.Debug("run configured", "seed", runner.Seed())

	// Allow Ctrl-C to stop a large run between trials.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	return renderReport(os.Stdout, def, sim.Draw, result)
}
