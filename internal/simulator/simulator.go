// Package simulator runs repeated shuffle-and-draw trials and tallies how
// often tracked card combinations appear in the opened hand.
package simulator

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/decksim/internal/combo"
	"github.com/lox/decksim/internal/deck"
	"github.com/lox/decksim/internal/randutil"
)

// Config holds configuration for a simulation run.
type Config struct {
	Definition   deck.Definition
	DrawCount    int
	Combinations []combo.Combination
	Trials       int

	// Seed pins the RNG for reproducible runs; 0 means time-seeded.
	Seed int64

	// Workers splits trials across goroutines when > 1. Ignored when Rand
	// is set, since a caller-supplied source cannot be split safely.
	Workers int

	// Rand overrides the seed-derived source, for deterministic tests.
	Rand deck.RandSource

	// Clock measures elapsed time; defaults to the real clock.
	Clock quartz.Clock

	Logger *log.Logger
}

// Warning flags a tracked combination that references a label missing from
// the deck definition. Such a combination can never be satisfied; the run
// still proceeds.
type Warning struct {
	Label       string
	Combination combo.Combination
}

func (w Warning) String() string {
	return fmt.Sprintf("card %q in combination [%s] is not defined in the deck", w.Label, w.Combination)
}

// Runner executes simulation trials for a validated configuration.
type Runner struct {
	cfg      Config
	keys     []string                     // canonical keys, first-seen order
	combos   map[string]combo.Combination // canonical key -> representative
	warnings []Warning
	seed     int64
	clock    quartz.Clock
	logger   *log.Logger
}

// New validates the configuration eagerly, canonicalizes the tracked
// combinations, and collects advisory warnings. Combinations that reduce to
// the same multiset collapse to a single tracked entry sharing one counter.
func New(cfg Config) (*Runner, error) {
	if err := cfg.Definition.Validate(); err != nil {
		return nil, err
	}
	if cfg.DrawCount < 0 {
		return nil, fmt.Errorf("%w: draw count must be non-negative, got %d", deck.ErrInvalidArgument, cfg.DrawCount)
	}
	if cfg.Trials < 0 {
		return nil, fmt.Errorf("%w: trial count must be non-negative, got %d", deck.ErrInvalidArgument, cfg.Trials)
	}

	r := &Runner{
		cfg:    cfg,
		combos: make(map[string]combo.Combination, len(cfg.Combinations)),
		seed:   cfg.Seed,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}
	if r.seed == 0 {
		r.seed = randutil.TimeSeed()
	}
	if r.clock == nil {
		r.clock = quartz.NewReal()
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}

	for _, c := range cfg.Combinations {
		key := c.Key()
		if _, seen := r.combos[key]; !seen {
			r.keys = append(r.keys, key)
			r.combos[key] = c
		}
		for _, label := range undefinedLabels(c, cfg.Definition) {
			r.warnings = append(r.warnings, Warning{Label: label, Combination: c})
		}
	}

	return r, nil
}

// Warnings returns advisory warnings for combinations referencing labels
// absent from the deck definition.
func (r *Runner) Warnings() []Warning {
	return r.warnings
}

// Seed returns the seed the run will use, resolved from the clock when the
// configuration did not pin one.
func (r *Runner) Seed() int64 {
	return r.seed
}

// Run executes the configured number of independent trials. Each trial
// builds a fresh deck, draws a hand, and tests every tracked combination.
// Cancelling ctx stops the run between trials.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := r.clock.Now()

	result := &Result{
		Trials: r.cfg.Trials,
		Keys:   r.keys,
		Combos: r.combos,
		Hits:   make(map[string]int, len(r.keys)),
	}
	for _, key := range r.keys {
		result.Hits[key] = 0
	}
	if r.cfg.Trials == 0 {
		result.Elapsed = r.clock.Since(start)
		return result, nil
	}

	workers := r.cfg.Workers
	if r.cfg.Rand != nil || workers < 1 {
		workers = 1
	}
	if workers > r.cfg.Trials {
		workers = r.cfg.Trials
	}

	r.logger.Debug("starting simulation",
		"trials", r.cfg.Trials,
		"draw", r.cfg.DrawCount,
		"deck_size", r.cfg.Definition.Size(),
		"combinations", len(r.keys),
		"workers", workers,
		"seed", r.seed)

	var tallies []tally
	var err error
	if workers == 1 {
		var t tally
		t, err = r.runTrials(ctx, r.source(), r.cfg.Trials)
		tallies = []tally{t}
	} else {
		tallies, err = r.runParallel(ctx, workers)
	}
	if err != nil {
		return nil, err
	}

	for _, t := range tallies {
		for key, count := range t.hits {
			result.Hits[key] += count
		}
		result.NoMatch += t.noMatch
	}

	result.Elapsed = r.clock.Since(start)
	return result, nil
}

// source returns the RandSource for a sequential run.
func (r *Runner) source() deck.RandSource {
	if r.cfg.Rand != nil {
		return r.cfg.Rand
	}
	return randutil.New(r.seed)
}

// tally accumulates hit counts for a slice of the trials.
type tally struct {
	hits    map[string]int
	noMatch int
}

// runTrials runs n trials on a single goroutine with the given source.
func (r *Runner) runTrials(ctx context.Context, rng deck.RandSource, n int) (tally, error) {
	t := tally{hits: make(map[string]int, len(r.keys))}

	for trial := 0; trial < n; trial++ {
		select {
		case <-ctx.Done():
			return t, ctx.Err()
		default:
		}

		d, err := deck.Build(r.cfg.Definition, rng)
		if err != nil {
			return t, err
		}
		hand, err := d.Draw(r.cfg.DrawCount)
		if err != nil {
			return t, err
		}

		matched := false
		for _, key := range r.keys {
			if r.combos[key].Matches(hand) {
				t.hits[key]++
				matched = true
			}
		}
		if !matched {
			t.noMatch++
		}
	}

	return t, nil
}

// runParallel splits the trials across an errgroup worker pool. Each worker
// gets its own PCG stream derived from the base seed so no random state is
// shared.
func (r *Runner) runParallel(ctx context.Context, workers int) ([]tally, error) {
	base := randutil.New(r.seed)
	perWorker := r.cfg.Trials / workers
	remainder := r.cfg.Trials % workers

	g, ctx := errgroup.WithContext(ctx)
	tallies := make([]tally, workers)

	for w := 0; w < workers; w++ {
		workerTrials := perWorker
		if w < remainder {
			workerTrials++
		}
		workerSeed := base.Int64()

		g.Go(func() error {
			t, err := r.runTrials(ctx, randutil.New(workerSeed), workerTrials)
			tallies[w] = t
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tallies, nil
}

// undefinedLabels returns the distinct labels in c that the definition does
// not contain, in order of first appearance.
func undefinedLabels(c combo.Combination, def deck.Definition) []string {
	var missing []string
	seen := make(map[string]bool, len(c))
	for _, label := range c {
		if seen[label] {
			continue
		}
		seen[label] = true
		if _, ok := def[label]; !ok {
			missing = append(missing, label)
		}
	}
	return missing
}
