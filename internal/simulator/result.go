package simulator

import (
	"time"

	"github.com/lox/decksim/internal/combo"
	"github.com/lox/decksim/internal/statistics"
)

// Result aggregates hit counts across all trials of a run.
//
// Each tracked combination is keyed by its canonical multiset identity; a
// hit counter never exceeds Trials, and MatchedAny plus NoMatch always
// equals Trials. A single trial may count toward several combinations.
type Result struct {
	Trials  int
	Keys    []string                     // canonical keys, first-seen order
	Combos  map[string]combo.Combination // canonical key -> representative
	Hits    map[string]int
	NoMatch int
	Elapsed time.Duration
}

// MatchedAny returns the number of trials where at least one tracked
// combination was satisfied.
func (r *Result) MatchedAny() int {
	return r.Trials - r.NoMatch
}

// HitRate returns the observed proportion for a tracked canonical key.
func (r *Result) HitRate(key string) statistics.Proportion {
	return statistics.Proportion{Count: r.Hits[key], Trials: r.Trials}
}

// MatchedAnyRate returns the proportion of trials matching at least one
// tracked combination.
func (r *Result) MatchedAnyRate() statistics.Proportion {
	return statistics.Proportion{Count: r.MatchedAny(), Trials: r.Trials}
}

// NoMatchRate returns the proportion of trials matching none.
func (r *Result) NoMatchRate() statistics.Proportion {
	return statistics.Proportion{Count: r.NoMatch, Trials: r.Trials}
}
