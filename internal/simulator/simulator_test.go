package simulator

import (
	"context"
	"math"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/decksim/internal/combo"
	"github.com/lox/decksim/internal/deck"
)

// zeroSource drives the shuffle so that deck {"A":2,"B":2} always lands on
// [A B B A], giving a known two-card draw of [A B].
type zeroSource struct{}

func (zeroSource) IntN(int) int { return 0 }

func smallDeck() deck.Definition {
	return deck.Definition{"A": 2, "B": 2}
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{Definition: deck.Definition{}, Trials: 1})
	assert.ErrorIs(t, err, deck.ErrInvalidDefinition)

	_, err = New(Config{Definition: smallDeck(), DrawCount: -1, Trials: 1})
	assert.ErrorIs(t, err, deck.ErrInvalidArgument)

	_, err = New(Config{Definition: smallDeck(), DrawCount: 2, Trials: -1})
	assert.ErrorIs(t, err, deck.ErrInvalidArgument)
}

func TestWarningsForUndefinedLabels(t *testing.T) {
	r, err := New(Config{
		Definition: smallDeck(),
		DrawCount:  2,
		Trials:     1,
		Combinations: []combo.Combination{
			{"A", "Bystial"},
			{"A", "B"},
		},
	})
	require.NoError(t, err)

	warnings := r.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Bystial", warnings[0].Label)
	assert.Equal(t, combo.Combination{"A", "Bystial"}, warnings[0].Combination)
	assert.Contains(t, warnings[0].String(), "Bystial")
}

func TestKnownDrawMatches(t *testing.T) {
	r, err := New(Config{
		Definition:   smallDeck(),
		DrawCount:    2,
		Trials:       1,
		Rand:         zeroSource{},
		Combinations: []combo.Combination{{"A"}},
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Hits[combo.Combination{"A"}.Key()])
	assert.Equal(t, 0, res.NoMatch)
	assert.Equal(t, 1, res.MatchedAny())
}

func TestSingleCopyDoesNotSatisfyPair(t *testing.T) {
	// The scripted draw is [A B]: one A must not satisfy ["A", "A"].
	r, err := New(Config{
		Definition:   smallDeck(),
		DrawCount:    2,
		Trials:       1,
		Rand:         zeroSource{},
		Combinations: []combo.Combination{{"A", "A"}},
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Hits[combo.Combination{"A", "A"}.Key()])
	assert.Equal(t, 1, res.NoMatch)
}

func TestDuplicateCombinationsCollapse(t *testing.T) {
	r, err := New(Config{
		Definition: smallDeck(),
		DrawCount:  2,
		Trials:     10,
		Seed:       7,
		Combinations: []combo.Combination{
			{"A", "B"},
			{"B", "A"},
		},
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	// Both entries reduce to one multiset and share one counter.
	require.Len(t, res.Keys, 1)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, combo.Combination{"A", "B"}, res.Combos[res.Keys[0]])
	assert.LessOrEqual(t, res.Hits[res.Keys[0]], res.Trials)
}

func TestZeroDrawCount(t *testing.T) {
	r, err := New(Config{
		Definition:   smallDeck(),
		DrawCount:    0,
		Trials:       5,
		Seed:         1,
		Combinations: []combo.Combination{{"A"}, {}},
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	// An empty hand satisfies only the empty combination.
	assert.Equal(t, 0, res.Hits[combo.Combination{"A"}.Key()])
	assert.Equal(t, 5, res.Hits[combo.Combination{}.Key()])
	assert.Equal(t, 0, res.NoMatch)
}

func TestZeroDrawOnlyNonEmptyCombinations(t *testing.T) {
	r, err := New(Config{
		Definition:   smallDeck(),
		DrawCount:    0,
		Trials:       5,
		Seed:         1,
		Combinations: []combo.Combination{{"A"}, {"B", "B"}},
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.NoMatch)
	assert.Equal(t, 0, res.MatchedAny())
}

func TestZeroTrials(t *testing.T) {
	r, err := New(Config{
		Definition:   smallDeck(),
		DrawCount:    2,
		Trials:       0,
		Combinations: []combo.Combination{{"A"}},
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Trials)
	assert.Equal(t, 0, res.NoMatch)
	assert.Equal(t, 0, res.Hits[combo.Combination{"A"}.Key()])
}

func TestDeterministicUnderFixedSeed(t *testing.T) {
	run := func() *Result {
		r, err := New(Config{
			Definition:   smallDeck(),
			DrawCount:    2,
			Trials:       500,
			Seed:         42,
			Combinations: []combo.Combination{{"A"}, {"A", "A"}},
		})
		require.NoError(t, err)
		res, err := r.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	first := run()
	second := run()
	assert.Equal(t, first.Hits, second.Hits)
	assert.Equal(t, first.NoMatch, second.NoMatch)
}

// Drawing 2 from {A:2, B:2}, the chance of at least one A is
// 1 - C(2,2)/C(4,2) = 5/6. A seeded run must land close to it.
func TestConvergesToHypergeometricExpectation(t *testing.T) {
	r, err := New(Config{
		Definition:   smallDeck(),
		DrawCount:    2,
		Trials:       20000,
		Seed:         42,
		Combinations: []combo.Combination{{"A"}},
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	got := res.HitRate(combo.Combination{"A"}.Key()).Probability()
	want := 5.0 / 6.0
	assert.InDelta(t, want, got, 0.01, "observed %f, expected %f", got, want)
}

func TestParallelRunConverges(t *testing.T) {
	r, err := New(Config{
		Definition:   smallDeck(),
		DrawCount:    2,
		Trials:       20000,
		Seed:         42,
		Workers:      4,
		Combinations: []combo.Combination{{"A"}},
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	key := combo.Combination{"A"}.Key()
	assert.LessOrEqual(t, res.Hits[key], res.Trials)
	assert.Equal(t, res.Trials, res.MatchedAny()+res.NoMatch)
	assert.InDelta(t, 5.0/6.0, res.HitRate(key).Probability(), 0.01)
}

func TestRunHonorsCancellation(t *testing.T) {
	r, err := New(Config{
		Definition:   smallDeck(),
		DrawCount:    2,
		Trials:       1 << 30,
		Seed:         1,
		Combinations: []combo.Combination{{"A"}},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestElapsedUsesInjectedClock(t *testing.T) {
	clock := quartz.NewMock(t)

	r, err := New(Config{
		Definition:   smallDeck(),
		DrawCount:    2,
		Trials:       10,
		Seed:         1,
		Clock:        clock,
		Combinations: []combo.Combination{{"A"}},
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Elapsed, "mock clock never advanced")
}

func TestSeedResolvedWhenUnset(t *testing.T) {
	r, err := New(Config{
		Definition:   smallDeck(),
		DrawCount:    2,
		Trials:       1,
		Combinations: []combo.Combination{{"A"}},
	})
	require.NoError(t, err)
	assert.NotZero(t, r.Seed())
}

func TestHitRateMath(t *testing.T) {
	res := &Result{Trials: 200, NoMatch: 50, Hits: map[string]int{"k": 100}}

	assert.Equal(t, 150, res.MatchedAny())
	assert.InDelta(t, 0.5, res.HitRate("k").Probability(), 1e-12)
	assert.InDelta(t, 75.0, res.MatchedAnyRate().Percent(), 1e-12)
	assert.InDelta(t, 25.0, res.NoMatchRate().Percent(), 1e-12)

	hits := res.HitRate("k")
	lo, hi := hits.ConfidenceInterval95()
	assert.Less(t, lo, 0.5)
	assert.Greater(t, hi, 0.5)

	wantSE := math.Sqrt(0.5 * 0.5 / 200)
	assert.InDelta(t, wantSE, hits.StdError(), 1e-12)
}
