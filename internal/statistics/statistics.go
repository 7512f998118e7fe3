// Package statistics provides binomial proportion statistics for reporting
// simulation hit rates.
package statistics

import "math"

// Proportion is a hit count out of a number of trials.
type Proportion struct {
	Count  int
	Trials int
}

// Probability returns the observed hit rate, or 0 when no trials ran.
func (p Proportion) Probability() float64 {
	if p.Trials == 0 {
		return 0
	}
	return float64(p.Count) / float64(p.Trials)
}

// Percent returns the observed hit rate as a percentage.
func (p Proportion) Percent() float64 {
	return p.Probability() * 100
}

// StdError returns the standard error of the observed proportion.
func (p Proportion) StdError() float64 {
	if p.Trials == 0 {
		return 0
	}
	prob := p.Probability()
	return math.Sqrt(prob * (1 - prob) / float64(p.Trials))
}

// ConfidenceInterval95 returns the 95% confidence interval for the true
// probability, clamped to [0, 1].
func (p Proportion) ConfidenceInterval95() (float64, float64) {
	prob := p.Probability()
	margin := 1.96 * p.StdError() // 95% confidence
	return math.Max(0, prob-margin), math.Min(1, prob+margin)
}
