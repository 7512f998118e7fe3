// Package combo matches drawn hands against required card combinations.
package combo

import (
	"sort"
	"strings"
)

// keySep separates labels inside canonical keys. Labels are free-form
// strings, so a printable separator could collide.
const keySep = "\x1f"

// Combination is a required multiset of card labels. Order carries no
// meaning; duplicates do ("A", "A" means at least two copies of A).
type Combination []string

// Key returns the order-independent multiset identity of the combination.
// Combinations with equal keys are the same requirement.
func (c Combination) Key() string {
	sorted := make([]string, len(c))
	copy(sorted, c)
	sort.Strings(sorted)
	return strings.Join(sorted, keySep)
}

// Counts returns the required multiplicity per distinct label.
func (c Combination) Counts() map[string]int {
	counts := make(map[string]int, len(c))
	for _, label := range c {
		counts[label]++
	}
	return counts
}

// Matches reports whether the hand holds at least the required number of
// copies of every label in the combination. Labels in the hand that the
// combination does not mention are ignored. An empty combination always
// matches.
func (c Combination) Matches(hand []string) bool {
	if len(c) == 0 {
		return true
	}
	have := make(map[string]int, len(hand))
	for _, label := range hand {
		have[label]++
	}
	for label, required := range c.Counts() {
		if have[label] < required {
			return false
		}
	}
	return true
}

func (c Combination) String() string {
	return strings.Join(c, " + ")
}
