// Package deck builds randomized card decks from label -> count definitions
// and draws fixed-size hands from them.
package deck

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for input validation. Callers match with errors.Is.
var (
	// ErrInvalidDefinition reports a malformed card definition.
	ErrInvalidDefinition = errors.New("invalid card definition")

	// ErrInvalidArgument reports an out-of-range argument such as a
	// negative draw or trial count.
	ErrInvalidArgument = errors.New("invalid argument")
)

// RandSource provides the randomness for deck shuffling. *math/rand/v2.Rand
// satisfies it; tests inject scripted sources for deterministic shuffles.
type RandSource interface {
	IntN(n int) int
}

// Definition maps card labels to how many copies the deck holds.
type Definition map[string]int

// Validate checks that the definition is non-empty, every label is a
// non-empty string, and every count is positive.
func (d Definition) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("%w: no cards defined", ErrInvalidDefinition)
	}
	for name, count := range d {
		if name == "" {
			return fmt.Errorf("%w: card label must be a non-empty string", ErrInvalidDefinition)
		}
		if count <= 0 {
			return fmt.Errorf("%w: card %q: count must be positive, got %d", ErrInvalidDefinition, name, count)
		}
	}
	return nil
}

// Size returns the total number of cards the definition describes.
func (d Definition) Size() int {
	total := 0
	for _, count := range d {
		total += count
	}
	return total
}

// Labels returns the defined card labels in sorted order.
func (d Definition) Labels() []string {
	labels := make([]string, 0, len(d))
	for name := range d {
		labels = append(labels, name)
	}
	sort.Strings(labels)
	return labels
}

// Deck is a shuffled expansion of a Definition. Cards are consumed
// positionally; drawing advances an index rather than removing elements.
type Deck struct {
	cards []string
	next  int
}

// Build expands the definition into a full deck and shuffles it using rng.
// Labels are expanded in sorted order so a fixed RandSource yields a fixed
// permutation. Every call produces an independently shuffled deck.
func Build(def Definition, rng RandSource) (*Deck, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	cards := make([]string, 0, def.Size())
	for _, name := range def.Labels() {
		for i := 0; i < def[name]; i++ {
			cards = append(cards, name)
		}
	}

	// Fisher-Yates
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}

	return &Deck{cards: cards}, nil
}

// Draw returns the next n cards in deck order and consumes them. A deck with
// fewer than n cards left returns whatever remains; running out is not an
// error. Negative n is.
func (d *Deck) Draw(n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: draw count must be non-negative, got %d", ErrInvalidArgument, n)
	}
	if remaining := d.Remaining(); n > remaining {
		n = remaining
	}
	hand := d.cards[d.next : d.next+n]
	d.next += n
	return hand, nil
}

// Remaining returns the number of cards left to draw.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Size returns the total number of cards the deck was built with.
func (d *Deck) Size() int {
	return len(d.cards)
}
