// Package config loads simulation definitions from HCL files.
package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/decksim/internal/combo"
	"github.com/lox/decksim/internal/deck"
)

// Simulation is the top-level schema for a simulation file.
//
//	draw   = 5
//	trials = 100000
//
//	card "Netabyss" { count = 3 }
//
//	combination { cards = ["Abyss Shrine", "Infantry"] }
type Simulation struct {
	Draw   int   `hcl:"draw"`
	Trials int   `hcl:"trials"`
	Seed   int64 `hcl:"seed,optional"`

	Cards        []CardBlock  `hcl:"card,block"`
	Combinations []ComboBlock `hcl:"combination,block"`
}

// CardBlock defines one card label and how many copies the deck holds.
type CardBlock struct {
	Name  string `hcl:"name,label"`
	Count int    `hcl:"count"`
}

// ComboBlock defines one tracked combination of card labels.
type ComboBlock struct {
	Cards []string `hcl:"cards"`
}

// Load reads and decodes a simulation file.
func Load(filename string) (*Simulation, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file)
}

// Parse decodes simulation HCL from memory; filename only labels
// diagnostics.
func Parse(src []byte, filename string) (*Simulation, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file)
}

func decode(file *hcl.File) (*Simulation, error) {
	var sim Simulation
	diags := gohcl.DecodeBody(file.Body, nil, &sim)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	return &sim, nil
}

// Definition converts the card blocks into a deck definition. Duplicate
// labels are a configuration error rather than a silent merge.
func (s *Simulation) Definition() (deck.Definition, error) {
	def := make(deck.Definition, len(s.Cards))
	for _, card := range s.Cards {
		if _, dup := def[card.Name]; dup {
			return nil, fmt.Errorf("%w: card %q defined more than once", deck.ErrInvalidDefinition, card.Name)
		}
		def[card.Name] = card.Count
	}
	return def, nil
}

// Combos converts the combination blocks into tracked combinations.
func (s *Simulation) Combos() []combo.Combination {
	combos := make([]combo.Combination, 0, len(s.Combinations))
	for _, block := range s.Combinations {
		combos = append(combos, combo.Combination(block.Cards))
	}
	return combos
}
