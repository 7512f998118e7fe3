package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/decksim/internal/deck"
	"github.com/lox/decksim/internal/simulator"
)

var (
	// Style definitions
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	comboStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	hitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	missStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	percentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

// renderReport writes the human-readable simulation report: a configuration
// echo, the per-combination hit table, and the aggregate hand statistics.
func renderReport(w io.Writer, def deck.Definition, drawCount int, result *simulator.Result) error {
	fmt.Fprintf(w, "%s\n", headerStyle.Render("deck"))
	fmt.Fprintf(w, "%d cards across %d labels, drawing %d per trial\n\n",
		def.Size(), len(def), drawCount)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("combination"),
		headerStyle.Render("hits"),
		headerStyle.Render("probability"),
		headerStyle.Render("95% ci"))

	for _, key := range result.Keys {
		rate := result.HitRate(key)
		lo, hi := rate.ConfidenceInterval95()
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			comboStyle.Render(result.Combos[key].String()),
			rate.Count,
			percentStyle.Render(fmt.Sprintf("%.2f%%", rate.Percent())),
			fmt.Sprintf("%.2f%% - %.2f%%", lo*100, hi*100))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s\n", headerStyle.Render("hands"))

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d\t%s\n",
		hitStyle.Render("at least one combination"),
		result.MatchedAny(),
		percentStyle.Render(fmt.Sprintf("%.2f%%", result.MatchedAnyRate().Percent())))
	fmt.Fprintf(tw, "%s\t%d\t%s\n",
		missStyle.Render("no combination"),
		result.NoMatch,
		percentStyle.Render(fmt.Sprintf("%.2f%%", result.NoMatchRate().Percent())))
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d trials in %v\n", result.Trials, result.Elapsed.Truncate(time.Millisecond))
	return nil
}
