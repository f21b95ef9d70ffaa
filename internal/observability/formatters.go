// Package observability provides logging, metrics, tracing and the formatted
// scorecard output of the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/ats-simulator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// Printer renders simulation results as boxed text for terminal output.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most width runes, ending in "..." when cut.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

func orNone(s *string) string {
	if s == nil {
		return "(not found)"
	}
	return *s
}

// PrintParserView outputs what the simulated parser extracted.
func (p *Printer) PrintParserView(view *types.ParserView) {
	if view == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:        %s\n", orNone(view.ExtractedName)))
	sb.WriteString(fmt.Sprintf("Email:       %s\n", orNone(view.ExtractedEmail)))
	sb.WriteString(fmt.Sprintf("Phone:       %s\n", orNone(view.ExtractedPhone)))
	sb.WriteString(fmt.Sprintf("Confidence:  %d/100\n", view.ParsingConfidenceScore))
	if view.ExtractionWarning != "" {
		sb.WriteString(fmt.Sprintf("Warning:     %s\n", view.ExtractionWarning))
	}

	if len(view.ExtractedSkills) > 0 {
		sb.WriteString(fmt.Sprintf("\nSkills (%d):\n", len(view.ExtractedSkills)))
		count := min(len(view.ExtractedSkills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", view.ExtractedSkills[i]))
		}
		if len(view.ExtractedSkills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(view.ExtractedSkills)-maxItemsToShow))
		}
	} else {
		sb.WriteString("\nSkills: none detected\n")
	}

	p.printBox("PARSER VIEW", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTargetProfile outputs the structured view of the job posting.
func (p *Printer) PrintTargetProfile(profile *types.TargetRoleProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("Hidden requirements:\n")
	for _, field := range profile.HiddenRequirements.Fields() {
		sb.WriteString(fmt.Sprintf("  %-20s %s\n", field.Name, orNone(field.Value)))
	}
	writeList(&sb, "Locations", profile.LocationTags)
	writeList(&sb, "Divisions", profile.DivisionTags)
	writeList(&sb, "Skills", profile.ExplicitSkills)
	writeList(&sb, "Culture", profile.CultureKeywords)

	p.printBox("TARGET ROLE PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		sb.WriteString(fmt.Sprintf("%s: -\n", label))
		return
	}
	shown := items[:min(len(items), maxItemsToShow)]
	line := strings.Join(shown, ", ")
	if len(items) > maxItemsToShow {
		line += fmt.Sprintf(" (+%d)", len(items)-maxItemsToShow)
	}
	sb.WriteString(fmt.Sprintf("%s: %s\n", label, line))
}

// statusIcon marks a status in the scorecard.
func statusIcon(status types.Status) string {
	switch status {
	case types.StatusPass:
		return "✓"
	case types.StatusWarning:
		return "⚠"
	default:
		return "✗"
	}
}

// PrintScorecard outputs the overall verdict, one block per layer in fixed
// order, and the critical failures.
func (p *Printer) PrintScorecard(card *types.Scorecard) {
	if card == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall: %d/100  %s %s\n", card.OverallScore, statusIcon(card.Status), card.Status))

	for _, id := range types.LayerOrder {
		layer, ok := card.Layers[id]
		if !ok {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s %s: %d\n", statusIcon(layer.Status), id.Title(), layer.Score))
		sb.WriteString(fmt.Sprintf("  %s\n", layer.Description))
		for _, flag := range layer.Flags {
			sb.WriteString(fmt.Sprintf("  - %s\n", flag))
		}
	}

	p.printBox("ATS SCORECARD", strings.TrimSuffix(sb.String(), "\n"))

	if len(card.CriticalFailures) == 0 {
		return
	}
	var failures strings.Builder
	for i, failure := range card.CriticalFailures {
		failures.WriteString(fmt.Sprintf("✗ %s", failure))
		if i < len(card.CriticalFailures)-1 {
			failures.WriteString("\n")
		}
	}
	p.printBox("CRITICAL FAILURES", failures.String())
}

// PrintResult outputs the parser view followed by the scorecard.
func (p *Printer) PrintResult(result *types.SimulationResult) {
	if result == nil {
		return
	}
	p.PrintParserView(&result.ParserView)
	p.PrintScorecard(&result.Scorecard)
}
