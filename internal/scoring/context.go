package scoring

import (
	"fmt"
	"strings"

	"github.com/jonathan/ats-simulator/internal/skills"
	"github.com/jonathan/ats-simulator/internal/taxonomy"
	"github.com/jonathan/ats-simulator/internal/types"
)

// ContentContext checks for the posting's culture keywords in the opening
// and closing lines of the resume, where screeners look first.
type ContentContext struct {
	leadLines   int
	maxExpected int
	culture     *skills.Matcher
	baseline    []string
}

// NewContentContext creates the content context evaluator.
func NewContentContext(s Settings, tax *taxonomy.Taxonomy) *ContentContext {
	baseline := make([]string, 0, len(tax.BaselineCulture))
	for _, term := range tax.BaselineCulture {
		baseline = append(baseline, strings.ToLower(strings.TrimSpace(term)))
	}
	return &ContentContext{
		leadLines:   max(1, s.LeadLines),
		maxExpected: max(1, s.MaxExpectedCultureKeywords),
		culture:     skills.NewMatcher(tax.CultureTerms()),
		baseline:    skills.Dedupe(baseline),
	}
}

// Layer implements Evaluator.
func (e *ContentContext) Layer() types.LayerID { return types.LayerContentContext }

// Evaluate scores matched keywords against the expected count, which is the
// posting's keyword count capped at the configured maximum. Postings without
// culture keywords are measured against the baseline culture terms.
func (e *ContentContext) Evaluate(in *Input) (types.ScorecardLayer, error) {
	keywords := in.Target.CultureKeywords
	if len(keywords) == 0 {
		keywords = e.baseline
	}
	expected := min(len(keywords), e.maxExpected)

	wanted := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		wanted[strings.ToLower(k)] = true
	}
	matched := 0
	for _, term := range e.culture.Find(e.window(in.NormalizedText)) {
		if wanted[term] {
			matched++
		}
	}

	layer := types.ScorecardLayer{LayerID: e.Layer(), Flags: []string{}}
	if expected == 0 {
		layer.Score = 100
		return layer, nil
	}
	layer.Score = min(100, percent(float64(matched), float64(expected)))

	switch {
	case matched == 0:
		layer.Flags = append(layer.Flags, fmt.Sprintf("No culture keywords in the first or last %d lines (looked for: %s)",
			e.leadLines, strings.Join(keywords[:expected], ", ")))
	case layer.Score < types.PassThreshold:
		layer.Flags = append(layer.Flags, fmt.Sprintf("Only %d of %d expected culture keywords in the first or last %d lines",
			matched, expected, e.leadLines))
	}
	return layer, nil
}

// window returns the first and last leadLines non-empty lines.
func (e *ContentContext) window(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) <= 2*e.leadLines {
		return strings.Join(lines, "\n")
	}
	head := lines[:e.leadLines]
	tail := lines[len(lines)-e.leadLines:]
	return strings.Join(head, "\n") + "\n" + strings.Join(tail, "\n")
}
