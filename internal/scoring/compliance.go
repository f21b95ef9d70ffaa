package scoring

import (
	"fmt"
	"strings"

	"github.com/jonathan/ats-simulator/internal/types"
	"github.com/jonathan/ats-simulator/internal/validation"
)

// FlagNoParsableText is raised when there is no text to check at all.
const FlagNoParsableText = "No parsable text: document could not be read by the parser"

// ComplianceGating checks strict syntax of the contact and date fields a
// parser reads.
type ComplianceGating struct {
	malformedPenalty   int
	nonstandardPenalty int
}

// NewComplianceGating creates the compliance gating evaluator.
func NewComplianceGating(s Settings) *ComplianceGating {
	return &ComplianceGating{
		malformedPenalty:   s.MalformedFieldPenalty,
		nonstandardPenalty: s.NonstandardDatePenalty,
	}
}

// Layer implements Evaluator.
func (e *ComplianceGating) Layer() types.LayerID { return types.LayerComplianceGating }

// Evaluate starts at 100 and applies a heavy penalty per malformed field and
// a light one per non-standard date format. A document with no text scores 0.
func (e *ComplianceGating) Evaluate(in *Input) (types.ScorecardLayer, error) {
	if strings.TrimSpace(in.NormalizedText) == "" {
		return types.ScorecardLayer{LayerID: e.Layer(), Score: 0, Flags: []string{FlagNoParsableText}}, nil
	}

	score := 100
	flags := []string{}
	for _, f := range validation.ScanFields(in.NormalizedText) {
		switch f.Severity {
		case validation.SeverityError:
			score -= e.malformedPenalty
			flags = append(flags, fmt.Sprintf("Malformed %s: %q", f.Field, f.Value))
		case validation.SeverityWarning:
			score -= e.nonstandardPenalty
			flags = append(flags, fmt.Sprintf("Non-standard date format: %q (expected MM/DD/YYYY)", f.Value))
		}
	}
	return types.ScorecardLayer{LayerID: e.Layer(), Score: score, Flags: flags}, nil
}
