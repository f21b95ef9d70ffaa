package scoring

import (
	"fmt"
	"regexp"

	"github.com/jonathan/ats-simulator/internal/skills"
	"github.com/jonathan/ats-simulator/internal/taxonomy"
	"github.com/jonathan/ats-simulator/internal/types"
)

var (
	salaryStatement     = regexp.MustCompile(`(?i)\b(salary|compensation|comp|pay)\s+(expectations?|requirements?|target)\b|\b(expected|desired|target)\s+(salary|compensation|comp|pay)\b`)
	workAuthStatement   = regexp.MustCompile(`(?i)\b(authori[sz]ed to work|work authori[sz]ation|eligible to work|right to work|citizen(ship)?|green card|permanent resident|visa|h-?1b|sponsorship)\b`)
	relocationStatement = regexp.MustCompile(`(?i)\b(relocat\w*|willing to move|open to moving)\b`)
)

// ShadowSchema checks that the resume addresses hidden posting requirements
// such as a salary floor, visa status or relocation.
type ShadowSchema struct {
	penalty         int
	unstatedPenalty int
	locations       *skills.Matcher
	workModes       map[string]bool
}

// NewShadowSchema creates the shadow schema evaluator.
func NewShadowSchema(s Settings, tax *taxonomy.Taxonomy) *ShadowSchema {
	modes := make(map[string]bool)
	for _, mode := range tax.WorkModeNames() {
		modes[mode] = true
	}
	return &ShadowSchema{
		penalty:         s.ShadowPenalty,
		unstatedPenalty: s.UnstatedShadowPenalty,
		locations:       skills.NewMatcher(tax.LocationTerms()),
		workModes:       modes,
	}
}

// Layer implements Evaluator.
func (e *ShadowSchema) Layer() types.LayerID { return types.LayerShadowSchema }

// Evaluate starts at 100 and subtracts a penalty per hidden requirement the
// resume does not address. Requirements the posting leaves unstated cost a
// smaller penalty because the screen may still apply them.
func (e *ShadowSchema) Evaluate(in *Input) (types.ScorecardLayer, error) {
	score := 100
	flags := []string{}

	for _, field := range in.Target.HiddenRequirements.Fields() {
		if e.addressed(field.Name, in) {
			continue
		}
		if field.Value != nil {
			score -= e.penalty
			flags = append(flags, fmt.Sprintf("Unaddressed hidden requirement: %s (%s)", field.Name, describeRequirement(field.Name, *field.Value)))
			continue
		}
		score -= e.unstatedPenalty
		flags = append(flags, fmt.Sprintf("Unverified hidden requirement: %s (not stated in posting or resume)", field.Name))
	}

	return types.ScorecardLayer{LayerID: e.Layer(), Score: score, Flags: flags}, nil
}

func (e *ShadowSchema) addressed(field string, in *Input) bool {
	text := in.NormalizedText
	switch field {
	case types.FieldMinSalary:
		return in.TargetComp != nil || salaryStatement.MatchString(text)
	case types.FieldVisaSponsorship:
		return workAuthStatement.MatchString(text)
	case types.FieldRelocationRequired:
		return relocationStatement.MatchString(text) || e.sharesLocation(text, in.Target.LocationTags)
	}
	return false
}

// sharesLocation reports whether the resume names a non-work-mode location of the posting.
func (e *ShadowSchema) sharesLocation(text string, tags []string) bool {
	if len(tags) == 0 || text == "" {
		return false
	}
	found := make(map[string]bool)
	for _, loc := range e.locations.Find(text) {
		found[loc] = true
	}
	for _, tag := range tags {
		if !e.workModes[tag] && found[tag] {
			return true
		}
	}
	return false
}

func describeRequirement(field, value string) string {
	switch field {
	case types.FieldMinSalary:
		if value == types.SalaryUnspecified {
			return "salary band stated without amount"
		}
		return "salary floor " + value
	case types.FieldVisaSponsorship:
		switch value {
		case types.VisaNoSponsorship:
			return "no visa sponsorship"
		case types.VisaSponsorshipAvailable:
			return "visa sponsorship offered"
		case types.VisaWorkAuthorizationNeeded:
			return "work authorization required"
		}
	case types.FieldRelocationRequired:
		switch value {
		case types.RelocationRequiredValue:
			return "relocation required"
		case types.RelocationAssistance:
			return "relocation offered"
		}
	}
	return value
}
