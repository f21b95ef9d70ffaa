// Package parsing builds a TargetRoleProfile from job posting text: hidden
// requirements, location and division tags, explicit skills and culture keywords.
package parsing

import (
	"regexp"
	"strings"

	"github.com/jonathan/ats-simulator/internal/skills"
	"github.com/jonathan/ats-simulator/internal/taxonomy"
	"github.com/jonathan/ats-simulator/internal/types"
)

// divisionLine matches "Department: Payments" style lines.
var divisionLine = regexp.MustCompile(`(?im)^\s*(?:department|division|team|business unit|org|organization|group)(?:\s*:|\s+[-–]\s)\s*(.+)$`)

// Builder parses job postings. It is stateless and safe for concurrent use.
type Builder struct {
	skills    *skills.Matcher
	culture   *skills.Matcher
	locations *skills.Matcher
}

// NewBuilder creates a Builder over the vocabularies in tax.
func NewBuilder(tax *taxonomy.Taxonomy) *Builder {
	return &Builder{
		skills:    skills.NewMatcher(tax.Skills),
		culture:   skills.NewMatcher(tax.CultureTerms()),
		locations: skills.NewMatcher(tax.LocationTerms()),
	}
}

// Build parses posting. An empty posting yields a profile whose fields are all nil.
func (b *Builder) Build(posting string) *types.TargetRoleProfile {
	posting = strings.TrimSpace(posting)
	if posting == "" {
		return &types.TargetRoleProfile{}
	}
	return &types.TargetRoleProfile{
		HiddenRequirements: ParseHiddenRequirements(posting),
		LocationTags:       nonEmpty(b.locations.Find(posting)),
		DivisionTags:       nonEmpty(ParseDivisionTags(posting)),
		ExplicitSkills:     nonEmpty(b.skills.Find(posting)),
		CultureKeywords:    nonEmpty(b.culture.Find(posting)),
	}
}

// ParseDivisionTags returns the lowercase values of department, division and
// team lines, unique and in order.
func ParseDivisionTags(posting string) []string {
	var tags []string
	for _, m := range divisionLine.FindAllStringSubmatch(posting, -1) {
		value := m[1]
		if idx := strings.IndexAny(value, ",;|("); idx >= 0 {
			value = value[:idx]
		}
		value = strings.ToLower(strings.TrimSpace(strings.TrimRight(strings.TrimSpace(value), ".")))
		if value != "" {
			tags = append(tags, value)
		}
	}
	return skills.Dedupe(tags)
}

func nonEmpty(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	return items
}
