// Package extraction pulls the entities an ATS parser would read from
// normalized resume text: name, email, phone and skills.
package extraction

import (
	"strings"
	"unicode"

	"github.com/jonathan/ats-simulator/internal/ingestion"
	"github.com/jonathan/ats-simulator/internal/skills"
	"github.com/jonathan/ats-simulator/internal/taxonomy"
	"github.com/jonathan/ats-simulator/internal/types"
	"github.com/jonathan/ats-simulator/internal/validation"
)

const (
	// nameScanLines is how many non-empty lines are searched for a name.
	nameScanLines = 10
	minNameTokens = 2
	maxNameTokens = 4
)

// Extractor extracts an ExtractedProfile from normalized text.
// It is stateless and safe for concurrent use.
type Extractor struct {
	skills *skills.Matcher
}

// NewExtractor creates an Extractor matching skills against tax.
func NewExtractor(tax *taxonomy.Taxonomy) *Extractor {
	return &Extractor{skills: skills.NewMatcher(tax.Skills)}
}

// Extract returns the profile found in normalized. Fields that the heuristics
// cannot find are nil; Skills is never nil.
func (e *Extractor) Extract(normalized string) *types.ExtractedProfile {
	profile := &types.ExtractedProfile{
		Name:        FindName(normalized),
		Email:       FindEmail(normalized),
		Phone:       FindPhone(normalized),
		Skills:      skills.Dedupe(e.skills.Find(normalized)),
		RawTextDump: normalized,
	}
	return profile
}

// FindEmail returns the first standard email address in text.
func FindEmail(text string) *string {
	if m := validation.EmailPattern.FindString(text); m != "" {
		return &m
	}
	return nil
}

// FindPhone returns the first separator-tolerant phone number in text.
func FindPhone(text string) *string {
	if phone, ok := validation.FindPhone(text); ok {
		return &phone
	}
	return nil
}

// FindName returns the first line near the top of the document that is not a
// section header and consists of two to four capitalized words.
func FindName(text string) *string {
	scanned := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if scanned++; scanned > nameScanLines {
			break
		}
		if _, isHeader := ingestion.KnownHeader(line); isHeader {
			continue
		}
		if isNameLine(line) {
			name := strings.Join(strings.Fields(line), " ")
			return &name
		}
	}
	return nil
}

func isNameLine(line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) < minNameTokens || len(tokens) > maxNameTokens {
		return false
	}
	for _, token := range tokens {
		if !isCapitalizedWord(token) {
			return false
		}
	}
	return true
}

// isCapitalizedWord accepts words like "Jane", "O'Neil", "Mary-Kate" and "J.".
func isCapitalizedWord(token string) bool {
	for i, r := range token {
		switch {
		case i == 0:
			if !unicode.IsUpper(r) {
				return false
			}
		case unicode.IsLetter(r), r == '\'', r == '-', r == '.', r == '’':
		default:
			return false
		}
	}
	return true
}
