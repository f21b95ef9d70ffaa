package ingestion

import (
	"strings"
	"unicode"

	"github.com/jonathan/ats-simulator/internal/types"
)

// PreambleLabel labels text that appears before the first section header.
const PreambleLabel = "PREAMBLE"

// knownHeaders maps common resume headers to their section label.
var knownHeaders = map[string]string{
	"summary":                 "SUMMARY",
	"professional summary":    "SUMMARY",
	"profile":                 "SUMMARY",
	"about me":                "SUMMARY",
	"objective":               "SUMMARY",
	"career objective":        "SUMMARY",
	"experience":              "EXPERIENCE",
	"work experience":         "EXPERIENCE",
	"professional experience": "EXPERIENCE",
	"employment":              "EXPERIENCE",
	"employment history":      "EXPERIENCE",
	"work history":            "EXPERIENCE",
	"education":               "EDUCATION",
	"academic background":     "EDUCATION",
	"skills":                  "SKILLS",
	"technical skills":        "SKILLS",
	"core competencies":       "SKILLS",
	"key skills":              "SKILLS",
	"projects":                "PROJECTS",
	"personal projects":       "PROJECTS",
	"certifications":          "CERTIFICATIONS",
	"licenses":                "CERTIFICATIONS",
	"awards":                  "AWARDS",
	"honors":                  "AWARDS",
	"publications":            "PUBLICATIONS",
	"volunteer experience":    "VOLUNTEERING",
	"volunteering":            "VOLUNTEERING",
	"languages":               "LANGUAGES",
	"interests":               "INTERESTS",
	"contact":                 "CONTACT",
	"references":              "REFERENCES",
}

// maxHeaderWords bounds how long an ALL-CAPS line may be and still count as a header.
const maxHeaderWords = 4

// KnownHeader returns the section label for line when it is a common resume
// header, optionally followed by a colon.
func KnownHeader(line string) (string, bool) {
	key := headerKey(line)
	label, ok := knownHeaders[key]
	return label, ok
}

// IsSectionHeader reports whether line starts a new section, either as a
// known header or as a short ALL-CAPS line.
func IsSectionHeader(line string) bool {
	_, ok := sectionLabel(line)
	return ok
}

func sectionLabel(line string) (string, bool) {
	if label, ok := KnownHeader(line); ok {
		return label, true
	}
	trimmed := strings.TrimSuffix(strings.TrimSpace(line), ":")
	if isAllCapsHeading(trimmed) {
		return trimmed, true
	}
	return "", false
}

func headerKey(line string) string {
	key := strings.TrimSpace(line)
	key = strings.TrimLeft(key, "#")
	key = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(key), ":"))
	return strings.Join(strings.Fields(strings.ToLower(key)), " ")
}

func isAllCapsHeading(line string) bool {
	if line == "" || isBulletLine(line) || len(strings.Fields(line)) > maxHeaderWords {
		return false
	}
	letters := 0
	for _, r := range line {
		switch {
		case unicode.IsLetter(r):
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		case r == ' ' || r == '&' || r == '/' || r == '-':
		default:
			return false
		}
	}
	return letters >= 3
}

// inlineHeader splits "Skills: Python, SQL" into its label and body.
func inlineHeader(line string) (string, string, bool) {
	head, body, found := strings.Cut(line, ":")
	if !found || strings.TrimSpace(body) == "" {
		return "", "", false
	}
	label, ok := KnownHeader(head)
	if !ok {
		return "", "", false
	}
	return label, strings.TrimSpace(body), true
}

// Segment splits normalized text into labeled sections in document order.
// Text before the first header is labeled PreambleLabel. Sections with no
// body are kept so that recognized headers stay visible.
func Segment(normalized string) []types.Section {
	sections := []types.Section{}
	if normalized == "" {
		return sections
	}

	label := PreambleLabel
	var body []string
	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if label != PreambleLabel || text != "" {
			sections = append(sections, types.Section{Label: label, Text: text})
		}
		body = nil
	}

	for _, line := range strings.Split(normalized, "\n") {
		if next, ok := sectionLabel(line); ok {
			flush()
			label = next
			continue
		}
		if next, rest, ok := inlineHeader(line); ok {
			flush()
			label = next
			body = append(body, rest)
			continue
		}
		body = append(body, line)
	}
	flush()
	return sections
}

// RecognizedHeaderCount counts distinct known section labels among sections.
func RecognizedHeaderCount(sections []types.Section) int {
	known := map[string]bool{}
	for _, label := range knownHeaders {
		known[label] = true
	}
	seen := map[string]bool{}
	for _, s := range sections {
		if known[s.Label] {
			seen[s.Label] = true
		}
	}
	return len(seen)
}
