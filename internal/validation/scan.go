// Package validation detects malformed contact fields and date formats in resume text.
package validation

import (
	"fmt"
	"strings"
)

// Field identifies the kind of value a Finding refers to.
type Field string

const (
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone"
	FieldDate       Field = "date"
	FieldDateFormat Field = "date_format"
)

// Severity grades a Finding.
type Severity string

const (
	// SeverityError marks a field a parser cannot read at all.
	SeverityError Severity = "error"
	// SeverityWarning marks a readable value in a format parsers handle poorly.
	SeverityWarning Severity = "warning"
)

// Finding is a single syntax problem found in resume text.
type Finding struct {
	Field    Field    `json:"field"`
	Severity Severity `json:"severity"`
	Value    string   `json:"value"`
	Details  string   `json:"details"`
}

// Flag is the short machine-readable label for the finding.
func (f Finding) Flag() string {
	if f.Severity == SeverityWarning {
		return "nonstandard_" + string(f.Field)
	}
	return "malformed_" + string(f.Field)
}

// ScanFields reports malformed emails, phones and dates, followed by one
// warning per non-standard date format family. Repeated values are reported once.
func ScanFields(text string) []Finding {
	findings := []Finding{}
	seen := map[string]bool{}
	add := func(f Finding) {
		key := string(f.Field) + "\x00" + f.Value
		if seen[key] {
			return
		}
		seen[key] = true
		findings = append(findings, f)
	}

	for _, candidate := range emailCandidates(text) {
		if !ValidEmail(candidate) {
			add(Finding{
				Field:    FieldEmail,
				Severity: SeverityError,
				Value:    candidate,
				Details:  fmt.Sprintf("email %q is not a valid address", candidate),
			})
		}
	}

	masked := maskNonPhones(text)
	for _, loc := range phoneLocations(masked) {
		phone := text[loc[0]:loc[1]]
		if !ValidPhone(phone) {
			add(Finding{
				Field:    FieldPhone,
				Severity: SeverityError,
				Value:    phone,
				Details:  fmt.Sprintf("phone %q has %d digits", phone, len(PhoneDigits(phone))),
			})
		}
	}

	for _, date := range usDatePattern.FindAllString(text, -1) {
		if !ValidUSDate(date) {
			add(Finding{
				Field:    FieldDate,
				Severity: SeverityError,
				Value:    date,
				Details:  fmt.Sprintf("date %q is not a calendar date", date),
			})
		}
	}

	if m := monthYearPattern.FindString(text); m != "" {
		add(nonstandardDate(m))
	}
	if m := dashedDatePattern.FindString(text); m != "" {
		add(nonstandardDate(m))
	}
	return findings
}

// Errors returns the findings with SeverityError.
func Errors(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

func nonstandardDate(value string) Finding {
	return Finding{
		Field:    FieldDateFormat,
		Severity: SeverityWarning,
		Value:    value,
		Details:  fmt.Sprintf("date %q is not in MM/DD/YYYY format", value),
	}
}

// emailCandidates returns email-shaped tokens. Handles and URL paths
// containing @ are skipped.
func emailCandidates(text string) []string {
	var out []string
	for _, token := range emailCandidatePattern.FindAllString(text, -1) {
		token = strings.Trim(token, ".")
		at := strings.Index(token, "@")
		if at <= 0 || strings.Contains(token, "/") {
			continue
		}
		out = append(out, token)
	}
	return out
}
