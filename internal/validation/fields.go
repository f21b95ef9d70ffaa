package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// EmailPattern matches a standard email address.
	EmailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	strictEmailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}$`)

	// emailCandidatePattern matches anything email-shaped, valid or not.
	emailCandidatePattern = regexp.MustCompile(`[^\s:;,|<>()\[\]"']*@[^\s:;,|<>()\[\]"']*`)

	// PhonePattern matches three digit groups with separators and an optional
	// country code: 555-123-4567, (555) 123-4567, +44 20 7946 0958.
	PhonePattern = regexp.MustCompile(`(?:\+\d{1,3}[ .-]?)?(?:\(\d{2,4}\)[ .-]?|\d{2,4}[ .-])\d{2,4}[ .-]\d{3,5}`)

	// usDatePattern matches the MM/DD/YYYY family.
	usDatePattern = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)

	isoDatePattern = regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`)

	monthYearPattern = regexp.MustCompile(`(?i)\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?,?\s+(?:\d{4}|'\d{2})\b`)

	dashedDatePattern = regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{2,4}\b`)

	slashTokenPattern = regexp.MustCompile(`\S*/\S*`)
)

var fieldValidator = validator.New()

// ValidEmail reports whether s passes strict email validation.
func ValidEmail(s string) bool {
	if !strictEmailPattern.MatchString(s) {
		return false
	}
	return fieldValidator.Var(s, "required,email") == nil
}

// PhoneDigits returns only the digits of s.
func PhoneDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// ValidPhone reports whether s has a dialable digit count: 10 digits, 11 with
// a leading 1, or 8 to 15 digits after an explicit + country code.
func ValidPhone(s string) bool {
	digits := PhoneDigits(s)
	if strings.HasPrefix(strings.TrimSpace(s), "+") {
		return len(digits) >= 8 && len(digits) <= 15
	}
	switch len(digits) {
	case 10:
		return true
	case 11:
		return digits[0] == '1'
	default:
		return false
	}
}

// ValidUSDate reports whether s is a real calendar date in M/D/YYYY form.
func ValidUSDate(s string) bool {
	_, err := time.Parse("1/2/2006", s)
	return err == nil
}

// FindPhone returns the first phone-shaped token in text, ignoring digits
// that belong to dates, URLs and email addresses.
func FindPhone(text string) (string, bool) {
	for _, loc := range phoneLocations(maskNonPhones(text)) {
		return text[loc[0]:loc[1]], true
	}
	return "", false
}

// HasContactToken reports whether text contains an email or phone pattern.
func HasContactToken(text string) bool {
	if EmailPattern.MatchString(text) {
		return true
	}
	_, ok := FindPhone(text)
	return ok
}

// phoneLocations returns phone matches that are not embedded in longer numbers or words.
func phoneLocations(text string) [][]int {
	var out [][]int
	for _, loc := range PhonePattern.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && isWordByte(text[loc[0]-1]) {
			continue
		}
		if loc[1] < len(text) && isDigit(text[loc[1]]) {
			continue
		}
		out = append(out, loc)
	}
	return out
}

// maskNonPhones blanks dates, URLs and email-shaped tokens so their digits
// are not read as phone numbers.
func maskNonPhones(text string) string {
	for _, re := range []*regexp.Regexp{usDatePattern, isoDatePattern, dashedDatePattern, emailCandidatePattern, slashTokenPattern} {
		text = re.ReplaceAllStringFunc(text, blank)
	}
	return text
}

func blank(s string) string {
	return strings.Repeat(" ", len(s))
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isWordByte(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '+' || b == '.' || b == '_'
}
