package parsing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/ats-simulator/internal/types"
)

var (
	salaryKeywords = regexp.MustCompile(`(?i)\b(salary|compensation|pay range|base pay|pay band|wage|ote|per year|per annum|annually|per hour|hourly rate)\b|/\s?(yr|year|hr|hour)\b`)

	salaryRangeHeader = regexp.MustCompile(`(?i)\b(salary|pay|compensation) (range|band)\b|\bbase salary\b`)

	moneyPattern = regexp.MustCompile(`(?i)(?:\$|usd\s?)\s?(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)\s?(k\b)?`)

	hourlyPattern = regexp.MustCompile(`(?i)(/\s?(hr|hour)\b|per hour|hourly)`)
)

// Phrase families, checked in order; the first family with a hit wins.
var (
	visaFamilies = []phraseFamily{
		{value: types.VisaNoSponsorship, phrases: []string{
			"unable to sponsor", "not able to sponsor", "cannot sponsor", "can't sponsor", "can not sponsor",
			"will not sponsor", "won't sponsor", "does not sponsor", "do not sponsor", "not sponsor",
			"no visa sponsorship", "no sponsorship", "sponsorship is not available", "sponsorship not available",
			"without sponsorship", "without the need for sponsorship", "without requiring sponsorship",
			"not eligible for sponsorship", "not offer sponsorship", "not provide sponsorship",
		}},
		{value: types.VisaSponsorshipAvailable, phrases: []string{
			"visa sponsorship available", "sponsorship available", "sponsorship is available", "will sponsor",
			"can sponsor", "we sponsor", "sponsorship provided", "offer visa sponsorship", "provide visa sponsorship",
			"h-1b sponsorship", "h1b sponsorship", "visa support",
		}},
		{value: types.VisaWorkAuthorizationNeeded, phrases: []string{
			"authorized to work", "work authorization", "eligible to work", "right to work",
			"us citizen", "u.s. citizen", "citizenship is required", "citizenship required", "green card",
			"permanent resident",
		}},
	}

	relocationFamilies = []phraseFamily{
		{value: types.RelocationRequiredValue, phrases: []string{
			"must relocate", "must be willing to relocate", "relocation required", "relocation is required",
			"required to relocate", "must reside", "must live within", "must be located in", "must be based in",
			"local candidates only",
		}},
		{value: types.RelocationAssistance, phrases: []string{
			"relocation assistance", "relocation package", "relocation support", "relocation bonus",
			"relocation provided", "relocation available", "relocation is available", "offer relocation",
			"relocation stipend",
		}},
	}
)

type phraseFamily struct {
	value   string
	phrases []string
}

// detect returns the value of the first family with a phrase in lower.
func detect(lower string, families []phraseFamily) *string {
	for _, family := range families {
		for _, phrase := range family.phrases {
			if strings.Contains(lower, phrase) {
				v := family.value
				return &v
			}
		}
	}
	return nil
}

// ParseHiddenRequirements scans a posting for salary, visa and relocation
// language. Each field is detected independently and is nil when absent.
func ParseHiddenRequirements(posting string) types.HiddenRequirements {
	lower := normalizeQuotes(strings.ToLower(posting))
	return types.HiddenRequirements{
		MinSalary:          ParseMinSalary(posting),
		VisaSponsorship:    detect(lower, visaFamilies),
		RelocationRequired: detect(lower, relocationFamilies),
	}
}

// ParseMinSalary returns the lowest amount stated in a pay context, such as
// "$120,000" or "$55/hour". Amounts count only on lines that mention pay or
// directly follow a pay heading.
func ParseMinSalary(posting string) *string {
	var (
		found     bool
		minAmount = math.MaxFloat64
		hourly    bool
		payTalk   bool
		prevPay   bool
	)

	for _, line := range strings.Split(posting, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		isPay := salaryKeywords.MatchString(trimmed) || salaryRangeHeader.MatchString(trimmed)
		if isPay {
			payTalk = true
		}
		if isPay || prevPay {
			for _, amount := range parseAmounts(trimmed) {
				if amount < minAmount {
					minAmount = amount
					hourly = hourlyPattern.MatchString(trimmed)
				}
				found = true
			}
		}
		prevPay = isPay
	}

	switch {
	case found:
		v := formatAmount(minAmount, hourly)
		return &v
	case payTalk:
		v := types.SalaryUnspecified
		return &v
	}
	return nil
}

func parseAmounts(line string) []float64 {
	var amounts []float64
	for _, m := range moneyPattern.FindAllStringSubmatch(line, -1) {
		value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil || value <= 0 {
			continue
		}
		if m[2] != "" {
			value *= 1000
		}
		amounts = append(amounts, value)
	}
	return amounts
}

func formatAmount(amount float64, hourly bool) string {
	if hourly {
		return "$" + strconv.FormatFloat(amount, 'f', -1, 64) + "/hour"
	}
	return "$" + groupThousands(int64(math.Round(amount)))
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

func normalizeQuotes(s string) string {
	return strings.NewReplacer("’", "'", "‘", "'").Replace(s)
}
