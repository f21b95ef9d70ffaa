package ingestion

import (
	"math"
	"unicode"

	"github.com/jonathan/ats-simulator/internal/types"
	"github.com/jonathan/ats-simulator/internal/validation"
)

// Confidence weights. They sum to 100.
const (
	headerWeight    = 40.0
	printableWeight = 40.0
	contactWeight   = 20.0

	// expectedHeaders is the number of recognized headers that earns full header credit.
	expectedHeaders = 3
)

// Confidence scores, from 0 to 100, how reliably structure was extracted.
// It weighs recognized section headers, the printable share of the raw
// characters and the presence of an email or phone token. Empty text scores 0.
func Confidence(raw, normalized string, sections []types.Section) int {
	if normalized == "" {
		return 0
	}

	headers := math.Min(1, float64(RecognizedHeaderCount(sections))/expectedHeaders)
	score := headerWeight*headers + printableWeight*PrintableRatio(raw)
	if validation.HasContactToken(normalized) {
		score += contactWeight
	}
	return int(math.Round(math.Max(0, math.Min(100, score))))
}

// PrintableRatio returns the share of runes in s that are printable.
// Newlines and tabs count as printable; the Unicode replacement character does not.
func PrintableRatio(s string) float64 {
	total, printable := 0, 0
	for _, r := range s {
		total++
		switch {
		case r == unicode.ReplacementChar:
		case r == '\n' || r == '\t' || unicode.IsPrint(r):
			printable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(printable) / float64(total)
}
