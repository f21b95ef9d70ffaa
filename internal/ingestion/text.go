// Package ingestion normalizes resume text, segments it into sections and
// scores how reliably an ATS could read it.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
)

var (
	spaceRun        = regexp.MustCompile(`[ \t\f\v\x{00A0}\x{2000}-\x{200A}\x{3000}]+`)
	excessiveBlanks = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes line endings, strips control and zero-width characters,
// collapses runs of whitespace and keeps at most one blank line between blocks.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.Map(stripControl, content)

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = excessiveBlanks.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	line = spaceRun.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}

// stripControl drops control and zero-width format characters but keeps newlines and tabs.
func stripControl(r rune) rune {
	switch {
	case r == '\n' || r == '\t':
		return r
	case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
		return -1
	}
	return r
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}

// IngestFromFile reads a text file, cleans it, and returns cleaned text with metadata
func IngestFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	cleanedText := CleanText(string(content))
	return cleanedText, NewMetadata(cleanedText, path), nil
}
