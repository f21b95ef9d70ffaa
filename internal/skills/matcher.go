// Package skills matches free text against a term taxonomy. It backs skill
// extraction from resumes and skill, culture and location detection in postings.
package skills

import (
	"regexp"
	"sort"
	"strings"
)

// maxPhraseWords is the longest alias, in tokens, the matcher will try.
const maxPhraseWords = 3

// tokenPattern keeps symbols that are part of skill names (c++, c#, node.js, ci/cd).
var tokenPattern = regexp.MustCompile(`[a-z0-9][a-z0-9+#./-]*[a-z0-9+#]|[a-z0-9]`)

// Matcher finds canonical terms in text by exact and near-exact phrase match.
// It is safe for concurrent use once built.
type Matcher struct {
	index map[string]string // match key -> canonical term
}

// NewMatcher builds a matcher from canonical terms and their aliases.
// When two terms share an alias the alphabetically first canonical wins.
func NewMatcher(terms map[string][]string) *Matcher {
	canonicals := make([]string, 0, len(terms))
	for canonical := range terms {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)

	m := &Matcher{index: make(map[string]string)}
	for _, canonical := range canonicals {
		name := strings.ToLower(strings.TrimSpace(canonical))
		if name == "" {
			continue
		}
		m.add(name, name)
		for _, alias := range terms[canonical] {
			m.add(alias, name)
		}
	}
	return m
}

func (m *Matcher) add(phrase, canonical string) {
	key := MatchKey(phrase)
	if key == "" {
		return
	}
	if _, exists := m.index[key]; !exists {
		m.index[key] = canonical
	}
}

// Find returns the canonical terms found in text, lowercase, unique, in order
// of first appearance. The result is never nil.
func (m *Matcher) Find(text string) []string {
	tokens := Tokenize(text)
	found := make([]string, 0)
	seen := make(map[string]bool)

	for i := 0; i < len(tokens); {
		matched := 0
		for n := min(maxPhraseWords, len(tokens)-i); n >= 1; n-- {
			canonical, ok := m.lookup(tokens[i : i+n])
			if !ok {
				continue
			}
			if !seen[canonical] {
				seen[canonical] = true
				found = append(found, canonical)
			}
			matched = n
			break
		}
		if matched == 0 {
			matched = 1
		}
		i += matched
	}

	return found
}

// Contains reports whether a canonical term occurs in text.
func (m *Matcher) Contains(text, canonical string) bool {
	canonical = strings.ToLower(canonical)
	for _, term := range m.Find(text) {
		if term == canonical {
			return true
		}
	}
	return false
}

func (m *Matcher) lookup(tokens []string) (string, bool) {
	key := MatchKey(strings.Join(tokens, " "))
	if canonical, ok := m.index[key]; ok {
		return canonical, true
	}
	// Near-exact: tolerate a trailing plural.
	if len(key) > 3 && strings.HasSuffix(key, "s") {
		if canonical, ok := m.index[strings.TrimSuffix(key, "s")]; ok {
			return canonical, true
		}
	}
	return "", false
}

// Tokenize lowercases text and splits it into match tokens.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// MatchKey folds a phrase to its comparison key: lowercase with spaces,
// hyphens, dots and underscores removed.
func MatchKey(phrase string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(phrase)) {
		switch r {
		case ' ', '\t', '\n', '-', '.', '_':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Dedupe removes entries equal under case folding, keeping first occurrences.
func Dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
