// Package taxonomy provides the skill, culture and location vocabularies used
// to match resumes and job postings. A default set is embedded at compile time
// and can be replaced by a JSON file with the same shape.
package taxonomy

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

//go:embed taxonomy.json
var defaultData []byte

// Taxonomy is a set of canonical terms with their aliases.
type Taxonomy struct {
	// Skills maps a canonical hard skill to its aliases.
	Skills map[string][]string `json:"skills"`
	// Culture lists culture and values phrases.
	Culture []string `json:"culture"`
	// BaselineCulture is used when a posting names no culture keywords.
	BaselineCulture []string `json:"baselineCulture"`
	// Locations lists city and region names.
	Locations []string `json:"locations"`
	// WorkModes maps remote, hybrid and onsite to their indicator phrases.
	WorkModes map[string][]string `json:"workModes"`
}

var (
	defaultOnce sync.Once
	defaultTax  *Taxonomy
	defaultErr  error
)

// Default returns the embedded taxonomy. The result is shared and must not be modified.
func Default() (*Taxonomy, error) {
	defaultOnce.Do(func() {
		defaultTax, defaultErr = Parse(defaultData)
	})
	return defaultTax, defaultErr
}

// Load reads a taxonomy override file. An empty path returns the default.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a taxonomy document.
func Parse(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy JSON: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Digest is a hex SHA-256 of the taxonomy's canonical JSON form. Equal
// vocabularies have equal digests regardless of file formatting.
func (t *Taxonomy) Digest() string {
	// map keys marshal sorted, so the encoding is canonical
	data, err := json.Marshal(t)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Validate checks that the taxonomy can drive matching.
func (t *Taxonomy) Validate() error {
	if len(t.Skills) == 0 {
		return fmt.Errorf("taxonomy error: 'skills' must not be empty")
	}
	for canonical := range t.Skills {
		if strings.TrimSpace(canonical) == "" {
			return fmt.Errorf("taxonomy error: empty skill name")
		}
	}
	if len(t.BaselineCulture) == 0 {
		return fmt.Errorf("taxonomy error: 'baselineCulture' must not be empty")
	}
	return nil
}

// CultureTerms returns the culture vocabulary as a term→aliases map.
func (t *Taxonomy) CultureTerms() map[string][]string {
	return plainTerms(append(append([]string{}, t.Culture...), t.BaselineCulture...))
}

// LocationTerms returns city/region names plus work-mode indicators.
func (t *Taxonomy) LocationTerms() map[string][]string {
	terms := plainTerms(t.Locations)
	for mode, aliases := range t.WorkModes {
		terms[mode] = append(terms[mode], aliases...)
	}
	return terms
}

// WorkModeNames returns the canonical work-mode tags, sorted.
func (t *Taxonomy) WorkModeNames() []string {
	names := make([]string, 0, len(t.WorkModes))
	for mode := range t.WorkModes {
		names = append(names, mode)
	}
	sort.Strings(names)
	return names
}

func plainTerms(list []string) map[string][]string {
	terms := make(map[string][]string, len(list))
	for _, term := range list {
		if _, ok := terms[term]; !ok {
			terms[term] = nil
		}
	}
	return terms
}
