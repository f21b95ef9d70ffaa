package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-simulator/internal/taxonomy"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	tax, err := taxonomy.Default()
	require.NoError(t, err)
	return NewExtractor(tax)
}

func TestExtract_ContactBlockResume(t *testing.T) {
	text := "Jane Doe\njane@co.com\n555-123-4567\nSkills: Python, SQL"

	profile := newTestExtractor(t).Extract(text)

	require.NotNil(t, profile.Name)
	assert.Equal(t, "Jane Doe", *profile.Name)
	require.NotNil(t, profile.Email)
	assert.Equal(t, "jane@co.com", *profile.Email)
	require.NotNil(t, profile.Phone)
	assert.Equal(t, "555-123-4567", *profile.Phone)
	assert.Equal(t, []string{"python", "sql"}, profile.Skills)
	assert.Equal(t, text, profile.RawTextDump)
}

func TestExtract_MissingFieldsAreNil(t *testing.T) {
	profile := newTestExtractor(t).Extract("worked on things\nno contact here")

	assert.Nil(t, profile.Name)
	assert.Nil(t, profile.Email)
	assert.Nil(t, profile.Phone)
	assert.NotNil(t, profile.Skills)
	assert.Empty(t, profile.Skills)
}

func TestExtract_EmptyText(t *testing.T) {
	profile := newTestExtractor(t).Extract("")

	assert.Nil(t, profile.Name)
	assert.Equal(t, []string{}, profile.Skills)
}

func TestExtract_SkillsDedupedCaseInsensitive(t *testing.T) {
	text := "PYTHON and python, Python3? SQL sql Kubernetes k8s"

	profile := newTestExtractor(t).Extract(text)

	seen := map[string]bool{}
	for _, s := range profile.Skills {
		key := strings.ToLower(s)
		assert.False(t, seen[key], "duplicate skill %q", s)
		seen[key] = true
	}
	assert.Contains(t, profile.Skills, "python")
	assert.Contains(t, profile.Skills, "kubernetes")
}

func TestFindName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"first line", "Jane Doe\nEngineer", "Jane Doe"},
		{"skips header", "SUMMARY\nMary-Kate O'Neil\n", "Mary-Kate O'Neil"},
		{"middle initial", "Jane Q. Public", "Jane Q. Public"},
		{"skips contact line", "jane@co.com\nJane Doe", "Jane Doe"},
		{"too many words", "Senior Staff Software Engineer Lead", ""},
		{"single word", "Jane", ""},
		{"digits", "Jane Doe 3rd", ""},
		{"separators", "Jane Doe | Engineer", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindName(tt.text)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestFindName_OnlySearchesTopOfDocument(t *testing.T) {
	text := strings.Repeat("lowercase line\n", 12) + "Jane Doe"
	assert.Nil(t, FindName(text))
}

func TestFindEmail_FirstMatchWins(t *testing.T) {
	got := FindEmail("a: first@x.io b: second@y.io")
	require.NotNil(t, got)
	assert.Equal(t, "first@x.io", *got)

	assert.Nil(t, FindEmail("jane@@co"))
}

func TestFindPhone(t *testing.T) {
	got := FindPhone("Tel (555) 123-4567")
	require.NotNil(t, got)
	assert.Equal(t, "(555) 123-4567", *got)

	assert.Nil(t, FindPhone("Class of 2019"))
}
