package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	tax, err := Default()
	require.NoError(t, err)

	assert.Contains(t, tax.Skills, "python")
	assert.Contains(t, tax.Skills, "sql")
	assert.NotContains(t, tax.Skills, "go", "bare 'go' collides with the English verb")
	assert.NotEmpty(t, tax.BaselineCulture)
	assert.Equal(t, []string{"hybrid", "onsite", "remote"}, tax.WorkModeNames())
}

func TestDefault_Cached(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestLoad_Override(t *testing.T) {
	content := `{
		"skills": {"cobol": ["cobol-85"]},
		"culture": ["grit"],
		"baselineCulture": ["grit"],
		"locations": ["lisbon"],
		"workModes": {"remote": ["remote"]}
	}`
	path := filepath.Join(t.TempDir(), "taxonomy.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	tax, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cobol-85"}, tax.Skills["cobol"])
	assert.Contains(t, tax.LocationTerms(), "lisbon")
	assert.Contains(t, tax.LocationTerms(), "remote")
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	tax, err := Load("")
	require.NoError(t, err)
	def, _ := Default()
	assert.Same(t, def, tax)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"bad json", `{`, "failed to parse taxonomy JSON"},
		{"no skills", `{"skills": {}, "baselineCulture": ["x"]}`, "'skills' must not be empty"},
		{"no baseline", `{"skills": {"python": []}}`, "'baselineCulture' must not be empty"},
		{"blank skill", `{"skills": {" ": []}, "baselineCulture": ["x"]}`, "empty skill name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/taxonomy.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read taxonomy file")
}

func TestDigest(t *testing.T) {
	compact := `{"skills":{"go":["golang"],"sql":[]},"culture":["grit"],"baselineCulture":["grit"],"locations":["oslo"],"workModes":{"remote":["remote"]}}`
	spaced := `{
  "workModes": {"remote": ["remote"]},
  "skills": {"sql": [], "go": ["golang"]},
  "culture": ["grit"],
  "baselineCulture": ["grit"],
  "locations": ["oslo"]
}`
	edited := `{"skills":{"go":["golang"],"sql":[]},"culture":["grit"],"baselineCulture":["grit"],"locations":["bergen"],"workModes":{"remote":["remote"]}}`

	parse := func(data string) *Taxonomy {
		t.Helper()
		tax, err := Parse([]byte(data))
		require.NoError(t, err)
		return tax
	}

	a := parse(compact).Digest()
	assert.Len(t, a, 64)
	assert.Equal(t, a, parse(compact).Digest())
	assert.Equal(t, a, parse(spaced).Digest(), "formatting and key order do not matter")
	assert.NotEqual(t, a, parse(edited).Digest())
}
