package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_ExpansionPrompt(t *testing.T) {
	prompt, err := Render("parsing.json", "expand-job-posting", map[string]string{
		"RoleTitle":   "Staff Backend Engineer",
		"CompContext": "TARGET COMPENSATION: $250,000",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, `ROLE TITLE: "Staff Backend Engineer"`)
	assert.Contains(t, prompt, "TARGET COMPENSATION: $250,000")
	assert.NotContains(t, prompt, "{{")
}

func TestRender_NoPlaceholders(t *testing.T) {
	prompt, err := Render("parsing.json", "comp-context-default", nil)
	require.NoError(t, err)
	assert.Equal(t, "TARGET LEVEL: top of market for the role", prompt)
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		key      string
		data     map[string]string
		contains string
	}{
		{"unknown file", "nonexistent.json", "expand-job-posting", nil, "not found"},
		{"unknown key", "parsing.json", "nonexistent-key", nil, "not found"},
		{"missing value", "parsing.json", "comp-context-target", map[string]string{}, "render prompt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.file, tt.key, tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestKeys(t *testing.T) {
	keys, err := Keys("parsing.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"comp-context-default", "comp-context-target", "expand-job-posting"}, keys)

	_, err = Keys("missing.json")
	assert.Error(t, err)
}
