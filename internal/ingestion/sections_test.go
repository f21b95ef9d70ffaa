package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-simulator/internal/types"
)

func TestKnownHeader(t *testing.T) {
	tests := []struct {
		line  string
		label string
		ok    bool
	}{
		{"EXPERIENCE", "EXPERIENCE", true},
		{"Work Experience:", "EXPERIENCE", true},
		{"## Education", "EDUCATION", true},
		{"technical   skills", "SKILLS", true},
		{"Jane Doe", "", false},
		{"Skills: Python", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			label, ok := KnownHeader(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestIsSectionHeader(t *testing.T) {
	assert.True(t, IsSectionHeader("EDUCATION"))
	assert.True(t, IsSectionHeader("LEADERSHIP & COMMUNITY"))
	assert.False(t, IsSectionHeader("Python, SQL"))
	assert.False(t, IsSectionHeader("- SHIPPED"))
	assert.False(t, IsSectionHeader("AB"))
	assert.False(t, IsSectionHeader("Q4 2020"))
	assert.False(t, IsSectionHeader("SENIOR ENGINEER AT BIG COMPANY INC"))
}

func TestSegment(t *testing.T) {
	text := "Jane Doe\njane@co.com\n\nEXPERIENCE\nEngineer at Acme\n\nEducation\nBS Computer Science\nSkills: Python, SQL"

	sections := Segment(text)

	require.Len(t, sections, 4)
	assert.Equal(t, types.Section{Label: PreambleLabel, Text: "Jane Doe\njane@co.com"}, sections[0])
	assert.Equal(t, types.Section{Label: "EXPERIENCE", Text: "Engineer at Acme"}, sections[1])
	assert.Equal(t, types.Section{Label: "EDUCATION", Text: "BS Computer Science"}, sections[2])
	assert.Equal(t, types.Section{Label: "SKILLS", Text: "Python, SQL"}, sections[3])
	assert.Equal(t, 3, RecognizedHeaderCount(sections))
}

func TestSegment_NoPreambleWhenHeaderFirst(t *testing.T) {
	sections := Segment("SUMMARY\nBuilder of things")

	require.Len(t, sections, 1)
	assert.Equal(t, "SUMMARY", sections[0].Label)
}

func TestSegment_Empty(t *testing.T) {
	sections := Segment("")
	assert.NotNil(t, sections)
	assert.Empty(t, sections)
}

func TestRecognizedHeaderCount_IgnoresCustomHeadings(t *testing.T) {
	sections := []types.Section{
		{Label: "LEADERSHIP"},
		{Label: "EXPERIENCE"},
		{Label: "EXPERIENCE"},
	}
	assert.Equal(t, 1, RecognizedHeaderCount(sections))
}
