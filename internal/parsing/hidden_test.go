package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-simulator/internal/types"
)

func strPtr(s string) *string { return &s }

func TestParseMinSalary(t *testing.T) {
	tests := []struct {
		name    string
		posting string
		want    *string
	}{
		{"range with commas", "Salary range: $120,000 - $150,000 per year", strPtr("$120,000")},
		{"k suffix", "Compensation: $140k-$180k + equity", strPtr("$140,000")},
		{"heading then amount", "Pay Range\n$95,000 - $110,000", strPtr("$95,000")},
		{"hourly", "Hourly rate: $45 - $60/hr", strPtr("$45/hour")},
		{"mentioned without amount", "Competitive salary and benefits", strPtr(types.SalaryUnspecified)},
		{"amount outside pay context", "We raised $50M from investors", nil},
		{"absent", "Backend Engineer, Remote, must have Python", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMinSalary(tt.posting)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParseHiddenRequirements_Visa(t *testing.T) {
	tests := []struct {
		posting string
		want    *string
	}{
		{"We are unable to sponsor visas for this role.", strPtr(types.VisaNoSponsorship)},
		{"Candidates must be authorized to work without sponsorship.", strPtr(types.VisaNoSponsorship)},
		{"We can’t sponsor at this time.", strPtr(types.VisaNoSponsorship)},
		{"H-1B sponsorship available.", strPtr(types.VisaSponsorshipAvailable)},
		{"Must be eligible to work in the US.", strPtr(types.VisaWorkAuthorizationNeeded)},
		{"Great team, great snacks.", nil},
	}
	for _, tt := range tests {
		t.Run(tt.posting, func(t *testing.T) {
			got := ParseHiddenRequirements(tt.posting).VisaSponsorship
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParseHiddenRequirements_Relocation(t *testing.T) {
	required := ParseHiddenRequirements("Must be willing to relocate to Austin. Relocation assistance provided.")
	require.NotNil(t, required.RelocationRequired)
	assert.Equal(t, types.RelocationRequiredValue, *required.RelocationRequired)

	assist := ParseHiddenRequirements("We offer a generous relocation package.")
	require.NotNil(t, assist.RelocationRequired)
	assert.Equal(t, types.RelocationAssistance, *assist.RelocationRequired)

	assert.Nil(t, ParseHiddenRequirements("Fully remote role").RelocationRequired)
}

func TestParseHiddenRequirements_IndependentFields(t *testing.T) {
	h := ParseHiddenRequirements("Base salary: $100,000\nWe do not sponsor visas.")

	require.NotNil(t, h.MinSalary)
	require.NotNil(t, h.VisaSponsorship)
	assert.Nil(t, h.RelocationRequired)
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "950", groupThousands(950))
	assert.Equal(t, "1,000", groupThousands(1000))
	assert.Equal(t, "120,000", groupThousands(120000))
	assert.Equal(t, "1,250,000", groupThousands(1250000))
}
