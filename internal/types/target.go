package types

// Hidden requirement field names.
const (
	FieldMinSalary          = "minSalary"
	FieldVisaSponsorship    = "visaSponsorship"
	FieldRelocationRequired = "relocationRequired"
)

// SalaryUnspecified is the minSalary value when a posting discusses pay
// without stating an amount.
const SalaryUnspecified = "unspecified"

// Visa sponsorship values.
const (
	VisaNoSponsorship           = "no_sponsorship"
	VisaSponsorshipAvailable    = "sponsorship_available"
	VisaWorkAuthorizationNeeded = "work_authorization_required"
)

// Relocation values.
const (
	RelocationAssistance    = "relocation_assistance"
	RelocationRequiredValue = "relocation_required"
)

// HiddenRequirements are the shadow fields inferred from a job posting.
// A nil field means the posting says nothing about it.
type HiddenRequirements struct {
	MinSalary          *string `json:"minSalary"`
	VisaSponsorship    *string `json:"visaSponsorship"`
	RelocationRequired *string `json:"relocationRequired"`
}

// HiddenField is a named view over one hidden requirement.
type HiddenField struct {
	Name  string
	Value *string
}

// Fields returns the hidden requirements in fixed order.
func (h HiddenRequirements) Fields() []HiddenField {
	return []HiddenField{
		{Name: FieldMinSalary, Value: h.MinSalary},
		{Name: FieldVisaSponsorship, Value: h.VisaSponsorship},
		{Name: FieldRelocationRequired, Value: h.RelocationRequired},
	}
}

// TargetRoleProfile is the structured form of a job posting.
// Absent tag sets are nil and marshal as null.
type TargetRoleProfile struct {
	HiddenRequirements HiddenRequirements `json:"hiddenRequirements"`
	LocationTags       []string           `json:"locationTags"`
	DivisionTags       []string           `json:"divisionTags"`
	ExplicitSkills     []string           `json:"explicitSkills"`
	CultureKeywords    []string           `json:"cultureKeywords"`
}

// MatrixTags returns location tags followed by division tags.
func (p *TargetRoleProfile) MatrixTags() []string {
	tags := make([]string, 0, len(p.LocationTags)+len(p.DivisionTags))
	tags = append(tags, p.LocationTags...)
	tags = append(tags, p.DivisionTags...)
	return tags
}
