package types

// Section is one labeled block of a normalized resume.
type Section struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ResumeDocument is one ingested resume.
// NormalizedText is empty only when extraction failed entirely.
type ResumeDocument struct {
	SourceKind        SourceKind `json:"sourceKind"`
	RawText           string     `json:"rawText"`
	NormalizedText    string     `json:"normalizedText"`
	Sections          []Section  `json:"sections"`
	ExtractionWarning string     `json:"extractionWarning,omitempty"`
}

// ExtractedProfile holds the entities an ATS would pull from the resume.
// Missing fields are nil. Skills are unique under case folding.
type ExtractedProfile struct {
	Name        *string  `json:"name"`
	Email       *string  `json:"email"`
	Phone       *string  `json:"phone"`
	Skills      []string `json:"skills"`
	RawTextDump string   `json:"rawTextDump"`
}
