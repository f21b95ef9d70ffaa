package types

import (
	"time"

	"github.com/google/uuid"
)

// ParserView is the engine's reconstruction of what an ATS extracted.
type ParserView struct {
	ExtractedName          *string  `json:"extractedName"`
	ExtractedEmail         *string  `json:"extractedEmail"`
	ExtractedPhone         *string  `json:"extractedPhone"`
	ExtractedSkills        []string `json:"extractedSkills"`
	ParsingConfidenceScore int      `json:"parsingConfidenceScore"`
	RawTextDump            string   `json:"rawTextDump"`
	ExtractionWarning      string   `json:"extractionWarning,omitempty"`
}

// SimulationResult is the full response of one simulation. It carries no
// identifiers or timestamps so identical input yields identical output.
type SimulationResult struct {
	ParserView ParserView `json:"parserView"`
	Scorecard  Scorecard  `json:"scorecard"`
}

// SimulationRecord is a persisted simulation, owned by the service layer.
type SimulationRecord struct {
	ID            uuid.UUID         `json:"id"`
	UserID        string            `json:"userId,omitempty"`
	ApplicationID string            `json:"applicationId,omitempty"`
	TargetRoleRaw string            `json:"targetRoleRaw"`
	TargetComp    *string           `json:"targetComp,omitempty"`
	ResumeText    string            `json:"-"`
	CreatedAt     time.Time         `json:"createdAt"`
	Result        *SimulationResult `json:"result"`
}
