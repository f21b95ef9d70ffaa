package types

// LayerID names one of the five scorecard layers.
type LayerID string

const (
	LayerShadowSchema     LayerID = "shadow_schema"
	LayerMatrixFiltering  LayerID = "matrix_filtering"
	LayerVersionControl   LayerID = "version_control"
	LayerContentContext   LayerID = "content_context"
	LayerComplianceGating LayerID = "compliance_gating"
)

// LayerOrder is the fixed evaluation and reporting order of the layers.
var LayerOrder = []LayerID{
	LayerShadowSchema,
	LayerMatrixFiltering,
	LayerVersionControl,
	LayerContentContext,
	LayerComplianceGating,
}

var layerDescriptions = map[LayerID]string{
	LayerShadowSchema:     "Private Field Gap Analysis",
	LayerMatrixFiltering:  "Location/Dept Signal Lock",
	LayerVersionControl:   "Stagnant Signal Risk",
	LayerContentContext:   "Full Content Context Audit",
	LayerComplianceGating: "Syntax Firewall Check",
}

var layerTitles = map[LayerID]string{
	LayerShadowSchema:     "Hidden Requirements Check",
	LayerMatrixFiltering:  "Role & Location Alignment",
	LayerVersionControl:   "Update Impact Analysis",
	LayerContentContext:   "Soft Skills & Culture Fit",
	LayerComplianceGating: "Format Compliance Firewall",
}

// Description returns the audit description of the layer.
func (id LayerID) Description() string {
	return layerDescriptions[id]
}

// Title returns the human-facing title of the layer.
func (id LayerID) Title() string {
	if t, ok := layerTitles[id]; ok {
		return t
	}
	return string(id)
}

// Valid reports whether id is one of the five layers.
func (id LayerID) Valid() bool {
	_, ok := layerDescriptions[id]
	return ok
}

// Status is the label derived from a score.
type Status string

const (
	StatusPass         Status = "PASS"
	StatusWarning      Status = "WARNING"
	StatusCriticalFail Status = "CRITICAL FAIL"
)

// Score thresholds shared by every layer and the overall score.
const (
	PassThreshold    = 80
	WarningThreshold = 50
)

// StatusFor maps a 0-100 score to its status label.
func StatusFor(score int) Status {
	switch {
	case score >= PassThreshold:
		return StatusPass
	case score >= WarningThreshold:
		return StatusWarning
	default:
		return StatusCriticalFail
	}
}

// ScorecardLayer is one evaluator's verdict.
// Score is in [0,100]; a score below PassThreshold always carries a flag.
type ScorecardLayer struct {
	LayerID     LayerID  `json:"layerId"`
	Score       int      `json:"score"`
	Flags       []string `json:"flags"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
}

// Scorecard is the aggregate verdict over all layers.
type Scorecard struct {
	OverallScore     int                        `json:"overallScore"`
	Status           Status                     `json:"status"`
	Layers           map[LayerID]ScorecardLayer `json:"layers"`
	CriticalFailures []string                   `json:"criticalFailures"`
}
