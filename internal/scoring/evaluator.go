// Package scoring provides the five layer evaluators of the ATS scorecard and
// the aggregator that folds their verdicts into one overall score.
package scoring

import (
	"fmt"
	"math"

	"github.com/jonathan/ats-simulator/internal/taxonomy"
	"github.com/jonathan/ats-simulator/internal/types"
)

// FlagEvaluatorError replaces the flags of a layer whose evaluator failed.
const FlagEvaluatorError = "evaluator_error"

// Input is the shared read-only input of every evaluator.
type Input struct {
	Profile         *types.ExtractedProfile
	Target          *types.TargetRoleProfile
	NormalizedText  string
	PriorResumeText *string
	TargetComp      *string
}

// Evaluator scores one layer. Implementations are pure and must not read
// another evaluator's output.
type Evaluator interface {
	Layer() types.LayerID
	Evaluate(in *Input) (types.ScorecardLayer, error)
}

// Settings tunes the evaluators.
type Settings struct {
	ShadowPenalty              int
	UnstatedShadowPenalty      int
	LocationPenalty            int
	SubstantialUpdateThreshold float64
	LeadLines                  int
	MaxExpectedCultureKeywords int
	MalformedFieldPenalty      int
	NonstandardDatePenalty     int
}

// DefaultSettings returns the standard evaluator settings.
func DefaultSettings() Settings {
	return Settings{
		ShadowPenalty:              25,
		UnstatedShadowPenalty:      10,
		LocationPenalty:            70,
		SubstantialUpdateThreshold: 0.15,
		LeadLines:                  5,
		MaxExpectedCultureKeywords: 5,
		MalformedFieldPenalty:      60,
		NonstandardDatePenalty:     5,
	}
}

// NewEvaluators returns the five evaluators in layer order.
func NewEvaluators(s Settings, tax *taxonomy.Taxonomy) []Evaluator {
	return []Evaluator{
		NewShadowSchema(s, tax),
		NewMatrixFiltering(s, tax),
		NewVersionControl(s),
		NewContentContext(s, tax),
		NewComplianceGating(s),
	}
}

// EvaluatorError reports an evaluator that returned an error or panicked.
type EvaluatorError struct {
	Layer types.LayerID
	Cause error
}

func (e *EvaluatorError) Error() string {
	return fmt.Sprintf("evaluator %s failed: %v", e.Layer, e.Cause)
}

func (e *EvaluatorError) Unwrap() error {
	return e.Cause
}

// FailedLayer is the verdict reported for a layer whose evaluator failed.
func FailedLayer(id types.LayerID) types.ScorecardLayer {
	return Finalize(types.ScorecardLayer{
		LayerID: id,
		Score:   0,
		Flags:   []string{FlagEvaluatorError},
	})
}

// Finalize clamps the score to [0,100], fills description and status, and
// guarantees a flag on every layer scoring below the pass threshold.
func Finalize(layer types.ScorecardLayer) types.ScorecardLayer {
	layer.Score = clamp(layer.Score)
	if layer.Flags == nil {
		layer.Flags = []string{}
	}
	if layer.Score < types.PassThreshold && len(layer.Flags) == 0 {
		layer.Flags = append(layer.Flags, fmt.Sprintf("%s scored below %d", layer.LayerID.Title(), types.PassThreshold))
	}
	layer.Description = layer.LayerID.Description()
	layer.Status = types.StatusFor(layer.Score)
	return layer
}

func clamp(score int) int {
	return max(0, min(100, score))
}

// percent rounds 100*num/den to an integer; den must be positive.
func percent(num, den float64) int {
	return int(math.Round(100 * num / den))
}
