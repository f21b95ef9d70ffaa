package scoring

import (
	"fmt"
	"math"

	"github.com/jonathan/ats-simulator/internal/types"
)

// DefaultGateThreshold is the compliance score below which it caps the overall score.
const DefaultGateThreshold = 50

// DefaultWeights weighs the five layers equally.
func DefaultWeights() map[types.LayerID]float64 {
	weights := make(map[types.LayerID]float64, len(types.LayerOrder))
	for _, id := range types.LayerOrder {
		weights[id] = 0.2
	}
	return weights
}

// Aggregator folds layer verdicts into a Scorecard.
type Aggregator struct {
	weights map[types.LayerID]float64
	total   float64
	gate    int
}

// NewAggregator creates an Aggregator. Weights are normalized by their sum;
// a layer without a weight counts zero. Weights must be non-negative with a
// positive sum and name only known layers.
func NewAggregator(weights map[types.LayerID]float64, gate int) (*Aggregator, error) {
	if weights == nil {
		weights = DefaultWeights()
	}
	total := 0.0
	copied := make(map[types.LayerID]float64, len(weights))
	for id, w := range weights {
		if !id.Valid() {
			return nil, fmt.Errorf("unknown layer %q in weights", id)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("weight for %s must be a non-negative number, got %v", id, w)
		}
		copied[id] = w
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("layer weights must have a positive sum")
	}
	if gate < 0 || gate > 100 {
		return nil, fmt.Errorf("gate threshold must be in [0,100], got %d", gate)
	}
	return &Aggregator{weights: copied, total: total, gate: gate}, nil
}

// Aggregate computes the weighted average of the layer scores, then caps it
// at the compliance score when compliance falls below the gate threshold.
// Missing layers are reported as failed evaluators.
func (a *Aggregator) Aggregate(layers map[types.LayerID]types.ScorecardLayer) types.Scorecard {
	complete := make(map[types.LayerID]types.ScorecardLayer, len(types.LayerOrder))
	weighted := 0.0
	for _, id := range types.LayerOrder {
		layer, ok := layers[id]
		if !ok {
			layer = FailedLayer(id)
		}
		complete[id] = layer
		weighted += a.weights[id] * float64(clamp(layer.Score))
	}

	overall := int(math.Round(weighted / a.total))
	if compliance := complete[types.LayerComplianceGating].Score; compliance < a.gate {
		overall = min(overall, compliance)
	}
	overall = clamp(overall)

	return types.Scorecard{
		OverallScore:     overall,
		Status:           types.StatusFor(overall),
		Layers:           complete,
		CriticalFailures: criticalFailures(complete),
	}
}

// criticalFailures lists "<layer>: <flag>" for every layer in CRITICAL FAIL, in layer order.
func criticalFailures(layers map[types.LayerID]types.ScorecardLayer) []string {
	out := []string{}
	for _, id := range types.LayerOrder {
		layer := layers[id]
		if types.StatusFor(layer.Score) != types.StatusCriticalFail {
			continue
		}
		for _, flag := range layer.Flags {
			out = append(out, fmt.Sprintf("%s: %s", id, flag))
		}
	}
	return out
}
