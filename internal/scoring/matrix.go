package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/ats-simulator/internal/skills"
	"github.com/jonathan/ats-simulator/internal/taxonomy"
	"github.com/jonathan/ats-simulator/internal/types"
)

// UnverifiableMatrixScore is reported when the posting has no location or division tags.
const UnverifiableMatrixScore = 50

// MatrixFiltering checks that the resume explicitly links the candidate to
// the posting's location and division.
type MatrixFiltering struct {
	penalty   int
	locations *skills.Matcher
}

// NewMatrixFiltering creates the matrix filtering evaluator.
func NewMatrixFiltering(s Settings, tax *taxonomy.Taxonomy) *MatrixFiltering {
	return &MatrixFiltering{
		penalty:   s.LocationPenalty,
		locations: skills.NewMatcher(tax.LocationTerms()),
	}
}

// Layer implements Evaluator.
func (e *MatrixFiltering) Layer() types.LayerID { return types.LayerMatrixFiltering }

// Evaluate applies the full penalty when the resume names none of the
// posting's tags and partial credit when it names some.
func (e *MatrixFiltering) Evaluate(in *Input) (types.ScorecardLayer, error) {
	locations := in.Target.LocationTags
	divisions := in.Target.DivisionTags
	total := len(locations) + len(divisions)
	if total == 0 {
		return types.ScorecardLayer{
			LayerID: e.Layer(),
			Score:   UnverifiableMatrixScore,
			Flags:   []string{"Posting names no location or division; alignment unverifiable"},
		}, nil
	}

	found := make(map[string]bool)
	for _, loc := range e.locations.Find(in.NormalizedText) {
		found[loc] = true
	}
	resumeKey := skills.MatchKey(in.NormalizedText)

	flags := []string{}
	missing := 0
	for _, tag := range locations {
		if !found[strings.ToLower(tag)] {
			missing++
			flags = append(flags, "Missing location signal: "+tag)
		}
	}
	for _, tag := range divisions {
		key := skills.MatchKey(tag)
		if key == "" || !strings.Contains(resumeKey, key) {
			missing++
			flags = append(flags, "Missing division signal: "+tag)
		}
	}

	score := 100 - int(math.Round(float64(e.penalty)*float64(missing)/float64(total)))
	if missing > 0 && missing < total {
		flags = append(flags, fmt.Sprintf("Partial match: %d of %d location/division signals found", total-missing, total))
	}
	return types.ScorecardLayer{LayerID: e.Layer(), Score: score, Flags: flags}, nil
}
