package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/ats-simulator/internal/ingestion"
	"github.com/jonathan/ats-simulator/internal/types"
)

// VersionControl measures how much a resubmission differs from the prior one.
type VersionControl struct {
	threshold float64
}

// NewVersionControl creates the version control evaluator.
func NewVersionControl(s Settings) *VersionControl {
	return &VersionControl{threshold: s.SubstantialUpdateThreshold}
}

// Layer implements Evaluator.
func (e *VersionControl) Layer() types.LayerID { return types.LayerVersionControl }

// Evaluate compares the resume with the prior submission by word-level edit
// distance. Without a prior there is nothing to compare and the layer passes.
// A change at or above the threshold passes and a smaller change scores in
// proportion to the threshold, so one changed word in a hundred scores 7.
// An identical resubmission is the exception: it scores 100 because the
// document itself is unchanged and still parses, so only the flag reports
// the duplicate. Every change below the threshold carries the insignificant
// update flag.
func (e *VersionControl) Evaluate(in *Input) (types.ScorecardLayer, error) {
	layer := types.ScorecardLayer{LayerID: e.Layer(), Score: 100, Flags: []string{}}
	if in.PriorResumeText == nil {
		return layer, nil
	}

	changed := ChangedFraction(ingestion.CleanText(*in.PriorResumeText), in.NormalizedText, e.threshold)
	if changed >= e.threshold {
		return layer, nil
	}

	if changed > 0 {
		layer.Score = int(math.Round(100 * changed / e.threshold))
	}
	layer.Flags = append(layer.Flags, fmt.Sprintf("insignificant update - may be deduplicated (%.1f%% changed)", 100*changed))
	return layer, nil
}

// ChangedFraction is the word-level edit distance between prior and current,
// normalized by the longer of the two, in [0,1]. The result is exact below
// threshold; at or above it the returned value is only guaranteed to be at
// least threshold, which keeps the cost bounded on large documents.
func ChangedFraction(prior, current string, threshold float64) float64 {
	a, b := wordIDs(strings.Fields(strings.ToLower(prior)), strings.Fields(strings.ToLower(current)))
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	limit := int(math.Ceil(threshold * float64(longest)))
	limit = max(1, min(limit, longest))

	// Small bounds first: near-identical resubmissions finish in O(d*len).
	var d int
	for k := min(64, limit); ; k = min(2*k, limit) {
		d = boundedEditDistance(a, b, k)
		if d < k || k == limit {
			break
		}
	}
	if d == limit {
		return max(float64(d)/float64(longest), threshold)
	}
	return float64(d) / float64(longest)
}

// wordIDs maps words to dense integers so the distance loop compares ints.
func wordIDs(a, b []string) ([]int, []int) {
	ids := make(map[string]int, len(a))
	convert := func(words []string) []int {
		out := make([]int, len(words))
		for i, w := range words {
			id, ok := ids[w]
			if !ok {
				id = len(ids)
				ids[w] = id
			}
			out[i] = id
		}
		return out
	}
	return convert(a), convert(b)
}

// boundedEditDistance is the Levenshtein distance over word IDs when it is
// below limit, and limit otherwise. It runs in O(limit*len) time.
func boundedEditDistance(a, b []int, limit int) int {
	// shared prefix and suffix cost nothing
	for len(a) > 0 && len(b) > 0 && a[0] == b[0] {
		a, b = a[1:], b[1:]
	}
	for len(a) > 0 && len(b) > 0 && a[len(a)-1] == b[len(b)-1] {
		a, b = a[:len(a)-1], b[:len(b)-1]
	}
	if len(a) < len(b) {
		a, b = b, a
	}
	n, m := len(a), len(b)
	if n-m >= limit || n-commonWords(a, b) >= limit {
		return limit
	}
	if m == 0 {
		return n
	}

	inf := limit + 1
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for j := range prev {
		prev[j] = min(j, inf)
	}
	for i := 1; i <= n; i++ {
		lo, hi := max(1, i-limit), min(m, i+limit)
		if lo == 1 {
			curr[0] = min(i, inf)
		} else {
			curr[lo-1] = inf
		}
		rowMin := curr[lo-1]
		for j := lo; j <= hi; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			v := min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost, inf)
			curr[j] = v
			rowMin = min(rowMin, v)
		}
		if hi < m {
			curr[hi+1] = inf
		}
		if rowMin >= limit {
			return limit
		}
		prev, curr = curr, prev
	}
	return min(prev[m], limit)
}

// commonWords is the size of the multiset intersection of a and b. The edit
// distance is at least the longer length minus this.
func commonWords(a, b []int) int {
	counts := make(map[int]int, len(b))
	for _, w := range b {
		counts[w]++
	}
	common := 0
	for _, w := range a {
		if counts[w] > 0 {
			counts[w]--
			common++
		}
	}
	return common
}
