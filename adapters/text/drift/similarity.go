package drift

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// cosineSimilarity compares two sparse TF-IDF maps over the union of
// their terms. Returns false when either vector has zero norm, meaning
// no comparison is possible.
func cosineSimilarity(a, b map[string]float64) (float64, bool) {
	terms := make([]string, 0, len(a)+len(b))
	seen := map[string]struct{}{}
	for t := range a {
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	for t := range b {
		if _, ok := seen[t]; !ok {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return 0, false
	}

	va := make([]float64, len(terms))
	vb := make([]float64, len(terms))
	for i, t := range terms {
		va[i] = a[t]
		vb[i] = b[t]
	}

	normA := math.Sqrt(floats.Dot(va, va))
	normB := math.Sqrt(floats.Dot(vb, vb))
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return floats.Dot(va, vb) / (normA * normB), true
}

// topWeightShifts names the terms contributing most to the divergence
// between two TF-IDF profiles.
func topWeightShifts(current, baseline map[string]float64) []string {
	type shift struct {
		term string
		diff float64
	}
	var shifts []shift
	seen := map[string]struct{}{}
	for _, m := range []map[string]float64{current, baseline} {
		for term := range m {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			shifts = append(shifts, shift{term: term, diff: math.Abs(current[term] - baseline[term])})
		}
	}
	sort.Slice(shifts, func(i, j int) bool {
		if shifts[i].diff != shifts[j].diff {
			return shifts[i].diff > shifts[j].diff
		}
		return shifts[i].term < shifts[j].term
	})

	n := maxDriftKeywords
	if len(shifts) < n {
		n = len(shifts)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = shifts[i].term
	}
	return out
}
