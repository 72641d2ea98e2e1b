// Package resolve turns raw detector candidates into final anomaly
// records: it merges temporally touching candidates per source and
// method, assigns severity from the unified score scale, and computes
// magnitude and affected region. It is the only place severity is
// assigned.
package resolve

import (
	"sort"

	"godrift/domain/anomaly"
	"godrift/domain/core"
)

// Severity bucket boundaries on the unified [0, 1] score scale. These
// are policy constants, not derived per dataset.
const (
	SeverityMediumMin = 0.4
	SeverityHighMin   = 0.7
)

// SeverityFor buckets a score into LOW / MEDIUM / HIGH.
func SeverityFor(score float64) anomaly.Severity {
	switch {
	case score >= SeverityHighMin:
		return anomaly.SeverityHigh
	case score >= SeverityMediumMin:
		return anomaly.SeverityMedium
	default:
		return anomaly.SeverityLow
	}
}

// Resolver implements ports.AnomalyResolver.
type Resolver struct{}

// NewResolver creates a resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve merges and scores candidates. Candidates from the same source
// and same method whose windows overlap or sit within one sampling step
// of each other collapse into a single anomaly spanning the earliest to
// latest flagged timestamp, carrying the maximum score. Candidates from
// different methods or check types are never merged. Output order is
// deterministic: by source, then method, then window start.
func (r *Resolver) Resolve(candidates []anomaly.Candidate) []anomaly.Anomaly {
	groups := map[groupKey][]anomaly.Candidate{}
	var order []groupKey
	for _, c := range candidates {
		key := groupKey{source: c.Source, method: c.Method}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].source != order[j].source {
			return order[i].source < order[j].source
		}
		return order[i].method < order[j].method
	})

	var out []anomaly.Anomaly
	for _, key := range order {
		for _, merged := range mergeGroup(groups[key]) {
			out = append(out, r.finalize(merged))
		}
	}
	return out
}

type groupKey struct {
	source string
	method string
}

// mergeGroup collapses a sorted run of same-source same-method
// candidates into merged candidates with spanning windows and maximum
// scores. Merging twice is a no-op: merged windows already touch
// nothing else in the group.
func mergeGroup(group []anomaly.Candidate) []anomaly.Candidate {
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].Window.Start.Before(group[j].Window.Start)
	})

	var merged []anomaly.Candidate
	for _, c := range group {
		if len(merged) == 0 {
			merged = append(merged, c)
			continue
		}
		last := &merged[len(merged)-1]
		gap := last.Step
		if c.Step > gap {
			gap = c.Step
		}
		if !last.Window.Touches(c.Window, gap) {
			merged = append(merged, c)
			continue
		}

		last.Window = last.Window.Union(c.Window)
		if c.Score > last.Score {
			// The stronger candidate drives type, magnitude inputs and
			// metadata for the merged record.
			last.Type = c.Type
			last.Score = c.Score
			last.Basis = c.Basis
			last.Baseline = c.Baseline
			last.Observed = c.Observed
			last.Metadata = c.Metadata
		}
		last.Keywords = mergeStrings(last.Keywords, c.Keywords)
		last.Categories = mergeStrings(last.Categories, c.Categories)
	}
	return merged
}

// finalize builds the immutable anomaly record from a merged candidate.
func (r *Resolver) finalize(c anomaly.Candidate) anomaly.Anomaly {
	return anomaly.Anomaly{
		ID:       core.NewAnomalyID(),
		Type:     c.Type,
		Severity: SeverityFor(c.Score),
		Source:   c.Source,
		Window:   c.Window,
		Region: anomaly.Region{
			Source:     c.Source,
			Keywords:   c.Keywords,
			Categories: c.Categories,
		},
		Score:     c.Score,
		Magnitude: magnitude(c),
		Method:    c.Method,
		Metadata:  c.Metadata,
	}
}

// magnitude is the percent change against the pre-anomaly baseline mean
// for numeric candidates, or the percentage-point change for text
// proportions.
func magnitude(c anomaly.Candidate) float64 {
	switch c.Basis {
	case anomaly.BasisProportion:
		return (c.Observed - c.Baseline) * 100
	default:
		if c.Baseline == 0 {
			return 0
		}
		return (c.Observed - c.Baseline) / c.Baseline * 100
	}
}

func mergeStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			a = append(a, s)
		}
	}
	return a
}
