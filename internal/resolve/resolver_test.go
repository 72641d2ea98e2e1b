package resolve

import (
	"math"
	"testing"
	"time"

	"godrift/domain/anomaly"
	"godrift/domain/core"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func window(fromHour, toHour int) core.TimeWindow {
	return core.NewTimeWindow(
		epoch.Add(time.Duration(fromHour)*time.Hour),
		epoch.Add(time.Duration(toHour)*time.Hour),
	)
}

func candidate(source, method string, w core.TimeWindow, score float64) anomaly.Candidate {
	return anomaly.Candidate{
		Type:   anomaly.TypeSpike,
		Method: method,
		Source: source,
		Window: w,
		Score:  score,
		Step:   time.Hour,
		Basis:  anomaly.BasisMean,
	}
}

// TestSeverityFor_Boundaries pins the bucket edges of the policy scale
func TestSeverityFor_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  anomaly.Severity
	}{
		{0.0, anomaly.SeverityLow},
		{0.39, anomaly.SeverityLow},
		{0.4, anomaly.SeverityMedium},
		{0.69, anomaly.SeverityMedium},
		{0.7, anomaly.SeverityHigh},
		{1.0, anomaly.SeverityHigh},
	}
	for _, tc := range cases {
		if got := SeverityFor(tc.score); got != tc.want {
			t.Errorf("SeverityFor(%f) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

// TestSeverityFor_Monotonic verifies a higher score never yields a lower
// severity rank.
func TestSeverityFor_Monotonic(t *testing.T) {
	prev := SeverityFor(0).Rank()
	for score := 0.0; score <= 1.0; score += 0.01 {
		rank := SeverityFor(score).Rank()
		if rank < prev {
			t.Fatalf("severity rank dropped from %d to %d at score %f", prev, rank, score)
		}
		prev = rank
	}
}

// TestResolve_MergesTouchingWindows verifies overlapping and
// one-step-adjacent candidates from the same source and method collapse
// into one anomaly spanning both, carrying the maximum score.
func TestResolve_MergesTouchingWindows(t *testing.T) {
	candidates := []anomaly.Candidate{
		candidate("revenue", "zscore", window(3, 4), 0.9),
		candidate("revenue", "zscore", window(0, 2), 0.5),
	}

	anomalies := NewResolver().Resolve(candidates)
	if len(anomalies) != 1 {
		t.Fatalf("got %d anomalies, want 1 merged", len(anomalies))
	}
	a := anomalies[0]
	if !a.Window.Start.Equal(epoch) || !a.Window.End.Equal(epoch.Add(4*time.Hour)) {
		t.Errorf("merged window %v does not span hours 0-4", a.Window)
	}
	if a.Score != 0.9 {
		t.Errorf("merged score = %f, want the maximum 0.9", a.Score)
	}
	if a.Severity != anomaly.SeverityHigh {
		t.Errorf("severity = %s, want HIGH for score 0.9", a.Severity)
	}
}

// TestResolve_GapBeyondStepStaysSeparate verifies candidates farther
// apart than one sampling step are reported separately.
func TestResolve_GapBeyondStepStaysSeparate(t *testing.T) {
	candidates := []anomaly.Candidate{
		candidate("revenue", "zscore", window(0, 1), 0.5),
		candidate("revenue", "zscore", window(5, 6), 0.5),
	}

	anomalies := NewResolver().Resolve(candidates)
	if len(anomalies) != 2 {
		t.Fatalf("got %d anomalies, want 2 separate", len(anomalies))
	}
}

// TestResolve_NoCrossMethodMerge verifies candidates from different
// methods or sources never collapse, even with identical windows.
func TestResolve_NoCrossMethodMerge(t *testing.T) {
	candidates := []anomaly.Candidate{
		candidate("revenue", "zscore", window(0, 1), 0.5),
		candidate("revenue", "moving_average", window(0, 1), 0.5),
		candidate("latency", "zscore", window(0, 1), 0.5),
	}

	anomalies := NewResolver().Resolve(candidates)
	if len(anomalies) != 3 {
		t.Fatalf("got %d anomalies, want 3 unmerged", len(anomalies))
	}
}

// TestResolve_Idempotent verifies merging is a fixed point: resolving a
// group twice yields the same windows and scores as resolving it once.
func TestResolve_Idempotent(t *testing.T) {
	candidates := []anomaly.Candidate{
		candidate("revenue", "zscore", window(0, 2), 0.5),
		candidate("revenue", "zscore", window(2, 4), 0.6),
		candidate("revenue", "zscore", window(10, 11), 0.3),
	}

	first := NewResolver().Resolve(candidates)

	again := make([]anomaly.Candidate, len(first))
	for i, a := range first {
		again[i] = candidate(a.Source, a.Method, a.Window, a.Score)
	}
	second := NewResolver().Resolve(again)

	if len(first) != len(second) {
		t.Fatalf("re-resolving changed count: %d then %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Window.Start.Equal(second[i].Window.Start) ||
			!first[i].Window.End.Equal(second[i].Window.End) {
			t.Errorf("window %d changed on re-resolve: %v then %v", i, first[i].Window, second[i].Window)
		}
		if first[i].Score != second[i].Score {
			t.Errorf("score %d changed on re-resolve: %f then %f", i, first[i].Score, second[i].Score)
		}
	}
}

// TestResolve_StrongerCandidateDrivesRecord verifies the higher-scoring
// side of a merge supplies type and magnitude inputs while keywords from
// both sides are unioned.
func TestResolve_StrongerCandidateDrivesRecord(t *testing.T) {
	weak := candidate("tickets", "keyword_drift", window(0, 1), 0.3)
	weak.Type = anomaly.TypeKeywordDrift
	weak.Basis = anomaly.BasisProportion
	weak.Keywords = []string{"refund"}

	strong := candidate("tickets", "keyword_drift", window(1, 2), 0.8)
	strong.Type = anomaly.TypeKeywordDrift
	strong.Basis = anomaly.BasisProportion
	strong.Baseline = 0.02
	strong.Observed = 0.10
	strong.Keywords = []string{"breach"}

	anomalies := NewResolver().Resolve([]anomaly.Candidate{weak, strong})
	if len(anomalies) != 1 {
		t.Fatalf("got %d anomalies, want 1 merged", len(anomalies))
	}
	a := anomalies[0]
	if a.Score != 0.8 {
		t.Errorf("score = %f, want the stronger 0.8", a.Score)
	}
	if math.Abs(a.Magnitude-8.0) > 1e-9 {
		t.Errorf("magnitude = %f, want 8 percentage points from the stronger side", a.Magnitude)
	}
	if len(a.Region.Keywords) != 2 {
		t.Errorf("region keywords = %v, want the union of both sides", a.Region.Keywords)
	}
}

// TestMagnitude_PercentOfBaseline verifies the numeric basis: a spike to
// 1000 over a baseline of 100 is a 900% change.
func TestMagnitude_PercentOfBaseline(t *testing.T) {
	c := candidate("revenue", "zscore", window(0, 0), 1.0)
	c.Baseline = 100
	c.Observed = 1000

	a := NewResolver().Resolve([]anomaly.Candidate{c})[0]
	if math.Abs(a.Magnitude-900) > 1e-9 {
		t.Errorf("magnitude = %f, want 900", a.Magnitude)
	}
}

// TestMagnitude_ZeroBaseline verifies the division guard
func TestMagnitude_ZeroBaseline(t *testing.T) {
	c := candidate("revenue", "zscore", window(0, 0), 1.0)
	c.Baseline = 0
	c.Observed = 50

	a := NewResolver().Resolve([]anomaly.Candidate{c})[0]
	if a.Magnitude != 0 {
		t.Errorf("magnitude = %f, want 0 for zero baseline", a.Magnitude)
	}
}

// TestResolve_DeterministicOrder verifies output ordering by source then
// method regardless of input order.
func TestResolve_DeterministicOrder(t *testing.T) {
	candidates := []anomaly.Candidate{
		candidate("b", "zscore", window(0, 1), 0.5),
		candidate("a", "percentile", window(0, 1), 0.5),
		candidate("a", "moving_average", window(0, 1), 0.5),
	}

	anomalies := NewResolver().Resolve(candidates)
	if len(anomalies) != 3 {
		t.Fatalf("got %d anomalies, want 3", len(anomalies))
	}
	wantOrder := []string{"moving_average", "percentile", "zscore"}
	for i, a := range anomalies {
		if a.Method != wantOrder[i] {
			t.Errorf("position %d: method = %s, want %s", i, a.Method, wantOrder[i])
		}
	}
}
