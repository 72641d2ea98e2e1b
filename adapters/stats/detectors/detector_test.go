package detectors

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"godrift/domain/anomaly"
	"godrift/domain/core"
	"godrift/domain/series"
	"godrift/internal/testkit"
)

// TestDetect_InjectedSpike verifies the canonical case: a constant
// series of 100 with one point at 1000 yields SPIKE candidates flagging
// exactly that point against a baseline of 100.
func TestDetect_InjectedSpike(t *testing.T) {
	points := testkit.WithSpike(testkit.GeneratePoints(50, 100, 0, 1), 30, 1000)
	s := testkit.MustSeries("revenue", points)
	spikeAt := points[30].Timestamp

	candidates, skipped, err := NewDetector().Detect(context.Background(), s, anomaly.DefaultParameters())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(candidates) == 0 {
		t.Fatal("expected spike candidates")
	}

	for _, c := range candidates {
		if c.Type != anomaly.TypeSpike {
			t.Errorf("method %s: type = %s, want SPIKE", c.Method, c.Type)
		}
		if !c.Window.IsSingle() || !c.Window.Start.Equal(spikeAt) {
			t.Errorf("method %s: window %v does not pin the spike point", c.Method, c.Window)
		}
		if c.Observed != 1000 {
			t.Errorf("method %s: observed = %f, want 1000", c.Method, c.Observed)
		}
		if math.Abs(c.Baseline-100) > 1e-9 {
			t.Errorf("method %s: baseline = %f, want 100", c.Method, c.Baseline)
		}
	}

	// The percentile span collapses and no seasonality exists; both
	// checks must be reported as skipped, not silently missing.
	skippedMethods := map[string]bool{}
	for _, sk := range skipped {
		skippedMethods[sk.Method] = true
	}
	if !skippedMethods["percentile"] || !skippedMethods["seasonal_residual"] {
		t.Errorf("skipped checks = %v, want percentile and seasonal_residual noted", skipped)
	}

	if !s.Points[30].IsAnomaly {
		t.Error("spike point was not annotated on the series")
	}
}

// TestZScore_ExactBoundaryNotFlagged documents the strict-inequality
// convention: a point at exactly mean + threshold·σ is not flagged.
func TestZScore_ExactBoundaryNotFlagged(t *testing.T) {
	points := testkit.GeneratePoints(5, 10, 0, 1)
	points[4].Value = 20
	s := testkit.MustSeries("load", points)

	params := anomaly.DefaultParameters()
	params.ZScoreThreshold = math.Abs((20 - s.Stats.Mean) / s.Stats.StdDev)

	flags, err := NewZScoreMethod().Evaluate(s, params)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(flags) != 0 {
		t.Errorf("point at exactly the threshold was flagged: %+v", flags)
	}
}

// TestDetect_MinimumDurationFilter verifies property: with a duration
// floor of 2, a lone flagged point is discarded while two consecutive
// flagged points survive as one candidate spanning both.
func TestDetect_MinimumDurationFilter(t *testing.T) {
	params := anomaly.DefaultParameters()
	params.MinimumAnomalyDuration = 2

	// Lone spike: discarded.
	lone := testkit.MustSeries("lone", testkit.WithSpike(testkit.GeneratePoints(50, 100, 0, 1), 30, 1000))
	candidates, _, err := NewDetector().Detect(context.Background(), lone, params)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("lone flagged point survived the duration filter: %+v", candidates)
	}

	// Two consecutive spikes: one candidate spanning both points.
	points := testkit.GeneratePoints(50, 100, 0, 1)
	points = testkit.WithSpike(points, 30, 1000)
	points = testkit.WithSpike(points, 31, 1000)
	double := testkit.MustSeries("double", points)

	candidates, _, err = NewDetector().Detect(context.Background(), double, params)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want exactly 1", len(candidates))
	}
	c := candidates[0]
	if !c.Window.Start.Equal(points[30].Timestamp) || !c.Window.End.Equal(points[31].Timestamp) {
		t.Errorf("window %v does not span both flagged points", c.Window)
	}
}

// TestDetect_DegenerateSeriesSafe verifies an all-zero series produces
// zero candidates and no error, with every check accounted for.
func TestDetect_DegenerateSeriesSafe(t *testing.T) {
	s := testkit.MustSeries("flat", testkit.GeneratePoints(40, 0, 0, 1))

	candidates, skipped, err := NewDetector().Detect(context.Background(), s, anomaly.DefaultParameters())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("degenerate series produced candidates: %+v", candidates)
	}
	if len(skipped) == 0 {
		t.Error("degenerate checks were not noted as skipped")
	}
}

// TestDetect_Cancellation verifies the cooperative stop between methods
func TestDetect_Cancellation(t *testing.T) {
	s := testkit.MustSeries("load", testkit.GeneratePoints(40, 100, 5, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewDetector().Detect(ctx, s, anomaly.DefaultParameters())
	if !errors.Is(err, core.ErrRunCancelled) {
		t.Errorf("error = %v, want run-cancelled", err)
	}
}

// TestMovingAverage_InsufficientData verifies the warm-up requirement
func TestMovingAverage_InsufficientData(t *testing.T) {
	s := testkit.MustSeries("short", testkit.GeneratePoints(5, 100, 1, 1))

	_, err := NewMovingAverageMethod().Evaluate(s, anomaly.DefaultParameters())
	if !core.IsInsufficientData(err) {
		t.Errorf("error = %v, want insufficient data", err)
	}
}

// TestMovingAverage_FlatWindowJump verifies the zero-rolling-std branch
// flags a departure at full score instead of dividing by zero.
func TestMovingAverage_FlatWindowJump(t *testing.T) {
	points := testkit.WithSpike(testkit.GeneratePoints(20, 100, 0, 1), 15, 200)
	s := testkit.MustSeries("load", points)

	flags, err := NewMovingAverageMethod().Evaluate(s, anomaly.DefaultParameters())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	found := false
	for _, f := range flags {
		if f.Index == 15 {
			found = true
			if f.Score != 1 {
				t.Errorf("score = %f, want 1 for flat-window jump", f.Score)
			}
			if f.Type != anomaly.TypeSpike {
				t.Errorf("type = %s, want SPIKE", f.Type)
			}
		}
	}
	if !found {
		t.Error("jump after flat window was not flagged")
	}
}

// TestPercentile_FlagsTails verifies both tails on a linear ramp
func TestPercentile_FlagsTails(t *testing.T) {
	points := make([]series.Point, 100)
	for i := range points {
		points[i] = series.Point{
			Timestamp: testkit.Epoch.Add(time.Duration(i) * time.Hour),
			Value:     float64(i),
		}
	}
	s := testkit.MustSeries("ramp", points)

	flags, err := NewPercentileMethod().Evaluate(s, anomaly.DefaultParameters())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	var spikes, drops int
	for _, f := range flags {
		switch f.Type {
		case anomaly.TypeSpike:
			spikes++
		case anomaly.TypeDrop:
			drops++
		}
		if f.Score < 0 || f.Score > 1 {
			t.Errorf("score %f outside [0,1]", f.Score)
		}
	}
	if spikes == 0 || drops == 0 {
		t.Errorf("spikes = %d, drops = %d, want both tails flagged", spikes, drops)
	}
}
