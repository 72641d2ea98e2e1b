package series

import (
	"testing"
	"time"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func hourly(values ...float64) []Point {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Timestamp: epoch.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return points
}

// TestNew_ComputesStatistics verifies summary statistics are filled on construction
func TestNew_ComputesStatistics(t *testing.T) {
	s, err := New("load", hourly(10, 20, 30, 40, 50))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s.Stats.Mean != 30 {
		t.Errorf("mean = %f, want 30", s.Stats.Mean)
	}
	if s.Stats.Median != 30 {
		t.Errorf("median = %f, want 30", s.Stats.Median)
	}
	if s.Stats.StdDev <= 0 {
		t.Errorf("stddev = %f, want > 0", s.Stats.StdDev)
	}
	for _, p := range []int{5, 25, 75, 95} {
		if _, ok := s.Stats.Percentiles[p]; !ok {
			t.Errorf("missing percentile %d", p)
		}
	}
	if s.Stats.Trend != TrendRising {
		t.Errorf("trend = %s, want rising", s.Stats.Trend)
	}
}

// TestNew_RejectsNonIncreasingTimestamps enforces the ordering invariant
func TestNew_RejectsNonIncreasingTimestamps(t *testing.T) {
	points := hourly(1, 2, 3)
	points[2].Timestamp = points[1].Timestamp

	if _, err := New("bad", points); err == nil {
		t.Fatal("expected error for duplicate timestamp")
	}
}

// TestAppend_RecomputesStatistics verifies statistics stay current as points change
func TestAppend_RecomputesStatistics(t *testing.T) {
	s, err := New("load", hourly(10, 10, 10))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := s.Stats.Mean

	if err := s.Append(Point{Timestamp: epoch.Add(10 * time.Hour), Value: 50}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if s.Stats.Mean == before {
		t.Error("mean was not recomputed after append")
	}
	if err := s.Append(Point{Timestamp: epoch, Value: 1}); err == nil {
		t.Error("expected error appending out-of-order point")
	}
}

// TestStep_MedianInterval verifies the sampling interval estimate
func TestStep_MedianInterval(t *testing.T) {
	s, err := New("load", hourly(1, 2, 3, 4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.Step(); got != time.Hour {
		t.Errorf("step = %v, want 1h", got)
	}
}

// TestMarkAnomaly_KeepsStrongestScore verifies multi-method flagging keeps the max
func TestMarkAnomaly_KeepsStrongestScore(t *testing.T) {
	s, _ := New("load", hourly(1, 2, 3))

	s.MarkAnomaly(1, 0.4)
	s.MarkAnomaly(1, 0.9)
	s.MarkAnomaly(1, 0.6)

	p := s.Points[1]
	if !p.IsAnomaly {
		t.Fatal("point not marked")
	}
	if p.AnomalyScore == nil || *p.AnomalyScore != 0.9 {
		t.Errorf("anomaly score = %v, want 0.9", p.AnomalyScore)
	}
}
