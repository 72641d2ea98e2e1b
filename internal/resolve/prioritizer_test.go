package resolve

import (
	"testing"
	"time"

	"godrift/domain/anomaly"
	"godrift/domain/core"
)

func record(sev anomaly.Severity, score float64, startHour int) anomaly.Anomaly {
	return anomaly.Anomaly{
		ID:       core.NewAnomalyID(),
		Type:     anomaly.TypeSpike,
		Severity: sev,
		Source:   "revenue",
		Window:   core.SingleWindow(epoch.Add(time.Duration(startHour) * time.Hour)),
		Score:    score,
		Method:   "zscore",
	}
}

// TestPrioritize_SeverityBeforeScore verifies severity dominates: a HIGH
// at 0.5 outranks a MEDIUM at 0.9.
func TestPrioritize_SeverityBeforeScore(t *testing.T) {
	anomalies := []anomaly.Anomaly{
		record(anomaly.SeverityHigh, 0.9, 1),
		record(anomaly.SeverityMedium, 0.9, 2),
		record(anomaly.SeverityHigh, 0.5, 3),
	}

	Prioritize(anomalies)

	type rank struct {
		sev   anomaly.Severity
		score float64
	}
	want := []rank{
		{anomaly.SeverityHigh, 0.9},
		{anomaly.SeverityHigh, 0.5},
		{anomaly.SeverityMedium, 0.9},
	}
	for i, w := range want {
		if anomalies[i].Severity != w.sev || anomalies[i].Score != w.score {
			t.Errorf("position %d: got %s/%.1f, want %s/%.1f",
				i, anomalies[i].Severity, anomalies[i].Score, w.sev, w.score)
		}
	}
}

// TestPrioritize_RecencyBreaksScoreTies verifies the most recent window
// comes first when severity and score tie.
func TestPrioritize_RecencyBreaksScoreTies(t *testing.T) {
	anomalies := []anomaly.Anomaly{
		record(anomaly.SeverityHigh, 0.8, 1),
		record(anomaly.SeverityHigh, 0.8, 9),
		record(anomaly.SeverityHigh, 0.8, 5),
	}

	Prioritize(anomalies)

	wantHours := []int{9, 5, 1}
	for i, h := range wantHours {
		want := epoch.Add(time.Duration(h) * time.Hour)
		if !anomalies[i].Window.Start.Equal(want) {
			t.Errorf("position %d: window start %v, want hour %d", i, anomalies[i].Window.Start, h)
		}
	}
}

// TestPrioritize_StableOnExactTies verifies identical sort keys keep
// their input order.
func TestPrioritize_StableOnExactTies(t *testing.T) {
	first := record(anomaly.SeverityLow, 0.2, 4)
	second := record(anomaly.SeverityLow, 0.2, 4)
	anomalies := []anomaly.Anomaly{first, second}

	Prioritize(anomalies)

	if anomalies[0].ID != first.ID || anomalies[1].ID != second.ID {
		t.Error("exact ties were reordered")
	}
}
