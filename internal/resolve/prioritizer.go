package resolve

import (
	"sort"

	"godrift/domain/anomaly"
)

// Prioritize orders anomalies in place: severity first (HIGH > MEDIUM >
// LOW), then score descending, then window start descending so the most
// recent comes first. The sort is stable, so exact ties keep their
// insertion order and output stays deterministic.
func Prioritize(anomalies []anomaly.Anomaly) {
	sort.SliceStable(anomalies, func(i, j int) bool {
		a, b := anomalies[i], anomalies[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Window.Start.After(b.Window.Start)
	})
}
