package detectors

import (
	"math"

	"godrift/domain/anomaly"
	"godrift/domain/core"
	"godrift/domain/series"
)

// ZScoreMethod flags points whose deviation from the series mean exceeds
// the configured number of standard deviations. The comparison is a
// strict inequality: a point at exactly mean + threshold·σ is not
// flagged.
type ZScoreMethod struct{}

// NewZScoreMethod creates the global z-score check.
func NewZScoreMethod() *ZScoreMethod {
	return &ZScoreMethod{}
}

// Name returns the method name.
func (m *ZScoreMethod) Name() string {
	return "zscore"
}

// Evaluate scans the series against its precomputed statistics.
func (m *ZScoreMethod) Evaluate(s *series.TimeSeries, params anomaly.DetectionParameters) ([]Flag, error) {
	if s.Len() < 2 {
		return nil, core.NewInsufficientDataError(m.Name(), 2, s.Len())
	}
	st := s.Stats
	if st.StdDev == 0 {
		return nil, core.NewDegenerateInputError(m.Name(), "zero variance")
	}

	var flags []Flag
	for i, p := range s.Points {
		z := (p.Value - st.Mean) / st.StdDev
		if math.Abs(z) > params.ZScoreThreshold {
			flags = append(flags, Flag{
				Index: i,
				Score: zScoreToScore(z, params.ZScoreThreshold),
				Type:  directionType(z),
			})
		}
	}
	return flags, nil
}

// zScoreToScore normalizes a z value to [0, 1], saturating at twice the
// threshold.
func zScoreToScore(z, threshold float64) float64 {
	return math.Min(1, math.Abs(z)/(2*threshold))
}

func directionType(deviation float64) anomaly.AnomalyType {
	if deviation > 0 {
		return anomaly.TypeSpike
	}
	return anomaly.TypeDrop
}
