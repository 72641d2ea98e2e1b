package detectors

import (
	"math"

	"github.com/montanaflynn/stats"

	"godrift/domain/anomaly"
	"godrift/domain/core"
	"godrift/domain/series"
)

// MovingAverageMethod flags points that deviate from the rolling mean of
// the preceding window by more than the z-score threshold in rolling
// standard deviations. Points without a full preceding window are not
// evaluated.
type MovingAverageMethod struct{}

// NewMovingAverageMethod creates the rolling-window deviation check.
func NewMovingAverageMethod() *MovingAverageMethod {
	return &MovingAverageMethod{}
}

// Name returns the method name.
func (m *MovingAverageMethod) Name() string {
	return "moving_average"
}

// Evaluate computes rolling statistics over the preceding window for
// each point past the warm-up span.
func (m *MovingAverageMethod) Evaluate(s *series.TimeSeries, params anomaly.DetectionParameters) ([]Flag, error) {
	window := params.MovingAverageWindow
	if s.Len() <= window {
		return nil, core.NewInsufficientDataError(m.Name(), window+1, s.Len())
	}

	values := s.Values()
	var flags []Flag
	for i := window; i < len(values); i++ {
		prior := values[i-window : i]
		rollingMean, _ := stats.Mean(prior)
		rollingStd, _ := stats.StandardDeviation(prior)

		deviation := values[i] - rollingMean
		if rollingStd == 0 {
			// A flat window makes any departure infinitely surprising;
			// flag it at full score instead of dividing by zero.
			if deviation != 0 {
				flags = append(flags, Flag{Index: i, Score: 1, Type: directionType(deviation)})
			}
			continue
		}

		z := deviation / rollingStd
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
