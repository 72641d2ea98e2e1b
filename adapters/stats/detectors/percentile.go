package detectors

import (
	"math"

	"github.com/montanaflynn/stats"

	"godrift/domain/anomaly"
	"godrift/domain/core"
	"godrift/domain/series"
)

// PercentileMethod flags values strictly outside the configured lower
// and upper percentile thresholds. Scores scale with the distance from
// the violated threshold relative to the percentile span.
type PercentileMethod struct{}

// NewPercentileMethod creates the percentile threshold check.
func NewPercentileMethod() *PercentileMethod {
	return &PercentileMethod{}
}

// Name returns the method name.
func (m *PercentileMethod) Name() string {
	return "percentile"
}

// Evaluate compares every value against the series percentile bounds.
func (m *PercentileMethod) Evaluate(s *series.TimeSeries, params anomaly.DetectionParameters) ([]Flag, error) {
	if s.Len() < 4 {
		return nil, core.NewInsufficientDataError(m.Name(), 4, s.Len())
	}

	values := s.Values()
	lower, err := stats.Percentile(values, params.PercentileThresholds[0])
	if err != nil {
		return nil, core.NewDegenerateInputError(m.Name(), err.Error())
	}
	upper, err := stats.Percentile(values, params.PercentileThresholds[1])
	if err != nil {
		return nil, core.NewDegenerateInputError(m.Name(), err.Error())
	}
	span := upper - lower
	if span == 0 {
		return nil, core.NewDegenerateInputError(m.Name(), "zero percentile span")
	}

	var flags []Flag
	for i, v := range values {
		switch {
		case v > upper:
			flags = append(flags, Flag{
				Index: i,
				Score: math.Min(1, (v-upper)/span),
				Type:  anomaly.TypeSpike,
			})
		case v < lower:
			flags = append(flags, Flag{
				Index: i,
				Score: math.Min(1, (lower-v)/span),
				Type:  anomaly.TypeDrop,
			})
		}
	}
	return flags, nil
}
