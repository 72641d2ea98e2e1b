package detectors

import (
	"math"

	"github.com/montanaflynn/stats"

	"godrift/adapters/stats/decompose"
	"godrift/domain/anomaly"
	"godrift/domain/core"
	"godrift/domain/series"
)

// ResidualMethod applies z-score logic to the residual component of a
// seasonal decomposition, catching deviations the raw-value checks miss
// on strongly seasonal columns. A series too short to decompose (fewer
// than two full periods) skips this method; the global z-score check
// already covers the raw values.
type ResidualMethod struct {
	// period is the seasonal lag in points; zero means infer it from
	// the autocorrelation peak.
	period int
}

// NewResidualMethod creates the seasonal residual check.
func NewResidualMethod(period int) *ResidualMethod {
	return &ResidualMethod{period: period}
}

// Name returns the method name.
func (m *ResidualMethod) Name() string {
	return "seasonal_residual"
}

// Evaluate decomposes the series and scans the residuals.
func (m *ResidualMethod) Evaluate(s *series.TimeSeries, params anomaly.DetectionParameters) ([]Flag, error) {
	dec, err := decompose.Decompose(s.Values(), m.period)
	if err != nil {
		return nil, err
	}
	// Record the seasonality descriptor on the series statistics.
	s.Stats.SeasonalPeriod = dec.Period

	mean, _ := stats.Mean(dec.Residual)
	stdDev, _ := stats.StandardDeviation(dec.Residual)
	if stdDev == 0 {
		return nil, core.NewDegenerateInputError(m.Name(), "zero residual variance")
	}

	var flags []Flag
	for i, r := range dec.Residual {
		z := (r - mean) / stdDev
		if math.Abs(z) > params.ZScoreThreshold {
			flags = append(flags, Flag{
				Index: i,
				Score: zScoreToScore(z, params.ZScoreThreshold),
				Type:  directionType(r),
			})
		}
	}
	return flags, nil
}
