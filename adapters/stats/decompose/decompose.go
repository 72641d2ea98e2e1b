// Package decompose splits a time series into trend, seasonal and
// residual components for residual-based anomaly detection.
package decompose

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"godrift/domain/core"
)

// Period inference bounds. Lags are scanned up to half the series
// length, capped so very long series stay cheap.
const (
	minPeriod        = 2
	maxInferredLag   = 400
	minAutocorr      = 0.3
	minPointsPerSpan = 2 // decomposition needs at least 2 full periods
)

// Decomposition holds the three aligned component sequences.
type Decomposition struct {
	Period   int       `json:"period"`
	Trend    []float64 `json:"trend"`
	Seasonal []float64 `json:"seasonal"`
	Residual []float64 `json:"residual"`
}

// Decompose splits values into trend, seasonal and residual components.
// period <= 0 means infer it from the autocorrelation peak. Returns
// ErrInsufficientData when fewer than 2×period points exist, and
// ErrDegenerateInput when no seasonal period can be established.
func Decompose(values []float64, period int) (*Decomposition, error) {
	if period <= 0 {
		period = InferPeriod(values)
		if period < minPeriod {
			return nil, core.NewDegenerateInputError("seasonal_decomposition", "no seasonal period detected")
		}
	}
	if period < minPeriod {
		return nil, core.NewInvalidParameterError("period", "must be at least 2")
	}
	if len(values) < minPointsPerSpan*period {
		return nil, core.NewInsufficientDataError("seasonal_decomposition", minPointsPerSpan*period, len(values))
	}

	trend := centeredMovingAverage(values, period)

	// Seasonal component: mean deviation from trend at each phase
	// position, centered so the seasonal pattern sums to zero.
	phaseSum := make([]float64, period)
	phaseCount := make([]int, period)
	for i, v := range values {
		phaseSum[i%period] += v - trend[i]
		phaseCount[i%period]++
	}
	phase := make([]float64, period)
	var phaseMean float64
	for i := range phase {
		if phaseCount[i] > 0 {
			phase[i] = phaseSum[i] / float64(phaseCount[i])
		}
		phaseMean += phase[i]
	}
	phaseMean /= float64(period)
	for i := range phase {
		phase[i] -= phaseMean
	}

	seasonal := make([]float64, len(values))
	residual := make([]float64, len(values))
	for i, v := range values {
		seasonal[i] = phase[i%period]
		residual[i] = v - trend[i] - seasonal[i]
	}

	return &Decomposition{
		Period:   period,
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
	}, nil
}

// InferPeriod picks the lag with the strongest autocorrelation above the
// acceptance floor. Returns 0 when the series is too short, constant, or
// shows no repeating structure.
func InferPeriod(values []float64) int {
	n := len(values)
	if n < 2*minPeriod {
		return 0
	}
	if isConstant(values) {
		return 0
	}

	maxLag := n / 2
	if maxLag > maxInferredLag {
		maxLag = maxInferredLag
	}

	bestLag, bestCorr := 0, minAutocorr
	for lag := minPeriod; lag <= maxLag; lag++ {
		head := values[:n-lag]
		tail := values[lag:]
		if isConstant(head) || isConstant(tail) {
			continue
		}
		corr := stat.Correlation(head, tail, nil)
		if math.IsNaN(corr) {
			continue
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	return bestLag
}

// centeredMovingAverage smooths with a window of size period, shrinking
// the window at the edges so the output stays aligned with the input.
func centeredMovingAverage(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	half := period / 2
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > len(values)-1 {
			hi = len(values) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

func isConstant(values []float64) bool {
	if len(values) == 0 {
		return true
	}
	first := values[0]
	for _, v := range values[1:] {
		if v != first {
			return false
		}
	}
	return true
}
