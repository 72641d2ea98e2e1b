package anomaly

import (
	"fmt"

	"godrift/domain/core"
)

// Default parameter values, matching the documented configuration surface.
const (
	DefaultZScoreThreshold         = 3.0
	DefaultMovingAverageWindow     = 10
	DefaultTextSimilarityThreshold = 0.8
	DefaultMinimumAnomalyDuration  = 1
)

// DetectionParameters is the per-run detector configuration. It is
// immutable for the duration of a run and validated once before any
// detector starts; the five fields here are the entire tunable surface.
type DetectionParameters struct {
	ZScoreThreshold         float64    `json:"z_score_threshold"`
	MovingAverageWindow     int        `json:"moving_average_window"`
	PercentileThresholds    [2]float64 `json:"percentile_thresholds"`
	TextSimilarityThreshold float64    `json:"text_similarity_threshold"`
	MinimumAnomalyDuration  int        `json:"minimum_anomaly_duration"`
}

// DefaultParameters returns the documented defaults.
func DefaultParameters() DetectionParameters {
	return DetectionParameters{
		ZScoreThreshold:         DefaultZScoreThreshold,
		MovingAverageWindow:     DefaultMovingAverageWindow,
		PercentileThresholds:    [2]float64{5, 95},
		TextSimilarityThreshold: DefaultTextSimilarityThreshold,
		MinimumAnomalyDuration:  DefaultMinimumAnomalyDuration,
	}
}

// ShiftDelta is the proportion-change threshold for category and
// sentiment shift checks, derived from the similarity threshold so the
// configuration surface stays closed at five parameters.
func (p DetectionParameters) ShiftDelta() float64 {
	return 1 - p.TextSimilarityThreshold
}

// Validate checks every parameter against its documented range.
func (p DetectionParameters) Validate() error {
	if p.ZScoreThreshold <= 0 {
		return core.NewInvalidParameterError("zScoreThreshold", "must be strictly positive")
	}
	if p.MovingAverageWindow <= 0 {
		return core.NewInvalidParameterError("movingAverageWindow", "must be strictly positive")
	}
	lo, hi := p.PercentileThresholds[0], p.PercentileThresholds[1]
	if lo <= 0 || hi <= 0 {
		return core.NewInvalidParameterError("percentileThresholds", "must be strictly positive")
	}
	if lo >= hi {
		return core.NewInvalidParameterError("percentileThresholds",
			fmt.Sprintf("lower bound %.1f must be below upper bound %.1f", lo, hi))
	}
	if hi >= 100 {
		return core.NewInvalidParameterError("percentileThresholds", "upper bound must be below 100")
	}
	if p.TextSimilarityThreshold <= 0 || p.TextSimilarityThreshold > 1 {
		return core.NewInvalidParameterError("textSimilarityThreshold", "must be in (0, 1]")
	}
	if p.MinimumAnomalyDuration <= 0 {
		return core.NewInvalidParameterError("minimumAnomalyDuration", "must be strictly positive")
	}
	return nil
}
