package anomaly

import (
	"time"

	"godrift/domain/core"
)

// AnomalyType is the closed set of anomaly variants. Every detector
// produces the same candidate shape tagged with one of these values.
type AnomalyType string

const (
	TypeSpike         AnomalyType = "SPIKE"
	TypeDrop          AnomalyType = "DROP"
	TypeKeywordDrift  AnomalyType = "KEYWORD_DRIFT"
	TypeCategoryShift AnomalyType = "CATEGORY_SHIFT"
)

// Severity is the coarse three-level bucketing of a continuous score.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Rank returns the ordering value for prioritization (HIGH > MEDIUM > LOW).
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Region identifies what an anomaly pertains to: the column or text
// source, and for text anomalies the driving keywords/categories.
type Region struct {
	Source     string   `json:"source"`
	Keywords   []string `json:"keywords,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Anomaly is a resolved, scored anomaly record. Created exclusively by
// the scorer/window resolver; immutable after creation.
type Anomaly struct {
	ID       core.AnomalyID  `json:"id"`
	Type     AnomalyType     `json:"type"`
	Severity Severity        `json:"severity"`
	Source   string          `json:"data_source"`
	Window   core.TimeWindow `json:"time_window"`
	Region   Region          `json:"affected_region"`
	Score    float64         `json:"score"`
	// Magnitude is the percent change against the pre-anomaly baseline
	// mean for numeric series, or the percentage-point change for text
	// proportions.
	Magnitude float64                `json:"magnitude"`
	Method    string                 `json:"method"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// MagnitudeBasis states how a candidate's baseline/observed pair should
// be turned into a magnitude by the resolver.
type MagnitudeBasis string

const (
	// BasisMean: magnitude = percent change of observed vs baseline mean.
	BasisMean MagnitudeBasis = "mean"
	// BasisProportion: magnitude = percentage-point change of a proportion.
	BasisProportion MagnitudeBasis = "proportion"
)

// Candidate is the raw flagged region a detector emits before scoring.
// All detector methods, numeric and text, produce this one shape; the
// resolver owns severity assignment and merging.
type Candidate struct {
	Type   AnomalyType     `json:"type"`
	Method string          `json:"method"`
	Source string          `json:"source"`
	Window core.TimeWindow `json:"window"`
	// Score is the method-normalized score in [0, 1].
	Score float64 `json:"score"`
	// Step is the sampling interval of the source; candidates from the
	// same method and source whose windows sit within one step of each
	// other are merged. Zero means windows must overlap or touch exactly.
	Step       time.Duration          `json:"step,omitempty"`
	Basis      MagnitudeBasis         `json:"basis"`
	Baseline   float64                `json:"baseline"`
	Observed   float64                `json:"observed"`
	Keywords   []string               `json:"keywords,omitempty"`
	Categories []string               `json:"categories,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// SkippedCheck records a sub-method that could not run for a source, so
// callers see "skipped: reason" rather than a silent absence.
type SkippedCheck struct {
	Source string `json:"source"`
	Method string `json:"method"`
	Reason string `json:"reason"`
}
