// Package detectors runs the numeric anomaly checks: z-score,
// moving-average deviation, percentile thresholds and seasonal
// residuals. Each method produces the same flag shape; merging and
// severity assignment belong to the resolver, never to this package.
package detectors

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"godrift/domain/anomaly"
	"godrift/domain/core"
	"godrift/domain/series"
)

// Flag is a single point a method considers anomalous, with the
// method-normalized score in [0, 1].
type Flag struct {
	Index int
	Score float64
	Type  anomaly.AnomalyType
}

// SeriesMethod is one numeric detection check over a single column.
type SeriesMethod interface {
	Name() string
	Evaluate(s *series.TimeSeries, params anomaly.DetectionParameters) ([]Flag, error)
}

// Detector orchestrates all numeric methods over one column.
type Detector struct {
	methods []SeriesMethod
}

// NewDetector creates a detector with the full method set.
func NewDetector() *Detector {
	return &Detector{
		methods: []SeriesMethod{
			NewZScoreMethod(),
			NewMovingAverageMethod(),
			NewPercentileMethod(),
			NewResidualMethod(0),
		},
	}
}

// Detect runs every method over the series. Methods that cannot run on
// this column are recorded as skipped; the remaining methods still run.
// Cancellation is checked between methods so a column can stop
// cooperatively without losing flags already converted to candidates.
func (d *Detector) Detect(ctx context.Context, s *series.TimeSeries, params anomaly.DetectionParameters) ([]anomaly.Candidate, []anomaly.SkippedCheck, error) {
	var candidates []anomaly.Candidate
	var skipped []anomaly.SkippedCheck

	step := s.Step()
	for _, method := range d.methods {
		select {
		case <-ctx.Done():
			return candidates, skipped, fmt.Errorf("%w: %v", core.ErrRunCancelled, ctx.Err())
		default:
		}

		flags, err := method.Evaluate(s, params)
		if err != nil {
			if core.IsSkippable(err) {
				skipped = append(skipped, anomaly.SkippedCheck{
					Source: s.Name,
					Method: method.Name(),
					Reason: err.Error(),
				})
				continue
			}
			return candidates, skipped, fmt.Errorf("method %s on %s: %w", method.Name(), s.Name, err)
		}
		candidates = append(candidates, d.toCandidates(s, method.Name(), flags, params, step)...)
	}

	return candidates, skipped, nil
}

// toCandidates groups contiguous flagged indices into runs, drops runs
// shorter than the minimum anomaly duration, annotates the series points
// and emits one candidate per surviving run.
func (d *Detector) toCandidates(s *series.TimeSeries, method string, flags []Flag, params anomaly.DetectionParameters, step time.Duration) []anomaly.Candidate {
	if len(flags) == 0 {
		return nil
	}

	var out []anomaly.Candidate
	run := []Flag{flags[0]}
	flush := func() {
		if len(run) >= params.MinimumAnomalyDuration {
			out = append(out, d.runToCandidate(s, method, run, step))
		}
		run = run[:0]
	}
	for _, f := range flags[1:] {
		if f.Index != run[len(run)-1].Index+1 {
			flush()
		}
		run = append(run, f)
	}
	flush()
	return out
}

func (d *Detector) runToCandidate(s *series.TimeSeries, method string, run []Flag, step time.Duration) anomaly.Candidate {
	peak := run[0]
	for _, f := range run[1:] {
		if f.Score > peak.Score {
			peak = f
		}
	}
	for _, f := range run {
		s.MarkAnomaly(f.Index, f.Score)
	}

	first, last := run[0].Index, run[len(run)-1].Index
	return anomaly.Candidate{
		Type:     peak.Type,
		Method:   method,
		Source:   s.Name,
		Window:   core.NewTimeWindow(s.Points[first].Timestamp, s.Points[last].Timestamp),
		Score:    peak.Score,
		Step:     step,
		Basis:    anomaly.BasisMean,
		Baseline: preAnomalyBaseline(s, first, last),
		Observed: s.Points[peak.Index].Value,
		Metadata: map[string]interface{}{
			"flagged_points": len(run),
			"peak_index":     peak.Index,
		},
	}
}

// preAnomalyBaseline is the mean of the points before the flagged span.
// When the span starts the series, the mean of the points outside the
// span is used instead.
func preAnomalyBaseline(s *series.TimeSeries, first, last int) float64 {
	if first > 0 {
		mean, err := stats.Mean(s.Values()[:first])
		if err == nil {
			return mean
		}
	}
	var rest []float64
	for i, p := range s.Points {
		if i < first || i > last {
			rest = append(rest, p.Value)
		}
	}
	mean, err := stats.Mean(rest)
	if err != nil {
		return s.Stats.Mean
	}
	return mean
}
