package ports

import (
	"context"

	"godrift/domain/anomaly"
	"godrift/domain/series"
	"godrift/domain/text"
)

// SeriesDetector runs all numeric sub-methods over one column and emits
// raw candidates. Sub-methods that cannot run are reported as skipped,
// never silently dropped.
type SeriesDetector interface {
	Detect(ctx context.Context, s *series.TimeSeries, params anomaly.DetectionParameters) ([]anomaly.Candidate, []anomaly.SkippedCheck, error)
}

// FeatureExtractor builds per-bucket text features for one text source.
// Empty buckets yield empty feature sets, not errors.
type FeatureExtractor interface {
	Extract(source string, buckets []text.Bucket) []text.Features
}

// DriftDetector compares bucket features against a trailing baseline and
// emits drift candidates.
type DriftDetector interface {
	Detect(ctx context.Context, features []text.Features, params anomaly.DetectionParameters) ([]anomaly.Candidate, []anomaly.SkippedCheck, error)
}

// AnomalyResolver is the single place severity is assigned: it merges
// temporally touching candidates per (source, method), buckets scores
// into severities and computes magnitude and affected region.
type AnomalyResolver interface {
	Resolve(candidates []anomaly.Candidate) []anomaly.Anomaly
}
