package app

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"godrift/adapters/stats/detectors"
	"godrift/adapters/text/drift"
	"godrift/adapters/text/extract"
	"godrift/domain/anomaly"
	"godrift/domain/core"
	"godrift/domain/series"
	"godrift/domain/text"
	"godrift/internal"
	"godrift/internal/resolve"
	"godrift/ports"
)

// ColumnKind distinguishes numeric columns from text sources in reports.
type ColumnKind string

const (
	KindSeries ColumnKind = "series"
	KindText   ColumnKind = "text"
)

// ColumnStatus is the per-column outcome of a run. Every requested
// column appears in the result with one of these, never silently absent.
type ColumnStatus string

const (
	StatusAnalyzed       ColumnStatus = "analyzed"
	StatusSkippedTimeout ColumnStatus = "skipped: timeout"
	StatusFailed         ColumnStatus = "failed"
)

// Request is one detection run over an uploaded dataset: cleaned series
// and bucketed text handed in by the data processor, plus the validated
// parameter set.
type Request struct {
	Series []*series.TimeSeries        `json:"series"`
	Text   map[string][]text.Bucket    `json:"text"`
	Params anomaly.DetectionParameters `json:"parameters"`
	// Timeout is the overall run budget; zero means no budget.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// ColumnReport records how one column fared.
type ColumnReport struct {
	Source  string                 `json:"source"`
	Kind    ColumnKind             `json:"kind"`
	Status  ColumnStatus           `json:"status"`
	Skipped []anomaly.SkippedCheck `json:"skipped_checks,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Result is the complete outcome of a detection run. Anomalies are
// ordered by priority; Partial marks runs that hit the time budget.
type Result struct {
	RunID     core.RunID        `json:"run_id"`
	Anomalies []anomaly.Anomaly `json:"anomalies"`
	Columns   []ColumnReport    `json:"columns"`
	Partial   bool              `json:"partial"`
	RuntimeMs int64             `json:"runtime_ms"`
}

// DetectionService orchestrates a run: independent columns fan out over
// a worker pool sized to the available cores, candidates flow back over
// a channel, and the single collecting goroutine serializes the merge so
// no two workers can produce overlapping anomalies for the same column.
type DetectionService struct {
	seriesDetector ports.SeriesDetector
	extractor      ports.FeatureExtractor
	driftDetector  ports.DriftDetector
	resolver       ports.AnomalyResolver
	logger         *internal.Logger
	workers        int64
}

// NewDetectionService wires a service from explicit components.
func NewDetectionService(
	seriesDetector ports.SeriesDetector,
	extractor ports.FeatureExtractor,
	driftDetector ports.DriftDetector,
	resolver ports.AnomalyResolver,
	logger *internal.Logger,
) *DetectionService {
	workers := int64(runtime.NumCPU())
	if workers < 1 {
		workers = 1
	}
	return &DetectionService{
		seriesDetector: seriesDetector,
		extractor:      extractor,
		driftDetector:  driftDetector,
		resolver:       resolver,
		logger:         logger,
		workers:        workers,
	}
}

// NewDefaultDetectionService wires the standard detector stack.
func NewDefaultDetectionService(driftOpts drift.Options) *DetectionService {
	return NewDetectionService(
		detectors.NewDetector(),
		extract.NewExtractor(),
		drift.NewDetector(driftOpts),
		resolve.NewResolver(),
		internal.DefaultLogger,
	)
}

type columnTask struct {
	source  string
	kind    ColumnKind
	series  *series.TimeSeries
	buckets []text.Bucket
}

type columnOutcome struct {
	report     ColumnReport
	candidates []anomaly.Candidate
}

// Run executes one detection run. Parameter validation failures are
// fatal and happen before any detector starts; everything after that is
// per-column and non-fatal. Cancellation or an exhausted time budget
// yields a partial result carrying whatever columns completed.
func (s *DetectionService) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	runCtx := ctx
	cancel := func() {}
	if req.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	defer cancel()

	tasks := buildTasks(req)
	result := &Result{RunID: core.NewRunID()}
	s.logger.Info("detection run %s: %d columns, %d workers", result.RunID, len(tasks), s.workers)

	sem := semaphore.NewWeighted(s.workers)
	outcomes := make(chan columnOutcome, len(tasks))
	var wg sync.WaitGroup

	for _, task := range tasks {
		wg.Add(1)
		go func(task columnTask) {
			defer wg.Done()
			if err := sem.Acquire(runCtx, 1); err != nil {
				// Budget ran out before this column started.
				outcomes <- columnOutcome{report: ColumnReport{
					Source: task.source, Kind: task.kind, Status: StatusSkippedTimeout,
				}}
				return
			}
			defer sem.Release(1)
			outcomes <- s.runColumn(runCtx, task, req.Params)
		}(task)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Single collector: the merge boundary is serialized here.
	var candidates []anomaly.Candidate
	for outcome := range outcomes {
		result.Columns = append(result.Columns, outcome.report)
		if outcome.report.Status == StatusAnalyzed {
			candidates = append(candidates, outcome.candidates...)
		}
		if outcome.report.Status == StatusSkippedTimeout {
			result.Partial = true
		}
	}
	sort.Slice(result.Columns, func(i, j int) bool {
		return result.Columns[i].Source < result.Columns[j].Source
	})

	result.Anomalies = s.resolver.Resolve(candidates)
	// Ownership of the anomaly records transfers to the caller here;
	// the service retains no reference that could mutate them.
	// Prioritized order: severity, then score, then recency.
	resolve.Prioritize(result.Anomalies)
	result.RuntimeMs = time.Since(start).Milliseconds()

	if result.Partial {
		s.logger.Warn("detection run %s: partial result, %d anomalies", result.RunID, len(result.Anomalies))
	} else {
		s.logger.Info("detection run %s: %d anomalies in %dms", result.RunID, len(result.Anomalies), result.RuntimeMs)
	}
	return result, nil
}

func (s *DetectionService) runColumn(ctx context.Context, task columnTask, params anomaly.DetectionParameters) columnOutcome {
	report := ColumnReport{Source: task.source, Kind: task.kind, Status: StatusAnalyzed}

	var (
		candidates []anomaly.Candidate
		skipped    []anomaly.SkippedCheck
		err        error
	)
	switch task.kind {
	case KindSeries:
		candidates, skipped, err = s.seriesDetector.Detect(ctx, task.series, params)
	case KindText:
		features := s.extractor.Extract(task.source, task.buckets)
		candidates, skipped, err = s.driftDetector.Detect(ctx, features, params)
	}
	report.Skipped = skipped

	if err != nil {
		if errors.Is(err, core.ErrRunCancelled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			report.Status = StatusSkippedTimeout
		} else {
			report.Status = StatusFailed
			report.Error = err.Error()
			s.logger.Error("column %s: %v", task.source, err)
		}
		return columnOutcome{report: report}
	}

	s.logger.Debug("column %s: %d candidates, %d checks skipped", task.source, len(candidates), len(skipped))
	return columnOutcome{report: report, candidates: candidates}
}

// buildTasks flattens the request into independent column tasks with a
// deterministic order.
func buildTasks(req Request) []columnTask {
	tasks := make([]columnTask, 0, len(req.Series)+len(req.Text))
	for _, s := range req.Series {
		tasks = append(tasks, columnTask{source: s.Name, kind: KindSeries, series: s})
	}
	textSources := make([]string, 0, len(req.Text))
	for source := range req.Text {
		textSources = append(textSources, source)
	}
	sort.Strings(textSources)
	for _, source := range textSources {
		tasks = append(tasks, columnTask{source: source, kind: KindText, buckets: req.Text[source]})
	}
	return tasks
}
