// Package series holds the cleaned numeric time-series model handed in
// by the data processor and annotated by the detectors.
package series

import (
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// Trend is the coarse direction of a series.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendFlat    Trend = "flat"
)

// Point is a single observation. IsAnomaly and AnomalyScore are written
// only by the detector, never by ingestion.
type Point struct {
	Timestamp    time.Time `json:"timestamp"`
	Value        float64   `json:"value"`
	IsAnomaly    bool      `json:"is_anomaly,omitempty"`
	AnomalyScore *float64  `json:"anomaly_score,omitempty"`
}

// Statistics carries the precomputed summary for a series. Recomputed
// whenever the point sequence changes.
type Statistics struct {
	Mean        float64         `json:"mean"`
	StdDev      float64         `json:"std_dev"`
	Median      float64         `json:"median"`
	Percentiles map[int]float64 `json:"percentiles"` // keyed by 5, 25, 75, 95
	Trend       Trend           `json:"trend"`
	// SeasonalPeriod is the inferred seasonality lag in points; zero
	// means no seasonality was detected. Filled in by the decomposer.
	SeasonalPeriod int `json:"seasonal_period,omitempty"`
}

// TimeSeries is an ordered sequence of points plus summary statistics.
// Points are strictly increasing in timestamp.
type TimeSeries struct {
	Name   string     `json:"name"`
	Points []Point    `json:"points"`
	Stats  Statistics `json:"statistics"`
}

// New builds a series from points, enforcing the strictly-increasing
// timestamp invariant and computing statistics.
func New(name string, points []Point) (*TimeSeries, error) {
	for i := 1; i < len(points); i++ {
		if !points[i].Timestamp.After(points[i-1].Timestamp) {
			return nil, fmt.Errorf("series %s: timestamps must be strictly increasing (index %d)", name, i)
		}
	}
	s := &TimeSeries{Name: name, Points: points}
	s.recompute()
	return s, nil
}

// Append adds a point, keeping the timestamp invariant and statistics current.
func (s *TimeSeries) Append(p Point) error {
	if n := len(s.Points); n > 0 && !p.Timestamp.After(s.Points[n-1].Timestamp) {
		return fmt.Errorf("series %s: appended timestamp must increase", s.Name)
	}
	s.Points = append(s.Points, p)
	s.recompute()
	return nil
}

// Len returns the number of points.
func (s *TimeSeries) Len() int {
	return len(s.Points)
}

// Values returns the raw value sequence.
func (s *TimeSeries) Values() []float64 {
	vals := make([]float64, len(s.Points))
	for i, p := range s.Points {
		vals[i] = p.Value
	}
	return vals
}

// Step estimates the sampling interval as the median gap between
// consecutive timestamps. Zero for fewer than two points.
func (s *TimeSeries) Step() time.Duration {
	if len(s.Points) < 2 {
		return 0
	}
	gaps := make([]time.Duration, 0, len(s.Points)-1)
	for i := 1; i < len(s.Points); i++ {
		gaps = append(gaps, s.Points[i].Timestamp.Sub(s.Points[i-1].Timestamp))
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })
	return gaps[len(gaps)/2]
}

// MarkAnomaly flags the point at index with the given score, keeping the
// strongest score when a point is flagged by multiple methods.
func (s *TimeSeries) MarkAnomaly(index int, score float64) {
	if index < 0 || index >= len(s.Points) {
		return
	}
	p := &s.Points[index]
	p.IsAnomaly = true
	if p.AnomalyScore == nil || score > *p.AnomalyScore {
		v := score
		p.AnomalyScore = &v
	}
}

func (s *TimeSeries) recompute() {
	s.Stats = computeStatistics(s.Values())
}

func computeStatistics(values []float64) Statistics {
	st := Statistics{Percentiles: map[int]float64{}}
	if len(values) == 0 {
		st.Trend = TrendFlat
		return st
	}

	mean, _ := stats.Mean(values)
	stdDev, _ := stats.StandardDeviation(values)
	median, _ := stats.Median(values)
	st.Mean = mean
	st.StdDev = stdDev
	st.Median = median

	for _, p := range []int{5, 25, 75, 95} {
		v, err := stats.Percentile(values, float64(p))
		if err != nil {
			v = median
		}
		st.Percentiles[p] = v
	}

	st.Trend = trendOf(values, stdDev)
	return st
}

// trendOf compares the mean of the first and last thirds of the series.
// A difference below a tenth of the overall deviation counts as flat.
func trendOf(values []float64, stdDev float64) Trend {
	n := len(values)
	if n < 3 {
		return TrendFlat
	}
	third := n / 3
	head, _ := stats.Mean(values[:third])
	tail, _ := stats.Mean(values[n-third:])
	diff := tail - head
	tolerance := stdDev * 0.1
	switch {
	case diff > tolerance:
		return TrendRising
	case diff < -tolerance:
		return TrendFalling
	default:
		return TrendFlat
	}
}
