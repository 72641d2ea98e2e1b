// Package testkit generates seeded synthetic datasets with injected
// anomalies, shared by tests and the CLI demo command.
package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"godrift/domain/core"
	"godrift/domain/series"
	"godrift/domain/text"
)

// Epoch is the fixed start timestamp for generated data, so fixtures are
// reproducible byte for byte.
var Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// GeneratePoints produces n hourly points around base with gaussian
// noise. A zero noise level yields a constant series.
func GeneratePoints(n int, base, noise float64, seed int64) []series.Point {
	rng := rand.New(rand.NewSource(seed))
	points := make([]series.Point, n)
	for i := range points {
		points[i] = series.Point{
			Timestamp: Epoch.Add(time.Duration(i) * time.Hour),
			Value:     base + rng.NormFloat64()*noise,
		}
	}
	return points
}

// GenerateSeasonalPoints produces n hourly points following a sine wave
// of the given period plus noise, for decomposition fixtures.
func GenerateSeasonalPoints(n, period int, base, amplitude, noise float64, seed int64) []series.Point {
	rng := rand.New(rand.NewSource(seed))
	points := make([]series.Point, n)
	for i := range points {
		seasonal := amplitude * math.Sin(2*math.Pi*float64(i)/float64(period))
		points[i] = series.Point{
			Timestamp: Epoch.Add(time.Duration(i) * time.Hour),
			Value:     base + seasonal + rng.NormFloat64()*noise,
		}
	}
	return points
}

// WithSpike sets one value, returning the slice for chaining.
func WithSpike(points []series.Point, index int, value float64) []series.Point {
	points[index].Value = value
	return points
}

// MustSeries builds a series or panics; fixtures control their inputs.
func MustSeries(name string, points []series.Point) *series.TimeSeries {
	s, err := series.New(name, points)
	if err != nil {
		panic(err)
	}
	return s
}

// GenerateBuckets produces hourly text buckets of docsPerBucket
// documents drawn from vocab, with categories assigned round-robin.
func GenerateBuckets(buckets, docsPerBucket int, vocab, categories []string, seed int64) []text.Bucket {
	rng := rand.New(rand.NewSource(seed))
	out := make([]text.Bucket, buckets)
	for b := range out {
		start := Epoch.Add(time.Duration(b) * time.Hour)
		bucket := text.Bucket{Window: core.NewTimeWindow(start, start.Add(time.Hour))}
		for d := 0; d < docsPerBucket; d++ {
			words := make([]string, 0, 8)
			for w := 0; w < 8; w++ {
				words = append(words, vocab[rng.Intn(len(vocab))])
			}
			doc := text.Document{
				ID:        fmt.Sprintf("doc-%d-%d", b, d),
				Content:   join(words),
				Timestamp: start.Add(time.Duration(d) * time.Minute),
			}
			if len(categories) > 0 {
				doc.Category = categories[(b*docsPerBucket+d)%len(categories)]
			}
			bucket.Documents = append(bucket.Documents, doc)
		}
		out[b] = bucket
	}
	return out
}

// InjectKeywordBurst appends documents repeating a keyword into one
// bucket, simulating keyword drift.
func InjectKeywordBurst(buckets []text.Bucket, bucketIndex int, keyword string, docs int) {
	bucket := &buckets[bucketIndex]
	for d := 0; d < docs; d++ {
		bucket.Documents = append(bucket.Documents, text.Document{
			ID:        fmt.Sprintf("burst-%d-%d", bucketIndex, d),
			Content:   keyword + " " + keyword + " " + keyword,
			Timestamp: bucket.Window.Start,
		})
	}
}

func join(words []string) string {
	out := ""
	for i, w := range words {
		if i > 0 {
			out += " "
		}
		out += w
	}
	return out
}
