// Package drift compares per-bucket text features against a trailing
// baseline and flags keyword drift, topic drift, category shift and
// sentiment shift. The four checks are independent and may co-fire for
// the same window; each produces its own candidate and they are never
// merged across check types.
package drift

import (
	"context"
	"fmt"
	"math"
	"sort"

	"godrift/domain/anomaly"
	"godrift/domain/core"
	"godrift/domain/text"
)

// DefaultBaselineBuckets is the trailing-window size used when Options
// leaves it unset.
const DefaultBaselineBuckets = 3

// maxDriftKeywords caps how many driving keywords a candidate names.
const maxDriftKeywords = 5

// Options configures the baseline definition. The baseline is the
// aggregate of the preceding BaselineBuckets buckets; it is a
// constructor option, not a detection parameter, so the documented
// five-parameter configuration surface stays closed.
type Options struct {
	BaselineBuckets int
}

// Detector runs the four drift checks over a bucketed text source.
type Detector struct {
	opts Options
}

// NewDetector creates a drift detector, filling option defaults.
func NewDetector(opts Options) *Detector {
	if opts.BaselineBuckets <= 0 {
		opts.BaselineBuckets = DefaultBaselineBuckets
	}
	return &Detector{opts: opts}
}

// Detect walks the buckets in order, comparing each against its
// trailing baseline. Empty buckets on either side mean "no comparison
// possible" for that window, recorded as skipped rather than raised.
func (d *Detector) Detect(ctx context.Context, features []text.Features, params anomaly.DetectionParameters) ([]anomaly.Candidate, []anomaly.SkippedCheck, error) {
	var candidates []anomaly.Candidate
	var skipped []anomaly.SkippedCheck

	for i := 1; i < len(features); i++ {
		select {
		case <-ctx.Done():
			return candidates, skipped, fmt.Errorf("%w: %v", core.ErrRunCancelled, ctx.Err())
		default:
		}

		current := features[i]
		lo := i - d.opts.BaselineBuckets
		if lo < 0 {
			lo = 0
		}
		baseline := aggregate(features[lo:i])

		if current.Empty() || baseline.Empty() {
			skipped = append(skipped, anomaly.SkippedCheck{
				Source: current.Source,
				Method: "text_drift",
				Reason: "empty bucket: no comparison possible",
			})
			continue
		}

		if c, ok := d.keywordDrift(current, baseline, params); ok {
			candidates = append(candidates, c)
		}
		if c, ok := d.topicDrift(current, baseline, params); ok {
			candidates = append(candidates, c)
		}
		if c, ok := d.categoryShift(current, baseline, params); ok {
			candidates = append(candidates, c)
		}
		if c, ok := d.sentimentShift(current, baseline, params); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates, skipped, nil
}

// keywordDrift flags terms whose relative frequency changed by more than
// the similarity threshold. A term absent from the baseline counts as a
// full change once it appears at least twice.
func (d *Detector) keywordDrift(current, baseline text.Features, params anomaly.DetectionParameters) (anomaly.Candidate, bool) {
	type termChange struct {
		term   string
		change float64
		baseF  float64
		currF  float64
	}

	var changes []termChange
	for term := range union(current.Vocabulary(), baseline.Vocabulary()) {
		currF := current.RelativeFrequency(term)
		baseF := baseline.RelativeFrequency(term)

		var change float64
		switch {
		case baseF == 0:
			if current.TermFrequency[term] < 2 {
				continue // single new occurrence is jitter, not drift
			}
			change = 1
		default:
			change = math.Abs(currF-baseF) / baseF
		}
		if change > params.TextSimilarityThreshold {
			changes = append(changes, termChange{term: term, change: change, baseF: baseF, currF: currF})
		}
	}
	if len(changes) == 0 {
		return anomaly.Candidate{}, false
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].change != changes[j].change {
			return changes[i].change > changes[j].change
		}
		return changes[i].term < changes[j].term
	})

	keywords := make([]string, 0, maxDriftKeywords)
	for _, tc := range changes {
		if len(keywords) == maxDriftKeywords {
			break
		}
		keywords = append(keywords, tc.term)
	}

	top := changes[0]
	return anomaly.Candidate{
		Type:     anomaly.TypeKeywordDrift,
		Method:   "keyword_drift",
		Source:   current.Source,
		Window:   current.Window,
		Score:    math.Min(1, top.change/2),
		Basis:    anomaly.BasisProportion,
		Baseline: top.baseF,
		Observed: top.currF,
		Keywords: keywords,
		Metadata: map[string]interface{}{
			"changed_terms":   len(changes),
			"top_term":        top.term,
			"top_term_change": top.change,
		},
	}, true
}

// topicDrift flags a bucket whose TF-IDF profile's cosine similarity to
// the baseline falls below the similarity threshold.
func (d *Detector) topicDrift(current, baseline text.Features, params anomaly.DetectionParameters) (anomaly.Candidate, bool) {
	sim, ok := cosineSimilarity(current.TFIDF, baseline.TFIDF)
	if !ok || sim >= params.TextSimilarityThreshold {
		return anomaly.Candidate{}, false
	}

	return anomaly.Candidate{
		Type:     anomaly.TypeKeywordDrift,
		Method:   "topic_drift",
		Source:   current.Source,
		Window:   current.Window,
		Score:    1 - sim,
		Basis:    anomaly.BasisProportion,
		Baseline: 0,
		Observed: 1 - sim,
		Keywords: topWeightShifts(current.TFIDF, baseline.TFIDF),
		Metadata: map[string]interface{}{
			"cosine_similarity": sim,
		},
	}, true
}

// categoryShift flags any single category whose proportion moved by more
// than the derived shift delta, recording old and new proportions.
func (d *Detector) categoryShift(current, baseline text.Features, params anomaly.DetectionParameters) (anomaly.Candidate, bool) {
	if len(current.CategoryProportions) == 0 && len(baseline.CategoryProportions) == 0 {
		return anomaly.Candidate{}, false
	}
	delta := params.ShiftDelta()

	type shift struct {
		category string
		change   float64
		old, new float64
	}
	var shifts []shift
	seen := map[string]struct{}{}
	for _, props := range []map[string]float64{current.CategoryProportions, baseline.CategoryProportions} {
		for cat := range props {
			if _, ok := seen[cat]; ok {
				continue
			}
			seen[cat] = struct{}{}
			oldP := baseline.CategoryProportions[cat]
			newP := current.CategoryProportions[cat]
			if change := math.Abs(newP - oldP); change > delta {
				shifts = append(shifts, shift{category: cat, change: change, old: oldP, new: newP})
			}
		}
	}
	if len(shifts) == 0 {
		return anomaly.Candidate{}, false
	}

	sort.Slice(shifts, func(i, j int) bool {
		if shifts[i].change != shifts[j].change {
			return shifts[i].change > shifts[j].change
		}
		return shifts[i].category < shifts[j].category
	})

	categories := make([]string, len(shifts))
	oldProps := map[string]interface{}{}
	newProps := map[string]interface{}{}
	for i, sh := range shifts {
		categories[i] = sh.category
		oldProps[sh.category] = sh.old
		newProps[sh.category] = sh.new
	}

	top := shifts[0]
	return anomaly.Candidate{
		Type:       anomaly.TypeCategoryShift,
		Method:     "category_shift",
		Source:     current.Source,
		Window:     current.Window,
		Score:      math.Min(1, top.change/(2*delta)),
		Basis:      anomaly.BasisProportion,
		Baseline:   top.old,
		Observed:   top.new,
		Categories: categories,
		Metadata: map[string]interface{}{
			"old_proportions": oldProps,
			"new_proportions": newProps,
		},
	}, true
}

// sentimentShift applies the category proportion-delta rule to the
// positive/neutral/negative distribution.
func (d *Detector) sentimentShift(current, baseline text.Features, params anomaly.DetectionParameters) (anomaly.Candidate, bool) {
	delta := params.ShiftDelta()

	labels := []string{"positive", "neutral", "negative"}
	currV := []float64{current.Sentiment.Positive, current.Sentiment.Neutral, current.Sentiment.Negative}
	baseV := []float64{baseline.Sentiment.Positive, baseline.Sentiment.Neutral, baseline.Sentiment.Negative}

	topIdx, topChange := -1, delta
	var shifted []string
	for i := range labels {
		change := math.Abs(currV[i] - baseV[i])
		if change > delta {
			shifted = append(shifted, "sentiment:"+labels[i])
		}
		if change > topChange {
			topChange = change
			topIdx = i
		}
	}
	if topIdx < 0 {
		return anomaly.Candidate{}, false
	}

	return anomaly.Candidate{
		Type:       anomaly.TypeCategoryShift,
		Method:     "sentiment_shift",
		Source:     current.Source,
		Window:     current.Window,
		Score:      math.Min(1, topChange/(2*delta)),
		Basis:      anomaly.BasisProportion,
		Baseline:   baseV[topIdx],
		Observed:   currV[topIdx],
		Categories: shifted,
		Metadata: map[string]interface{}{
			"baseline_distribution": baseV,
			"current_distribution":  currV,
		},
	}, true
}

// aggregate folds trailing buckets into one baseline feature set.
// Proportion fields are weighted by each bucket's document count and
// renormalized.
func aggregate(window []text.Features) text.Features {
	agg := text.Features{
		TermFrequency:       map[string]int{},
		TFIDF:               map[string]float64{},
		CategoryProportions: map[string]float64{},
	}
	if len(window) == 0 {
		return agg
	}
	agg.Source = window[0].Source
	agg.Window = window[0].Window

	var catWeight float64
	for _, f := range window {
		agg.Window = agg.Window.Union(f.Window)
		agg.DocumentCount += f.DocumentCount
		agg.TokenCount += f.TokenCount
		for term, count := range f.TermFrequency {
			agg.TermFrequency[term] += count
		}
		for term, w := range f.TFIDF {
			agg.TFIDF[term] += w
		}

		weight := float64(f.DocumentCount)
		for cat, p := range f.CategoryProportions {
			agg.CategoryProportions[cat] += p * weight
		}
		if len(f.CategoryProportions) > 0 {
			catWeight += weight
		}
		agg.Sentiment.Positive += f.Sentiment.Positive * weight
		agg.Sentiment.Neutral += f.Sentiment.Neutral * weight
		agg.Sentiment.Negative += f.Sentiment.Negative * weight
	}

	if catWeight > 0 {
		for cat := range agg.CategoryProportions {
			agg.CategoryProportions[cat] /= catWeight
		}
	}
	if agg.DocumentCount > 0 {
		total := float64(agg.DocumentCount)
		agg.Sentiment.Positive /= total
		agg.Sentiment.Neutral /= total
		agg.Sentiment.Negative /= total
	}
	return agg
}

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}
