// Package text holds the cleaned free-text model: documents partitioned
// into caller-defined time buckets, and the per-bucket feature sets the
// extractor derives from them.
package text

import (
	"time"

	"godrift/domain/core"
)

// Document is a single text record. Immutable once created.
type Document struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category,omitempty"`
	Keywords  []string  `json:"keywords,omitempty"`
}

// Bucket is one caller-defined time slice of a text column. Bucket
// boundaries are a caller decision, not this engine's.
type Bucket struct {
	Window    core.TimeWindow `json:"window"`
	Documents []Document      `json:"documents"`
}

// SentimentDistribution is the proportion of positive, neutral and
// negative documents in a bucket. Proportions sum to 1.0 for any
// non-empty bucket.
type SentimentDistribution struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Features is the per-bucket feature set used by drift detection.
// TF-IDF weights use inverse document frequency over the full corpus,
// so vectors are comparable across buckets.
type Features struct {
	Source        string          `json:"source"`
	Window        core.TimeWindow `json:"window"`
	DocumentCount int             `json:"document_count"`
	TokenCount    int             `json:"token_count"`

	TermFrequency map[string]int     `json:"term_frequency"`
	TFIDF         map[string]float64 `json:"tfidf"`
	// CategoryProportions sums to 1.0 over documents that carry a
	// category; uncategorized documents are excluded from the
	// denominator.
	CategoryProportions map[string]float64    `json:"category_proportions"`
	Sentiment           SentimentDistribution `json:"sentiment"`
}

// Vocabulary returns the set of terms seen in the bucket.
func (f Features) Vocabulary() map[string]struct{} {
	vocab := make(map[string]struct{}, len(f.TermFrequency))
	for term := range f.TermFrequency {
		vocab[term] = struct{}{}
	}
	return vocab
}

// Empty reports whether the bucket yielded nothing to compare. Drift
// detection treats an empty side as "no comparison possible", never as
// an error.
func (f Features) Empty() bool {
	return f.DocumentCount == 0 || len(f.TermFrequency) == 0
}

// RelativeFrequency returns a term's share of the bucket's tokens.
func (f Features) RelativeFrequency(term string) float64 {
	if f.TokenCount == 0 {
		return 0
	}
	return float64(f.TermFrequency[term]) / float64(f.TokenCount)
}
