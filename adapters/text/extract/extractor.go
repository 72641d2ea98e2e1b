// Package extract derives per-bucket text features: term frequencies,
// corpus-comparable TF-IDF weights, category proportions and a
// lexicon-based sentiment distribution.
package extract

import (
	"math"
	"strings"
	"unicode"

	"godrift/domain/text"
)

const minTokenLength = 2

// Extractor builds text features for drift detection. Zero value is not
// usable; construct with NewExtractor.
type Extractor struct {
	stopwords map[string]struct{}
	lexicon   Lexicon
}

// NewExtractor creates an extractor with the default stopword list and
// sentiment lexicon.
func NewExtractor() *Extractor {
	return &Extractor{
		stopwords: defaultStopwords(),
		lexicon:   DefaultLexicon(),
	}
}

// Extract computes features for every bucket. Inverse document
// frequency is taken over the full corpus, not per bucket, so TF-IDF
// weights are comparable across buckets. Empty buckets yield an empty
// feature set, never an error.
func (e *Extractor) Extract(source string, buckets []text.Bucket) []text.Features {
	idf := e.corpusIDF(buckets)

	out := make([]text.Features, 0, len(buckets))
	for _, bucket := range buckets {
		out = append(out, e.extractBucket(source, bucket, idf))
	}
	return out
}

func (e *Extractor) extractBucket(source string, bucket text.Bucket, idf map[string]float64) text.Features {
	f := text.Features{
		Source:              source,
		Window:              bucket.Window,
		DocumentCount:       len(bucket.Documents),
		TermFrequency:       map[string]int{},
		TFIDF:               map[string]float64{},
		CategoryProportions: map[string]float64{},
	}
	if len(bucket.Documents) == 0 {
		return f
	}

	categorized := 0
	categoryCounts := map[string]int{}
	var positive, neutral, negative int

	for _, doc := range bucket.Documents {
		tokens := e.Tokenize(doc.Content)
		tokens = append(tokens, e.normalizeKeywords(doc.Keywords)...)
		for _, tok := range tokens {
			f.TermFrequency[tok]++
			f.TokenCount++
		}

		if doc.Category != "" {
			categoryCounts[doc.Category]++
			categorized++
		}

		switch e.lexicon.Classify(tokens) {
		case SentimentPositive:
			positive++
		case SentimentNegative:
			negative++
		default:
			neutral++
		}
	}

	for term, count := range f.TermFrequency {
		f.TFIDF[term] = float64(count) * idf[term]
	}

	// Uncategorized documents are excluded from the denominator, not
	// treated as a category of their own.
	if categorized > 0 {
		for cat, count := range categoryCounts {
			f.CategoryProportions[cat] = float64(count) / float64(categorized)
		}
	}

	total := float64(len(bucket.Documents))
	f.Sentiment = text.SentimentDistribution{
		Positive: float64(positive) / total,
		Neutral:  float64(neutral) / total,
		Negative: float64(negative) / total,
	}
	return f
}

// corpusIDF computes smoothed inverse document frequency over every
// document in every bucket.
func (e *Extractor) corpusIDF(buckets []text.Bucket) map[string]float64 {
	docFreq := map[string]int{}
	totalDocs := 0
	for _, bucket := range buckets {
		for _, doc := range bucket.Documents {
			totalDocs++
			seen := map[string]struct{}{}
			tokens := e.Tokenize(doc.Content)
			tokens = append(tokens, e.normalizeKeywords(doc.Keywords)...)
			for _, tok := range tokens {
				if _, ok := seen[tok]; ok {
					continue
				}
				seen[tok] = struct{}{}
				docFreq[tok]++
			}
		}
	}

	idf := make(map[string]float64, len(docFreq))
	for term, df := range docFreq {
		idf[term] = math.Log(float64(1+totalDocs)/float64(1+df)) + 1
	}
	return idf
}

// Tokenize lowercases and splits on non-alphanumeric runes, dropping
// stopwords and tokens shorter than two characters.
func (e *Extractor) Tokenize(content string) []string {
	raw := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := raw[:0]
	for _, tok := range raw {
		if len(tok) < minTokenLength {
			continue
		}
		if _, stop := e.stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func (e *Extractor) normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if len(kw) >= minTokenLength {
			out = append(out, kw)
		}
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"the", "and", "for", "are", "was", "were", "has", "have", "had",
		"this", "that", "with", "from", "not", "but", "its", "his", "her",
		"they", "them", "will", "would", "been", "being", "which", "into",
		"also", "can", "could", "should", "than", "then", "there", "these",
		"those", "our", "your", "their", "about", "after", "before", "all",
		"any", "each", "more", "most", "other", "some", "such", "only",
		"own", "same", "too", "very", "just", "over", "under", "out",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
