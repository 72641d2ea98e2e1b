package extract

// SentimentClass is a per-document sentiment label.
type SentimentClass int

const (
	SentimentNeutral SentimentClass = iota
	SentimentPositive
	SentimentNegative
)

// Lexicon classifies documents by counting positive and negative term
// hits. A document leans positive when positive hits outnumber negative
// ones, and vice versa; ties and no-hit documents are neutral.
type Lexicon struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewLexicon builds a lexicon from explicit word lists.
func NewLexicon(positive, negative []string) Lexicon {
	lex := Lexicon{
		positive: make(map[string]struct{}, len(positive)),
		negative: make(map[string]struct{}, len(negative)),
	}
	for _, w := range positive {
		lex.positive[w] = struct{}{}
	}
	for _, w := range negative {
		lex.negative[w] = struct{}{}
	}
	return lex
}

// DefaultLexicon returns the built-in general-purpose word lists.
func DefaultLexicon() Lexicon {
	return NewLexicon(
		[]string{
			"good", "great", "excellent", "positive", "improved", "improvement",
			"success", "successful", "gain", "gains", "growth", "strong",
			"effective", "efficient", "benefit", "beneficial", "progress",
			"resolved", "stable", "satisfied", "satisfactory", "exceeded",
			"achievement", "achieved", "approved", "complete", "completed",
			"recovery", "recovered", "win", "winning", "best", "better",
		},
		[]string{
			"bad", "poor", "negative", "decline", "declined", "loss", "losses",
			"failure", "failed", "failing", "problem", "problems", "issue",
			"issues", "delay", "delayed", "risk", "risks", "concern",
			"concerns", "error", "errors", "defect", "defects", "complaint",
			"complaints", "breach", "shortage", "deficit", "worse", "worst",
			"critical", "violation", "violations", "incident", "incidents",
		},
	)
}

// Classify labels a tokenized document.
func (l Lexicon) Classify(tokens []string) SentimentClass {
	var pos, neg int
	for _, tok := range tokens {
		if _, ok := l.positive[tok]; ok {
			pos++
		}
		if _, ok := l.negative[tok]; ok {
			neg++
		}
	}
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
