// Package priority computes the triage score of a grievance from three
// independent signals: sentiment polarity of the text, the severity of
// hazard keywords found in it, and a per-category base rate.
package priority

import (
	"context"
	"strings"

	"github.com/apex/log"
	"github.com/shopspring/decimal"
)

// Weights of the linear combination. Keyword severity dominates: explicit
// hazard language outranks general sentiment or category base rate.
const (
	sentimentWeight = 0.3
	keywordWeight   = 0.5
	frequencyWeight = 0.2

	// DefaultSentiment substitutes for a failed or out-of-range rating.
	DefaultSentiment = 0.5

	// Text sent to the rating model is capped to bound cost and latency.
	maxSentimentInput = 512
)

// SentimentRater rates the emotional severity of a text as 1..5 stars.
// Implemented by the genai client; stubbed in tests.
type SentimentRater interface {
	RateSentiment(ctx context.Context, text string) (int, error)
}

// Tables are the static scoring lookup tables, loaded with the issue config.
type Tables struct {
	KeywordWeights   map[string]float64
	FrequencyWeights map[string]float64
	DefaultFrequency float64
}

// Scores is the result of scoring one grievance. All components are in
// [0,1]; since the weights sum to 1.0 the index is too.
type Scores struct {
	Sentiment       float64
	KeywordSeverity float64
	Frequency       float64
	Index           float64
}

type Scorer struct {
	rater  SentimentRater
	tables Tables
}

func NewScorer(rater SentimentRater, tables Tables) *Scorer {
	return &Scorer{rater: rater, tables: tables}
}

// Score computes all four numbers for a grievance text and its category.
// It never fails: a broken sentiment backend degrades to DefaultSentiment.
func (s *Scorer) Score(ctx context.Context, text, category string) Scores {
	sentiment := s.sentiment(ctx, text)
	severity := s.KeywordSeverity(text)
	frequency := s.Frequency(category)

	p := sentimentWeight*sentiment + keywordWeight*severity + frequencyWeight*frequency

	return Scores{
		Sentiment:       sentiment,
		KeywordSeverity: severity,
		Frequency:       frequency,
		Index:           roundIndex(p),
	}
}

// sentiment normalizes a 1..5 star rating to [0,1].
func (s *Scorer) sentiment(ctx context.Context, text string) float64 {
	if s.rater == nil {
		return DefaultSentiment
	}

	if runes := []rune(text); len(runes) > maxSentimentInput {
		text = string(runes[:maxSentimentInput])
	}

	stars, err := s.rater.RateSentiment(ctx, text)
	if err != nil {
		log.Warnf("Sentiment rating failed, using default %.1f: %v", DefaultSentiment, err)
		return DefaultSentiment
	}
	if stars < 1 || stars > 5 {
		log.Warnf("Sentiment rating %d outside 1..5, using default %.1f", stars, DefaultSentiment)
		return DefaultSentiment
	}
	return float64(stars-1) / 4.0
}

// KeywordSeverity is the maximum weight over all table keywords found as
// substrings of the text, case-insensitive. No match scores 0.
func (s *Scorer) KeywordSeverity(text string) float64 {
	lower := strings.ToLower(text)
	max := 0.0
	for word, weight := range s.tables.KeywordWeights {
		if strings.Contains(lower, strings.ToLower(word)) && weight > max {
			max = weight
		}
	}
	return max
}

// Frequency returns the category's static base rate, or the default for
// categories not in the table.
func (s *Scorer) Frequency(category string) float64 {
	if w, ok := s.tables.FrequencyWeights[category]; ok {
		return w
	}
	return s.tables.DefaultFrequency
}

func roundIndex(p float64) float64 {
	f, _ := decimal.NewFromFloat(p).Round(3).Float64()
	return f
}
