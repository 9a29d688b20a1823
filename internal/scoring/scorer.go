// Package scoring computes the heuristic highlight score of a chat message
// from its sentiment, keywords and engagement.
package scoring

import (
	"strings"
	"unicode/utf8"
)

// Term weights of the composite score.
const (
	SentimentWeight = 0.3
	ReactionWeight  = 0.3
	KeywordWeight   = 0.2
	LengthWeight    = 0.1
	ReplyWeight     = 0.1
)

// SentimentAnalyzer returns the raw, unbounded valence of a text.
type SentimentAnalyzer interface {
	Score(text string) float64
}

// Features are the inputs of a single scoring run.
type Features struct {
	Text      string
	Reactions int
	// Replies is always zero today because no adapter reports reply counts.
	Replies int
	// Length is the content length in runes.
	Length int
}

// FeaturesFor builds Features for text, measuring its length in runes.
func FeaturesFor(text string, reactions int) Features {
	return Features{
		Text:      text,
		Reactions: reactions,
		Length:    utf8.RuneCountInString(text),
	}
}

// Result is the outcome of Scorer.Score.
type Result struct {
	SentimentScore float64  `json:"sentiment_score"`
	Keywords       []string `json:"keywords"`
	HighlightScore float64  `json:"highlight_score"`
	IsHighlight    bool     `json:"is_highlight"`
}

// Scorer is stateless apart from its immutable thresholds.
type Scorer struct {
	analyzer   SentimentAnalyzer
	thresholds Thresholds
}

// NewScorer returns a Scorer. Keywords are normalized once here.
func NewScorer(analyzer SentimentAnalyzer, thresholds Thresholds) *Scorer {
	thresholds.Keywords = NormalizeKeywords(thresholds.Keywords)
	return &Scorer{analyzer: analyzer, thresholds: thresholds}
}

// Thresholds returns a copy of the scorer configuration.
func (s *Scorer) Thresholds() Thresholds {
	t := s.thresholds
	t.Keywords = append([]string(nil), t.Keywords...)
	return t
}

// Score runs the sentiment analyzer and keyword detection over f.Text and
// combines them with the engagement features.
func (s *Scorer) Score(f Features) Result {
	raw := s.analyzer.Score(f.Text)
	keywords := DetectKeywords(f.Text, s.thresholds.Keywords)
	total := Composite(raw, f.Reactions, len(keywords), f.Length, f.Replies)

	return Result{
		SentimentScore: raw,
		Keywords:       keywords,
		HighlightScore: total,
		IsHighlight:    s.IsHighlight(total),
	}
}

// IsHighlight reports whether score reaches the minimum. The boundary is
// inclusive.
func (s *Scorer) IsHighlight(score float64) bool {
	return score >= s.thresholds.MinScore
}

// DetectKeywords returns the keywords contained in text, case-insensitively,
// in the order they are configured. keywords must already be lower-case.
func DetectKeywords(text string, keywords []string) []string {
	found := []string{}
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			found = append(found, k)
		}
	}
	return found
}

// Composite is the weighted highlight score. Terms are clamped to [0, 1],
// weighted and added in a fixed order so results stay reproducible across
// implementations.
func Composite(sentiment float64, reactions, keywords, length, replies int) float64 {
	score := 0.0
	score += clamp(sentiment/5) * SentimentWeight
	score += clamp(float64(reactions)/10) * ReactionWeight
	score += clamp(float64(keywords)/3) * KeywordWeight
	score += clamp(float64(length-10)/100) * LengthWeight
	score += clamp(float64(replies)/5) * ReplyWeight
	return clamp(score)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
