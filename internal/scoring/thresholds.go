package scoring

import "strings"

// Default threshold values.
const (
	DefaultSentiment = 0.3
	DefaultReactions = 3
	DefaultReplies   = 2
	DefaultMinScore  = 0.6
)

// DefaultKeywords is the keyword list used when none is configured.
var DefaultKeywords = []string{"lol", "haha", "omg", "wtf", "epic", "amazing", "wow"}

// Thresholds is the immutable highlight configuration. Sentiment, Reactions
// and Replies are carried for adapters that want to display them; only
// Keywords and MinScore take part in the composite score.
type Thresholds struct {
	Sentiment float64  `json:"sentiment"`
	Reactions int      `json:"reactions"`
	Replies   int      `json:"replies"`
	Keywords  []string `json:"keywords"`
	MinScore  float64  `json:"min_score"`
}

// DefaultThresholds returns the built-in configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Sentiment: DefaultSentiment,
		Reactions: DefaultReactions,
		Replies:   DefaultReplies,
		Keywords:  append([]string(nil), DefaultKeywords...),
		MinScore:  DefaultMinScore,
	}
}

// NormalizeKeywords trims and lower-cases every keyword, dropping empty
// entries and repeats while keeping the first-seen order.
func NormalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
