// Package sentiment implements a lexicon-based valence analyzer in the style
// of AFINN: every known word carries an integer score and the text score is
// the sum over its tokens, with negators flipping the following word.
package sentiment

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var builtinLexicon []byte

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "neither": {}, "nor": {}, "non": {},
	"cant": {}, "can't": {}, "dont": {}, "don't": {}, "doesnt": {}, "doesn't": {},
	"didnt": {}, "didn't": {}, "isnt": {}, "isn't": {}, "wasnt": {}, "wasn't": {},
	"arent": {}, "aren't": {}, "werent": {}, "weren't": {}, "wont": {}, "won't": {},
	"wouldnt": {}, "wouldn't": {}, "shouldnt": {}, "shouldn't": {}, "couldnt": {},
	"couldn't": {}, "hasnt": {}, "hasn't": {}, "havent": {}, "haven't": {},
}

// Result is the detailed outcome of Analyze.
type Result struct {
	Score       float64  `json:"score"`
	Comparative float64  `json:"comparative"`
	Tokens      []string `json:"tokens"`
	Positive    []string `json:"positive"`
	Negative    []string `json:"negative"`
}

// Analyzer scores text against a word lexicon. It is safe for concurrent use
// because the lexicon is never mutated after construction.
type Analyzer struct {
	lexicon map[string]int
}

// New returns an Analyzer backed by the built-in lexicon. When overridePath
// is not empty, the YAML mapping found there is merged over the built-in
// entries.
func New(overridePath string) (*Analyzer, error) {
	lex, err := ParseLexicon(builtinLexicon)
	if err != nil {
		return nil, fmt.Errorf("builtin lexicon: %w", err)
	}

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("read lexicon %s: %w", overridePath, err)
		}
		extra, err := ParseLexicon(data)
		if err != nil {
			return nil, fmt.Errorf("lexicon %s: %w", overridePath, err)
		}
		for w, s := range extra {
			lex[w] = s
		}
	}

	return &Analyzer{lexicon: lex}, nil
}

// ParseLexicon decodes a YAML mapping of word to score. Words are
// normalized the same way message tokens are.
func ParseLexicon(data []byte) (map[string]int, error) {
	raw := map[string]int{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	lex := make(map[string]int, len(raw))
	for w, s := range raw {
		if s < -5 || s > 5 {
			return nil, fmt.Errorf("word %q: score %d out of range [-5, 5]", w, s)
		}
		lex[normalizeWord(w)] = s
	}
	return lex, nil
}

// Len reports the number of lexicon entries.
func (a *Analyzer) Len() int {
	return len(a.lexicon)
}

// Score returns the raw, unbounded valence of text.
func (a *Analyzer) Score(text string) float64 {
	return a.Analyze(text).Score
}

// Analyze tokenizes text and sums the lexicon score of every token.
func (a *Analyzer) Analyze(text string) Result {
	tokens := Tokenize(text)
	res := Result{Tokens: tokens, Positive: []string{}, Negative: []string{}}

	total := 0
	for i, tok := range tokens {
		s, ok := a.lexicon[tok]
		if !ok {
			continue
		}
		if i > 0 {
			if _, neg := negators[tokens[i-1]]; neg {
				s = -s
			}
		}
		switch {
		case s > 0:
			res.Positive = append(res.Positive, tok)
		case s < 0:
			res.Negative = append(res.Negative, tok)
		}
		total += s
	}

	res.Score = float64(total)
	if len(tokens) > 0 {
		res.Comparative = res.Score / float64(len(tokens))
	}
	return res
}

// Tokenize lower-cases text and splits it on anything that is not a letter,
// a digit, an apostrophe or a hyphen.
func Tokenize(text string) []string {
	s := normalizeWord(text)
	return strings.FieldsFunc(s, func(r rune) bool {
		if r == '\'' || r == '-' {
			return false
		}
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalizeWord(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "’", "'")
	return strings.ToLower(strings.TrimSpace(s))
}
