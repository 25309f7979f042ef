// Package sentiment assigns a sentiment label to free-form review text using a
// configurable marker lexicon.
package sentiment

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"review-sentiment/internal/models"
)

// Result holds the label along with the marker counts that produced it.
type Result struct {
	Sentiment models.Sentiment
	Positive  int
	Negative  int
}

// Classifier is safe for concurrent use; it holds no mutable state.
type Classifier struct {
	lexicon Lexicon
	markers []marker
}

type marker struct {
	text     string
	positive bool
}

// NewClassifier validates and normalizes the lexicon.
func NewClassifier(lexicon Lexicon) (*Classifier, error) {
	normalized, err := lexicon.normalize()
	if err != nil {
		return nil, err
	}
	return &Classifier{lexicon: normalized, markers: orderMarkers(normalized)}, nil
}

// Lexicon returns a copy of the normalized lexicon in use.
func (c *Classifier) Lexicon() Lexicon {
	return Lexicon{
		Positive: append([]string(nil), c.lexicon.Positive...),
		Negative: append([]string(nil), c.lexicon.Negative...),
	}
}

// Classify returns the label for text. Every input, including the empty
// string, yields a label.
func (c *Classifier) Classify(text string) models.Sentiment {
	return c.Analyze(text).Sentiment
}

// Analyze counts non-overlapping marker occurrences in the lowercased text.
// Longer markers are matched first and claim their span, so "не нрав" in
// "не нравится" counts once as negative instead of also counting "нрав".
// More positive hits wins positive, more negative hits wins negative, and
// anything else (no hits or a tie) is neutral.
func (c *Classifier) Analyze(text string) Result {
	lowered := strings.ToLower(text)
	claimed := make([]bool, len(lowered))

	var res Result
	for _, m := range c.markers {
		n := countMarker(lowered, m.text, claimed)
		if m.positive {
			res.Positive += n
		} else {
			res.Negative += n
		}
	}
	switch {
	case res.Positive > res.Negative:
		res.Sentiment = models.SentimentPositive
	case res.Negative > res.Positive:
		res.Sentiment = models.SentimentNegative
	default:
		res.Sentiment = models.SentimentNeutral
	}
	return res
}

// orderMarkers flattens the lexicon longest marker first. Ties keep lexicon
// order so matching stays deterministic.
func orderMarkers(lex Lexicon) []marker {
	out := make([]marker, 0, len(lex.Positive)+len(lex.Negative))
	for _, m := range lex.Positive {
		out = append(out, marker{text: m, positive: true})
	}
	for _, m := range lex.Negative {
		out = append(out, marker{text: m})
	}
	slices.SortStableFunc(out, func(a, b marker) int {
		return cmp.Compare(len(b.text), len(a.text))
	})
	return out
}

// countMarker counts occurrences of m that start a word and do not overlap a
// span already claimed by a longer marker. Matched spans are claimed.
func countMarker(text, m string, claimed []bool) int {
	n := 0
	for i := 0; i < len(text); {
		j := strings.Index(text[i:], m)
		if j < 0 {
			break
		}
		start, end := i+j, i+j+len(m)
		if !atWordStart(text, start) || slices.Contains(claimed[start:end], true) {
			_, size := utf8.DecodeRuneInString(text[start:])
			i = start + size
			continue
		}
		for k := start; k < end; k++ {
			claimed[k] = true
		}
		n++
		i = end
	}
	return n
}

func atWordStart(text string, pos int) bool {
	if pos == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
