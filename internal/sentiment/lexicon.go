package sentiment

import (
	"errors"
	"fmt"
	"strings"
)

// Lexicon maps marker stems to a polarity. Markers are matched
// case-insensitively at the start of a word, so a stem like "хорош" also
// matches "хороший" and "хорошо" but "hate" does not match "whatever".
type Lexicon struct {
	Positive []string
	Negative []string
}

// DefaultLexicon returns the built-in Russian and English markers.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: []string{
			"хорош", "отличн", "прекрасн", "замечательн", "люблю", "нрав", "понрав", "спасибо", "рекоменд", "супер",
			"good", "great", "excellent", "love", "awesome", "recommend",
		},
		Negative: []string{
			"плох", "ужас", "отвратител", "ненавиж", "никогда больше", "разочаров", "кошмар", "хуже",
			"не нрав", "не понрав", "не рекоменд",
			"bad", "terrible", "awful", "hate", "never again", "worst",
			"not good", "not recommend",
		},
	}
}

// normalize lowercases, trims and deduplicates markers. A marker listed under
// both polarities is rejected since it would always cancel itself out.
func (l Lexicon) normalize() (Lexicon, error) {
	pos, err := normalizeMarkers(l.Positive)
	if err != nil {
		return Lexicon{}, fmt.Errorf("positive markers: %w", err)
	}
	neg, err := normalizeMarkers(l.Negative)
	if err != nil {
		return Lexicon{}, fmt.Errorf("negative markers: %w", err)
	}
	if len(pos) == 0 && len(neg) == 0 {
		return Lexicon{}, errors.New("lexicon has no markers")
	}

	seen := make(map[string]struct{}, len(pos))
	for _, m := range pos {
		seen[m] = struct{}{}
	}
	for _, m := range neg {
		if _, ok := seen[m]; ok {
			return Lexicon{}, fmt.Errorf("marker %q is both positive and negative", m)
		}
	}

	return Lexicon{Positive: pos, Negative: neg}, nil
}

func normalizeMarkers(markers []string) ([]string, error) {
	out := make([]string, 0, len(markers))
	seen := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" {
			return nil, errors.New("empty marker")
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}
