package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSentiment is returned when a sentiment label is not one of the known labels.
var ErrInvalidSentiment = errors.New("invalid sentiment")

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Sentiments lists every valid label.
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

func (s Sentiment) String() string {
	return string(s)
}

// ParseSentiment converts a raw label into a Sentiment. Labels are matched exactly.
func ParseSentiment(raw string) (Sentiment, error) {
	s := Sentiment(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidSentiment, raw, sentimentList())
	}
	return s, nil
}

func sentimentList() string {
	labels := make([]string, len(Sentiments))
	for i, s := range Sentiments {
		labels[i] = string(s)
	}
	return strings.Join(labels, ", ")
}

type Review struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sentiment Sentiment `json:"sentiment"`
	CreatedAt Timestamp `json:"created_at"`
}
