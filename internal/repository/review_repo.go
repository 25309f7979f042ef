// Package repository stores reviews. Every backend hands out ids starting at
// 1 in insertion order and keeps created_at non-decreasing.
package repository

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"review-sentiment/internal/models"
)

// ReviewRepo is the storage contract shared by all backends.
type ReviewRepo interface {
	// Insert assigns the next id and the current time and stores the review.
	// Either the whole record is stored or nothing is.
	Insert(ctx context.Context, text string, sentiment models.Sentiment) (models.Review, error)
	// List returns reviews in insertion order, restricted to filter when it is non-nil.
	// The returned slice is never nil.
	List(ctx context.Context, filter *models.Sentiment) ([]models.Review, error)
	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
	// Close releases the backing storage.
	Close(ctx context.Context) error
}

// monotonicClock hands out timestamps that never go below the last one issued,
// even if the wall clock steps backwards. Callers serialize access.
type monotonicClock struct {
	clock clockwork.Clock
	last  time.Time
}

func newMonotonicClock(clock clockwork.Clock) *monotonicClock {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &monotonicClock{clock: clock}
}

func (m *monotonicClock) next() models.Timestamp {
	ts := models.NewTimestamp(m.clock.Now())
	if ts.Before(m.last) {
		ts = models.NewTimestamp(m.last)
	}
	m.last = ts.Time
	return ts
}

// seed sets the floor used after a restart of a persistent store.
func (m *monotonicClock) seed(last time.Time) {
	m.last = last
}
