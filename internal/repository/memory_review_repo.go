package repository

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"

	"review-sentiment/internal/models"
)

// MemoryReviewRepo keeps reviews in process memory for the lifetime of the value.
type MemoryReviewRepo struct {
	mu      sync.RWMutex
	clock   *monotonicClock
	reviews []models.Review
}

func NewMemoryReviewRepo(clock clockwork.Clock) *MemoryReviewRepo {
	return &MemoryReviewRepo{clock: newMonotonicClock(clock)}
}

func (r *MemoryReviewRepo) Insert(_ context.Context, text string, sentiment models.Sentiment) (models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	review := models.Review{
		ID:        int64(len(r.reviews)) + 1,
		Text:      text,
		Sentiment: sentiment,
		CreatedAt: r.clock.next(),
	}
	r.reviews = append(r.reviews, review)
	return review, nil
}

func (r *MemoryReviewRepo) List(_ context.Context, filter *models.Sentiment) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Review, 0, len(r.reviews))
	for _, review := range r.reviews {
		if filter != nil && review.Sentiment != *filter {
			continue
		}
		out = append(out, review)
	}
	return out, nil
}

func (r *MemoryReviewRepo) Ping(context.Context) error {
	return nil
}

func (r *MemoryReviewRepo) Close(context.Context) error {
	return nil
}
