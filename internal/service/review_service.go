// Package service ties classification, storage and alerting together.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"review-sentiment/internal/metrics"
	"review-sentiment/internal/models"
	"review-sentiment/internal/notify"
	"review-sentiment/internal/repository"
)

const alertTimeout = 15 * time.Second

// Classifier assigns a sentiment label to text.
type Classifier interface {
	Classify(text string) models.Sentiment
}

type ReviewService struct {
	repo       repository.ReviewRepo
	classifier Classifier
	notifier   notify.Notifier
	metrics    *metrics.ReviewMetrics
	logger     *slog.Logger

	alerts sync.WaitGroup
}

// NewReviewService wires the service. notifier and m may be nil.
func NewReviewService(repo repository.ReviewRepo, classifier Classifier, notifier notify.Notifier, m *metrics.ReviewMetrics, logger *slog.Logger) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewService{
		repo:       repo,
		classifier: classifier,
		notifier:   notifier,
		metrics:    m,
		logger:     logger.With("component", "review_service"),
	}
}

// Create classifies text, stores it and returns the stored review. Negative
// reviews trigger an alert in the background; alert failures are only logged.
func (s *ReviewService) Create(ctx context.Context, text string) (models.Review, error) {
	label := s.classifier.Classify(text)

	review, err := s.repo.Insert(ctx, text, label)
	if err != nil {
		s.metrics.ObserveInsertFailure()
		return models.Review{}, fmt.Errorf("failed to store review: %w", err)
	}
	s.metrics.ObserveCreated(review.Sentiment)

	s.logger.InfoContext(ctx, "Review created", "review_id", review.ID, "sentiment", review.Sentiment)

	if review.Sentiment == models.SentimentNegative && s.notifier != nil {
		s.dispatchAlert(ctx, review)
	}
	return review, nil
}

// List returns stored reviews. An empty filter returns everything; any other
// value must be a known label or ErrInvalidSentiment is returned.
func (s *ReviewService) List(ctx context.Context, rawFilter string) ([]models.Review, error) {
	var filter *models.Sentiment
	if rawFilter != "" {
		label, err := models.ParseSentiment(rawFilter)
		if err != nil {
			return nil, err
		}
		filter = &label
	}

	reviews, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Ping checks the underlying store.
func (s *ReviewService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Wait blocks until all in-flight alerts have finished.
func (s *ReviewService) Wait() {
	s.alerts.Wait()
}

func (s *ReviewService) dispatchAlert(ctx context.Context, review models.Review) {
	// Detach from the request so the alert outlives the response, but keep its values for logging.
	alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)

	s.alerts.Add(1)
	go func() {
		defer s.alerts.Done()
		defer cancel()

		if err := s.notifier.Publish(alertCtx, notify.FormatNegativeReview(review)); err != nil {
			s.logger.ErrorContext(alertCtx, "Failed to publish review alert", "review_id", review.ID, "error", err)
		}
	}()
}
