package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-sentiment/internal/models"
)

func TestReviewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReviewMetrics(reg)

	m.ObserveCreated(models.SentimentPositive)
	m.ObserveCreated(models.SentimentPositive)
	m.ObserveCreated(models.SentimentNegative)
	m.ObserveInsertFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReviewsCreated.WithLabelValues("positive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsCreated.WithLabelValues("negative")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ReviewsCreated.WithLabelValues("neutral")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InsertFailures))
}

func TestReviewMetrics_NilSafe(t *testing.T) {
	var m *ReviewMetrics
	assert.NotPanics(t, func() {
		m.ObserveCreated(models.SentimentNeutral)
		m.ObserveInsertFailure()
	})
}

func TestHTTPMetrics_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/reviews", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	for range 3 {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/reviews", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/reviews", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlightGauge))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestsTotal))
}

func TestHandler_ServesRegistry(t *testing.T) {
	reg := NewRegistry()
	NewReviewMetrics(reg).ObserveCreated(models.SentimentPositive)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `review_sentiment_reviews_created_total{sentiment="positive"} 1`)
}
