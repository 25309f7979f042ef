package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-sentiment/internal/logging"
	"review-sentiment/internal/metrics"
	"review-sentiment/internal/models"
	"review-sentiment/internal/repository"
	"review-sentiment/internal/sentiment"
	"review-sentiment/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	classifier, err := sentiment.NewClassifier(sentiment.DefaultLexicon())
	require.NoError(t, err)

	reg := metrics.NewRegistry()
	svc := service.NewReviewService(
		repository.NewMemoryReviewRepo(nil), classifier, nil, metrics.NewReviewMetrics(reg), logging.Discard())

	return NewRouter(Deps{
		Reviews:        svc,
		Logger:         logging.Discard(),
		Registry:       reg,
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		MaxBodyBytes:   1 << 20,
		AllowedOrigins: []string{"*"},
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ReviewScenarios(t *testing.T) {
	h := newTestRouter(t)

	create := func(text string) models.Review {
		body, err := json.Marshal(map[string]string{"text": text})
		require.NoError(t, err)
		rec := do(t, h, http.MethodPost, "/reviews", string(body))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var review models.Review
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &review))
		return review
	}

	r1 := create("Очень хороший сервис!")
	assert.Equal(t, int64(1), r1.ID)
	assert.Equal(t, models.SentimentPositive, r1.Sentiment)

	r2 := create("Ужасный, никогда больше не буду пользоваться")
	assert.Equal(t, models.SentimentNegative, r2.Sentiment)

	r3 := create("Сервис как сервис")
	assert.Equal(t, models.SentimentNeutral, r3.Sentiment)

	rec := do(t, h, http.MethodGet, "/reviews?sentiment=positive", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var positive []models.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &positive))
	assert.Equal(t, []models.Review{r1}, positive)

	rec = do(t, h, http.MethodGet, "/reviews?sentiment=unknown_label", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ConcurrentCreates(t *testing.T) {
	h := newTestRouter(t)
	const n = 40

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := do(t, h, http.MethodPost, "/reviews", `{"text": "хорошо"}`)
			assert.Equal(t, http.StatusCreated, rec.Code)
		}()
	}
	wg.Wait()

	var reviews []models.Review
	require.NoError(t, json.Unmarshal(do(t, h, http.MethodGet, "/reviews", "").Body.Bytes(), &reviews))
	require.Len(t, reviews, n)
	for i, r := range reviews {
		assert.Equal(t, int64(i+1), r.ID)
	}
}

func TestRouter_RequestIDHeader(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/reviews", nil)
	req.Header.Set(logging.RequestIDHeader, "trace-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "trace-42", rec.Header().Get(logging.RequestIDHeader))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"review-sentiment"}`, rec.Body.String())

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/reviews", `{"text":"плохо"}`).Code)

	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `review_sentiment_reviews_created_total{sentiment="negative"} 1`)
	assert.Contains(t, body, `review_sentiment_http_requests_total{method="POST",route="/reviews",status_code="201"} 1`)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodDelete, "/reviews", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/reviews", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
