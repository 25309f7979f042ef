package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"review-sentiment/internal/models"
	"review-sentiment/internal/service"
)

type ReviewHandler struct {
	reviews      *service.ReviewService
	validate     *validator.Validate
	maxBodyBytes int64
	logger       *slog.Logger
}

func NewReviewHandler(reviews *service.ReviewService, maxBodyBytes int64, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{
		reviews:      reviews,
		validate:     validator.New(),
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// CreateReviewRequest is the body of POST /reviews. Text is a pointer so a
// missing field can be told apart from an empty string.
type CreateReviewRequest struct {
	Text *string `json:"text" validate:"required"`
}

// --- POST /reviews ---

func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req CreateReviewRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		status, msg := decodeErrorResponse(err)
		writeError(w, h.logger, status, msg)
		return
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		status, msg := decodeErrorResponse(err)
		writeError(w, h.logger, status, msg)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "field 'text' is required")
		return
	}

	review, err := h.reviews.Create(r.Context(), *req.Text)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error creating review", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, review)
}

// --- GET /reviews ---

func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.List(r.Context(), r.URL.Query().Get("sentiment"))
	if err != nil {
		if errors.Is(err, models.ErrInvalidSentiment) {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "Error listing reviews", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, reviews)
}

func decodeErrorResponse(err error) (int, string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge, "request body too large"
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "text" {
		return http.StatusBadRequest, "field 'text' must be a string"
	}

	return http.StatusBadRequest, "invalid request body"
}
