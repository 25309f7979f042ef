package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store   Pinger
	service string
	logger  *slog.Logger
}

func NewHealthHandler(store Pinger, service string, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{store: store, service: service, logger: logger}
}

// --- GET /health ---

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.WarnContext(r.Context(), "Health check failed", "error", err)
		writeJSON(w, h.logger, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"service": h.service,
		})
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.service,
	})
}
