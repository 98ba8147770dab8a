package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, dbStatus := http.StatusOK, "ok"
	if err := h.db.PingContext(ctx); err != nil {
		zap.L().Warn("health check: database unreachable", zap.Error(err))
		status, dbStatus = http.StatusServiceUnavailable, "unavailable"
	}
	if err := writeJSON(w, status, jsonResponse{"status": dbStatus, "database": dbStatus}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
