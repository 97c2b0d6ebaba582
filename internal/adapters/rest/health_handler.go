package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/philly/imageblog/internal/posts/ports"
)

// Health states reported by the probes
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	CheckUp         = "up"
	CheckDown       = "down"
)

// Version is the build version reported by the health endpoints
type Version string

// HealthStatus is the body of both health probes
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type HealthHandler struct {
	*BaseHandler
	version Version
	storage ports.PostRepository // For readiness check
}

func NewHealthHandler(base *BaseHandler, version Version, storage ports.PostRepository) *HealthHandler {
	return &HealthHandler{
		BaseHandler: base,
		version:     version,
		storage:     storage,
	}
}

// GetLiveness implements the liveness probe endpoint
// This is a lightweight check with no external dependencies
func (h *HealthHandler) GetLiveness(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONResponse(w, r, HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Version:   string(h.version),
	}, http.StatusOK)
}

// GetReadiness implements the readiness probe endpoint
// This checks the post storage backend
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	status := StatusHealthy
	httpStatus := http.StatusOK
	checks := map[string]string{"storage": CheckUp}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn(r.Context(), "readiness check failed", "error", err)
		checks["storage"] = CheckDown
		status = StatusUnhealthy
		httpStatus = http.StatusServiceUnavailable
	}

	h.WriteJSONResponse(w, r, HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   string(h.version),
		Checks:    checks,
	}, httpStatus)
}
