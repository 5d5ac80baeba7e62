package handlers

import (
	"context"
	"net/http"

	"github.com/cartwise/recommender/internal/api/response"
	"github.com/cartwise/recommender/internal/models"
)

// HealthService defines the interface for component health checks.
type HealthService interface {
	Health(ctx context.Context) *models.HealthStatus
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	service HealthService
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service HealthService) *HealthHandler {
	return &HealthHandler{service: service}
}

// Check handles GET /health. Degraded components turn the status code to 503
// so load balancers can rotate the instance out.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := h.service.Health(r.Context())

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}

	response.RespondJSON(w, code, status)
}
