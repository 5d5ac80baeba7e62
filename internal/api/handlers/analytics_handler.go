package handlers

import (
	"context"
	"net/http"

	"github.com/cartwise/recommender/internal/api/response"
	"github.com/cartwise/recommender/internal/models"
)

// AnalyticsService defines the interface for system analytics.
type AnalyticsService interface {
	Analytics(ctx context.Context) *models.SystemAnalytics
}

// AnalyticsHandler handles HTTP requests for system analytics
type AnalyticsHandler struct {
	service AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Get handles GET /v1/analytics
// @Summary Get system analytics
// @Description Returns behavior store totals, per-action breakdown, top products, and catalog state
// @Tags Analytics
// @Produce json
// @Success 200 {object} SystemAnalytics
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Security BearerAuth
// @Router /v1/analytics [get]
func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.service.Analytics(r.Context()))
}
