package handlers

import (
	"context"
	"net/http"

	"github.com/cartwise/recommender/internal/api/response"
	"github.com/cartwise/recommender/internal/api/validation"
	"github.com/cartwise/recommender/internal/models"
)

// RecommendationsService defines the interface for the recommendation pipeline.
type RecommendationsService interface {
	Recommend(ctx context.Context, req *models.RecommendRequest) (*models.RecommendationResponse, error)
	Personalized(ctx context.Context, req *models.PersonalizedRequest) (*models.RecommendationResponse, error)
}

// RecommendationsHandler handles HTTP requests for recommendations
type RecommendationsHandler struct {
	service RecommendationsService
}

// NewRecommendationsHandler creates a new recommendations handler
func NewRecommendationsHandler(service RecommendationsService) *RecommendationsHandler {
	return &RecommendationsHandler{service: service}
}

// Recommend handles POST /v1/recommendations
// @Summary Get product recommendations
// @Description Runs the full pipeline for a natural language query: intent parsing, hybrid retrieval, financial filtering, ranking, and explanation
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body RecommendRequest true "Query and optional personalization context"
// @Success 200 {object} RecommendationResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 503 {object} ProblemDetails "Vector store or embedding provider unavailable"
// @Security BearerAuth
// @Router /v1/recommendations [post]
func (h *RecommendationsHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	resp, err := h.service.Recommend(r.Context(), &req)
	if err != nil {
		response.RespondFromError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

// Personalized handles POST /v1/recommendations/personalized
// @Summary Get personalized recommendations without a query
// @Description Recommends from the user's behavior profile and session signals alone, falling back to trending products when there is no signal
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body PersonalizedRequest true "User and session context"
// @Success 200 {object} RecommendationResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 503 {object} ProblemDetails "Vector store or embedding provider unavailable"
// @Security BearerAuth
// @Router /v1/recommendations/personalized [post]
func (h *RecommendationsHandler) Personalized(w http.ResponseWriter, r *http.Request) {
	var req models.PersonalizedRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	resp, err := h.service.Personalized(r.Context(), &req)
	if err != nil {
		response.RespondFromError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, resp)
}
