package handlers

import (
	"context"
	"net/http"

	"github.com/cartwise/recommender/internal/api/response"
	"github.com/cartwise/recommender/internal/api/validation"
	"github.com/cartwise/recommender/internal/models"
)

// FeedbackService defines the interface for recording user feedback.
type FeedbackService interface {
	RecordFeedback(ctx context.Context, req *models.RecordFeedbackRequest) error
}

// FeedbackHandler handles HTTP requests for feedback events
type FeedbackHandler struct {
	service FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(service FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// acceptedResponse is the body for asynchronously accepted writes.
type acceptedResponse struct {
	Accepted bool `json:"accepted"`
}

// Record handles POST /v1/feedback
// @Summary Record a feedback event
// @Description Accepts a user interaction (view, click, add_to_cart, purchase, skip, reject) and applies it to the behavior profile asynchronously
// @Tags Feedback
// @Accept json
// @Produce json
// @Param request body RecordFeedbackRequest true "Feedback event"
// @Success 202 {object} acceptedResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 404 {object} ProblemDetails "Product not found"
// @Security BearerAuth
// @Router /v1/feedback [post]
func (h *FeedbackHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req models.RecordFeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	if err := h.service.RecordFeedback(r.Context(), &req); err != nil {
		response.RespondFromError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusAccepted, acceptedResponse{Accepted: true})
}
