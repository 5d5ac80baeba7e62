package handlers

import (
	"net/http"

	"github.com/cartwise/recommender/internal/api/response"
	"github.com/cartwise/recommender/internal/models"
)

// ProfilesService defines the interface for behavior profile reads.
type ProfilesService interface {
	Profile(userID string) (*models.UserBehaviorProfile, bool)
}

// ProfilesHandler handles HTTP requests for behavior profiles
type ProfilesHandler struct {
	service ProfilesService
}

// NewProfilesHandler creates a new profiles handler
func NewProfilesHandler(service ProfilesService) *ProfilesHandler {
	return &ProfilesHandler{service: service}
}

// Get handles GET /v1/profiles/{user_id}
// @Summary Get a user's behavior profile
// @Description Returns the decayed behavior profile snapshot for a user
// @Tags Profiles
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} UserBehaviorProfile
// @Failure 401 {object} ProblemDetails "Unauthorized - Invalid or missing API key"
// @Failure 404 {object} ProblemDetails "No profile recorded for this user"
// @Security BearerAuth
// @Router /v1/profiles/{user_id} [get]
func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if userID == "" {
		response.RespondBadRequest(w, "User ID is required")
		return
	}

	profile, ok := h.service.Profile(userID)
	if !ok {
		response.RespondNotFound(w, "No behavior profile for user")
		return
	}

	response.RespondJSON(w, http.StatusOK, profile)
}
