package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartwise/recommender/internal/models"
	"github.com/cartwise/recommender/internal/recerrors"
)

type mockFeedbackService struct {
	recordFunc func(ctx context.Context, req *models.RecordFeedbackRequest) error
}

func (m *mockFeedbackService) RecordFeedback(ctx context.Context, req *models.RecordFeedbackRequest) error {
	if m.recordFunc != nil {
		return m.recordFunc(ctx, req)
	}

	return nil
}

func TestFeedbackHandler_Record(t *testing.T) {
	t.Run("valid event returns 202", func(t *testing.T) {
		var captured *models.RecordFeedbackRequest
		mock := &mockFeedbackService{recordFunc: func(_ context.Context, req *models.RecordFeedbackRequest) error {
			captured = req

			return nil
		}}
		handler := NewFeedbackHandler(mock)

		rec := postJSON(t, handler.Record, "http://test/v1/feedback",
			`{"user_id":"u1","product_id":"p1","action":"add_to_cart"}`)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Contains(t, rec.Body.String(), `"accepted":true`)
		require.NotNil(t, captured)
		assert.Equal(t, "add_to_cart", captured.Action)
	})

	t.Run("unknown action returns 400 before hitting the service", func(t *testing.T) {
		called := false
		mock := &mockFeedbackService{recordFunc: func(context.Context, *models.RecordFeedbackRequest) error {
			called = true

			return nil
		}}
		handler := NewFeedbackHandler(mock)

		rec := postJSON(t, handler.Record, "http://test/v1/feedback",
			`{"user_id":"u1","product_id":"p1","action":"teleport"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "purchase, add_to_cart, click, view, skip, reject")
		assert.False(t, called)
	})

	t.Run("unknown product returns 404", func(t *testing.T) {
		mock := &mockFeedbackService{recordFunc: func(context.Context, *models.RecordFeedbackRequest) error {
			return recerrors.NewNotFoundError("product", "product not found: ghost")
		}}
		handler := NewFeedbackHandler(mock)

		rec := postJSON(t, handler.Record, "http://test/v1/feedback",
			`{"user_id":"u1","product_id":"ghost","action":"view"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing fields return 400", func(t *testing.T) {
		handler := NewFeedbackHandler(&mockFeedbackService{})
		rec := postJSON(t, handler.Record, "http://test/v1/feedback", `{"action":"view"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProfilesHandler_Get(t *testing.T) {
	t.Run("known user returns 200", func(t *testing.T) {
		handler := NewProfilesHandler(profileFunc(func(userID string) (*models.UserBehaviorProfile, bool) {
			return &models.UserBehaviorProfile{UserID: userID, Interactions: 12}, true
		}))

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/profiles/u1", nil)
		req.SetPathValue("user_id", "u1")
		rec := httptest.NewRecorder()
		handler.Get(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"user_id":"u1"`)
	})

	t.Run("unknown user returns 404", func(t *testing.T) {
		handler := NewProfilesHandler(profileFunc(func(string) (*models.UserBehaviorProfile, bool) {
			return nil, false
		}))

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/profiles/ghost", nil)
		req.SetPathValue("user_id", "ghost")
		rec := httptest.NewRecorder()
		handler.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// profileFunc adapts a function to the ProfilesService interface.
type profileFunc func(userID string) (*models.UserBehaviorProfile, bool)

func (f profileFunc) Profile(userID string) (*models.UserBehaviorProfile, bool) { return f(userID) }
