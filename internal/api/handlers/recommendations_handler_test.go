package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartwise/recommender/internal/models"
	"github.com/cartwise/recommender/internal/recerrors"
)

type mockRecommendationsService struct {
	recommendFunc    func(ctx context.Context, req *models.RecommendRequest) (*models.RecommendationResponse, error)
	personalizedFunc func(ctx context.Context, req *models.PersonalizedRequest) (*models.RecommendationResponse, error)
}

func (m *mockRecommendationsService) Recommend(ctx context.Context, req *models.RecommendRequest) (*models.RecommendationResponse, error) {
	if m.recommendFunc != nil {
		return m.recommendFunc(ctx, req)
	}

	return &models.RecommendationResponse{Recommendations: []models.Recommendation{}}, nil
}

func (m *mockRecommendationsService) Personalized(ctx context.Context, req *models.PersonalizedRequest) (*models.RecommendationResponse, error) {
	if m.personalizedFunc != nil {
		return m.personalizedFunc(ctx, req)
	}

	return &models.RecommendationResponse{Recommendations: []models.Recommendation{}}, nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, url string, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	return rec
}

func TestRecommendationsHandler_Recommend(t *testing.T) {
	t.Run("invalid JSON returns 400", func(t *testing.T) {
		handler := NewRecommendationsHandler(&mockRecommendationsService{})
		rec := postJSON(t, handler.Recommend, "http://test/v1/recommendations", `{broken`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	})

	t.Run("missing query returns 400 with field detail", func(t *testing.T) {
		handler := NewRecommendationsHandler(&mockRecommendationsService{})
		rec := postJSON(t, handler.Recommend, "http://test/v1/recommendations", `{"user_id":"u1"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Query is required")
	})

	t.Run("query too short returns 400", func(t *testing.T) {
		handler := NewRecommendationsHandler(&mockRecommendationsService{})
		rec := postJSON(t, handler.Recommend, "http://test/v1/recommendations", `{"query":"tv"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("provider outage returns 503", func(t *testing.T) {
		mock := &mockRecommendationsService{
			recommendFunc: func(context.Context, *models.RecommendRequest) (*models.RecommendationResponse, error) {
				return nil, recerrors.NewProviderUnavailableError("vector-store", "down")
			},
		}
		handler := NewRecommendationsHandler(mock)
		rec := postJSON(t, handler.Recommend, "http://test/v1/recommendations", `{"query":"gaming laptop"}`)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		// Internals never leak to the client.
		assert.NotContains(t, rec.Body.String(), "down")
	})

	t.Run("success returns 200 with response body", func(t *testing.T) {
		var captured *models.RecommendRequest
		mock := &mockRecommendationsService{
			recommendFunc: func(_ context.Context, req *models.RecommendRequest) (*models.RecommendationResponse, error) {
				captured = req

				return &models.RecommendationResponse{
					Recommendations: []models.Recommendation{
						{Product: models.Product{ID: "p1", Title: "ThinkPad"}, Score: 0.91},
					},
					TotalCandidates: 7,
				}, nil
			},
		}
		handler := NewRecommendationsHandler(mock)
		rec := postJSON(t, handler.Recommend, "http://test/v1/recommendations",
			`{"query":"laptop under 800","user_id":"u1","max_budget":800}`)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		assert.Equal(t, "u1", captured.UserID)
		assert.InDelta(t, 800, captured.MaxBudget, 1e-9)

		var resp models.RecommendationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Recommendations, 1)
		assert.Equal(t, "p1", resp.Recommendations[0].Product.ID)
		assert.Equal(t, 7, resp.TotalCandidates)
	})
}

func TestRecommendationsHandler_Personalized(t *testing.T) {
	t.Run("missing user_id returns 400", func(t *testing.T) {
		handler := NewRecommendationsHandler(&mockRecommendationsService{})
		rec := postJSON(t, handler.Personalized, "http://test/v1/recommendations/personalized", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success returns 200", func(t *testing.T) {
		handler := NewRecommendationsHandler(&mockRecommendationsService{})
		rec := postJSON(t, handler.Personalized, "http://test/v1/recommendations/personalized", `{"user_id":"u1"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
