package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartwise/recommender/internal/embeddings"
	"github.com/cartwise/recommender/internal/models"
	"github.com/cartwise/recommender/internal/recerrors"
)

// mockSearcher implements VectorSearcher with a configurable function.
type mockSearcher struct {
	searchFunc func(ctx context.Context, queryEmbedding []float32, filters models.SearchFilters, limit int, minScore float64) ([]models.Candidate, error)
}

func (m *mockSearcher) SearchByEmbedding(
	ctx context.Context, queryEmbedding []float32, filters models.SearchFilters, limit int, minScore float64,
) ([]models.Candidate, error) {
	return m.searchFunc(ctx, queryEmbedding, filters, limit, minScore)
}

func defaultOptions() Options {
	return Options{TopK: 20, MinScore: 0.3, DenseWeight: 0.7}
}

func TestRetrieve_CombinesDenseAndSparse(t *testing.T) {
	store := &mockSearcher{
		searchFunc: func(ctx context.Context, _ []float32, _ models.SearchFilters, limit int, minScore float64) ([]models.Candidate, error) {
			assert.Equal(t, 20, limit)
			assert.InDelta(t, 0.3, minScore, 1e-9)
			return []models.Candidate{
				{Product: models.Product{ID: "p1", Title: "Gaming Laptop Pro", Category: "laptop"}, DenseScore: 0.80},
				{Product: models.Product{ID: "p2", Title: "Office Desktop", Category: "pc"}, DenseScore: 0.82},
			}, nil
		},
	}
	retriever := NewRetriever(embeddings.NewMockClientWithDimensions(8), store, defaultOptions())

	candidates, err := retriever.Retrieve(context.Background(), "gaming laptop",
		[]string{"gaming", "laptop"}, models.SearchFilters{})

	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// p1 matches both keywords (sparse 1.0), p2 matches none. The keyword
	// side flips the ordering despite p2's higher dense score.
	assert.Equal(t, "p1", candidates[0].Product.ID)
	assert.InDelta(t, 0.7*0.80+0.3*1.0, candidates[0].CombinedScore, 1e-9)
	assert.InDelta(t, 0.7*0.82, candidates[1].CombinedScore, 1e-9)
}

func TestRetrieve_StoreFailureIsProviderUnavailable(t *testing.T) {
	store := &mockSearcher{
		searchFunc: func(context.Context, []float32, models.SearchFilters, int, float64) ([]models.Candidate, error) {
			return nil, errors.New("connection refused")
		},
	}
	retriever := NewRetriever(embeddings.NewMockClientWithDimensions(8), store, defaultOptions())

	_, err := retriever.Retrieve(context.Background(), "laptop", nil, models.SearchFilters{})

	require.Error(t, err)
	var provErr *recerrors.ProviderUnavailableError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "vector-store", provErr.Provider)
}

func TestRetrieve_EmptyResultIsNotAnError(t *testing.T) {
	store := &mockSearcher{
		searchFunc: func(context.Context, []float32, models.SearchFilters, int, float64) ([]models.Candidate, error) {
			return nil, nil
		},
	}
	retriever := NewRetriever(embeddings.NewMockClientWithDimensions(8), store, defaultOptions())

	candidates, err := retriever.Retrieve(context.Background(), "laptop", nil, models.SearchFilters{})

	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestKeywordScore(t *testing.T) {
	product := &models.Product{
		Title:       "UltraBook 14 Air",
		Category:    "laptop",
		Brand:       "Lenovo",
		Description: "Lightweight laptop for travel and coding",
	}

	assert.InDelta(t, 1.0, keywordScore([]string{"laptop", "lightweight"}, product), 1e-9)
	assert.InDelta(t, 0.5, keywordScore([]string{"laptop", "gaming"}, product), 1e-9)
	assert.InDelta(t, 0.0, keywordScore([]string{"camera"}, product), 1e-9)
	assert.InDelta(t, 0.0, keywordScore(nil, product), 1e-9)
}
