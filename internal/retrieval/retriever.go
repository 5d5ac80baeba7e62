// Package retrieval turns an understood query into a scored candidate set by
// combining dense vector search with keyword relevance.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cartwise/recommender/internal/embeddings"
	"github.com/cartwise/recommender/internal/models"
	"github.com/cartwise/recommender/internal/recerrors"
)

// VectorSearcher is the slice of the products repository the retriever needs.
type VectorSearcher interface {
	SearchByEmbedding(ctx context.Context, queryEmbedding []float32, filters models.SearchFilters, limit int, minScore float64) ([]models.Candidate, error)
}

// Options tune the retrieval pass.
type Options struct {
	TopK        int
	MinScore    float64 // minimum cosine similarity for a candidate
	DenseWeight float64 // sparse weight is 1 - DenseWeight
}

// Retriever embeds the enriched query text and searches the product store.
type Retriever struct {
	embedder embeddings.Client
	store    VectorSearcher
	opts     Options
}

// NewRetriever creates a retriever over the given embedder and vector store.
func NewRetriever(embedder embeddings.Client, store VectorSearcher, opts Options) *Retriever {
	return &Retriever{embedder: embedder, store: store, opts: opts}
}

// Retrieve returns candidates ordered by combined dense and sparse score.
// Store failures surface as ProviderUnavailableError rather than an empty
// list, so callers never mistake an outage for "no matching products".
func (r *Retriever) Retrieve(
	ctx context.Context, embeddingText string, keywords []string, filters models.SearchFilters,
) ([]models.Candidate, error) {
	queryEmbedding, err := r.embedder.GetEmbedding(ctx, embeddingText)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	candidates, err := r.store.SearchByEmbedding(ctx, queryEmbedding, filters, r.opts.TopK, r.opts.MinScore)
	if err != nil {
		return nil, recerrors.NewProviderUnavailableError("vector-store",
			fmt.Sprintf("product search failed: %v", err))
	}

	sparseWeight := 1 - r.opts.DenseWeight
	for i := range candidates {
		candidates[i].SparseScore = keywordScore(keywords, &candidates[i].Product)
		candidates[i].CombinedScore = r.opts.DenseWeight*candidates[i].DenseScore +
			sparseWeight*candidates[i].SparseScore
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CombinedScore > candidates[j].CombinedScore
	})

	return candidates, nil
}

// keywordScore measures keyword relevance as the fraction of query keywords
// found in the product's text fields. It stands in for a sparse vector: cheap,
// deterministic, and good enough to break ties between semantically close
// products.
func keywordScore(keywords []string, product *models.Product) float64 {
	if len(keywords) == 0 {
		return 0
	}

	text := strings.ToLower(product.Title + " " + product.Category + " " +
		product.Brand + " " + product.Description)

	matched := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			matched++
		}
	}

	return float64(matched) / float64(len(keywords))
}
