package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cartwise/recommender/internal/embeddings"
	"github.com/cartwise/recommender/internal/models"
)

// CatalogService handles product indexing: it builds the embedding text for
// each product and writes product plus vector to the repository.
type CatalogService struct {
	products ProductsRepository
	embedder embeddings.Client
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(products ProductsRepository, embedder embeddings.Client) *CatalogService {
	return &CatalogService{products: products, embedder: embedder}
}

// UpsertProducts indexes a batch of products. Embeddings are generated in
// one batch call; failures abort the whole batch so the index never holds a
// product without its vector.
func (s *CatalogService) UpsertProducts(ctx context.Context, reqs []models.UpsertProductRequest) (int, error) {
	if len(reqs) == 0 {
		return 0, nil
	}

	texts := make([]string, len(reqs))
	for i := range reqs {
		texts[i] = productEmbeddingText(&reqs[i])
	}

	vectors, err := s.embedder.GetEmbeddings(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding batch: %w", err)
	}

	now := time.Now().UTC()
	for i := range reqs {
		product := productFromRequest(&reqs[i], now)
		if err := s.products.Upsert(ctx, product, vectors[i]); err != nil {
			return i, fmt.Errorf("upsert product %s: %w", product.ID, err)
		}
	}

	slog.Info("Products indexed", "count", len(reqs))

	return len(reqs), nil
}

// DeleteProduct removes a product from the index.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// CollectionInfo reports the state of the product collection.
func (s *CatalogService) CollectionInfo(ctx context.Context) (*models.CollectionInfo, error) {
	return s.products.CollectionInfo(ctx)
}

// productEmbeddingText builds the text that represents a product in vector
// space. Specs are appended in key order so the same product always embeds
// identically.
func productEmbeddingText(req *models.UpsertProductRequest) string {
	parts := []string{req.Title, "category: " + strings.ToLower(req.Category)}
	if req.Brand != "" {
		parts = append(parts, "brand: "+req.Brand)
	}
	if req.Description != "" {
		parts = append(parts, req.Description)
	}
	if req.EcoCertified {
		parts = append(parts, "eco-friendly certified")
	}

	if len(req.Specs) > 0 {
		keys := make([]string, 0, len(req.Specs))
		for k := range req.Specs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+": "+req.Specs[k])
		}
	}

	return strings.Join(parts, ". ")
}

func productFromRequest(req *models.UpsertProductRequest, now time.Time) *models.Product {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	return &models.Product{
		ID:           req.ID,
		Title:        req.Title,
		Category:     strings.ToLower(req.Category),
		Brand:        req.Brand,
		Price:        req.Price,
		Currency:     currency,
		Rating:       req.Rating,
		ReviewsCount: req.ReviewsCount,
		InStock:      req.InStock,
		EcoCertified: req.EcoCertified,
		Description:  req.Description,
		Specs:        req.Specs,
		UpdatedAt:    now,
	}
}
