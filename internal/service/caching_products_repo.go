package service

import (
	"context"
	"fmt"

	"github.com/cartwise/recommender/internal/models"
	"github.com/cartwise/recommender/pkg/cache"
)

// cachingProductsRepo wraps a ProductsRepository with an LRU cache on GetByID.
// Feedback validation hits the same handful of products over and over; caching
// them keeps the feedback path off the database. Upsert and Delete invalidate
// the affected ID so the cache never serves a stale product.
type cachingProductsRepo struct {
	inner        ProductsRepository
	getByIDCache *cache.LoaderCache[string, *models.Product]
}

// NewCachingProductsRepository returns a ProductsRepository that caches GetByID.
func NewCachingProductsRepository(inner ProductsRepository, maxEntries int) (ProductsRepository, error) {
	getByIDCache, err := cache.NewLoaderCache[string, *models.Product](maxEntries, func(id string) string { return id })
	if err != nil {
		return nil, fmt.Errorf("create product cache: %w", err)
	}

	return &cachingProductsRepo{inner: inner, getByIDCache: getByIDCache}, nil
}

func (r *cachingProductsRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := r.getByIDCache.Get(ctx, id, r.inner.GetByID)
	if err != nil {
		return nil, err
	}

	return product, nil
}

// GetByIDs bypasses the cache: retrieval-sized batches are rare enough that
// a single round trip beats per-ID cache churn.
func (r *cachingProductsRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	return r.inner.GetByIDs(ctx, ids)
}

func (r *cachingProductsRepo) Upsert(ctx context.Context, product *models.Product, embedding []float32) error {
	if err := r.inner.Upsert(ctx, product, embedding); err != nil {
		return err
	}

	r.getByIDCache.Invalidate(product.ID)

	return nil
}

func (r *cachingProductsRepo) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}

	r.getByIDCache.Invalidate(id)

	return nil
}

func (r *cachingProductsRepo) CollectionInfo(ctx context.Context) (*models.CollectionInfo, error) {
	return r.inner.CollectionInfo(ctx)
}
