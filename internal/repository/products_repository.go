// Package repository handles data access for the product catalog.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/cartwise/recommender/internal/models"
	"github.com/cartwise/recommender/internal/recerrors"
)

// ProductsRepository handles data access for the products table.
type ProductsRepository struct {
	db *pgxpool.Pool
}

// NewProductsRepository creates a new products repository.
func NewProductsRepository(db *pgxpool.Pool) *ProductsRepository {
	return &ProductsRepository{db: db}
}

const productColumns = `id, title, category, brand, price, currency, rating, reviews_count,
	in_stock, eco_certified, description, specs, updated_at`

// Upsert inserts or updates a product along with its embedding. On conflict
// the mutable fields (price, availability, rating, embedding) are refreshed.
func (r *ProductsRepository) Upsert(ctx context.Context, product *models.Product, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	now := time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, title, category, brand, price, currency, rating, reviews_count,
			in_stock, eco_certified, description, specs, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id)
		DO UPDATE SET title = EXCLUDED.title, category = EXCLUDED.category, brand = EXCLUDED.brand,
			price = EXCLUDED.price, currency = EXCLUDED.currency, rating = EXCLUDED.rating,
			reviews_count = EXCLUDED.reviews_count, in_stock = EXCLUDED.in_stock,
			eco_certified = EXCLUDED.eco_certified, description = EXCLUDED.description,
			specs = EXCLUDED.specs, embedding = EXCLUDED.embedding, updated_at = $14`,
		product.ID, product.Title, strings.ToLower(product.Category), product.Brand,
		product.Price, product.Currency, product.Rating, product.ReviewsCount,
		product.InStock, product.EcoCertified, product.Description, product.Specs, vec, now,
	)
	if err != nil {
		return fmt.Errorf("products upsert: %w", err)
	}

	return nil
}

// GetByID returns a single product. Returns NotFoundError when no row exists.
func (r *ProductsRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, recerrors.NewNotFoundError("product", fmt.Sprintf("product %s not found", id))
		}

		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// GetByIDs returns the products for the given IDs, skipping any that no
// longer exist. Order of the result is not guaranteed.
func (r *ProductsRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	defer rows.Close()

	var products []models.Product

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}

	return products, nil
}

// Delete removes a product. Returns NotFoundError when no row was deleted.
func (r *ProductsRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("products delete: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return recerrors.NewNotFoundError("product", fmt.Sprintf("product %s not found", id))
	}

	return nil
}

// EmbeddingDimension reports the declared dimension of the products embedding
// column. pgvector stores the dimension as the column's type modifier; -1
// means the column was created without one.
func (r *ProductsRepository) EmbeddingDimension(ctx context.Context) (int, error) {
	var typmod int

	err := r.db.QueryRow(ctx, `
		SELECT atttypmod FROM pg_attribute
		WHERE attrelid = 'products'::regclass AND attname = 'embedding' AND NOT attisdropped`,
	).Scan(&typmod)
	if err != nil {
		return 0, fmt.Errorf("embedding column dimension: %w", err)
	}

	return typmod, nil
}

// ValidateEmbeddingDimension returns a ConfigurationError unless the
// configured embedding dimension matches the vector column. A mismatch fails
// every upsert and search, so the process must refuse to start instead.
func ValidateEmbeddingDimension(configured, column int) error {
	if column <= 0 {
		return recerrors.NewConfigurationError("embedding dimensions",
			fmt.Sprintf("products embedding column has no declared dimension (typmod %d)", column))
	}

	if configured != column {
		return recerrors.NewConfigurationError("embedding dimensions",
			fmt.Sprintf("EMBEDDING_DIMENSIONS is %d but the products embedding column is vector(%d)",
				configured, column))
	}

	return nil
}

// CollectionInfo reports the size and health of the products collection.
func (r *ProductsRepository) CollectionInfo(ctx context.Context) (*models.CollectionInfo, error) {
	var count int64

	err := r.db.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("collection info: %w", err)
	}

	return &models.CollectionInfo{Count: count, Status: "green"}, nil
}

// SearchByEmbedding returns the products nearest to queryEmbedding by cosine
// similarity, constrained by the payload filters. Only rows with score >=
// minScore are returned. Uses cosine distance (<=>); score = 1 - distance.
// Category filters use OR semantics over the expanded synonym set.
func (r *ProductsRepository) SearchByEmbedding(
	ctx context.Context, queryEmbedding []float32, filters models.SearchFilters, limit int, minScore float64,
) ([]models.Candidate, error) {
	queryVec := pgvector.NewVector(queryEmbedding)

	args := []any{queryVec, minScore}
	conditions := []string{`(1 - (embedding <=> $1)) >= $2`}

	if len(filters.Categories) > 0 {
		args = append(args, filters.Categories)
		conditions = append(conditions, `category = ANY($`+strconv.Itoa(len(args))+`)`)
	}
	if filters.MaxPrice > 0 {
		args = append(args, filters.MaxPrice)
		conditions = append(conditions, `price <= $`+strconv.Itoa(len(args)))
	}
	if filters.MinPrice > 0 {
		args = append(args, filters.MinPrice)
		conditions = append(conditions, `price >= $`+strconv.Itoa(len(args)))
	}
	if len(filters.ExcludedBrands) > 0 {
		args = append(args, filters.ExcludedBrands)
		conditions = append(conditions, `NOT (lower(brand) = ANY($`+strconv.Itoa(len(args))+`))`)
	}
	if filters.InStockOnly {
		conditions = append(conditions, `in_stock`)
	}

	args = append(args, limit)
	query := `
		SELECT ` + productColumns + `, (1 - (embedding <=> $1)) AS score
		FROM products
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY embedding <=> $1
		LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search products by embedding: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate

	for rows.Next() {
		var (
			product models.Product
			score   float64
		)

		if err := rows.Scan(
			&product.ID, &product.Title, &product.Category, &product.Brand,
			&product.Price, &product.Currency, &product.Rating, &product.ReviewsCount,
			&product.InStock, &product.EcoCertified, &product.Description, &product.Specs,
			&product.UpdatedAt, &score,
		); err != nil {
			return nil, fmt.Errorf("scan product with score: %w", err)
		}

		candidates = append(candidates, models.Candidate{Product: product, DenseScore: score})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return candidates, nil
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var product models.Product

	err := row.Scan(
		&product.ID, &product.Title, &product.Category, &product.Brand,
		&product.Price, &product.Currency, &product.Rating, &product.ReviewsCount,
		&product.InStock, &product.EcoCertified, &product.Description, &product.Specs,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &product, nil
}
