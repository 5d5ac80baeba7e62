package models

import "time"

// Product is a catalog entity as stored in the vector collection payload.
// Immutable once indexed except for price/availability/rating refresh via re-upsert.
type Product struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Category     string            `json:"category"` // normalized lowercase tag
	Brand        string            `json:"brand,omitempty"`
	Price        float64           `json:"price"`
	Currency     string            `json:"currency"`
	Rating       float64           `json:"rating"`        // 0..5
	ReviewsCount int               `json:"reviews_count"` // non-negative
	InStock      bool              `json:"in_stock"`
	EcoCertified bool              `json:"eco_certified"`
	Description  string            `json:"description,omitempty"`
	Specs        map[string]string `json:"specs,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Candidate is a product returned by retrieval with its search scores.
// DenseScore is the raw cosine similarity from the vector store; SparseScore
// is keyword overlap; CombinedScore is the hybrid ranking score. ValueScore
// is attached later by the financial filter.
type Candidate struct {
	Product       Product `json:"product"`
	DenseScore    float64 `json:"dense_score"`
	SparseScore   float64 `json:"sparse_score"`
	CombinedScore float64 `json:"combined_score"`
	ValueScore    float64 `json:"value_score"`
}

// UpsertProductRequest is one product in a batch upsert call.
type UpsertProductRequest struct {
	ID           string            `json:"id" validate:"required,min=1,max=255"`
	Title        string            `json:"title" validate:"required,min=1,max=512"`
	Category     string            `json:"category" validate:"required,min=1,max=128"`
	Brand        string            `json:"brand,omitempty" validate:"omitempty,max=128"`
	Price        float64           `json:"price" validate:"required,gt=0"`
	Currency     string            `json:"currency,omitempty" validate:"omitempty,len=3"`
	Rating       float64           `json:"rating" validate:"gte=0,lte=5"`
	ReviewsCount int               `json:"reviews_count" validate:"gte=0"`
	InStock      bool              `json:"in_stock"`
	EcoCertified bool              `json:"eco_certified"`
	Description  string            `json:"description,omitempty"`
	Specs        map[string]string `json:"specs,omitempty"`
}

// CollectionInfo reports the state of the product collection.
type CollectionInfo struct {
	Count  int64  `json:"count"`
	Status string `json:"status"`
}
