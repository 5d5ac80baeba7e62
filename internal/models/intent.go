package models

// Priority expresses what the shopper cares about most in this query.
type Priority string

// Priority values.
const (
	PriorityPrice    Priority = "price"
	PriorityValue    Priority = "value"
	PriorityQuality  Priority = "quality"
	PriorityEco      Priority = "eco"
	PriorityBalanced Priority = "balanced"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityPrice, PriorityValue, PriorityQuality, PriorityEco, PriorityBalanced:
		return true
	}

	return false
}

// ParsedIntent is the structured intent extracted from one query. Created
// once per request by the intent parser (LLM or rule-based fallback) and
// immutable afterwards.
type ParsedIntent struct {
	Category         string   `json:"category,omitempty"`
	MaxPrice         float64  `json:"max_price,omitempty"` // 0 means unset
	MinPrice         float64  `json:"min_price,omitempty"` // 0 means unset
	BrandPreferences []string `json:"brand_preferences,omitempty"`
	ExcludedBrands   []string `json:"excluded_brands,omitempty"`
	EcoFriendly      bool     `json:"eco_friendly"`
	UseCase          string   `json:"use_case,omitempty"`
	Priority         Priority `json:"priority"`
	Keywords         []string `json:"keywords,omitempty"`
}

// HasMaxPrice reports whether a budget ceiling was extracted.
func (i ParsedIntent) HasMaxPrice() bool { return i.MaxPrice > 0 }

// SearchFilters constrain retrieval at the payload level. Categories use OR
// semantics (synonym expansion produces several acceptable categories); all
// other fields combine with AND. Ephemeral, request-scoped.
type SearchFilters struct {
	MaxPrice       float64  `json:"max_price,omitempty"`
	MinPrice       float64  `json:"min_price,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	ExcludedBrands []string `json:"excluded_brands,omitempty"`
	InStockOnly    bool     `json:"in_stock_only"`
}
