package cartwise

import "time"

// Product is a catalog entry as returned by the API.
type Product struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Category     string            `json:"category"`
	Brand        string            `json:"brand,omitempty"`
	Price        float64           `json:"price"`
	Currency     string            `json:"currency"`
	Rating       float64           `json:"rating"`
	ReviewsCount int               `json:"reviews_count"`
	InStock      bool              `json:"in_stock"`
	EcoCertified bool              `json:"eco_certified"`
	Description  string            `json:"description,omitempty"`
	Specs        map[string]string `json:"specs,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// UpsertProduct is one product in a batch upsert call.
type UpsertProduct struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Category     string            `json:"category"`
	Brand        string            `json:"brand,omitempty"`
	Price        float64           `json:"price"`
	Currency     string            `json:"currency,omitempty"`
	Rating       float64           `json:"rating"`
	ReviewsCount int               `json:"reviews_count"`
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

// ParsedIntent is the structured understanding of a query, echoed back in
// recommendation responses.
type ParsedIntent struct {
	Category         string   `json:"category,omitempty"`
	MaxPrice         float64  `json:"max_price,omitempty"`
	MinPrice         float64  `json:"min_price,omitempty"`
	BrandPreferences []string `json:"brand_preferences,omitempty"`
	ExcludedBrands   []string `json:"excluded_brands,omitempty"`
	EcoFriendly      bool     `json:"eco_friendly"`
	UseCase          string   `json:"use_case,omitempty"`
	Priority         string   `json:"priority"`
	Keywords         []string `json:"keywords,omitempty"`
}

// ScoreBreakdown records the factors behind a recommendation's final score.
type ScoreBreakdown struct {
	Semantic           float64 `json:"semantic"`
	Value              float64 `json:"value"`
	Preference         float64 `json:"preference"`
	Review             float64 `json:"review"`
	BehaviorBoost      float64 `json:"behavior_boost"`
	SessionBoost       float64 `json:"session_boost"`
	CollaborativeBoost float64 `json:"collaborative_boost"`
	ExplorationBoost   float64 `json:"exploration_boost"`
	Final              float64 `json:"final"`
}

// Recommendation is one ranked result.
type Recommendation struct {
	Product       Product        `json:"product"`
	Score         float64        `json:"score"`
	Explanation   string         `json:"explanation"`
	RankingReason string         `json:"ranking_reason"`
	Evidence      []string       `json:"evidence"`
	Breakdown     ScoreBreakdown `json:"breakdown"`
}

// Candidate is an over-budget alternative attached to a response.
type Candidate struct {
	Product       Product `json:"product"`
	DenseScore    float64 `json:"dense_score"`
	SparseScore   float64 `json:"sparse_score"`
	CombinedScore float64 `json:"combined_score"`
	ValueScore    float64 `json:"value_score"`
}

// BudgetInsight summarizes how the top recommendation sits against the budget.
type BudgetInsight struct {
	Budget           float64 `json:"budget,omitempty"`
	RecommendedPrice float64 `json:"recommended_price"`
	Savings          float64 `json:"savings"`
	Utilization      float64 `json:"utilization"`
	ValueRating      string  `json:"value_rating"`
}

// RecommendationResponse is the response for both recommendation endpoints.
type RecommendationResponse struct {
	Recommendations    []Recommendation `json:"recommendations"`
	QueryUnderstanding *ParsedIntent    `json:"query_understanding,omitempty"`
	BudgetInsight      *BudgetInsight   `json:"budget_insight,omitempty"`
	Alternatives       []Candidate      `json:"alternatives,omitempty"`
	TotalCandidates    int              `json:"total_candidates"`
	ProcessingTimeMs   float64          `json:"processing_time_ms"`
}

// RecommendRequest is the body for POST /v1/recommendations.
type RecommendRequest struct {
	Query          string   `json:"query"`
	UserID         string   `json:"user_id,omitempty"`
	MaxBudget      float64  `json:"max_budget,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	SessionID      string   `json:"session_id,omitempty"`
	DeviceType     string   `json:"device_type,omitempty"`
	RecentQueries  []string `json:"recent_queries,omitempty"`
	ViewedProducts []string `json:"viewed_products,omitempty"`
}

// PersonalizedRequest is the body for POST /v1/recommendations/personalized.
type PersonalizedRequest struct {
	UserID         string   `json:"user_id"`
	RecentQueries  []string `json:"recent_queries,omitempty"`
	ViewedProducts []string `json:"viewed_products,omitempty"`
	CartItems      []string `json:"cart_items,omitempty"`
	Limit          int      `json:"limit,omitempty"`
}

// FeedbackContext captures product attributes at the time of an event.
type FeedbackContext struct {
	Category     string  `json:"category,omitempty"`
	Brand        string  `json:"brand,omitempty"`
	Price        float64 `json:"price,omitempty"`
	EcoCertified bool    `json:"eco_certified,omitempty"`
	UserBudget   float64 `json:"user_budget,omitempty"`
}

// FeedbackRequest is the body for POST /v1/feedback. Action is one of
// purchase, add_to_cart, click, view, skip, reject.
type FeedbackRequest struct {
	UserID    string          `json:"user_id"`
	ProductID string          `json:"product_id"`
	Action    string          `json:"action"`
	Context   FeedbackContext `json:"context"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
}

// DecayedSignal is an accumulated preference signal in a behavior profile.
type DecayedSignal struct {
	Weight    float64   `json:"weight"`
	Events    int       `json:"events"`
	LastEvent time.Time `json:"last_event"`
}

// CategoryProfile holds a user's learned preferences within one category.
type CategoryProfile struct {
	Category      string                   `json:"category"`
	BrandAffinity map[string]DecayedSignal `json:"brand_affinity"`
	TotalSpent    float64                  `json:"total_spent"`
	Purchases     int                      `json:"purchases"`
	AvgPrice      float64                  `json:"avg_price"`
	EcoAffinity   float64                  `json:"eco_affinity"`
	Interactions  int                      `json:"interactions"`
}

// BehaviorProfile is a user's aggregated preference snapshot.
type BehaviorProfile struct {
	UserID           string                      `json:"user_id"`
	CategoryProfiles map[string]*CategoryProfile `json:"category_profiles"`
	CategoryAffinity map[string]float64          `json:"category_affinity"`
	PriceSensitivity float64                     `json:"price_sensitivity"`
	EcoInterest      float64                     `json:"eco_interest"`
	Interactions     int                         `json:"interactions"`
	LastUpdated      time.Time                   `json:"last_updated"`
}

// ProductStats aggregates per-product interaction counts.
type ProductStats struct {
	ProductID string `json:"product_id"`
	Views     int    `json:"views"`
	Clicks    int    `json:"clicks"`
	AddToCart int    `json:"add_to_cart"`
	Purchases int    `json:"purchases"`
	Skips     int    `json:"skips"`
	Rejects   int    `json:"rejects"`
}

// BehaviorAnalytics summarizes the behavior store.
type BehaviorAnalytics struct {
	TotalUsers             int            `json:"total_users"`
	TotalFeedbackEvents    int            `json:"total_feedback_events"`
	TrackedProducts        int            `json:"tracked_products"`
	AvgInteractionsPerUser float64        `json:"avg_interactions_per_user"`
	ActionBreakdown        map[string]int `json:"action_breakdown"`
	TopProducts            []ProductStats `json:"top_products"`
}

// Analytics combines behavior analytics with catalog state.
type Analytics struct {
	Behavior   BehaviorAnalytics `json:"behavior"`
	Collection *CollectionInfo   `json:"collection,omitempty"`
}

// HealthStatus reports per-component health.
type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
