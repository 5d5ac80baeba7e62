package models

// ScoreBreakdown records every factor that produced a final score, so
// explanations and tests can reconstruct the ranking decision.
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

// Recommendation is one ranked result with its human-readable justification.
// Created fresh per response; never persisted.
type Recommendation struct {
	Product       Product        `json:"product"`
	Score         float64        `json:"score"` // in [0,1]
	Explanation   string         `json:"explanation"`
	RankingReason string         `json:"ranking_reason"`
	Evidence      []string       `json:"evidence"`
	Breakdown     ScoreBreakdown `json:"breakdown"`
}

// BudgetInsight summarizes how the top recommendation sits against the
// caller's budget.
type BudgetInsight struct {
	Budget           float64 `json:"budget,omitempty"`
	RecommendedPrice float64 `json:"recommended_price"`
	Savings          float64 `json:"savings"`
	Utilization      float64 `json:"utilization"` // recommended price / budget
	ValueRating      string  `json:"value_rating"`
}

// RecommendationResponse is the stable external response shape.
type RecommendationResponse struct {
	Recommendations    []Recommendation `json:"recommendations"`
	QueryUnderstanding *ParsedIntent    `json:"query_understanding,omitempty"`
	BudgetInsight      *BudgetInsight   `json:"budget_insight,omitempty"`
	Alternatives       []Candidate      `json:"alternatives,omitempty"` // over-budget suggestions, never in the main list
	TotalCandidates    int              `json:"total_candidates"`
	ProcessingTimeMs   float64          `json:"processing_time_ms"`
}

// RecommendRequest is the body for POST /v1/recommendations.
type RecommendRequest struct {
	Query          string   `json:"query" validate:"required,min=3,max=500"`
	UserID         string   `json:"user_id,omitempty" validate:"omitempty,max=255"`
	MaxBudget      float64  `json:"max_budget,omitempty" validate:"omitempty,gt=0"`
	Limit          int      `json:"limit,omitempty" validate:"omitempty,min=1,max=20"`
	SessionID      string   `json:"session_id,omitempty" validate:"omitempty,max=255"`
	DeviceType     string   `json:"device_type,omitempty" validate:"omitempty,oneof=mobile tablet desktop unknown"`
	RecentQueries  []string `json:"recent_queries,omitempty" validate:"omitempty,max=20"`
	ViewedProducts []string `json:"viewed_products,omitempty" validate:"omitempty,max=50"`
}

// PersonalizedRequest is the body for POST /v1/recommendations/personalized.
// There is no query: ranking works from history and behavior signals alone.
type PersonalizedRequest struct {
	UserID         string   `json:"user_id" validate:"required,min=1,max=255"`
	RecentQueries  []string `json:"recent_queries,omitempty" validate:"omitempty,max=20"`
	ViewedProducts []string `json:"viewed_products,omitempty" validate:"omitempty,max=50"`
	CartItems      []string `json:"cart_items,omitempty" validate:"omitempty,max=50"`
	Limit          int      `json:"limit,omitempty" validate:"omitempty,min=1,max=20"`
}
