package models

import "time"

// DecayedSignal is a single accumulated preference signal. Weight holds the
// undecayed contribution sum; LastEvent is the most recent event timestamp so
// readers can decay against "now" rather than insertion order.
type DecayedSignal struct {
	Weight    float64   `json:"weight"`
	Events    int       `json:"events"`
	LastEvent time.Time `json:"last_event"`
}

// CategoryProfile holds a user's learned preferences within one category.
// Brand preferences in one category never leak into another (laptop brand
// taste says nothing about headphones).
type CategoryProfile struct {
	Category      string                   `json:"category"`
	BrandAffinity map[string]DecayedSignal `json:"brand_affinity"`
	TotalSpent    float64                  `json:"total_spent"`
	Purchases     int                      `json:"purchases"`
	AvgPrice      float64                  `json:"avg_price"`
	EcoAffinity   float64                  `json:"eco_affinity"` // -1..1
	Interactions  int                      `json:"interactions"`
}

// UserBehaviorProfile aggregates a user's decayed preference signals.
// Used only for soft re-ranking adjustments, never for retrieval.
type UserBehaviorProfile struct {
	UserID           string                      `json:"user_id"`
	CategoryProfiles map[string]*CategoryProfile `json:"category_profiles"`
	CategoryAffinity map[string]float64          `json:"category_affinity"`
	PriceSensitivity float64                     `json:"price_sensitivity"` // 0 budget .. 1 premium
	EcoInterest      float64                     `json:"eco_interest"`      // -1..1
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

// CTR is the click-through rate (clicks per view).
func (s ProductStats) CTR() float64 {
	if s.Views == 0 {
		return 0
	}

	return float64(s.Clicks) / float64(s.Views)
}

// ConversionRate is purchases per click.
func (s ProductStats) ConversionRate() float64 {
	if s.Clicks == 0 {
		return 0
	}

	return float64(s.Purchases) / float64(s.Clicks)
}

// SystemAnalytics combines behavior analytics with catalog state for the
// analytics endpoint.
type SystemAnalytics struct {
	Behavior   BehaviorAnalytics `json:"behavior"`
	Collection *CollectionInfo   `json:"collection,omitempty"`
}

// HealthStatus reports per-component health.
type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// BehaviorAnalytics is the read-only health summary of the behavior store.
type BehaviorAnalytics struct {
	TotalUsers             int                    `json:"total_users"`
	TotalFeedbackEvents    int                    `json:"total_feedback_events"`
	TrackedProducts        int                    `json:"tracked_products"`
	AvgInteractionsPerUser float64                `json:"avg_interactions_per_user"`
	ActionBreakdown        map[FeedbackAction]int `json:"action_breakdown"`
	TopProducts            []ProductStats         `json:"top_products"`
}
