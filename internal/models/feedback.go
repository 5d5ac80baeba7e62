package models

import "time"

// FeedbackAction is the kind of interaction a user had with a product.
type FeedbackAction string

// Feedback actions, strongest positive signal first.
const (
	ActionPurchase  FeedbackAction = "purchase"
	ActionAddToCart FeedbackAction = "add_to_cart"
	ActionClick     FeedbackAction = "click"
	ActionView      FeedbackAction = "view"
	ActionSkip      FeedbackAction = "skip"
	ActionReject    FeedbackAction = "reject"
)

// IsValid reports whether a is a known feedback action.
func (a FeedbackAction) IsValid() bool {
	switch a {
	case ActionPurchase, ActionAddToCart, ActionClick, ActionView, ActionSkip, ActionReject:
		return true
	}

	return false
}

// FeedbackContext captures the product attributes at the time of the event.
type FeedbackContext struct {
	Category     string  `json:"category,omitempty"`
	Brand        string  `json:"brand,omitempty"`
	Price        float64 `json:"price,omitempty"`
	EcoCertified bool    `json:"eco_certified,omitempty"`
	UserBudget   float64 `json:"user_budget,omitempty"`
}

// FeedbackEvent is an append-only interaction record. Duplicates are
// accepted as new data points; decay is computed against the event timestamp,
// not insertion order.
type FeedbackEvent struct {
	UserID    string          `json:"user_id"`
	ProductID string          `json:"product_id"`
	Action    FeedbackAction  `json:"action"`
	Context   FeedbackContext `json:"context"`
	Timestamp time.Time       `json:"timestamp"`
}

// RecordFeedbackRequest is the body for POST /v1/feedback.
type RecordFeedbackRequest struct {
	UserID    string          `json:"user_id" validate:"required,min=1,max=255"`
	ProductID string          `json:"product_id" validate:"required,min=1,max=255"`
	Action    string          `json:"action" validate:"required,feedback_action"`
	Context   FeedbackContext `json:"context"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
}
