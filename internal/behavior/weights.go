package behavior

import "github.com/cartwise/recommender/internal/models"

// actionWeights is the fixed contribution of each feedback action to learned
// preferences. Purchases dominate; skips and rejects push the other way.
var actionWeights = map[models.FeedbackAction]float64{
	models.ActionPurchase:  1.0,
	models.ActionAddToCart: 0.6,
	models.ActionClick:     0.3,
	models.ActionView:      0.1,
	models.ActionSkip:      -0.1,
	models.ActionReject:    -0.5,
}

// ActionWeight returns the base weight for a feedback action. Unknown actions
// carry no weight.
func ActionWeight(action models.FeedbackAction) float64 {
	return actionWeights[action]
}
