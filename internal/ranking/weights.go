// Package ranking turns a filtered candidate set into the final ordered
// recommendations. The base score is a weighted blend of four factors; small
// clamped boosts layer personalization on top without ever dominating it.
package ranking

import (
	"fmt"
	"math"

	"github.com/cartwise/recommender/internal/models"
	"github.com/cartwise/recommender/internal/recerrors"
)

// Weights are the base factor weights. They must sum to 1.0.
type Weights struct {
	Semantic   float64
	Value      float64
	Preference float64
	Review     float64
}

// DefaultWeights is the balanced weight vector.
var DefaultWeights = Weights{Semantic: 0.40, Value: 0.30, Preference: 0.20, Review: 0.10}

// Validate returns a ConfigurationError unless the weights sum to 1.0.
func (w Weights) Validate() error {
	sum := w.Semantic + w.Value + w.Preference + w.Review
	if math.Abs(sum-1.0) > 1e-3 {
		return recerrors.NewConfigurationError("ranking weights",
			fmt.Sprintf("ranking weights must sum to 1.0, got %.4f", sum))
	}

	return nil
}

// forPriority shifts emphasis toward what the user said matters. Every
// returned vector still sums to 1.0.
func (w Weights) forPriority(priority models.Priority) Weights {
	switch priority {
	case models.PriorityPrice:
		return Weights{Semantic: 0.35, Value: 0.40, Preference: 0.15, Review: 0.10}
	case models.PriorityValue:
		return Weights{Semantic: 0.30, Value: 0.45, Preference: 0.15, Review: 0.10}
	case models.PriorityQuality:
		return Weights{Semantic: 0.40, Value: 0.20, Preference: 0.20, Review: 0.20}
	case models.PriorityEco:
		return Weights{Semantic: 0.35, Value: 0.20, Preference: 0.35, Review: 0.10}
	default:
		return w
	}
}
