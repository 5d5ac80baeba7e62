package ranking

import (
	"math"
	"strings"

	"github.com/cartwise/recommender/internal/models"
)

// semanticScore renormalizes a retrieval similarity into [0,1]. Cosine
// similarity lands in [-1,1]; hybrid fusion keeps it near [0,1] already.
func semanticScore(combined float64) float64 {
	if combined < 0 {
		return (combined + 1) / 2
	}
	return math.Min(combined, 1)
}

// preferenceScore grades alignment between the product and the parsed intent
// alone. User history never enters here; that belongs to the behavior boost.
func preferenceScore(product *models.Product, parsed *models.ParsedIntent) float64 {
	score := 0.3

	if len(parsed.BrandPreferences) > 0 {
		if brandPreferred(product.Brand, parsed.BrandPreferences) {
			score += 0.35
		} else {
			score -= 0.15
		}
	}

	if parsed.EcoFriendly && product.EcoCertified {
		score += 0.15
	}

	if parsed.Category != "" && strings.EqualFold(product.Category, parsed.Category) {
		score += 0.10
	}

	if parsed.UseCase != "" && strings.Contains(strings.ToLower(product.Description), strings.ToLower(parsed.UseCase)) {
		score += 0.10
	}

	return clamp01(score)
}

// reviewScore blends rating with log-scaled review count for social proof.
// Monotonic in both inputs apart from the low-rating penalty.
func reviewScore(product *models.Product) float64 {
	score := 0.3

	if product.Rating > 0 {
		score += product.Rating / 5 * 0.5
	}

	if product.ReviewsCount > 0 {
		score += math.Min(math.Log10(float64(product.ReviewsCount)+1)/10, 0.3)
	}

	// A bad rating backed by enough reviews is a real signal.
	if product.Rating > 0 && product.Rating < 3.0 && product.ReviewsCount > 10 {
		score -= 0.2
	}

	return clamp01(score)
}
