package ranking

import (
	"math"
	"strings"

	"github.com/cartwise/recommender/internal/behavior"
	"github.com/cartwise/recommender/internal/models"
)

// Boost caps. Each boost is clamped individually before summation so no
// single signal can dominate the base score.
const (
	behaviorBoostCap      = 0.05
	sessionBoostCap       = 0.03
	collaborativeBoostCap = 0.02
	explorationBoostValue = 0.02
)

// behaviorBoost derives a small adjustment from the user's learned taste in
// this product's category, scaled by profile confidence. No profile, or a
// profile with no interactions, contributes exactly zero.
func behaviorBoost(product *models.Product, profile *models.UserBehaviorProfile, confMidpoint, confScale float64) float64 {
	if profile == nil || profile.Interactions == 0 {
		return 0
	}

	confidence := behavior.Confidence(profile.Interactions, confMidpoint, confScale)

	raw := 0.0

	if cat, ok := profile.CategoryProfiles[strings.ToLower(product.Category)]; ok {
		// Brand affinity relative to the strongest signal in the category.
		if sig, ok := cat.BrandAffinity[strings.ToLower(product.Brand)]; ok {
			if peak := peakBrandAffinity(cat); peak > 0 {
				raw += 0.5 * (sig.Weight / peak)
			}
		}

		// Price band: near the user's typical spend is a fit, far above is not.
		if cat.AvgPrice > 0 && product.Price > 0 {
			diff := math.Abs(product.Price-cat.AvgPrice) / cat.AvgPrice
			switch {
			case diff < 0.3:
				raw += 0.25
			case diff > 1.0:
				raw -= 0.15
			}
		}
	}

	// Overall pull toward categories the user keeps coming back to.
	if affinity, ok := profile.CategoryAffinity[strings.ToLower(product.Category)]; ok {
		if peak := peakCategoryAffinity(profile); peak > 0 {
			raw += 0.25 * (affinity / peak)
		}
	}

	return clampBoost(raw*confidence*behaviorBoostCap, behaviorBoostCap)
}

func peakBrandAffinity(cat *models.CategoryProfile) float64 {
	peak := 0.0
	for _, sig := range cat.BrandAffinity {
		if abs := math.Abs(sig.Weight); abs > peak {
			peak = abs
		}
	}
	return peak
}

func peakCategoryAffinity(profile *models.UserBehaviorProfile) float64 {
	peak := 0.0
	for _, affinity := range profile.CategoryAffinity {
		if abs := math.Abs(affinity); abs > peak {
			peak = abs
		}
	}
	return peak
}

// sessionBoost derives a small adjustment from short-term context: query
// overlap, products already viewed this session, and device fit. Absent
// context contributes exactly zero.
func sessionBoost(product *models.Product, session *models.SessionContext) float64 {
	if session == nil {
		return 0
	}

	raw := 0.0

	if len(session.RecentQueries) > 0 {
		text := strings.ToLower(product.Title + " " + product.Category + " " + product.Brand)
		matched := 0
		for _, q := range session.RecentQueries {
			for _, word := range strings.Fields(strings.ToLower(q)) {
				if len(word) > 2 && strings.Contains(text, word) {
					matched++
					break
				}
			}
		}
		raw += 0.5 * float64(matched) / float64(len(session.RecentQueries))
	}

	for _, viewed := range session.ViewedProducts {
		if viewed == product.ID {
			raw += 0.3
			break
		}
	}

	if deviceFits(session.DeviceType, product.Category) {
		raw += 0.2
	}

	return clampBoost(raw*sessionBoostCap, sessionBoostCap)
}

// deviceFits reports whether the session device suggests interest in the
// product's category (phone shoppers browse phone gear, desktop users PCs).
func deviceFits(device models.DeviceType, category string) bool {
	category = strings.ToLower(category)
	switch device {
	case models.DeviceMobile:
		return category == "smartphone" || category == "headphones" || category == "smartwatch"
	case models.DeviceDesktop:
		return category == "pc" || category == "laptop"
	default:
		return false
	}
}

// collaborativeBoost blends co-interaction similarity with the trending
// signal. Both inputs are in [0,1]; absent signals contribute zero.
func collaborativeBoost(coInteraction, trending float64) float64 {
	raw := 0.75*coInteraction + 0.25*trending
	return clampBoost(raw*collaborativeBoostCap, collaborativeBoostCap)
}

func clampBoost(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
