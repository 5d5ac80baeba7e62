package ranking

import (
	"sort"
	"strings"

	"github.com/cartwise/recommender/internal/models"
)

// alternativeBudgetStretch bounds the over-budget suggestion list: items more
// than 25% over budget are never shown, even as alternatives.
const alternativeBudgetStretch = 1.25

// FilterOptions tune the financial filter.
type FilterOptions struct {
	// MaxCandidates caps the surviving set. Zero means no cap.
	MaxCandidates int
	// IncludeOutOfStock keeps unavailable products when the caller asked.
	IncludeOutOfStock bool
	// AlternativeCount caps the over-budget suggestions. Zero disables them.
	AlternativeCount int
}

// FilterResult is the outcome of a financial filtering pass.
type FilterResult struct {
	// Kept preserves the incoming candidate order.
	Kept []models.Candidate
	// Alternatives are over-budget items surfaced as metadata only. They
	// never enter the main recommendation list.
	Alternatives []models.Candidate
	// Removed counts drops by reason, for logging and metrics.
	Removed map[string]int
}

// Filter applies the hard financial gates and precomputes value-for-money.
// The budget gate has no soft buffer: an item one unit over max_price is out.
// Pure function of its inputs; order of surviving candidates is preserved.
func Filter(candidates []models.Candidate, parsed *models.ParsedIntent, opts FilterOptions) FilterResult {
	result := FilterResult{
		Removed: map[string]int{},
	}

	var overBudget []models.Candidate

	for _, c := range candidates {
		switch {
		case parsed.HasMaxPrice() && c.Product.Price > parsed.MaxPrice:
			result.Removed["over_budget"]++
			if c.Product.Price <= parsed.MaxPrice*alternativeBudgetStretch {
				overBudget = append(overBudget, c)
			}
		case parsed.MinPrice > 0 && c.Product.Price < parsed.MinPrice:
			result.Removed["under_min_price"]++
		case brandExcluded(c.Product.Brand, parsed.ExcludedBrands):
			result.Removed["excluded_brand"]++
		case !c.Product.InStock && !opts.IncludeOutOfStock:
			result.Removed["out_of_stock"]++
		default:
			result.Kept = append(result.Kept, c)
		}
	}

	attachValueScores(result.Kept, parsed)

	if opts.MaxCandidates > 0 && len(result.Kept) > opts.MaxCandidates {
		result.Removed["over_candidate_cap"] += len(result.Kept) - opts.MaxCandidates
		result.Kept = result.Kept[:opts.MaxCandidates]
	}

	if opts.AlternativeCount > 0 && len(overBudget) > 0 {
		attachValueScores(overBudget, parsed)
		sort.SliceStable(overBudget, func(i, j int) bool {
			return overBudget[i].ValueScore > overBudget[j].ValueScore
		})
		if len(overBudget) > opts.AlternativeCount {
			overBudget = overBudget[:opts.AlternativeCount]
		}
		result.Alternatives = overBudget
	}

	return result
}

// attachValueScores computes the normalized value-for-money score for each
// candidate: the rating-weighted inverse price position within this set.
// Needs the set's price distribution, which is why it lives in the filter.
func attachValueScores(candidates []models.Candidate, parsed *models.ParsedIntent) {
	if len(candidates) == 0 {
		return
	}

	minPrice, maxPrice := candidates[0].Product.Price, candidates[0].Product.Price
	for _, c := range candidates[1:] {
		if c.Product.Price < minPrice {
			minPrice = c.Product.Price
		}
		if c.Product.Price > maxPrice {
			maxPrice = c.Product.Price
		}
	}

	for i := range candidates {
		product := &candidates[i].Product

		// 1.0 for the cheapest item in the set, 0.0 for the priciest.
		inversePos := 0.5
		if maxPrice > minPrice {
			inversePos = (maxPrice - product.Price) / (maxPrice - minPrice)
		}

		score := inversePos * (0.4 + 0.6*product.Rating/5)

		if parsed.EcoFriendly && product.EcoCertified {
			score += 0.1
		}
		if brandPreferred(product.Brand, parsed.BrandPreferences) {
			score += 0.1
		}

		candidates[i].ValueScore = clamp01(score)
	}
}

func brandExcluded(brand string, excluded []string) bool {
	if brand == "" {
		return false
	}
	lower := strings.ToLower(brand)
	for _, b := range excluded {
		if strings.ToLower(b) == lower {
			return true
		}
	}
	return false
}

func brandPreferred(brand string, preferred []string) bool {
	if brand == "" {
		return false
	}
	lower := strings.ToLower(brand)
	for _, b := range preferred {
		if strings.ToLower(b) == lower {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
