package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cartwise/recommender/internal/intent"
	"github.com/cartwise/recommender/internal/models"
	"github.com/cartwise/recommender/internal/ranking"
)

// maxDerivedBrands bounds how many learned brand preferences feed the
// derived intent.
const maxDerivedBrands = 3

// purchaseHeadroom widens the derived budget above the user's average
// purchase price, so past spending guides rather than caps results.
const purchaseHeadroom = 1.5

// Personalized recommends without an explicit query, working from the user's
// behavior profile and short-term session signals alone. With neither, it
// falls back to trending products rather than erroring.
func (s *Recommender) Personalized(ctx context.Context, req *models.PersonalizedRequest) (*models.RecommendationResponse, error) {
	start := time.Now()

	profile, hasProfile := s.behavior.Profile(req.UserID)
	confidence := s.behavior.Confidence(req.UserID)
	hasSession := len(req.RecentQueries) > 0 || len(req.ViewedProducts) > 0 || len(req.CartItems) > 0

	if (!hasProfile || confidence == 0) && !hasSession {
		slog.Debug("No personalization signal, serving trending", "user_id", req.UserID)
		return s.trendingFallback(ctx, req.Limit, start)
	}

	parsed, embeddingText, err := s.deriveIntent(ctx, profile, req)
	if err != nil {
		return nil, err
	}
	if embeddingText == "" {
		return s.trendingFallback(ctx, req.Limit, start)
	}

	candidates, err := s.retriever.Retrieve(ctx, embeddingText, parsed.Keywords, intent.BuildFilters(parsed))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return s.trendingFallback(ctx, req.Limit, start)
	}

	totalCandidates := len(candidates)

	filtered := ranking.Filter(candidates, parsed, ranking.FilterOptions{
		MaxCandidates:    s.opts.MaxCandidates,
		AlternativeCount: s.opts.AlternativeCount,
	})

	session := &models.SessionContext{
		DeviceType:     models.DeviceUnknown,
		RecentQueries:  req.RecentQueries,
		ViewedProducts: append(append([]string{}, req.ViewedProducts...), req.CartItems...),
		TimeOfDay:      models.TimeOfDayBucket(time.Now()),
	}

	recs := s.ranker.Rank(s.rankingInputs(filtered.Kept, parsed, req.UserID, session, req.Limit))
	s.observeExploration(recs)
	s.explainer.Explain(ctx, recs, parsed)

	return &models.RecommendationResponse{
		Recommendations:    recs,
		QueryUnderstanding: parsed,
		BudgetInsight:      buildBudgetInsight(recs, parsed.MaxPrice),
		Alternatives:       filtered.Alternatives,
		TotalCandidates:    totalCandidates,
		ProcessingTimeMs:   float64(time.Since(start).Microseconds()) / 1000,
	}, nil
}

// deriveIntent builds a pseudo-intent from the behavior profile and session
// signals. The profile contributes the long-term taste (category, brands,
// spend level); viewed and cart products contribute the short-term focus.
func (s *Recommender) deriveIntent(
	ctx context.Context, profile *models.UserBehaviorProfile, req *models.PersonalizedRequest,
) (*models.ParsedIntent, string, error) {
	parsed := &models.ParsedIntent{Priority: models.PriorityBalanced}
	var parts []string

	if profile != nil {
		if cat := topCategory(profile); cat != "" {
			parsed.Category = cat
			parts = append(parts, cat)

			if cp := profile.CategoryProfiles[cat]; cp != nil {
				parsed.BrandPreferences = topBrands(cp)
				parts = append(parts, parsed.BrandPreferences...)
				if cp.Purchases > 0 && cp.AvgPrice > 0 {
					parsed.MaxPrice = cp.AvgPrice * purchaseHeadroom
				}
			}
		}

		parsed.EcoFriendly = profile.EcoInterest > 0.3

		switch {
		case profile.PriceSensitivity > 0 && profile.PriceSensitivity < 0.35:
			parsed.Priority = models.PriorityPrice
		case profile.PriceSensitivity > 0.7:
			parsed.Priority = models.PriorityQuality
		}
	}

	// Recently viewed and carted products sharpen the derived category
	// when the profile alone is thin.
	recent := append(append([]string{}, req.ViewedProducts...), req.CartItems...)
	if len(recent) > 0 {
		products, err := s.products.GetByIDs(ctx, recent)
		if err != nil {
			return nil, "", err
		}
		if cat := dominantCategory(products); cat != "" {
			if parsed.Category == "" {
				parsed.Category = cat
			}
			parts = append(parts, cat)
		}
		for i := range products {
			parts = append(parts, products[i].Title)
		}
	}

	for _, q := range req.RecentQueries {
		parts = append(parts, q)
		parsed.Keywords = append(parsed.Keywords, intent.ExtractKeywords(q)...)
	}

	if len(parts) == 0 {
		return parsed, "", nil
	}

	text := strings.Join(parts, " ")

	return parsed, intent.BuildEmbeddingText(text, parsed), nil
}

// trendingFallback serves the most popular products by interaction weight.
func (s *Recommender) trendingFallback(ctx context.Context, limit int, start time.Time) (*models.RecommendationResponse, error) {
	scores := s.trendingScores()
	if len(scores) == 0 {
		return &models.RecommendationResponse{
			Recommendations:  []models.Recommendation{},
			ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000,
		}, nil
	}

	ids := s.behavior.Trending(s.opts.TrendingPool)

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = products[i]
	}

	// Trending position stands in for the semantic score: there is no
	// query to be similar to.
	candidates := make([]models.Candidate, 0, len(ids))
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			continue
		}
		trend := scores[id]
		candidates = append(candidates, models.Candidate{
			Product:       product,
			DenseScore:    trend,
			CombinedScore: trend,
		})
	}

	parsed := &models.ParsedIntent{Priority: models.PriorityBalanced}
	filtered := ranking.Filter(candidates, parsed, ranking.FilterOptions{MaxCandidates: s.opts.MaxCandidates})

	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}

	recs := s.ranker.Rank(ranking.Inputs{
		Candidates: filtered.Kept,
		Intent:     parsed,
		Trending:   scores,
		Limit:      limit,
	})
	s.observeExploration(recs)
	s.explainer.Explain(ctx, recs, parsed)

	return &models.RecommendationResponse{
		Recommendations:  recs,
		TotalCandidates:  len(candidates),
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000,
	}, nil
}

// topCategory returns the category with the strongest decayed affinity.
func topCategory(profile *models.UserBehaviorProfile) string {
	var best string
	var bestScore float64
	for cat, score := range profile.CategoryAffinity {
		if score > bestScore || (score == bestScore && (best == "" || cat < best)) {
			best, bestScore = cat, score
		}
	}

	return best
}

// topBrands returns up to maxDerivedBrands positively weighted brands,
// strongest first.
func topBrands(cp *models.CategoryProfile) []string {
	type brandScore struct {
		brand  string
		weight float64
	}

	scored := make([]brandScore, 0, len(cp.BrandAffinity))
	for brand, sig := range cp.BrandAffinity {
		if sig.Weight > 0 {
			scored = append(scored, brandScore{brand, sig.Weight})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].weight != scored[j].weight {
			return scored[i].weight > scored[j].weight
		}
		return scored[i].brand < scored[j].brand
	})

	brands := make([]string, 0, maxDerivedBrands)
	for _, bs := range scored {
		brands = append(brands, bs.brand)
		if len(brands) == maxDerivedBrands {
			break
		}
	}

	return brands
}

// dominantCategory returns the most frequent category in the product set.
func dominantCategory(products []models.Product) string {
	counts := map[string]int{}
	for i := range products {
		counts[products[i].Category]++
	}

	var best string
	var bestCount int
	for cat, n := range counts {
		if n > bestCount || (n == bestCount && (best == "" || cat < best)) {
			best, bestCount = cat, n
		}
	}

	return best
}
