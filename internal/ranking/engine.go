package ranking

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/cartwise/recommender/internal/behavior"
	"github.com/cartwise/recommender/internal/models"
)

// DefaultResultCount is how many recommendations a ranking pass returns when
// the caller does not ask for a specific count.
const DefaultResultCount = 5

// explorationBrandFamiliarity is the interaction count under which a brand
// still counts as novel for exploration.
const explorationBrandFamiliarity = 3

// Inputs carries the per-request signals for one ranking pass. Everything
// besides Candidates is optional; missing signals degrade to zero boosts.
type Inputs struct {
	Candidates []models.Candidate
	Intent     *models.ParsedIntent
	Profile    *models.UserBehaviorProfile
	Session    *models.SessionContext
	// CoInteraction and Trending are per-product collaborative scores in
	// [0,1], keyed by product ID.
	CoInteraction map[string]float64
	Trending      map[string]float64
	// BrandInteractions reports how familiar the user is with a brand.
	// Nil treats every brand as novel.
	BrandInteractions func(brand string) int
	Limit             int
}

// Engine scores and orders candidates. One Engine serves all requests; Rank
// is safe for concurrent use.
type Engine struct {
	weights         Weights
	explorationRate float64
	confMidpoint    float64
	confScale       float64

	// rngMu serializes rng access; math/rand.Rand is not safe for
	// concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithExplorationRate sets the per-pass probability of an exploration boost.
func WithExplorationRate(p float64) EngineOption {
	return func(e *Engine) { e.explorationRate = p }
}

// WithConfidenceCurve overrides the logistic confidence parameters used by
// the behavior boost.
func WithConfidenceCurve(midpoint, scale float64) EngineOption {
	return func(e *Engine) {
		e.confMidpoint = midpoint
		e.confScale = scale
	}
}

// WithRand injects the random source so tests can pin exploration behavior.
func WithRand(rng *rand.Rand) EngineOption {
	return func(e *Engine) { e.rng = rng }
}

// NewEngine creates a ranking engine. Returns a ConfigurationError when the
// weights do not sum to 1.0; serving with broken weights would silently
// corrupt every score.
func NewEngine(weights Weights, opts ...EngineOption) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		weights:         weights,
		explorationRate: 0.10,
		confMidpoint:    behavior.DefaultConfidenceMidpoint,
		confScale:       behavior.DefaultConfidenceScale,
		rng:             rand.New(rand.NewSource(rand.Int63())),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Rank scores every candidate, applies boosts and exploration, and returns
// recommendations sorted by final score. Ties break on review quality, then
// lower price. The result is truncated to Limit.
func (e *Engine) Rank(in Inputs) []models.Recommendation {
	weights := e.weights.forPriority(in.Intent.Priority)

	recs := make([]models.Recommendation, 0, len(in.Candidates))
	for _, c := range in.Candidates {
		product := c.Product

		breakdown := models.ScoreBreakdown{
			Semantic:   semanticScore(c.CombinedScore),
			Value:      c.ValueScore,
			Preference: preferenceScore(&product, in.Intent),
			Review:     reviewScore(&product),
		}

		breakdown.BehaviorBoost = behaviorBoost(&product, in.Profile, e.confMidpoint, e.confScale)
		breakdown.SessionBoost = sessionBoost(&product, in.Session)
		breakdown.CollaborativeBoost = collaborativeBoost(
			in.CoInteraction[product.ID], in.Trending[product.ID])

		recs = append(recs, models.Recommendation{
			Product:   product,
			Breakdown: breakdown,
		})
	}

	e.applyExploration(recs, in.BrandInteractions)

	for i := range recs {
		b := &recs[i].Breakdown
		base := b.Semantic*weights.Semantic + b.Value*weights.Value +
			b.Preference*weights.Preference + b.Review*weights.Review
		b.Final = clamp01(base + b.BehaviorBoost + b.SessionBoost +
			b.CollaborativeBoost + b.ExplorationBoost)
		recs[i].Score = b.Final
	}

	sort.SliceStable(recs, func(i, j int) bool {
		bi, bj := recs[i].Breakdown, recs[j].Breakdown
		if bi.Final != bj.Final {
			return bi.Final > bj.Final
		}
		if bi.Review != bj.Review {
			return bi.Review > bj.Review
		}
		return recs[i].Product.Price < recs[j].Product.Price
	})

	limit := in.Limit
	if limit <= 0 {
		limit = DefaultResultCount
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}

	return recs
}

// applyExploration gives one randomly chosen low-familiarity-brand candidate
// a small boost, with probability explorationRate per pass (not per item).
func (e *Engine) applyExploration(recs []models.Recommendation, brandInteractions func(string) int) {
	if len(recs) == 0 {
		return
	}

	e.rngMu.Lock()
	explore := e.rng.Float64() < e.explorationRate
	e.rngMu.Unlock()
	if !explore {
		return
	}

	var novel []int
	for i, rec := range recs {
		count := 0
		if brandInteractions != nil {
			count = brandInteractions(rec.Product.Brand)
		}
		if count < explorationBrandFamiliarity {
			novel = append(novel, i)
		}
	}
	if len(novel) == 0 {
		return
	}

	e.rngMu.Lock()
	chosen := novel[e.rng.Intn(len(novel))]
	e.rngMu.Unlock()

	recs[chosen].Breakdown.ExplorationBoost = explorationBoostValue
}
