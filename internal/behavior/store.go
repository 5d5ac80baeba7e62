package behavior

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cartwise/recommender/internal/models"
	"github.com/cartwise/recommender/internal/recerrors"
)

// MemoryStore is an in-process behavior store. Writes to the same user are
// serialized by a per-user lock; writes to different users proceed in
// parallel. Product aggregates and co-interaction sets live behind a separate
// lock so feedback bursts for one user never block reads for another.
//
// The store is process-lifetime durable. Swapping in a database-backed
// implementation only requires satisfying the same method set.
type MemoryStore struct {
	halfLifeDays       float64
	confidenceMidpoint float64
	confidenceScale    float64

	mu    sync.RWMutex
	users map[string]*userState

	productMu    sync.RWMutex
	products     map[string]*models.ProductStats
	productUsers map[string]map[string]struct{}

	statsMu         sync.Mutex
	totalEvents     int
	actionBreakdown map[models.FeedbackAction]int
}

// userState accumulates one user's raw decayed signals. Guarded by its own
// mutex; the store's outer lock only protects the users map itself.
type userState struct {
	mu          sync.Mutex
	categories  map[string]*categoryState
	ecoInterest float64
	qualityPref float64 // -1 budget .. 1 premium
	interacted  []string
	events      int
	lastUpdated time.Time
}

type categoryState struct {
	affinity     models.DecayedSignal
	brands       map[string]*models.DecayedSignal
	totalSpent   float64
	purchases    int
	ecoAffinity  float64
	interactions int
}

// StoreOption configures a MemoryStore.
type StoreOption func(*MemoryStore)

// WithHalfLife overrides the signal decay half-life in days.
func WithHalfLife(days float64) StoreOption {
	return func(s *MemoryStore) { s.halfLifeDays = days }
}

// WithConfidenceCurve overrides the logistic confidence parameters.
func WithConfidenceCurve(midpoint, scale float64) StoreOption {
	return func(s *MemoryStore) {
		s.confidenceMidpoint = midpoint
		s.confidenceScale = scale
	}
}

// NewMemoryStore creates an empty behavior store.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		halfLifeDays:       DefaultHalfLifeDays,
		confidenceMidpoint: DefaultConfidenceMidpoint,
		confidenceScale:    DefaultConfidenceScale,
		users:              make(map[string]*userState),
		products:           make(map[string]*models.ProductStats),
		productUsers:       make(map[string]map[string]struct{}),
		actionBreakdown:    make(map[models.FeedbackAction]int),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Record stores one feedback event. Duplicate events are new data points and
// simply add weight. A zero timestamp is taken as "now".
func (s *MemoryStore) Record(event models.FeedbackEvent) error {
	if !event.Action.IsValid() {
		return recerrors.NewValidationError("action", "unknown feedback action: "+string(event.Action))
	}

	at := event.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	user := s.userFor(event.UserID)
	weight := ActionWeight(event.Action)

	user.mu.Lock()
	s.applyToUser(user, event, weight, at)
	user.mu.Unlock()

	s.updateProductAggregates(event)

	s.statsMu.Lock()
	s.totalEvents++
	s.actionBreakdown[event.Action]++
	s.statsMu.Unlock()

	return nil
}

func (s *MemoryStore) userFor(userID string) *userState {
	s.mu.RLock()
	user, ok := s.users[userID]
	s.mu.RUnlock()
	if ok {
		return user
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok = s.users[userID]; ok {
		return user
	}

	user = &userState{categories: make(map[string]*categoryState)}
	s.users[userID] = user
	return user
}

// applyToUser folds an event into the user's signals. Caller holds user.mu.
func (s *MemoryStore) applyToUser(user *userState, event models.FeedbackEvent, weight float64, at time.Time) {
	ctx := event.Context

	// Keys are lowercased so ranking lookups never miss on case.
	category := strings.ToLower(ctx.Category)
	brand := strings.ToLower(ctx.Brand)

	if category != "" {
		cat, ok := user.categories[category]
		if !ok {
			cat = &categoryState{brands: make(map[string]*models.DecayedSignal)}
			user.categories[category] = cat
		}

		addSignal(&cat.affinity, weight, at, s.halfLifeDays)
		cat.interactions++

		if brand != "" {
			sig, ok := cat.brands[brand]
			if !ok {
				sig = &models.DecayedSignal{}
				cat.brands[brand] = sig
			}
			addSignal(sig, weight, at, s.halfLifeDays)
		}

		if ctx.EcoCertified {
			cat.ecoAffinity = clamp(cat.ecoAffinity+weight*0.1, -1, 1)
		}

		if event.Action == models.ActionPurchase && ctx.Price > 0 {
			cat.totalSpent += ctx.Price
			cat.purchases++
		}
	}

	if ctx.EcoCertified {
		user.ecoInterest = clamp(user.ecoInterest+weight*0.1, -1, 1)
	}

	// Positive weight on items near the budget ceiling reads as a taste for
	// premium; well under it reads as budget hunting.
	if weight > 0 && ctx.Price > 0 && ctx.UserBudget > 0 {
		ratio := ctx.Price / ctx.UserBudget
		switch {
		case ratio > 0.8:
			user.qualityPref = clamp(user.qualityPref+0.1, -1, 1)
		case ratio < 0.5:
			user.qualityPref = clamp(user.qualityPref-0.1, -1, 1)
		}
	}

	user.interacted = append(user.interacted, event.ProductID)
	user.events++
	if at.After(user.lastUpdated) {
		user.lastUpdated = at
	}
}

func (s *MemoryStore) updateProductAggregates(event models.FeedbackEvent) {
	s.productMu.Lock()
	defer s.productMu.Unlock()

	stats, ok := s.products[event.ProductID]
	if !ok {
		stats = &models.ProductStats{ProductID: event.ProductID}
		s.products[event.ProductID] = stats
	}

	switch event.Action {
	case models.ActionView:
		stats.Views++
	case models.ActionClick:
		stats.Clicks++
	case models.ActionAddToCart:
		stats.AddToCart++
	case models.ActionPurchase:
		stats.Purchases++
	case models.ActionSkip:
		stats.Skips++
	case models.ActionReject:
		stats.Rejects++
	}

	users, ok := s.productUsers[event.ProductID]
	if !ok {
		users = make(map[string]struct{})
		s.productUsers[event.ProductID] = users
	}
	users[event.UserID] = struct{}{}
}

// Profile returns a decayed snapshot of the user's behavior profile, or
// (nil, false) when the user has no recorded feedback. Profiles are created
// lazily on first feedback, so an unknown user is not an error.
func (s *MemoryStore) Profile(userID string) (*models.UserBehaviorProfile, bool) {
	s.mu.RLock()
	user, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := time.Now()

	user.mu.Lock()
	defer user.mu.Unlock()

	profile := &models.UserBehaviorProfile{
		UserID:           userID,
		CategoryProfiles: make(map[string]*models.CategoryProfile, len(user.categories)),
		CategoryAffinity: make(map[string]float64, len(user.categories)),
		PriceSensitivity: (user.qualityPref + 1) / 2,
		EcoInterest:      user.ecoInterest,
		Interactions:     user.events,
		LastUpdated:      user.lastUpdated,
	}

	for name, cat := range user.categories {
		profile.CategoryAffinity[name] = signalValue(cat.affinity, now, s.halfLifeDays)

		cp := &models.CategoryProfile{
			Category:      name,
			BrandAffinity: make(map[string]models.DecayedSignal, len(cat.brands)),
			TotalSpent:    cat.totalSpent,
			Purchases:     cat.purchases,
			EcoAffinity:   cat.ecoAffinity,
			Interactions:  cat.interactions,
		}
		if cat.purchases > 0 {
			cp.AvgPrice = cat.totalSpent / float64(cat.purchases)
		}

		for brand, sig := range cat.brands {
			cp.BrandAffinity[brand] = models.DecayedSignal{
				Weight:    signalValue(*sig, now, s.halfLifeDays),
				Events:    sig.Events,
				LastEvent: sig.LastEvent,
			}
		}

		profile.CategoryProfiles[name] = cp
	}

	return profile, true
}

// Confidence returns the logistic confidence for a user, 0 for unknown users.
func (s *MemoryStore) Confidence(userID string) float64 {
	profile, ok := s.Profile(userID)
	if !ok {
		return 0
	}
	return Confidence(profile.Interactions, s.confidenceMidpoint, s.confidenceScale)
}

// InteractionHistory returns the product IDs the user has interacted with,
// oldest first.
func (s *MemoryStore) InteractionHistory(userID string) []string {
	s.mu.RLock()
	user, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	user.mu.Lock()
	defer user.mu.Unlock()
	return append([]string(nil), user.interacted...)
}

// CoInteraction returns the strongest Jaccard similarity between the users
// who interacted with productID and the users of any product in history.
// Zero when either side has no interactions.
func (s *MemoryStore) CoInteraction(productID string, history []string) float64 {
	s.productMu.RLock()
	defer s.productMu.RUnlock()

	candidates, ok := s.productUsers[productID]
	if !ok || len(candidates) == 0 {
		return 0
	}

	best := 0.0
	for _, other := range history {
		if other == productID {
			continue
		}
		others := s.productUsers[other]
		if len(others) == 0 {
			continue
		}

		if j := jaccard(candidates, others); j > best {
			best = j
		}
	}

	return best
}

func jaccard(a, b map[string]struct{}) float64 {
	intersection := 0
	for user := range a {
		if _, ok := b[user]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// Trending returns up to limit product IDs ordered by interaction weight,
// purchases counting most. Used as the cold-start fallback for personalized
// recommendations.
func (s *MemoryStore) Trending(limit int) []string {
	s.productMu.RLock()
	defer s.productMu.RUnlock()

	type weighted struct {
		id     string
		weight float64
	}

	ranked := make([]weighted, 0, len(s.products))
	for id, stats := range s.products {
		w := float64(stats.Purchases)*1.0 + float64(stats.AddToCart)*0.6 +
			float64(stats.Clicks)*0.3 + float64(stats.Views)*0.1
		if w > 0 {
			ranked = append(ranked, weighted{id: id, weight: w})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].id < ranked[j].id
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.id
	}

	return ids
}

// ProductStats returns the aggregate stats for one product.
func (s *MemoryStore) ProductStats(productID string) (models.ProductStats, bool) {
	s.productMu.RLock()
	defer s.productMu.RUnlock()

	stats, ok := s.products[productID]
	if !ok {
		return models.ProductStats{}, false
	}

	return *stats, true
}

// BrandInteractions returns how many events the user has recorded against
// the given brand across all categories. Exploration uses this to find
// brands the user has barely seen.
func (s *MemoryStore) BrandInteractions(userID, brand string) int {
	s.mu.RLock()
	user, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return 0
	}

	brand = strings.ToLower(brand)

	user.mu.Lock()
	defer user.mu.Unlock()

	total := 0
	for _, cat := range user.categories {
		if sig, ok := cat.brands[brand]; ok {
			total += sig.Events
		}
	}

	return total
}

// Analytics returns a read-only summary of the store.
func (s *MemoryStore) Analytics() models.BehaviorAnalytics {
	s.mu.RLock()
	totalUsers := len(s.users)
	s.mu.RUnlock()

	s.statsMu.Lock()
	totalEvents := s.totalEvents
	breakdown := make(map[models.FeedbackAction]int, len(s.actionBreakdown))
	for action, count := range s.actionBreakdown {
		breakdown[action] = count
	}
	s.statsMu.Unlock()

	analytics := models.BehaviorAnalytics{
		TotalUsers:          totalUsers,
		TotalFeedbackEvents: totalEvents,
		ActionBreakdown:     breakdown,
	}
	if totalUsers > 0 {
		analytics.AvgInteractionsPerUser = float64(totalEvents) / float64(totalUsers)
	}

	s.productMu.RLock()
	analytics.TrackedProducts = len(s.products)
	top := make([]models.ProductStats, 0, len(s.products))
	for _, stats := range s.products {
		top = append(top, *stats)
	}
	s.productMu.RUnlock()

	sort.Slice(top, func(i, j int) bool {
		if top[i].Purchases != top[j].Purchases {
			return top[i].Purchases > top[j].Purchases
		}
		return top[i].ProductID < top[j].ProductID
	})
	if len(top) > 10 {
		top = top[:10]
	}
	analytics.TopProducts = top

	return analytics
}

// Prune drops profiles idle longer than maxIdle. A zero maxIdle disables
// pruning entirely.
func (s *MemoryStore) Prune(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}

	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, user := range s.users {
		user.mu.Lock()
		stale := user.lastUpdated.Before(cutoff)
		user.mu.Unlock()

		if stale {
			delete(s.users, id)
			removed++
		}
	}

	return removed
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
