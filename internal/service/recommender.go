package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cartwise/recommender/internal/embeddings"
	"github.com/cartwise/recommender/internal/intent"
	"github.com/cartwise/recommender/internal/models"
	"github.com/cartwise/recommender/internal/ranking"
)

// QueryUnderstander turns a raw query into structured intent.
type QueryUnderstander interface {
	Understand(ctx context.Context, query string) *models.ParsedIntent
}

// CandidateRetriever runs the hybrid search pass.
type CandidateRetriever interface {
	Retrieve(ctx context.Context, embeddingText string, keywords []string, filters models.SearchFilters) ([]models.Candidate, error)
}

// Ranker scores and orders filtered candidates.
type Ranker interface {
	Rank(in ranking.Inputs) []models.Recommendation
}

// ResultExplainer attaches explanations to ranked results.
type ResultExplainer interface {
	Explain(ctx context.Context, recs []models.Recommendation, parsed *models.ParsedIntent)
}

// BehaviorStore is the read side of the user behavior store.
type BehaviorStore interface {
	Profile(userID string) (*models.UserBehaviorProfile, bool)
	Confidence(userID string) float64
	InteractionHistory(userID string) []string
	CoInteraction(productID string, history []string) float64
	Trending(limit int) []string
	BrandInteractions(userID, brand string) int
	Analytics() models.BehaviorAnalytics
}

// ProductsRepository defines the interface for product catalog access.
type ProductsRepository interface {
	Upsert(ctx context.Context, product *models.Product, embedding []float32) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Delete(ctx context.Context, id string) error
	CollectionInfo(ctx context.Context) (*models.CollectionInfo, error)
}

// FeedbackQueue is the async write path into the behavior store.
type FeedbackQueue interface {
	Enqueue(event models.FeedbackEvent)
}

// PipelineMetrics records pipeline-level counters. Nil disables recording.
type PipelineMetrics interface {
	RecordRecommendation(candidates int)
	RecordFeedbackAccepted(action string)
	RecordStageDuration(stage string, duration time.Duration)
	RecordExploration()
}

// Options tune the recommendation pipeline.
type Options struct {
	// MaxCandidates caps the set entering the ranking stage.
	MaxCandidates int
	// AlternativeCount caps over-budget suggestions in the response.
	AlternativeCount int
	// DefaultLimit is the result count when a request does not set one.
	DefaultLimit int
	// TrendingPool is how many trending products feed collaborative
	// scoring and the personalized fallback.
	TrendingPool int
	// Metrics is optional.
	Metrics PipelineMetrics
}

// Recommender orchestrates the pipeline: intent, retrieval, financial
// filtering, ranking, explanation. Stateless per request; all state lives in
// the behavior store and the product repository.
type Recommender struct {
	intents   QueryUnderstander
	retriever CandidateRetriever
	ranker    Ranker
	explainer ResultExplainer
	behavior  BehaviorStore
	products  ProductsRepository
	embedder  embeddings.Client
	feedback  FeedbackQueue
	opts      Options
}

// NewRecommender creates the pipeline orchestrator.
func NewRecommender(
	intents QueryUnderstander,
	retriever CandidateRetriever,
	ranker Ranker,
	explainer ResultExplainer,
	behavior BehaviorStore,
	products ProductsRepository,
	embedder embeddings.Client,
	feedback FeedbackQueue,
	opts Options,
) *Recommender {
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = 10
	}
	if opts.AlternativeCount <= 0 {
		opts.AlternativeCount = 3
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = ranking.DefaultResultCount
	}
	if opts.TrendingPool <= 0 {
		opts.TrendingPool = 50
	}

	return &Recommender{
		intents:   intents,
		retriever: retriever,
		ranker:    ranker,
		explainer: explainer,
		behavior:  behavior,
		products:  products,
		embedder:  embedder,
		feedback:  feedback,
		opts:      opts,
	}
}

// Recommend runs the full pipeline for a natural language query.
func (s *Recommender) Recommend(ctx context.Context, req *models.RecommendRequest) (*models.RecommendationResponse, error) {
	start := time.Now()

	stageStart := start
	parsed := s.intents.Understand(ctx, req.Query)
	s.observeStage("intent", stageStart)

	// An explicit request budget tightens, never loosens, the parsed one.
	if req.MaxBudget > 0 && (parsed.MaxPrice == 0 || req.MaxBudget < parsed.MaxPrice) {
		parsed.MaxPrice = req.MaxBudget
	}

	filters := intent.BuildFilters(parsed)
	embeddingText := intent.BuildEmbeddingText(req.Query, parsed)

	stageStart = time.Now()
	candidates, err := s.retriever.Retrieve(ctx, embeddingText, parsed.Keywords, filters)
	if err != nil {
		return nil, err
	}
	s.observeStage("retrieval", stageStart)

	totalCandidates := len(candidates)

	filtered := ranking.Filter(candidates, parsed, ranking.FilterOptions{
		MaxCandidates:    s.opts.MaxCandidates,
		AlternativeCount: s.opts.AlternativeCount,
	})
	if len(filtered.Removed) > 0 {
		slog.Debug("Financial filter removed candidates",
			"total", totalCandidates, "kept", len(filtered.Kept), "removed", filtered.Removed)
	}

	stageStart = time.Now()
	recs := s.ranker.Rank(s.rankingInputs(filtered.Kept, parsed, req.UserID, sessionFrom(req), req.Limit))
	s.observeStage("ranking", stageStart)
	s.observeExploration(recs)

	stageStart = time.Now()
	s.explainer.Explain(ctx, recs, parsed)
	s.observeStage("explanation", stageStart)

	resp := &models.RecommendationResponse{
		Recommendations:    recs,
		QueryUnderstanding: parsed,
		BudgetInsight:      buildBudgetInsight(recs, parsed.MaxPrice),
		Alternatives:       filtered.Alternatives,
		TotalCandidates:    totalCandidates,
		ProcessingTimeMs:   float64(time.Since(start).Microseconds()) / 1000,
	}

	slog.Info("Recommendation request served",
		"user_id", req.UserID, "category", parsed.Category,
		"candidates", totalCandidates, "results", len(recs),
		"duration_ms", resp.ProcessingTimeMs)

	if s.opts.Metrics != nil {
		s.opts.Metrics.RecordRecommendation(totalCandidates)
	}

	return resp, nil
}

// observeStage records one pipeline stage duration when metrics are enabled.
func (s *Recommender) observeStage(stage string, start time.Time) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.RecordStageDuration(stage, time.Since(start))
	}
}

// observeExploration counts ranking passes that applied an exploration boost.
// At most one candidate per pass carries the boost.
func (s *Recommender) observeExploration(recs []models.Recommendation) {
	if s.opts.Metrics == nil {
		return
	}

	for _, rec := range recs {
		if rec.Breakdown.ExplorationBoost > 0 {
			s.opts.Metrics.RecordExploration()
			return
		}
	}
}

// rankingInputs assembles the per-request signals for the ranking engine.
// Missing signals (anonymous user, no session) stay nil and degrade to zero
// boosts downstream.
func (s *Recommender) rankingInputs(
	candidates []models.Candidate,
	parsed *models.ParsedIntent,
	userID string,
	session *models.SessionContext,
	limit int,
) ranking.Inputs {
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}

	in := ranking.Inputs{
		Candidates: candidates,
		Intent:     parsed,
		Session:    session,
		Trending:   s.trendingScores(),
		Limit:      limit,
	}

	if userID == "" {
		return in
	}

	if profile, ok := s.behavior.Profile(userID); ok {
		in.Profile = profile
	}

	history := s.behavior.InteractionHistory(userID)
	if len(history) > 0 {
		in.CoInteraction = make(map[string]float64, len(candidates))
		for i := range candidates {
			id := candidates[i].Product.ID
			in.CoInteraction[id] = s.behavior.CoInteraction(id, history)
		}
	}

	in.BrandInteractions = func(brand string) int {
		return s.behavior.BrandInteractions(userID, brand)
	}

	return in
}

// trendingScores maps trending product IDs to a position-based score in
// (0, 1], highest first.
func (s *Recommender) trendingScores() map[string]float64 {
	ids := s.behavior.Trending(s.opts.TrendingPool)
	if len(ids) == 0 {
		return nil
	}

	scores := make(map[string]float64, len(ids))
	for i, id := range ids {
		scores[id] = 1 - float64(i)/float64(len(ids))
	}

	return scores
}

// RecordFeedback validates the event against the catalog and queues it for
// asynchronous recording. The write itself never blocks this call.
func (s *Recommender) RecordFeedback(ctx context.Context, req *models.RecordFeedbackRequest) error {
	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return err
	}

	event := models.FeedbackEvent{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Action:    models.FeedbackAction(req.Action),
		Context:   req.Context,
	}
	if req.Timestamp != nil {
		event.Timestamp = req.Timestamp.UTC()
	}

	// Backfill context from the catalog so learning never depends on the
	// caller echoing product attributes correctly.
	if event.Context.Category == "" {
		event.Context.Category = product.Category
	}
	if event.Context.Brand == "" {
		event.Context.Brand = product.Brand
	}
	if event.Context.Price == 0 {
		event.Context.Price = product.Price
	}
	if product.EcoCertified {
		event.Context.EcoCertified = true
	}

	s.feedback.Enqueue(event)

	if s.opts.Metrics != nil {
		s.opts.Metrics.RecordFeedbackAccepted(req.Action)
	}

	return nil
}

// Profile returns the decayed behavior snapshot for a user.
func (s *Recommender) Profile(userID string) (*models.UserBehaviorProfile, bool) {
	return s.behavior.Profile(userID)
}

// Analytics returns the system-wide behavior and catalog summary.
func (s *Recommender) Analytics(ctx context.Context) *models.SystemAnalytics {
	analytics := &models.SystemAnalytics{
		Behavior: s.behavior.Analytics(),
	}

	info, err := s.products.CollectionInfo(ctx)
	if err != nil {
		slog.Warn("Failed to read collection info for analytics", "error", err)
	} else {
		analytics.Collection = info
	}

	return analytics
}

// Health reports per-component status. The vector store is the only
// dependency probed with a live call.
func (s *Recommender) Health(ctx context.Context) *models.HealthStatus {
	status := &models.HealthStatus{
		Status:     "ok",
		Components: map[string]string{},
	}

	if _, err := s.products.CollectionInfo(ctx); err != nil {
		status.Status = "degraded"
		status.Components["vector_store"] = "unreachable"
	} else {
		status.Components["vector_store"] = "ok"
	}

	status.Components["behavior_store"] = "ok"
	status.Components["ranking"] = "ok"

	return status
}

// sessionFrom builds the session context from request fields, or nil when
// the caller sent none.
func sessionFrom(req *models.RecommendRequest) *models.SessionContext {
	if req.SessionID == "" && req.DeviceType == "" &&
		len(req.RecentQueries) == 0 && len(req.ViewedProducts) == 0 {
		return nil
	}

	device := models.DeviceType(req.DeviceType)
	if !device.IsValid() {
		device = models.DeviceUnknown
	}

	return &models.SessionContext{
		SessionID:      req.SessionID,
		DeviceType:     device,
		RecentQueries:  req.RecentQueries,
		ViewedProducts: req.ViewedProducts,
		TimeOfDay:      models.TimeOfDayBucket(time.Now()),
	}
}

// buildBudgetInsight summarizes how the top pick sits against the budget.
// Nil when no budget was given or nothing was recommended.
func buildBudgetInsight(recs []models.Recommendation, budget float64) *models.BudgetInsight {
	if budget <= 0 || len(recs) == 0 {
		return nil
	}

	price := recs[0].Product.Price
	savings := budget - price
	savingsPct := savings / budget * 100

	var rating string
	switch {
	case savingsPct > 20:
		rating = "Excellent Value"
	case savingsPct > 10:
		rating = "Good Value"
	case savingsPct > 0:
		rating = "Fair Value"
	case savingsPct > -10:
		rating = "At Budget"
	default:
		rating = "Over Budget"
	}

	return &models.BudgetInsight{
		Budget:           budget,
		RecommendedPrice: price,
		Savings:          savings,
		Utilization:      price / budget,
		ValueRating:      rating,
	}
}
