package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartwise/recommender/internal/embeddings"
	"github.com/cartwise/recommender/internal/explain"
	"github.com/cartwise/recommender/internal/models"
	"github.com/cartwise/recommender/internal/ranking"
	"github.com/cartwise/recommender/internal/recerrors"
)

type mockIntents struct {
	understandFunc func(ctx context.Context, query string) *models.ParsedIntent
}

func (m *mockIntents) Understand(ctx context.Context, query string) *models.ParsedIntent {
	return m.understandFunc(ctx, query)
}

type mockRetriever struct {
	retrieveFunc func(ctx context.Context, embeddingText string, keywords []string, filters models.SearchFilters) ([]models.Candidate, error)
	lastText     string
	lastFilters  models.SearchFilters
}

func (m *mockRetriever) Retrieve(ctx context.Context, embeddingText string, keywords []string, filters models.SearchFilters) ([]models.Candidate, error) {
	m.lastText = embeddingText
	m.lastFilters = filters
	return m.retrieveFunc(ctx, embeddingText, keywords, filters)
}

// mockBehavior returns zero signal unless the test overrides a field.
type mockBehavior struct {
	profile       *models.UserBehaviorProfile
	confidence    float64
	history       []string
	coInteraction map[string]float64
	trending      []string
	analytics     models.BehaviorAnalytics
}

func (m *mockBehavior) Profile(string) (*models.UserBehaviorProfile, bool) {
	return m.profile, m.profile != nil
}
func (m *mockBehavior) Confidence(string) float64          { return m.confidence }
func (m *mockBehavior) InteractionHistory(string) []string { return m.history }
func (m *mockBehavior) CoInteraction(productID string, _ []string) float64 {
	return m.coInteraction[productID]
}
func (m *mockBehavior) Trending(limit int) []string {
	if limit < len(m.trending) {
		return m.trending[:limit]
	}
	return m.trending
}
func (m *mockBehavior) BrandInteractions(string, string) int { return 0 }
func (m *mockBehavior) Analytics() models.BehaviorAnalytics  { return m.analytics }

type mockProducts struct {
	byID          map[string]*models.Product
	collectionErr error
	upserted      []models.Product
	deleted       []string
}

func (m *mockProducts) Upsert(_ context.Context, product *models.Product, _ []float32) error {
	m.upserted = append(m.upserted, *product)
	return nil
}

func (m *mockProducts) GetByID(_ context.Context, id string) (*models.Product, error) {
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, recerrors.NewNotFoundError("product", "product not found: "+id)
}

func (m *mockProducts) GetByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProducts) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockProducts) CollectionInfo(_ context.Context) (*models.CollectionInfo, error) {
	if m.collectionErr != nil {
		return nil, m.collectionErr
	}
	return &models.CollectionInfo{Count: int64(len(m.byID)), Status: "green"}, nil
}

type mockQueue struct {
	events []models.FeedbackEvent
}

func (m *mockQueue) Enqueue(event models.FeedbackEvent) { m.events = append(m.events, event) }

type mockPipelineMetrics struct {
	recommendations []int
	feedback        []string
	stages          []string
	explorations    int
}

func (m *mockPipelineMetrics) RecordRecommendation(candidates int) {
	m.recommendations = append(m.recommendations, candidates)
}
func (m *mockPipelineMetrics) RecordFeedbackAccepted(action string) {
	m.feedback = append(m.feedback, action)
}
func (m *mockPipelineMetrics) RecordStageDuration(stage string, _ time.Duration) {
	m.stages = append(m.stages, stage)
}
func (m *mockPipelineMetrics) RecordExploration() { m.explorations++ }

func testProduct(id, category, brand string, price, rating float64) *models.Product {
	return &models.Product{
		ID:           id,
		Title:        brand + " " + category + " " + id,
		Category:     category,
		Brand:        brand,
		Price:        price,
		Currency:     "USD",
		Rating:       rating,
		ReviewsCount: 120,
		InStock:      true,
	}
}

func candidateFor(p *models.Product, dense float64) models.Candidate {
	return models.Candidate{Product: *p, DenseScore: dense, CombinedScore: dense}
}

func newTestRecommender(t *testing.T, retriever *mockRetriever, behavior *mockBehavior, products *mockProducts, queue *mockQueue) *Recommender {
	t.Helper()

	engine, err := ranking.NewEngine(ranking.DefaultWeights, ranking.WithExplorationRate(0))
	require.NoError(t, err)

	intents := &mockIntents{understandFunc: func(_ context.Context, _ string) *models.ParsedIntent {
		return &models.ParsedIntent{Priority: models.PriorityBalanced}
	}}

	return NewRecommender(
		intents,
		retriever,
		engine,
		explain.NewExplainer(nil, 0),
		behavior,
		products,
		embeddings.NewMockClient(),
		queue,
		Options{MaxCandidates: 10, AlternativeCount: 3},
	)
}

func TestRecommender_Recommend_BudgetGateAndAlternatives(t *testing.T) {
	within := testProduct("p1", "laptop", "lenovo", 750, 4.5)
	over := testProduct("p2", "laptop", "dell", 850, 4.8)
	farOver := testProduct("p3", "laptop", "apple", 1400, 4.9)

	retriever := &mockRetriever{retrieveFunc: func(context.Context, string, []string, models.SearchFilters) ([]models.Candidate, error) {
		return []models.Candidate{
			candidateFor(over, 0.92),
			candidateFor(within, 0.88),
			candidateFor(farOver, 0.85),
		}, nil
	}}
	svc := newTestRecommender(t, retriever, &mockBehavior{}, &mockProducts{}, &mockQueue{})

	svc.intents = &mockIntents{understandFunc: func(_ context.Context, _ string) *models.ParsedIntent {
		return &models.ParsedIntent{Category: "laptop", MaxPrice: 800, Priority: models.PriorityBalanced}
	}}

	resp, err := svc.Recommend(context.Background(), &models.RecommendRequest{Query: "laptop under 800"})
	require.NoError(t, err)

	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "p1", resp.Recommendations[0].Product.ID)
	assert.Equal(t, 3, resp.TotalCandidates)

	// p2 is within 125% of budget so it appears as an alternative; p3 is not.
	require.Len(t, resp.Alternatives, 1)
	assert.Equal(t, "p2", resp.Alternatives[0].Product.ID)

	require.NotNil(t, resp.BudgetInsight)
	assert.InDelta(t, 50, resp.BudgetInsight.Savings, 1e-9)
	assert.Equal(t, "Fair Value", resp.BudgetInsight.ValueRating)

	assert.NotEmpty(t, resp.Recommendations[0].Explanation)
	assert.NotEmpty(t, resp.Recommendations[0].Evidence)
}

func TestRecommender_Recommend_RequestBudgetTightensParsed(t *testing.T) {
	retriever := &mockRetriever{retrieveFunc: func(context.Context, string, []string, models.SearchFilters) ([]models.Candidate, error) {
		return nil, nil
	}}
	svc := newTestRecommender(t, retriever, &mockBehavior{}, &mockProducts{}, &mockQueue{})
	svc.intents = &mockIntents{understandFunc: func(_ context.Context, _ string) *models.ParsedIntent {
		return &models.ParsedIntent{MaxPrice: 800, Priority: models.PriorityBalanced}
	}}

	resp, err := svc.Recommend(context.Background(), &models.RecommendRequest{Query: "a laptop", MaxBudget: 500})
	require.NoError(t, err)
	assert.InDelta(t, 500, resp.QueryUnderstanding.MaxPrice, 1e-9)
	assert.InDelta(t, 500, retriever.lastFilters.MaxPrice, 1e-9)

	// A looser request budget must not widen the parsed one.
	resp, err = svc.Recommend(context.Background(), &models.RecommendRequest{Query: "a laptop", MaxBudget: 2000})
	require.NoError(t, err)
	assert.InDelta(t, 800, resp.QueryUnderstanding.MaxPrice, 1e-9)
}

func TestRecommender_Recommend_RetrieverErrorSurfaces(t *testing.T) {
	retriever := &mockRetriever{retrieveFunc: func(context.Context, string, []string, models.SearchFilters) ([]models.Candidate, error) {
		return nil, recerrors.NewProviderUnavailableError("vector-store", "connection refused")
	}}
	svc := newTestRecommender(t, retriever, &mockBehavior{}, &mockProducts{}, &mockQueue{})

	_, err := svc.Recommend(context.Background(), &models.RecommendRequest{Query: "a laptop"})

	var provErr *recerrors.ProviderUnavailableError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "vector-store", provErr.Provider)
}

func TestRecommender_Recommend_EmptyResultIsNotAnError(t *testing.T) {
	retriever := &mockRetriever{retrieveFunc: func(context.Context, string, []string, models.SearchFilters) ([]models.Candidate, error) {
		return []models.Candidate{}, nil
	}}
	svc := newTestRecommender(t, retriever, &mockBehavior{}, &mockProducts{}, &mockQueue{})

	resp, err := svc.Recommend(context.Background(), &models.RecommendRequest{Query: "underwater hair dryer"})
	require.NoError(t, err)
	assert.Empty(t, resp.Recommendations)
	assert.Zero(t, resp.TotalCandidates)
	assert.Nil(t, resp.BudgetInsight)
}

func TestRecommender_RecordFeedback_UnknownProductRejected(t *testing.T) {
	queue := &mockQueue{}
	svc := newTestRecommender(t, &mockRetriever{}, &mockBehavior{}, &mockProducts{}, queue)

	err := svc.RecordFeedback(context.Background(), &models.RecordFeedbackRequest{
		UserID:    "u1",
		ProductID: "ghost",
		Action:    "click",
	})

	var notFound *recerrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, queue.events)
}

func TestRecommender_RecordFeedback_BackfillsContextFromCatalog(t *testing.T) {
	queue := &mockQueue{}
	products := &mockProducts{byID: map[string]*models.Product{
		"p1": testProduct("p1", "laptop", "Dell", 899, 4.4),
	}}
	svc := newTestRecommender(t, &mockRetriever{}, &mockBehavior{}, products, queue)

	err := svc.RecordFeedback(context.Background(), &models.RecordFeedbackRequest{
		UserID:    "u1",
		ProductID: "p1",
		Action:    "purchase",
	})
	require.NoError(t, err)

	require.Len(t, queue.events, 1)
	event := queue.events[0]
	assert.Equal(t, models.ActionPurchase, event.Action)
	assert.Equal(t, "laptop", event.Context.Category)
	assert.Equal(t, "Dell", event.Context.Brand)
	assert.InDelta(t, 899, event.Context.Price, 1e-9)
}

func TestRecommender_Personalized_TrendingFallback(t *testing.T) {
	products := &mockProducts{byID: map[string]*models.Product{
		"hot1": testProduct("hot1", "headphones", "sony", 199, 4.6),
		"hot2": testProduct("hot2", "laptop", "lenovo", 799, 4.3),
	}}
	behavior := &mockBehavior{trending: []string{"hot1", "hot2"}}
	svc := newTestRecommender(t, &mockRetriever{}, behavior, products, &mockQueue{})

	resp, err := svc.Personalized(context.Background(), &models.PersonalizedRequest{UserID: "stranger"})
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 2)
	assert.Equal(t, "hot1", resp.Recommendations[0].Product.ID)
	assert.NotEmpty(t, resp.Recommendations[0].Explanation)
}

func TestRecommender_Personalized_NoSignalAtAllReturnsEmpty(t *testing.T) {
	svc := newTestRecommender(t, &mockRetriever{}, &mockBehavior{}, &mockProducts{}, &mockQueue{})

	resp, err := svc.Personalized(context.Background(), &models.PersonalizedRequest{UserID: "stranger"})
	require.NoError(t, err)
	assert.Empty(t, resp.Recommendations)
}

func TestRecommender_Personalized_DerivesIntentFromProfile(t *testing.T) {
	profile := &models.UserBehaviorProfile{
		UserID:           "u1",
		CategoryAffinity: map[string]float64{"laptop": 2.5, "headphones": 0.4},
		CategoryProfiles: map[string]*models.CategoryProfile{
			"laptop": {
				Category: "laptop",
				BrandAffinity: map[string]models.DecayedSignal{
					"dell":   {Weight: 1.2, Events: 4},
					"lenovo": {Weight: 0.3, Events: 1},
					"asus":   {Weight: -0.5, Events: 1},
				},
				TotalSpent: 1800,
				Purchases:  2,
				AvgPrice:   900,
			},
		},
		Interactions: 40,
	}

	retriever := &mockRetriever{retrieveFunc: func(context.Context, string, []string, models.SearchFilters) ([]models.Candidate, error) {
		return []models.Candidate{candidateFor(testProduct("p1", "laptop", "dell", 850, 4.5), 0.9)}, nil
	}}
	behavior := &mockBehavior{profile: profile, confidence: 0.7}
	svc := newTestRecommender(t, retriever, behavior, &mockProducts{}, &mockQueue{})

	resp, err := svc.Personalized(context.Background(), &models.PersonalizedRequest{UserID: "u1"})
	require.NoError(t, err)

	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "laptop", resp.QueryUnderstanding.Category)
	assert.Equal(t, []string{"dell", "lenovo"}, resp.QueryUnderstanding.BrandPreferences)
	assert.InDelta(t, 900*purchaseHeadroom, resp.QueryUnderstanding.MaxPrice, 1e-9)
	assert.Contains(t, retriever.lastFilters.Categories, "laptop")
}

func TestRecommender_Analytics(t *testing.T) {
	products := &mockProducts{byID: map[string]*models.Product{
		"p1": testProduct("p1", "laptop", "dell", 899, 4.4),
	}}
	behavior := &mockBehavior{analytics: models.BehaviorAnalytics{TotalUsers: 3, TotalFeedbackEvents: 42}}
	svc := newTestRecommender(t, &mockRetriever{}, behavior, products, &mockQueue{})

	analytics := svc.Analytics(context.Background())
	assert.Equal(t, 3, analytics.Behavior.TotalUsers)
	require.NotNil(t, analytics.Collection)
	assert.Equal(t, int64(1), analytics.Collection.Count)
}

func TestRecommender_Health_DegradedWhenStoreUnreachable(t *testing.T) {
	products := &mockProducts{collectionErr: assert.AnError}
	svc := newTestRecommender(t, &mockRetriever{}, &mockBehavior{}, products, &mockQueue{})

	status := svc.Health(context.Background())
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "unreachable", status.Components["vector_store"])

	svc = newTestRecommender(t, &mockRetriever{}, &mockBehavior{}, &mockProducts{}, &mockQueue{})
	assert.Equal(t, "ok", svc.Health(context.Background()).Status)
}

func TestBuildBudgetInsight(t *testing.T) {
	recs := []models.Recommendation{{Product: models.Product{Price: 600}}}

	t.Run("under budget", func(t *testing.T) {
		insight := buildBudgetInsight(recs, 800)
		require.NotNil(t, insight)
		assert.InDelta(t, 200, insight.Savings, 1e-9)
		assert.InDelta(t, 0.75, insight.Utilization, 1e-9)
		assert.Equal(t, "Excellent Value", insight.ValueRating)
	})

	t.Run("no budget means no insight", func(t *testing.T) {
		assert.Nil(t, buildBudgetInsight(recs, 0))
	})

	t.Run("no results means no insight", func(t *testing.T) {
		assert.Nil(t, buildBudgetInsight(nil, 800))
	})
}

func TestRecommender_Recommend_RecordsPipelineMetrics(t *testing.T) {
	p := testProduct("p1", "laptop", "lenovo", 750, 4.5)
	retriever := &mockRetriever{retrieveFunc: func(context.Context, string, []string, models.SearchFilters) ([]models.Candidate, error) {
		return []models.Candidate{candidateFor(p, 0.9)}, nil
	}}
	metrics := &mockPipelineMetrics{}

	// Exploration rate 1.0 so the boost fires every pass.
	engine, err := ranking.NewEngine(ranking.DefaultWeights, ranking.WithExplorationRate(1.0))
	require.NoError(t, err)

	intents := &mockIntents{understandFunc: func(context.Context, string) *models.ParsedIntent {
		return &models.ParsedIntent{Priority: models.PriorityBalanced}
	}}

	svc := NewRecommender(
		intents,
		retriever,
		engine,
		explain.NewExplainer(nil, 0),
		&mockBehavior{},
		&mockProducts{},
		embeddings.NewMockClient(),
		&mockQueue{},
		Options{MaxCandidates: 10, AlternativeCount: 3, Metrics: metrics},
	)

	_, err = svc.Recommend(context.Background(), &models.RecommendRequest{Query: "laptop for work"})
	require.NoError(t, err)

	assert.Equal(t, []string{"intent", "retrieval", "ranking", "explanation"}, metrics.stages)
	assert.Equal(t, []int{1}, metrics.recommendations)
	assert.Equal(t, 1, metrics.explorations)
}
