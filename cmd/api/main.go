package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openaisdk "github.com/openai/openai-go/v3"

	"github.com/cartwise/recommender/internal/api/handlers"
	"github.com/cartwise/recommender/internal/api/middleware"
	"github.com/cartwise/recommender/internal/behavior"
	"github.com/cartwise/recommender/internal/config"
	"github.com/cartwise/recommender/internal/embeddings"
	"github.com/cartwise/recommender/internal/explain"
	"github.com/cartwise/recommender/internal/intent"
	"github.com/cartwise/recommender/internal/observability"
	"github.com/cartwise/recommender/internal/openai"
	"github.com/cartwise/recommender/internal/ranking"
	"github.com/cartwise/recommender/internal/repository"
	"github.com/cartwise/recommender/internal/retrieval"
	"github.com/cartwise/recommender/internal/service"
	"github.com/cartwise/recommender/pkg/database"
)

// maxRequestBody caps request payloads; the largest legitimate payload is a
// 100-product catalog batch, which fits comfortably in 1 MiB.
const maxRequestBody = 1 << 20

// profilePruneInterval is how often idle behavior profiles are swept when
// PROFILE_RETENTION is set.
const profilePruneInterval = time.Hour

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure slog with the log level from config
	observability.SetupLogging(cfg.LogLevel)

	// Initialize database connection
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	metrics := observability.NewMetrics()

	// Initialize the OpenAI client when a key is configured. Without one the
	// service still runs: deterministic mock embeddings, rule-based intent
	// parsing, template explanations.
	var llm *openai.Client
	var embedder embeddings.Client
	if cfg.OpenAIAPIKey != "" {
		llm = openai.NewClient(cfg.OpenAIAPIKey,
			openai.WithDimensions(cfg.EmbeddingDimensions),
			openai.WithEmbeddingModel(openaisdk.EmbeddingModel(cfg.EmbeddingModel)),
			openai.WithRateLimit(cfg.OpenAIRateLimit),
		)
		embedder = embeddings.NewOpenAIClient(llm)
		slog.Info("OpenAI integration enabled",
			"embedding_model", cfg.EmbeddingModel,
			"dimensions", cfg.EmbeddingDimensions,
			"rate_limit", cfg.OpenAIRateLimit,
		)
	} else {
		embedder = embeddings.NewMockClientWithDimensions(cfg.EmbeddingDimensions)
		slog.Info("OpenAI integration disabled (OPENAI_API_KEY not set), using deterministic embeddings")
	}

	// Initialize repositories
	productsRepo := repository.NewProductsRepository(db)

	// Refuse to serve when the configured dimension does not match the
	// vector column; every search and upsert would fail otherwise.
	columnDim, err := productsRepo.EmbeddingDimension(ctx)
	if err != nil {
		slog.Error("Failed to read embedding column dimension", "error", err)
		os.Exit(1)
	}
	if err := repository.ValidateEmbeddingDimension(cfg.EmbeddingDimensions, columnDim); err != nil {
		slog.Error("Embedding dimension mismatch", "error", err)
		os.Exit(1)
	}

	cachedProducts, err := service.NewCachingProductsRepository(productsRepo, 1024)
	if err != nil {
		slog.Error("Failed to initialize product cache", "error", err)
		os.Exit(1)
	}

	// Initialize the in-memory behavior store and its async feedback recorder
	behaviorStore := behavior.NewMemoryStore(
		behavior.WithHalfLife(cfg.DecayHalfLifeDays),
		behavior.WithConfidenceCurve(cfg.ConfidenceMidpoint, cfg.ConfidenceScale),
	)
	recorder := service.NewFeedbackRecorder(behaviorStore, service.WithDropMetrics(metrics))

	// Initialize pipeline stages
	var intentLLM intent.LLMClient
	var explainLLM explain.LLMClient
	if llm != nil {
		intentLLM = llm
		explainLLM = llm
	}

	extractor := intent.NewExtractor(intentLLM, cfg.LLMCallTimeout)
	retriever := retrieval.NewRetriever(embedder, productsRepo, retrieval.Options{
		TopK:        cfg.RetrievalTopK,
		MinScore:    cfg.ScoreThreshold,
		DenseWeight: cfg.DenseWeight,
	})
	engine, err := ranking.NewEngine(
		ranking.Weights(cfg.Weights),
		ranking.WithExplorationRate(cfg.ExplorationRate),
		ranking.WithConfidenceCurve(cfg.ConfidenceMidpoint, cfg.ConfidenceScale),
	)
	if err != nil {
		slog.Error("Failed to initialize ranking engine", "error", err)
		os.Exit(1)
	}
	explainer := explain.NewExplainer(explainLLM, cfg.LLMCallTimeout)

	// Initialize services
	recommender := service.NewRecommender(
		extractor, retriever, engine, explainer,
		behaviorStore, cachedProducts, embedder, recorder,
		service.Options{
			MaxCandidates: cfg.MaxCandidates,
			DefaultLimit:  cfg.ResultCount,
			Metrics:       metrics,
		},
	)
	catalog := service.NewCatalogService(cachedProducts, embedder)

	recommendationsHandler := handlers.NewRecommendationsHandler(recommender)
	feedbackHandler := handlers.NewFeedbackHandler(recommender)
	profilesHandler := handlers.NewProfilesHandler(recommender)
	analyticsHandler := handlers.NewAnalyticsHandler(recommender)
	productsHandler := handlers.NewProductsHandler(catalog)
	healthHandler := handlers.NewHealthHandler(recommender)

	// Set up public endpoints (no authentication required)
	publicMux := http.NewServeMux()
	publicMux.HandleFunc("GET /health", healthHandler.Check)
	publicMux.Handle("GET /metrics", metrics.Handler())

	var publicHandler http.Handler = publicMux

	// Set up protected endpoints (authentication required)
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /v1/recommendations", recommendationsHandler.Recommend)
	protectedMux.HandleFunc("POST /v1/recommendations/personalized", recommendationsHandler.Personalized)
	protectedMux.HandleFunc("POST /v1/feedback", feedbackHandler.Record)
	protectedMux.HandleFunc("GET /v1/profiles/{user_id}", profilesHandler.Get)
	protectedMux.HandleFunc("GET /v1/analytics", analyticsHandler.Get)
	protectedMux.HandleFunc("POST /v1/products", productsHandler.Upsert)
	protectedMux.HandleFunc("DELETE /v1/products/{id}", productsHandler.Delete)
	protectedMux.HandleFunc("GET /v1/products/collection", productsHandler.Collection)

	var protectedHandler http.Handler = protectedMux
	protectedHandler = middleware.Auth(cfg.APIKey)(protectedHandler)

	// Combine both handlers
	mainMux := http.NewServeMux()
	mainMux.Handle("/v1/", protectedHandler)
	mainMux.Handle("/", publicHandler) // Catch-all for public routes (/health, /metrics)

	// Order matters: Metrics must be outermost so recorded durations include
	// every inner layer, and RequestID must wrap the muxes so handler logs
	// carry the id.
	var handler http.Handler = mainMux
	handler = middleware.MaxBody(maxRequestBody)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Metrics(metrics)(handler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	if cfg.ProfileRetention > 0 {
		go pruneProfiles(workerCtx, behaviorStore, cfg.ProfileRetention)
		slog.Info("Profile retention sweeper enabled", "retention", cfg.ProfileRetention)
	}

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// 2. Drain queued feedback events so accepted signals are not lost
	recorder.Shutdown()
	if dropped := recorder.Dropped(); dropped > 0 {
		slog.Warn("Feedback events dropped during this run", "dropped", dropped)
	}

	slog.Info("Server exited")
}

// pruneProfiles sweeps idle behavior profiles on a fixed interval until the
// context is cancelled.
func pruneProfiles(ctx context.Context, store *behavior.MemoryStore, maxIdle time.Duration) {
	ticker := time.NewTicker(profilePruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := store.Prune(maxIdle); removed > 0 {
				slog.Info("Pruned idle behavior profiles", "removed", removed, "max_idle", maxIdle)
			}
		}
	}
}
