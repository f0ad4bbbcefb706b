package main

import (
	"context"
	"go-talent-search-backend/config"
	v1 "go-talent-search-backend/internal/delivery/http/v1"
	"go-talent-search-backend/internal/domain"
	"go-talent-search-backend/internal/metrics"
	"go-talent-search-backend/internal/repository/postgres"
	"go-talent-search-backend/internal/repository/rediscache"
	"go-talent-search-backend/internal/usecase"
	"go-talent-search-backend/pkg/auth"
	"go-talent-search-backend/pkg/database"
	"go-talent-search-backend/pkg/embedding"
	"go-talent-search-backend/pkg/logger"
	"go-talent-search-backend/pkg/redis"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting talent search backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (cache + rate limiting). Non-fatal: search works
	// without the cache, rate limiting falls back to in-memory.
	if err := redis.Initialize(redis.Config{
		URL:      cfg.UpstashRedisURL,
		Password: cfg.UpstashRedisPassword,
	}); err != nil {
		logger.Log.Warn("Redis unavailable, continuing without cache", "error", err)
	}
	defer redis.Close()

	// 5. Setup Repositories
	searchRepo := postgres.NewSearchRepository(dbPool)
	synonymRepo := postgres.NewSynonymRepository(dbPool)
	feedbackRepo := postgres.NewFeedbackRepository(dbPool)
	searchLogRepo := postgres.NewSearchLogRepository(dbPool)

	// 6. Setup Embedding Provider
	embedder := embedding.NewClient(embedding.Config{
		APIKey:     cfg.EmbeddingAPIKey,
		BaseURL:    cfg.EmbeddingBaseURL,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDimensions,
	})

	// 7. Setup Cache and Metrics
	var searchCache domain.SearchCache
	if client := redis.Client(); client != nil {
		searchCache = rediscache.NewSearchCache(client, cfg.Search.CacheStaleGrace)
	}
	metrics.Register()
	recorder := metrics.NewRecorder()

	// 8. Setup UseCases
	validate := validator.New()
	searchUC := usecase.NewSearchUsecase(cfg.Search, searchRepo, synonymRepo, embedder, searchCache, searchLogRepo, recorder)
	feedbackUC := usecase.NewFeedbackUsecase(feedbackRepo, validate)
	healthUC := usecase.NewHealthUsecase(dbPool, redis.Client())

	// 9. Setup Auth Provider (JWKS)
	jwksProvider := auth.NewProvider(cfg.JWKSUrl)

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		SearchUC:     searchUC,
		FeedbackUC:   feedbackUC,
		HealthUC:     healthUC,
		JWKSProvider: jwksProvider,
		Config:       cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
