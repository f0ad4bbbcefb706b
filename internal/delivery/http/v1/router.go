package v1

import (
	"go-talent-search-backend/config"
	"go-talent-search-backend/internal/delivery/http/middleware"
	"go-talent-search-backend/internal/delivery/http/response"
	"go-talent-search-backend/internal/domain"
	"go-talent-search-backend/internal/usecase"
	"go-talent-search-backend/pkg/auth"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	SearchUC     domain.SearchUsecase
	FeedbackUC   domain.FeedbackUsecase
	HealthUC     usecase.HealthUsecase
	JWKSProvider *auth.Provider
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware()) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger()) // Use standard Gin logger
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())

	// Prometheus scrape endpoint (outside /v1, no auth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		if status["status"] != "ok" {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config))
	protected.Use(middleware.RateLimitMiddleware(middleware.SearchRateLimitConfig(
		deps.Config.RateLimitSearchThreshold,
		time.Duration(deps.Config.RateLimitWindowSeconds)*time.Second,
	)))
	{
		NewSearchHandler(protected, deps.SearchUC, deps.FeedbackUC)
	}

	return r
}
