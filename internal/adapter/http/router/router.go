package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Wesley-Jzy/fasttext-serving/internal/adapter/http/handler"
	"github.com/Wesley-Jzy/fasttext-serving/internal/adapter/http/middleware"
	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/service"
	"github.com/Wesley-Jzy/fasttext-serving/internal/infrastructure/config"
	"github.com/Wesley-Jzy/fasttext-serving/internal/infrastructure/metrics"
	"github.com/Wesley-Jzy/fasttext-serving/internal/usecase"
)

// Dependencies are the components the HTTP transport is built from.
// Redis and Metrics are optional.
type Dependencies struct {
	Usecase usecase.PredictionUsecase
	Prober  service.ModelProber
	Redis   *redis.Client
	Metrics *metrics.Metrics
	Limiter *semaphore.Weighted
	Logger  *zap.Logger
	Server  config.ServerConfig
	Serving config.ServingConfig
	Version string
}

// Setup creates and configures the Gin router
func Setup(deps Dependencies) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS())
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	// Health endpoints
	healthHandler := handler.NewHealthHandler(deps.Prober, deps.Redis, deps.Version)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Prometheus metrics
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Inference routes
	predictionHandler := handler.NewPredictionHandler(deps.Usecase, deps.Serving.DefaultVectorDim)

	inference := router.Group("")
	inference.Use(middleware.BodyLimit(deps.Server.MaxRequestSizeBytes()))
	if deps.Limiter != nil {
		inference.Use(middleware.ConcurrencyLimit(deps.Limiter))
	}
	{
		inference.POST("/predict", predictionHandler.Predict)
		inference.POST("/sentence-vector", predictionHandler.SentenceVector)
	}

	return router
}
