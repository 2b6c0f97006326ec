package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ressKim-io/prompt-guard/internal/adapter/http/handler"
	"github.com/ressKim-io/prompt-guard/internal/adapter/http/middleware"
	"github.com/ressKim-io/prompt-guard/internal/usecase"
)

// Dependencies groups what the router wires into handlers
type Dependencies struct {
	Gate       *usecase.ReadinessGate
	ClassifyUC usecase.ClassifyUsecase
	ModelID    string
	Gatherer   prometheus.Gatherer
	Logger     *zap.Logger
}

// Setup creates and configures the Gin router
func Setup(deps Dependencies) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handler.NewHealthHandler(deps.Gate, deps.ModelID)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Prometheus metrics
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Classification routes
	classifyHandler := handler.NewClassifyHandler(deps.ClassifyUC)
	router.POST("/classify", classifyHandler.Classify)
	router.POST("/classify/batch", classifyHandler.ClassifyBatch)

	return router
}
