package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/docs"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/middleware"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/observability"
)

// maxBodySize bounds request bodies accepted by the router
const maxBodySize = 1 << 20

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	UserHandler *UserHandler
	BasePath    string
	Gatherer    prometheus.Gatherer
	MetricsPath string
	Logger      *logrus.Logger
	Metrics     *observability.Metrics
}

// SetupRoutes configures all routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	// Swagger documentation
	docs.SwaggerInfo.BasePath = config.BasePath
	if docs.SwaggerInfo.BasePath == "" {
		docs.SwaggerInfo.BasePath = "/"
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "users-api",
		})
	})

	if config.Gatherer != nil {
		path := config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{})))
	}

	// every method reaches the handler; it answers 405 itself
	usersPath := config.BasePath + "/users"
	router.Any(usersPath, config.UserHandler.ServeGin)

	// Any covers the standard methods only; the rest arrive here
	router.NoRoute(func(c *gin.Context) {
		if c.Request.URL.Path == usersPath {
			config.UserHandler.ServeGin(c)
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
	})
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, config *RouterConfig) {
	router.Use(middleware.Recovery(config.Logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(maxBodySize))
	router.Use(middleware.StructuredLogger(config.Logger))

	if config.Metrics != nil {
		router.Use(config.Metrics.GinMiddleware())
	}
}

// NewRouter builds a gin engine with middleware and routes installed
func NewRouter(config *RouterConfig) *gin.Engine {
	router := gin.New()
	SetupMiddleware(router, config)
	SetupRoutes(router, config)
	return router
}
