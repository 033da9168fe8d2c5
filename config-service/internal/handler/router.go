package handler

import (
	"time"

	sharedMiddleware "config-console/shared/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

// NewRouter builds the engine with request ids, access logs, recovery,
// request metrics and CORS in front of every route. /metrics is served by p.
func NewRouter(h *ConfigHandler, p *ginprometheus.Prometheus, allowedOrigins []string, logger *zap.Logger, putMiddleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(sharedMiddleware.RequestID())
	router.Use(sharedMiddleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	// must run before any route is added; gin copies the middleware chain at registration
	p.Use(router)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:8084"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", sharedMiddleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/health", h.Health)
	router.HEAD("/health", h.Health)
	h.RegisterRoutes(router, putMiddleware...)
	return router
}
