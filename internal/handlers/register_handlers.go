package handlers

import (
	"net/http"

	"github.com/SscSPs/bookkeeping_core/cmd/docs"
	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/middleware"
	"github.com/SscSPs/bookkeeping_core/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	apiMiddleware ...gin.HandlerFunc,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, services, apiMiddleware...)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	apiMiddleware ...gin.HandlerFunc,
) {
	// Rate limiting runs before the actor is resolved.
	chain := append(append([]gin.HandlerFunc{}, apiMiddleware...), middleware.ActorMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	v1 := r.Group("/api/v1", chain...)

	registerAccountRoutes(v1, service.Account, service.Ledger)
	registerTransactionRoutes(v1, service.Transaction, service.Payment, service.Recalc)
	registerExchangeRateRoutes(v1, service.ExchangeRate)
	registerReportingRoutes(v1, service.Ledger)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
