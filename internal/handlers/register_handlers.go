package handlers

import (
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/shikshaspace/user-service/cmd/docs"
	portssvc "github.com/shikshaspace/user-service/internal/core/ports/services"
	"github.com/shikshaspace/user-service/internal/middleware"
	"github.com/shikshaspace/user-service/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	verifier *oidc.IDTokenVerifier,
	dbPool *pgxpool.Pool,
) {
	registerHealthRoutes(r, dbPool)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register public authentication routes
	registerAuthRoutes(r, services)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, services, verifier)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the authenticated /api/v1 group
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	verifier *oidc.IDTokenVerifier,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(verifier))

	registerUserRoutes(v1, services.User)
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
