package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quotewall/quotewall/internal/adapters/http/handlers"
	"github.com/quotewall/quotewall/internal/adapters/http/middleware"
	"github.com/quotewall/quotewall/internal/platform/config"
	"github.com/quotewall/quotewall/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AuthConfig contains token issuing configuration.
	AuthConfig *config.AuthConfig

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// QuoteHandler handles quote CRUD and listing endpoints.
	QuoteHandler *handlers.QuoteHandler

	// VoteHandler handles the vote endpoint.
	VoteHandler *handlers.VoteHandler

	// AuthHandler handles registration and token endpoints.
	AuthHandler *handlers.AuthHandler

	// TokenParser validates bearer tokens for protected routes. When nil,
	// only public routes are registered.
	TokenParser middleware.TokenParser

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips health endpoints)
//  6. Timeout - request deadline (applied per-route or globally)
//
// Route groups:
//   - /-/ (internal): Health endpoints, no auth required
//   - /api/v1/ (public API): Business endpoints, auth as needed
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	// Apply global middleware in order
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
	)

	// Register health endpoints (no auth, no timeout for probes)
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	// Setup API v1 routes with timeout
	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	// Register API routes
	setupAPIRoutes(apiV1, cfg)
}

// setupAPIRoutes registers business API routes. Read endpoints are public
// with optional authentication for vote enrichment; write endpoints require
// a valid bearer token.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthHandler != nil && cfg.TokenParser != nil {
		auth := rg.Group("/auth")
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.POST("/refresh", cfg.AuthHandler.Refresh)
		auth.POST("/logout", cfg.AuthHandler.Logout)
		auth.GET("/me", middleware.RequireAuth(cfg.TokenParser), cfg.AuthHandler.Profile)
	}

	if cfg.QuoteHandler != nil {
		quotes := rg.Group("/quotes")

		if cfg.TokenParser != nil {
			quotes.GET("", middleware.OptionalAuth(cfg.TokenParser), cfg.QuoteHandler.ListQuotes)
			quotes.GET("/:id", middleware.OptionalAuth(cfg.TokenParser), cfg.QuoteHandler.GetQuote)

			protected := quotes.Group("", middleware.RequireAuth(cfg.TokenParser))
			protected.GET("/me", cfg.QuoteHandler.ListMyQuotes)
			protected.POST("", cfg.QuoteHandler.CreateQuote)
			protected.PUT("/:id", cfg.QuoteHandler.UpdateQuote)
			protected.DELETE("/:id", cfg.QuoteHandler.DeleteQuote)
		} else {
			quotes.GET("", cfg.QuoteHandler.ListQuotes)
			quotes.GET("/:id", cfg.QuoteHandler.GetQuote)
		}
	}

	if cfg.VoteHandler != nil && cfg.TokenParser != nil {
		rg.PUT("/votes", middleware.RequireAuth(cfg.TokenParser), cfg.VoteHandler.CastVote)
	}
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
// Useful for testing or lightweight deployments.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	authCfg *config.AuthConfig,
	healthHandler *handlers.HealthHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AuthConfig:    authCfg,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		Timeout:       DefaultRequestTimeout,
	}
}
