// Package router assembles the gin engine.
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pandeptwidyaop/hostbridge/internal/config"
	"github.com/pandeptwidyaop/hostbridge/internal/handlers"
	"github.com/pandeptwidyaop/hostbridge/internal/middleware"
	"github.com/pandeptwidyaop/hostbridge/internal/services"
)

// New builds the HTTP surface. The rate limiter's cleanup goroutine runs
// until ctx is cancelled.
func New(ctx context.Context, cfg *config.Config, dispatcher *services.Dispatcher, auditService *services.AuditService) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.SecurityHeaders())

	invokeHandler := handlers.NewInvokeHandler(dispatcher)
	wsHandler := handlers.NewWSHandler(dispatcher, cfg.Server.AllowedOrigins, cfg.Server.MaxBodyBytes)
	systemHandler := handlers.NewSystemHandler(dispatcher)
	auditHandler := handlers.NewAuditHandler(auditService)

	prefix := r.Group(cfg.Server.PathPrefix)
	prefix.GET("/healthz", systemHandler.Health)

	api := prefix.Group("/api")
	api.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	api.Use(middleware.NewRateLimiter(ctx, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst).Middleware())
	{
		// Public version endpoint
		api.GET("/version", systemHandler.Version)

		protected := api.Group("")
		protected.Use(middleware.TokenAuth(cfg.Auth.Token))
		{
			protected.POST("/invoke/:cmd", middleware.BodySizeLimit(cfg.Server.MaxBodyBytes), invokeHandler.Invoke)
			protected.GET("/ws", wsHandler.Serve)
			protected.GET("/allowlist", systemHandler.Allowlist)
			protected.GET("/status", systemHandler.Status)
			protected.GET("/audit", auditHandler.List)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
