package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"folio-api/internal/api/handlers"
	"folio-api/internal/api/middleware"
	"folio-api/internal/audit"
	"folio-api/internal/auth"
	"folio-api/internal/background"
	"folio-api/internal/config"
	"folio-api/internal/fetch"
	"folio-api/internal/llm"
	"folio-api/internal/ratelimit"
	"folio-api/pkg/utils"
)

// Dependencies carries the shared services the route handlers need
type Dependencies struct {
	Config        *config.Config
	LLMManager    *llm.Manager
	TaskManager   background.TaskManager
	RedisClient   *utils.RedisClient
	BlobClient    *utils.SpacesClient
	Fetcher       *fetch.Fetcher
	Sessions      *auth.SessionManager
	APIKeys       *auth.APIKeyStore
	AuditRecorder *audit.Recorder
	LocalLimiter  *ratelimit.LocalLimiter
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, deps *Dependencies) {
	cfg := deps.Config

	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig(cfg.Server.AllowedOrigins))
	e.Use(middleware.RequestValidation())
	// 30s for most endpoints, the LLM timeout for AI-bound endpoints
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.ReadTimeout))
	e.Use(middleware.LLMTimeoutConfig(cfg.LLM.Timeout))
	e.Use(middleware.TrafficCounter(deps.RedisClient))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(deps.LLMManager, deps.RedisClient, deps.TaskManager))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(deps.LLMManager, deps.BlobClient))

	// API v1 routes
	v1 := e.Group("/api/v1")

	// Public routes: API keys bypass the anonymous rate limit tier
	public := v1.Group("",
		middleware.APIKeyAuth(deps.APIKeys),
		middleware.RateLimit(cfg, deps.RedisClient, deps.LocalLimiter),
	)
	{
		public.POST("/chat", handlers.ChatHandler(deps.LLMManager, deps.RedisClient))
		public.POST("/chat/:session_id/archive", handlers.ArchiveChatHandler(deps.TaskManager, deps.RedisClient, deps.BlobClient))
		public.POST("/assess", handlers.AssessFitHandler(deps.LLMManager, deps.Fetcher))

		resume := public.Group("/resume")
		{
			resume.POST("/analyze", handlers.AnalyzeResumeHandler(deps.LLMManager, deps.TaskManager, deps.BlobClient))
			resume.POST("/projection", handlers.ProjectionHandler())
		}

		public.GET("/tasks/:id", handlers.TaskStatusHandler(deps.TaskManager))
	}

	// Admin routes: login is open, everything else requires the session
	admin := v1.Group("/admin")
	{
		admin.POST("/login", handlers.AdminLoginHandler(cfg, deps.Sessions, deps.AuditRecorder))

		protected := admin.Group("", middleware.AdminAuth(deps.Sessions))
		{
			protected.GET("/audit", handlers.AuditListHandler(deps.AuditRecorder))
			protected.GET("/traffic", handlers.TrafficHandler(deps.RedisClient))
			protected.GET("/tasks", handlers.AdminTaskListHandler(deps.TaskManager))
			protected.GET("/keys", handlers.ListAPIKeysHandler(deps.APIKeys))
			protected.POST("/keys", handlers.CreateAPIKeyHandler(deps.APIKeys, deps.AuditRecorder))
			protected.DELETE("/keys/:id", handlers.DeleteAPIKeyHandler(deps.APIKeys, deps.AuditRecorder))
			protected.POST("/generate", handlers.GenerateResumeHandler(cfg, deps.AuditRecorder))
		}
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "Folio API",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
