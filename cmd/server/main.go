package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"folio-api/internal/api/routes"
	"folio-api/internal/audit"
	"folio-api/internal/auth"
	"folio-api/internal/background"
	"folio-api/internal/callback"
	"folio-api/internal/config"
	"folio-api/internal/fetch"
	"folio-api/internal/llm"
	"folio-api/internal/logging"
	"folio-api/internal/ratelimit"
	"folio-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting Folio API")

	// Redis backs chat sessions, rate limiting and traffic counters
	redisClient := utils.NewRedisClient(cfg)
	defer redisClient.Close()

	// Blob storage backs the audit log, API keys, chat archives and exports
	blobClient, err := utils.NewSpacesClient(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize blob storage", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize LLM manager
	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(); err != nil {
		logger.Fatal("Failed to start LLM manager", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Optional webhook client for task completion notifications
	var completionLogger *background.TaskCompletionLogger
	if cfg.Callback.Enabled {
		callbackClient, err := callback.NewClient(cfg)
		if err != nil {
			logger.Fatal("Failed to initialize callback client", map[string]interface{}{
				"error": err.Error(),
			})
		}
		completionLogger = background.NewTaskCompletionLoggerWithCallback(callbackClient, true)
		logger.Info("Task completion webhooks enabled", map[string]interface{}{
			"webhook_url": cfg.Callback.WebhookURL,
		})
	}

	// Initialize background task manager
	taskManager := background.NewTaskManager(cfg, completionLogger)
	ctx := context.Background()
	if err := taskManager.Start(ctx); err != nil {
		logger.Fatal("Failed to start task manager", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Admin sessions and API keys
	sessions, err := auth.NewSessionManager(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize session manager", map[string]interface{}{
			"error": err.Error(),
		})
	}
	apiKeys := auth.NewAPIKeyStore(blobClient)

	// Audit recorder flushes batched admin events to blob storage
	auditRecorder := audit.NewRecorder(blobClient)

	// In-process fallback limiter used when Redis is unreachable
	localLimiter := ratelimit.NewLocalLimiter(cfg)

	fetcher := fetch.NewFetcher(cfg)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	routes.SetupRoutes(e, &routes.Dependencies{
		Config:        cfg,
		LLMManager:    llmManager,
		TaskManager:   taskManager,
		RedisClient:   redisClient,
		BlobClient:    blobClient,
		Fetcher:       fetcher,
		Sessions:      sessions,
		APIKeys:       apiKeys,
		AuditRecorder: auditRecorder,
		LocalLimiter:  localLimiter,
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Stop accepting new tasks and let in-flight ones drain first
		logger.Info("Stopping background task manager...")
		if err := taskManager.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping task manager", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Flushing audit events...")
		if err := auditRecorder.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error flushing audit events", map[string]interface{}{
				"error": err.Error(),
			})
		}

		localLimiter.Stop()

		logger.Info("Stopping LLM manager...")
		if err := llmManager.Stop(); err != nil {
			logger.Error("Error stopping LLM manager", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Fatal("Server failed to start", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
