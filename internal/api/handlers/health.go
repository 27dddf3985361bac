package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"folio-api/internal/background"
	"folio-api/internal/llm"
	"folio-api/pkg/models"
	"folio-api/pkg/utils"
)

var startTime = time.Now()

const serviceVersion = "1.0.0"

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	})
}

// ReadinessHandler reports whether the service's dependencies can take
// traffic. Redis and the LLM provider are checked live; blob storage is
// checked lazily because a cold HeadBucket is slow.
func ReadinessHandler(llmManager *llm.Manager, redisClient *utils.RedisClient, taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{"api": "ok"}
		status := "ready"
		code := http.StatusOK

		if err := redisClient.IsHealthy(c.Request().Context()); err != nil {
			checks["redis"] = "unavailable"
			status = "degraded"
		} else {
			checks["redis"] = "ok"
		}

		if llmManager.IsHealthy() {
			checks["llm"] = "ok"
		} else {
			checks["llm"] = "unavailable"
			status = "degraded"
		}

		if taskManager.IsHealthy() {
			checks["tasks"] = "ok"
		} else {
			checks["tasks"] = "unavailable"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   serviceVersion,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Uptime:    time.Since(startTime),
	})
}

// StatusHandler provides detailed service status, including live probes of
// the LLM provider and blob storage. Heavier than readiness on purpose; it
// sits behind a route monitoring calls at a low rate.
func StatusHandler(llmManager *llm.Manager, blob *utils.SpacesClient) echo.HandlerFunc {
	return func(c echo.Context) error {
		llmStatus := "operational"
		if err := llmManager.CheckHealth(c.Request().Context()); err != nil {
			llmStatus = "degraded"
		}

		blobStatus := "operational"
		if err := blob.IsHealthy(); err != nil {
			blobStatus = "degraded"
		}

		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "operational",
			Timestamp: time.Now(),
			Version:   serviceVersion,
			Uptime:    time.Since(startTime),
			Checks: map[string]string{
				"api":          "operational",
				"llm_provider": llmManager.GetProviderName(),
				"llm":          llmStatus,
				"blob":         blobStatus,
			},
		})
	}
}
