package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"folio-api/internal/api/middleware"
	"folio-api/internal/audit"
	"folio-api/internal/auth"
	"folio-api/internal/background"
	"folio-api/internal/config"
	"folio-api/internal/exporter"
	"folio-api/internal/logging"
	"folio-api/internal/scoring"
	"folio-api/pkg/models"
	"folio-api/pkg/utils"
)

// AdminLoginHandler handles POST /api/v1/admin/login: on a correct password
// it sets the HttpOnly session cookie. Every attempt is audited.
func AdminLoginHandler(cfg *config.Config, sessions *auth.SessionManager, recorder *audit.Recorder) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)
		logger := logging.GetGlobalLogger()

		var req models.AdminLoginRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "Invalid request body: "+err.Error())
		}
		if err := requestValidator.Struct(&req); err != nil {
			return badRequest(c, requestID, "Request validation failed: "+err.Error())
		}

		if err := auth.VerifyPassword(req.Password, cfg.Auth.AdminPasswordHash); err != nil {
			recorder.Record(models.AuditEvent{
				Actor:     c.RealIP(),
				Action:    audit.ActionAdminLoginFailed,
				RequestID: requestID,
			})
			logger.Warn("Admin login rejected", map[string]interface{}{
				"request_id": requestID,
				"client":     c.RealIP(),
			})
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:     "unauthorized",
				Message:   "Invalid credentials",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		token, expiresAt, err := sessions.IssueToken()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "session_error",
				Message:   "Failed to issue session",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		c.SetCookie(&http.Cookie{
			Name:     sessions.CookieName(),
			Value:    token,
			Path:     "/",
			Expires:  expiresAt,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})

		recorder.Record(models.AuditEvent{
			Actor:     "admin",
			Action:    audit.ActionAdminLogin,
			RequestID: requestID,
		})

		return c.JSON(http.StatusOK, models.AdminLoginResponse{
			Success:   true,
			ExpiresAt: expiresAt,
		})
	}
}

// AuditListHandler handles GET /api/v1/admin/audit with limit/cursor
// pagination over the blob-backed event archive
func AuditListHandler(recorder *audit.Recorder) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)

		limit := 100
		if raw := c.QueryParam("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				limit = n
			}
		}

		page, err := recorder.List(c.Request().Context(), limit, c.QueryParam("cursor"))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "audit_read_failed",
				Message:   "Failed to read audit events: " + err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, page)
	}
}

// TrafficHandler handles GET /api/v1/admin/traffic?days=N, summarizing the
// per-day, per-route request counters kept in Redis
func TrafficHandler(redisClient *utils.RedisClient) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)

		days := 7
		if raw := c.QueryParam("days"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 35 {
				days = n
			}
		}

		ctx := c.Request().Context()
		response := models.TrafficStatsResponse{Days: make([]models.TrafficDay, 0, days)}

		for i := 0; i < days; i++ {
			day := time.Now().UTC().AddDate(0, 0, -i)
			counters, err := redisClient.GetTrafficCounters(ctx, day)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
					Error:     "traffic_read_failed",
					Message:   "Failed to read traffic counters: " + err.Error(),
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}

			var dayTotal int64
			for _, count := range counters {
				dayTotal += count
			}
			response.Total += dayTotal
			response.Days = append(response.Days, models.TrafficDay{
				Date:   day.Format("2006-01-02"),
				Routes: counters,
				Total:  dayTotal,
			})
		}

		return c.JSON(http.StatusOK, response)
	}
}

// ListAPIKeysHandler handles GET /api/v1/admin/keys
func ListAPIKeysHandler(keys *auth.APIKeyStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)

		records, err := keys.List(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "key_list_failed",
				Message:   "Failed to list API keys: " + err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"keys":  records,
			"count": len(records),
		})
	}
}

// CreateAPIKeyHandler handles POST /api/v1/admin/keys. The raw key appears
// in this response and nowhere else.
func CreateAPIKeyHandler(keys *auth.APIKeyStore, recorder *audit.Recorder) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)

		var req models.CreateAPIKeyRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "Invalid request body: "+err.Error())
		}
		if err := requestValidator.Struct(&req); err != nil {
			return badRequest(c, requestID, "Request validation failed: "+err.Error())
		}

		created, err := keys.Create(c.Request().Context(), req.Label)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "key_create_failed",
				Message:   "Failed to create API key: " + err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		recorder.Record(models.AuditEvent{
			Actor:     "admin",
			Action:    audit.ActionKeyCreated,
			Target:    created.ID,
			RequestID: requestID,
			Detail:    map[string]interface{}{"label": req.Label},
		})

		return c.JSON(http.StatusCreated, created)
	}
}

// DeleteAPIKeyHandler handles DELETE /api/v1/admin/keys/:id
func DeleteAPIKeyHandler(keys *auth.APIKeyStore, recorder *audit.Recorder) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)

		keyID := c.Param("id")
		if keyID == "" {
			return badRequest(c, requestID, "Key ID is required")
		}

		if err := keys.Delete(c.Request().Context(), keyID); err != nil {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "key_not_found",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		recorder.Record(models.AuditEvent{
			Actor:     "admin",
			Action:    audit.ActionKeyDeleted,
			Target:    keyID,
			RequestID: requestID,
		})

		return c.NoContent(http.StatusNoContent)
	}
}

// GenerateResumeHandler handles POST /api/v1/admin/generate: it applies the
// accepted changes, exports the document to blob storage and returns its
// URL with the final projected score
func GenerateResumeHandler(cfg *config.Config, recorder *audit.Recorder) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)
		logger := logging.GetGlobalLogger()

		var req models.GenerateResumeRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "Invalid request body: "+err.Error())
		}
		if err := requestValidator.Struct(&req); err != nil {
			return badRequest(c, requestID, "Request validation failed: "+err.Error())
		}

		finalScore := scoring.CalculateProjectedScore(
			req.Analysis.CurrentScore.Total,
			req.Analysis.ProposedChanges,
			req.AcceptedIndices,
			req.EditedTexts,
			req.Analysis.ScoreCeiling,
		)

		url, err := exporter.ExportResume(c.Request().Context(), cfg, req)
		if err != nil {
			code := "internal"
			message := err.Error()
			switch {
			case errors.Is(err, exporter.ErrRender):
				code = "render_error"
				message = "Failed to render resume document"
			case errors.Is(err, exporter.ErrStorageConfig):
				code = "storage_configuration"
				message = "Storage is not configured"
			case errors.Is(err, exporter.ErrUpload):
				code = "upload_failed"
				message = "Failed to upload resume document"
			}

			logger.Error("Resume export failed", map[string]interface{}{
				"request_id": requestID,
				"resume_id":  req.ResumeID,
				"error":      err.Error(),
			})

			return c.JSON(http.StatusInternalServerError, models.GenerateResumeResponse{
				Success:   false,
				Error:     code + ": " + message,
				RequestID: requestID,
			})
		}

		recorder.Record(models.AuditEvent{
			Actor:     "admin",
			Action:    audit.ActionResumeExported,
			Target:    req.ResumeID,
			RequestID: requestID,
			Detail: map[string]interface{}{
				"document_url": url,
				"final_score":  finalScore,
			},
		})

		return c.JSON(http.StatusOK, models.GenerateResumeResponse{
			Success:     true,
			DocumentURL: url,
			FinalScore:  finalScore,
			RequestID:   requestID,
		})
	}
}

// AdminTaskListHandler handles GET /api/v1/admin/tasks for monitoring
// background work
func AdminTaskListHandler(taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)

		tasks, err := taskManager.ListTasks(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "task_list_failed",
				Message:   "Failed to list tasks: " + err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"tasks": tasks,
			"count": len(tasks),
		})
	}
}
