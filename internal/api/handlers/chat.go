package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"folio-api/internal/api/middleware"
	"folio-api/internal/api/validation"
	"folio-api/internal/background"
	"folio-api/internal/llm"
	"folio-api/internal/logging"
	"folio-api/pkg/models"
	"folio-api/pkg/utils"
)

var requestValidator = validator.New()

func init() {
	validation.RegisterResumeValidators(requestValidator)
}

// ChatHandler handles POST /api/v1/chat: it answers a visitor message with
// the conversation history as context and persists both turns in Redis
func ChatHandler(llmManager *llm.Manager, redisClient *utils.RedisClient) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)
		logger := logging.GetGlobalLogger()

		var req models.ChatRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "Invalid request body: "+err.Error())
		}
		if err := requestValidator.Struct(&req); err != nil {
			return badRequest(c, requestID, "Request validation failed: "+err.Error())
		}

		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = utils.GenerateSessionID()
		}

		ctx := c.Request().Context()

		// A missing history just means a fresh session
		var history []models.ChatTurn
		if stored, err := redisClient.GetConversationHistory(ctx, sessionID); err == nil {
			history = make([]models.ChatTurn, 0, len(stored.Entries))
			for _, entry := range stored.Entries {
				history = append(history, models.ChatTurn{Role: entry.Role, Content: entry.Content})
			}
		}

		reply, err := llmManager.Chat(ctx, history, req.Message)
		if err != nil {
			logger.Error("Chat completion failed", map[string]interface{}{
				"request_id": requestID,
				"session_id": sessionID,
				"error":      err.Error(),
			})
			return serviceUnavailable(c, requestID, "Chat is temporarily unavailable")
		}

		// History persistence is best effort; the reply already exists.
		if err := redisClient.AddConversationEntry(ctx, sessionID, utils.ConversationEntry{Role: "user", Content: req.Message}); err != nil {
			logger.Warn("Failed to persist user chat entry", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
		if err := redisClient.AddConversationEntry(ctx, sessionID, utils.ConversationEntry{Role: "assistant", Content: reply}); err != nil {
			logger.Warn("Failed to persist assistant chat entry", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}

		return c.JSON(http.StatusOK, models.ChatResponse{
			SessionID: sessionID,
			Reply:     reply,
			RequestID: requestID,
			Timestamp: time.Now(),
		})
	}
}

// ArchiveChatHandler handles POST /api/v1/chat/:session_id/archive: it
// submits a background task that flushes the transcript to blob storage
func ArchiveChatHandler(taskManager background.TaskManager, redisClient *utils.RedisClient, blob *utils.SpacesClient) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)

		sessionID := c.Param("session_id")
		if sessionID == "" {
			return badRequest(c, requestID, "Session ID is required")
		}

		processID := utils.GenerateProcessID()
		if err := taskManager.SubmitArchiveTask(c.Request().Context(), processID, sessionID, redisClient, blob); err != nil {
			return c.JSON(http.StatusInternalServerError, models.CreateAsyncErrorResponse(
				"task_submission_failed",
				"Failed to submit archive task: "+err.Error(),
				processID,
			))
		}

		return c.JSON(http.StatusAccepted, models.AsyncAnalyzeResponse{
			ProcessID: processID,
			Status:    models.AsyncStatusAccepted,
			Message:   "Transcript archival accepted for background processing",
			Timestamp: time.Now(),
		})
	}
}

func badRequest(c echo.Context, requestID, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:     "invalid_request",
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}

func serviceUnavailable(c echo.Context, requestID, message string) error {
	return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
		Error:     "service_unavailable",
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}
