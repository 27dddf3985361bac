package background

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"folio-api/internal/callback"
	"folio-api/internal/logging"
	"folio-api/internal/logging/types"
)

// TaskCompletionLogger handles structured logging for task completion and
// optional webhook delivery of completion payloads
type TaskCompletionLogger struct {
	logger          types.Logger
	callbackClient  *callback.Client
	callbackEnabled bool
}

// NewTaskCompletionLogger creates a new task completion logger
func NewTaskCompletionLogger() *TaskCompletionLogger {
	return &TaskCompletionLogger{
		logger: logging.GetGlobalLogger(),
	}
}

// NewTaskCompletionLoggerWithCallback creates a task completion logger that
// also delivers completions to the configured webhook
func NewTaskCompletionLoggerWithCallback(callbackClient *callback.Client, enabled bool) *TaskCompletionLogger {
	return &TaskCompletionLogger{
		logger:          logging.GetGlobalLogger(),
		callbackClient:  callbackClient,
		callbackEnabled: enabled,
	}
}

// TaskCompletionLog represents the structured log entry for task completion
type TaskCompletionLog struct {
	ProcessID      string                 `json:"processId"`
	Status         string                 `json:"status"`
	Data           interface{}            `json:"data,omitempty"`
	Error          string                 `json:"error,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
	Operation      string                 `json:"operation"`
	ProcessingTime string                 `json:"processing_time"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// LogTaskCompletion logs task completion in structured JSON format and
// delivers the webhook callback when enabled
func (l *TaskCompletionLogger) LogTaskCompletion(result *TaskResult) error {
	logEntry := createCompletionLog(result)

	jsonData, err := json.Marshal(logEntry)
	if err != nil {
		l.logger.Error("Failed to marshal task completion log", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("failed to marshal task completion log: %w", err)
	}

	// One-line JSON to stdout for container log collectors
	fmt.Println(string(jsonData))

	l.logger.Info("Background task completed", map[string]interface{}{
		"process_id":      result.ProcessID,
		"status":          result.Status,
		"operation":       result.Type,
		"processing_time": logEntry.ProcessingTime,
	})

	if l.callbackEnabled && l.callbackClient != nil {
		if err := l.sendTaskCallback(context.Background(), result, logEntry); err != nil {
			l.logger.Error("Failed to send task callback", map[string]interface{}{
				"process_id": result.ProcessID,
				"error":      err.Error(),
			})
			// Logging succeeded, only the callback failed
		}
	}

	return nil
}

// LogTaskStart logs when a task starts processing
func (l *TaskCompletionLogger) LogTaskStart(processID string, taskType TaskType) {
	l.logger.Info("Background task started", map[string]interface{}{
		"process_id": processID,
		"operation":  taskType,
		"status":     "PROCESSING",
	})
}

// LogTaskAccepted logs when a task is accepted for processing
func (l *TaskCompletionLogger) LogTaskAccepted(processID string, taskType TaskType) {
	l.logger.Info("Background task accepted", map[string]interface{}{
		"process_id": processID,
		"operation":  taskType,
		"status":     "ACCEPTED",
	})
}

// LogTaskError logs task errors during processing
func (l *TaskCompletionLogger) LogTaskError(processID string, taskType TaskType, err error) {
	l.logger.Error("Background task failed", map[string]interface{}{
		"process_id": processID,
		"operation":  taskType,
		"status":     "FAILURE",
		"error":      err.Error(),
	})
}

// LogTaskSuccess logs successful task completion
func (l *TaskCompletionLogger) LogTaskSuccess(processID string, taskType TaskType, processingTime time.Duration) {
	l.logger.Info("Background task completed successfully", map[string]interface{}{
		"process_id":      processID,
		"operation":       taskType,
		"status":          "SUCCESS",
		"processing_time": processingTime,
	})
}

func createCompletionLog(result *TaskResult) *TaskCompletionLog {
	processingTimeStr := "0s"
	if result.ProcessingTime != nil {
		processingTimeStr = result.ProcessingTime.String()
	}

	return &TaskCompletionLog{
		ProcessID:      result.ProcessID,
		Status:         string(result.Status),
		Data:           result.Data,
		Error:          result.Error,
		Timestamp:      time.Now(),
		Operation:      string(result.Type),
		ProcessingTime: processingTimeStr,
		Metadata:       result.Metadata,
	}
}

// sendTaskCallback delivers the completion payload to the webhook
func (l *TaskCompletionLogger) sendTaskCallback(ctx context.Context, result *TaskResult, logEntry *TaskCompletionLog) error {
	payload := &callback.Payload{
		ProcessID:      result.ProcessID,
		Operation:      string(result.Type),
		Status:         string(result.Status),
		Data:           result.Data,
		Error:          result.Error,
		ProcessingTime: logEntry.ProcessingTime,
		Metadata:       result.Metadata,
		Timestamp:      logEntry.Timestamp,
	}

	return l.callbackClient.Send(ctx, payload)
}
