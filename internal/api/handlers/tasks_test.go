package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-api/internal/background"
	"folio-api/internal/llm"
	"folio-api/pkg/models"
	"folio-api/pkg/utils"
)

// stubTaskManager serves canned task results for handler tests
type stubTaskManager struct {
	results map[string]*background.TaskResult
}

func (s *stubTaskManager) Start(ctx context.Context) error { return nil }
func (s *stubTaskManager) Stop(ctx context.Context) error  { return nil }
func (s *stubTaskManager) IsHealthy() bool                 { return true }

func (s *stubTaskManager) SubmitAnalyzeTask(ctx context.Context, processID string, request models.AnalyzeResumeRequest, llmManager *llm.Manager, blob *utils.SpacesClient) error {
	return nil
}

func (s *stubTaskManager) SubmitArchiveTask(ctx context.Context, processID, sessionID string, redisClient *utils.RedisClient, blob *utils.SpacesClient) error {
	return nil
}

func (s *stubTaskManager) GetTaskResult(ctx context.Context, processID string) (*background.TaskResult, error) {
	if result, ok := s.results[processID]; ok {
		return result, nil
	}
	return nil, background.ErrTaskNotFound
}

func (s *stubTaskManager) GetTaskStatus(ctx context.Context, processID string) (background.TaskStatus, error) {
	result, err := s.GetTaskResult(ctx, processID)
	if err != nil {
		return "", err
	}
	return result.Status, nil
}

func (s *stubTaskManager) ListTasks(ctx context.Context) ([]*background.TaskResult, error) {
	var all []*background.TaskResult
	for _, result := range s.results {
		all = append(all, result)
	}
	return all, nil
}

func getTaskStatus(t *testing.T, manager background.TaskManager, processID string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+processID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/tasks/:id")
	c.SetParamNames("id")
	c.SetParamValues(processID)

	require.NoError(t, TaskStatusHandler(manager)(c))
	return rec
}

func TestTaskStatusHandler_ReturnsResult(t *testing.T) {
	created := time.Now().Add(-2 * time.Second)
	manager := &stubTaskManager{results: map[string]*background.TaskResult{
		"proc-1": {
			ProcessID: "proc-1",
			Type:      background.TaskTypeAnalyze,
			Status:    background.TaskStatusSuccess,
			CreatedAt: created,
		},
	}}

	rec := getTaskStatus(t, manager, "proc-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AsyncTaskStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "proc-1", resp.ProcessID)
	assert.Equal(t, models.AsyncStatus(background.TaskStatusSuccess), resp.Status)
}

func TestTaskStatusHandler_UnknownTask(t *testing.T) {
	manager := &stubTaskManager{results: map[string]*background.TaskResult{}}

	rec := getTaskStatus(t, manager, "proc-missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
