package background

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"folio-api/internal/config"
	"folio-api/internal/llm"
	"folio-api/internal/logging"
	"folio-api/internal/logging/types"
	"folio-api/internal/scoring"
	"folio-api/pkg/models"
	"folio-api/pkg/utils"
)

// Task manager configuration bounds
const (
	DefaultMaxWorkers   = 10
	DefaultMaxQueueSize = 100

	MinWorkers   = 1
	MinQueueSize = 1

	MaxWorkers   = 1000
	MaxQueueSize = 10000
)

// TaskManager defines the interface for managing background tasks
type TaskManager interface {
	// Start starts the task manager
	Start(ctx context.Context) error

	// Stop stops the task manager gracefully
	Stop(ctx context.Context) error

	// SubmitAnalyzeTask submits a resume analysis task for background processing
	SubmitAnalyzeTask(ctx context.Context, processID string, request models.AnalyzeResumeRequest, llmManager *llm.Manager, blob *utils.SpacesClient) error

	// SubmitArchiveTask submits a chat transcript archival task
	SubmitArchiveTask(ctx context.Context, processID, sessionID string, redisClient *utils.RedisClient, blob *utils.SpacesClient) error

	// GetTaskResult retrieves the result of a task by process ID
	GetTaskResult(ctx context.Context, processID string) (*TaskResult, error)

	// GetTaskStatus retrieves the status of a task by process ID
	GetTaskStatus(ctx context.Context, processID string) (TaskStatus, error)

	// ListTasks lists all active tasks (for monitoring)
	ListTasks(ctx context.Context) ([]*TaskResult, error)

	// IsHealthy checks if the task manager is healthy
	IsHealthy() bool
}

// TaskManagerImpl implements the TaskManager interface
type TaskManagerImpl struct {
	config       *config.Config
	store        TaskStore
	logger       *TaskCompletionLogger
	appLogger    types.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
	running      bool
	taskChan     chan *TaskExecution
	maxWorkers   int
	maxQueueSize int
}

// TaskExecution represents a task execution context
type TaskExecution struct {
	ProcessID   string
	Type        TaskType
	Context     context.Context
	Cancel      context.CancelFunc
	ExecuteFunc func(context.Context) (*TaskResult, error)
}

// validateTaskManagerConfig validates and returns safe configuration values
func validateTaskManagerConfig(cfg *config.Config) (maxWorkers, maxQueueSize int, err error) {
	maxWorkers = cfg.BackgroundTasks.PoolSize
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	} else if maxWorkers < MinWorkers {
		return 0, 0, fmt.Errorf("worker pool size (%d) is below minimum (%d)", maxWorkers, MinWorkers)
	} else if maxWorkers > MaxWorkers {
		return 0, 0, fmt.Errorf("worker pool size (%d) exceeds maximum (%d)", maxWorkers, MaxWorkers)
	}

	maxQueueSize = cfg.BackgroundTasks.QueueSize
	if maxQueueSize <= 0 {
		maxQueueSize = DefaultMaxQueueSize
	} else if maxQueueSize < MinQueueSize {
		return 0, 0, fmt.Errorf("queue size (%d) is below minimum (%d)", maxQueueSize, MinQueueSize)
	} else if maxQueueSize > MaxQueueSize {
		return 0, 0, fmt.Errorf("queue size (%d) exceeds maximum (%d)", maxQueueSize, MaxQueueSize)
	}

	return maxWorkers, maxQueueSize, nil
}

// NewTaskManager creates a new task manager
func NewTaskManager(cfg *config.Config, completionLogger *TaskCompletionLogger) *TaskManagerImpl {
	logger := logging.GetGlobalLogger()

	maxWorkers, maxQueueSize, err := validateTaskManagerConfig(cfg)
	if err != nil {
		logger.Warn("Task manager configuration validation failed, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		maxWorkers = DefaultMaxWorkers
		maxQueueSize = DefaultMaxQueueSize
	}

	if completionLogger == nil {
		completionLogger = NewTaskCompletionLogger()
	}

	logger.Info("Task manager configuration initialized", map[string]interface{}{
		"max_workers":    maxWorkers,
		"max_queue_size": maxQueueSize,
	})

	return &TaskManagerImpl{
		config:       cfg,
		store:        NewInMemoryTaskStore(),
		logger:       completionLogger,
		appLogger:    logger,
		maxWorkers:   maxWorkers,
		maxQueueSize: maxQueueSize,
		taskChan:     make(chan *TaskExecution, maxQueueSize),
	}
}

// Start starts the task manager
func (tm *TaskManagerImpl) Start(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.running {
		return fmt.Errorf("task manager already running")
	}

	tm.ctx, tm.cancel = context.WithCancel(ctx)
	tm.running = true

	for i := 0; i < tm.maxWorkers; i++ {
		tm.wg.Add(1)
		go tm.worker(i)
	}

	tm.wg.Add(1)
	go tm.cleanupRoutine()

	tm.appLogger.Info("Task manager started", map[string]interface{}{
		"max_workers": tm.maxWorkers,
	})
	return nil
}

// Stop stops the task manager gracefully
func (tm *TaskManagerImpl) Stop(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if !tm.running {
		return nil
	}

	tm.appLogger.Info("Stopping task manager...")

	tm.cancel()
	close(tm.taskChan)

	done := make(chan struct{})
	go func() {
		tm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		tm.appLogger.Info("Task manager stopped gracefully")
	case <-ctx.Done():
		tm.appLogger.Warn("Task manager shutdown timed out")
	}

	tm.running = false
	return nil
}

// SubmitAnalyzeTask submits a resume analysis task for background processing
func (tm *TaskManagerImpl) SubmitAnalyzeTask(ctx context.Context, processID string, request models.AnalyzeResumeRequest, llmManager *llm.Manager, blob *utils.SpacesClient) error {
	metadata := map[string]interface{}{
		"resume_id": request.ResumeID,
	}

	return tm.submit(ctx, processID, TaskTypeAnalyze, metadata, func(execCtx context.Context) (*TaskResult, error) {
		return tm.executeAnalyzeTask(execCtx, processID, request, llmManager, blob)
	})
}

// SubmitArchiveTask submits a chat transcript archival task
func (tm *TaskManagerImpl) SubmitArchiveTask(ctx context.Context, processID, sessionID string, redisClient *utils.RedisClient, blob *utils.SpacesClient) error {
	metadata := map[string]interface{}{
		"session_id": sessionID,
	}

	return tm.submit(ctx, processID, TaskTypeArchive, metadata, func(execCtx context.Context) (*TaskResult, error) {
		return tm.executeArchiveTask(execCtx, processID, sessionID, redisClient, blob)
	})
}

// submit stores the initial ACCEPTED result and queues the execution
func (tm *TaskManagerImpl) submit(ctx context.Context, processID string, taskType TaskType, metadata map[string]interface{}, execute func(context.Context) (*TaskResult, error)) error {
	if !tm.IsHealthy() {
		return fmt.Errorf("task manager is not healthy")
	}

	result := &TaskResult{
		ProcessID: processID,
		Type:      taskType,
		Status:    TaskStatusAccepted,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	if err := tm.store.Store(ctx, result); err != nil {
		return fmt.Errorf("failed to store task result: %w", err)
	}

	tm.logger.LogTaskAccepted(processID, taskType)

	// Derived context with the task timeout isolates each execution
	taskCtx, cancelFunc := context.WithTimeout(tm.ctx, tm.taskTimeout())
	execution := &TaskExecution{
		ProcessID:   processID,
		Type:        taskType,
		Context:     taskCtx,
		Cancel:      cancelFunc,
		ExecuteFunc: execute,
	}

	select {
	case tm.taskChan <- execution:
		return nil
	case <-ctx.Done():
		cancelFunc()
		return ctx.Err()
	default:
		cancelFunc()
		return fmt.Errorf("task queue is full")
	}
}

func (tm *TaskManagerImpl) taskTimeout() time.Duration {
	if tm.config.BackgroundTasks.TaskTimeout > 0 {
		return tm.config.BackgroundTasks.TaskTimeout
	}
	return 5 * time.Minute
}

// GetTaskResult retrieves the result of a task by process ID
func (tm *TaskManagerImpl) GetTaskResult(ctx context.Context, processID string) (*TaskResult, error) {
	return tm.store.Get(ctx, processID)
}

// GetTaskStatus retrieves the status of a task by process ID
func (tm *TaskManagerImpl) GetTaskStatus(ctx context.Context, processID string) (TaskStatus, error) {
	result, err := tm.store.Get(ctx, processID)
	if err != nil {
		return "", err
	}
	return result.Status, nil
}

// ListTasks lists all active tasks (for monitoring)
func (tm *TaskManagerImpl) ListTasks(ctx context.Context) ([]*TaskResult, error) {
	return tm.store.List(ctx)
}

// IsHealthy checks if the task manager is healthy
func (tm *TaskManagerImpl) IsHealthy() bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.running && tm.ctx.Err() == nil
}

// worker processes tasks from the task channel
func (tm *TaskManagerImpl) worker(workerID int) {
	defer tm.wg.Done()

	tm.appLogger.Info("Task worker started", map[string]interface{}{
		"worker_id": workerID,
	})

	for {
		select {
		case <-tm.ctx.Done():
			tm.appLogger.Info("Task worker stopping", map[string]interface{}{
				"worker_id": workerID,
			})
			return
		case task, ok := <-tm.taskChan:
			if !ok {
				tm.appLogger.Info("Task channel closed, worker stopping", map[string]interface{}{
					"worker_id": workerID,
				})
				return
			}

			tm.processTask(workerID, task)
		}
	}
}

// processTask processes a single task
func (tm *TaskManagerImpl) processTask(workerID int, task *TaskExecution) {
	startTime := time.Now()

	tm.appLogger.Info("Processing task", map[string]interface{}{
		"worker_id":  workerID,
		"process_id": task.ProcessID,
		"task_type":  task.Type,
	})

	if err := tm.updateTaskStatus(task.ProcessID, TaskStatusProcessing); err != nil {
		tm.appLogger.Error("Failed to update task status to processing", map[string]interface{}{
			"error": err.Error(),
		})
	}

	tm.logger.LogTaskStart(task.ProcessID, task.Type)

	result, err := task.ExecuteFunc(task.Context)
	processingTime := time.Since(startTime)

	if err != nil {
		tm.appLogger.Error("Task execution failed", map[string]interface{}{
			"worker_id":       workerID,
			"process_id":      task.ProcessID,
			"task_type":       task.Type,
			"processing_time": processingTime,
			"error":           err.Error(),
		})

		// Keep the original CreatedAt when updating to failure
		existingResult, getErr := tm.store.Get(task.Context, task.ProcessID)
		if getErr != nil {
			result = &TaskResult{
				ProcessID:      task.ProcessID,
				Type:           task.Type,
				Status:         TaskStatusFailure,
				Error:          err.Error(),
				CreatedAt:      time.Now(),
				ProcessingTime: &processingTime,
			}
		} else {
			existingResult.Status = TaskStatusFailure
			existingResult.Error = err.Error()
			existingResult.ProcessingTime = &processingTime
			result = existingResult
		}

		tm.logger.LogTaskError(task.ProcessID, task.Type, err)
	} else {
		tm.appLogger.Info("Task execution completed successfully", map[string]interface{}{
			"worker_id":       workerID,
			"process_id":      task.ProcessID,
			"task_type":       task.Type,
			"processing_time": processingTime,
		})

		result.Status = TaskStatusSuccess
		result.ProcessingTime = &processingTime
		completedAt := time.Now()
		result.CompletedAt = &completedAt

		tm.logger.LogTaskSuccess(task.ProcessID, task.Type, processingTime)
	}

	// Store with a background context: the task context may already be
	// cancelled or timed out.
	if err := tm.store.Update(context.Background(), result); err != nil {
		tm.appLogger.Error("Failed to store task result", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := tm.logger.LogTaskCompletion(result); err != nil {
		tm.appLogger.Error("Failed to log task completion", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if task.Cancel != nil {
		task.Cancel()
	}
}

// updateTaskStatus updates the status of a task
func (tm *TaskManagerImpl) updateTaskStatus(processID string, status TaskStatus) error {
	result, err := tm.store.Get(context.Background(), processID)
	if err != nil {
		return err
	}

	result.Status = status
	return tm.store.Update(context.Background(), result)
}

// cleanupRoutine periodically cleans up old task results
func (tm *TaskManagerImpl) cleanupRoutine() {
	defer tm.wg.Done()

	interval := tm.config.BackgroundTasks.CleanupInterval
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	maxAge := tm.config.BackgroundTasks.MaxTaskAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-tm.ctx.Done():
			return
		case <-ticker.C:
			if err := tm.store.Cleanup(context.Background(), maxAge); err != nil {
				tm.appLogger.Error("Failed to cleanup old task results", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

// executeAnalyzeTask runs the LLM analysis, normalizes impact points and
// archives the analysis to blob storage
func (tm *TaskManagerImpl) executeAnalyzeTask(ctx context.Context, processID string, request models.AnalyzeResumeRequest, llmManager *llm.Manager, blob *utils.SpacesClient) (*TaskResult, error) {
	existingResult, err := tm.store.Get(ctx, processID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve existing task result: %w", err)
	}

	if !llmManager.IsHealthy() {
		return nil, fmt.Errorf("LLM manager is not healthy")
	}

	rawAnalysis, err := llmManager.AnalyzeResume(ctx, request.ResumeText, request.JobDescription)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze resume: %w", err)
	}

	// Scale proposed impacts so accepting everything cannot overshoot the
	// achievable score.
	analysis := scoring.NormalizeImpactPoints(*rawAnalysis)

	// Archival is best effort; the client still gets the analysis.
	if blob != nil {
		tm.archiveAnalysis(blob, processID, request.ResumeID, &analysis)
	}

	existingResult.Data = &AnalyzeTaskData{
		ResumeID: request.ResumeID,
		Analysis: &analysis,
	}
	existingResult.Metadata = map[string]interface{}{
		"resume_id":        request.ResumeID,
		"current_score":    analysis.CurrentScore.Total,
		"proposed_changes": len(analysis.ProposedChanges),
	}

	return existingResult, nil
}

func (tm *TaskManagerImpl) archiveAnalysis(blob *utils.SpacesClient, processID, resumeID string, analysis *models.ResumeAnalysisResult) {
	log := models.GenerationLog{
		ResumeID:  resumeID,
		ProcessID: processID,
		Analysis:  *analysis,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(log)
	if err != nil {
		tm.appLogger.Warn("Failed to encode analysis archive", map[string]interface{}{
			"process_id": processID,
			"error":      err.Error(),
		})
		return
	}

	key := fmt.Sprintf("analyses/%s/%s.json", resumeID, processID)
	if _, err := blob.PutObject(key, data, "application/json"); err != nil {
		tm.appLogger.Warn("Failed to archive analysis", map[string]interface{}{
			"process_id": processID,
			"key":        key,
			"error":      err.Error(),
		})
	}
}

// executeArchiveTask flushes a chat transcript from Redis to blob storage
func (tm *TaskManagerImpl) executeArchiveTask(ctx context.Context, processID, sessionID string, redisClient *utils.RedisClient, blob *utils.SpacesClient) (*TaskResult, error) {
	existingResult, err := tm.store.Get(ctx, processID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve existing task result: %w", err)
	}

	history, err := redisClient.GetConversationHistory(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	data, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to encode conversation: %w", err)
	}

	key := fmt.Sprintf("chats/%s/%s.json", time.Now().UTC().Format("2006-01-02"), sessionID)
	if _, err := blob.PutObject(key, data, "application/json"); err != nil {
		return nil, fmt.Errorf("failed to upload transcript: %w", err)
	}

	// The Redis copy expires on its own; deleting now just frees it early.
	if err := redisClient.DeleteConversation(ctx, sessionID); err != nil {
		tm.appLogger.Warn("Failed to delete archived conversation", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	existingResult.Data = &ArchiveTaskData{
		SessionID: sessionID,
		ObjectKey: key,
		Entries:   len(history.Entries),
	}

	return existingResult, nil
}
