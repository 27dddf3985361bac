package background

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-api/internal/config"
)

func TestInMemoryTaskStore_Lifecycle(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	result := &TaskResult{
		ProcessID: "proc_1",
		Type:      TaskTypeAnalyze,
		Status:    TaskStatusAccepted,
		CreatedAt: time.Now(),
	}

	require.NoError(t, store.Store(ctx, result))

	got, err := store.Get(ctx, "proc_1")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusAccepted, got.Status)

	got.Status = TaskStatusSuccess
	require.NoError(t, store.Update(ctx, got))

	got, err = store.Get(ctx, "proc_1")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusSuccess, got.Status)

	require.NoError(t, store.Delete(ctx, "proc_1"))
	_, err = store.Get(ctx, "proc_1")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestInMemoryTaskStore_UnknownTask(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, store.Update(ctx, &TaskResult{ProcessID: "missing"}), ErrTaskNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "missing"), ErrTaskNotFound)
}

func TestInMemoryTaskStore_CleanupRemovesExpired(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, &TaskResult{
		ProcessID: "proc_old",
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, store.Store(ctx, &TaskResult{
		ProcessID: "proc_new",
		CreatedAt: time.Now(),
	}))

	require.NoError(t, store.Cleanup(ctx, 24*time.Hour))

	_, err := store.Get(ctx, "proc_old")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = store.Get(ctx, "proc_new")
	assert.NoError(t, err)
}

func TestValidateTaskManagerConfig(t *testing.T) {
	tests := []struct {
		name          string
		poolSize      int
		queueSize     int
		wantWorkers   int
		wantQueueSize int
		wantErr       bool
	}{
		{"defaults for zero values", 0, 0, DefaultMaxWorkers, DefaultMaxQueueSize, false},
		{"explicit values", 4, 50, 4, 50, false},
		{"workers above maximum", MaxWorkers + 1, 50, 0, 0, true},
		{"queue above maximum", 4, MaxQueueSize + 1, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.BackgroundTasks.PoolSize = tt.poolSize
			cfg.BackgroundTasks.QueueSize = tt.queueSize

			workers, queueSize, err := validateTaskManagerConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantWorkers, workers)
			assert.Equal(t, tt.wantQueueSize, queueSize)
		})
	}
}

func TestTaskManager_StartStop(t *testing.T) {
	cfg := &config.Config{}
	cfg.BackgroundTasks.PoolSize = 2
	cfg.BackgroundTasks.QueueSize = 4

	tm := NewTaskManager(cfg, nil)
	require.NoError(t, tm.Start(context.Background()))
	assert.True(t, tm.IsHealthy())

	assert.Error(t, tm.Start(context.Background()), "second start must fail")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tm.Stop(ctx))
	assert.False(t, tm.IsHealthy())
}

func TestCreateCompletionLog(t *testing.T) {
	pt := 1500 * time.Millisecond
	log := createCompletionLog(&TaskResult{
		ProcessID:      "proc_2",
		Type:           TaskTypeArchive,
		Status:         TaskStatusSuccess,
		ProcessingTime: &pt,
	})

	assert.Equal(t, "proc_2", log.ProcessID)
	assert.Equal(t, "archive", log.Operation)
	assert.Equal(t, "1.5s", log.ProcessingTime)

	log = createCompletionLog(&TaskResult{ProcessID: "proc_3"})
	assert.Equal(t, "0s", log.ProcessingTime)
}
