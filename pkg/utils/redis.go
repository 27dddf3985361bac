package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"folio-api/internal/config"
	"folio-api/internal/logging"
)

// RedisClient wraps the Redis client with chat history, traffic counters
// and rate-limit window management
type RedisClient struct {
	client *redis.Client
	config *config.Config
	logger logging.Logger
}

// ConversationEntry represents a single chat exchange entry
type ConversationEntry struct {
	ID        string                 `json:"id"`
	Role      string                 `json:"role"` // "user" or "assistant"
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ConversationHistory represents the complete history for one chat session
type ConversationHistory struct {
	SessionID string              `json:"session_id"`
	Entries   []ConversationEntry `json:"entries"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(cfg *config.Config) *RedisClient {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		// Fallback to default configuration
		opts = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}

	opts.DialTimeout = cfg.Redis.Timeout
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	return &RedisClient{
		client: client,
		config: cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// Ping tests the Redis connection
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// IsHealthy checks if Redis is connected and healthy
func (r *RedisClient) IsHealthy(ctx context.Context) error {
	return r.Ping(ctx)
}

// AddConversationEntry appends an entry to the session history, creating the
// session on first use. Histories expire after 24 hours and keep at most the
// last 50 entries.
func (r *RedisClient) AddConversationEntry(ctx context.Context, sessionID string, entry ConversationEntry) error {
	history, err := r.GetConversationHistory(ctx, sessionID)
	if err != nil {
		history = &ConversationHistory{
			SessionID: sessionID,
			Entries:   []ConversationEntry{},
			CreatedAt: time.Now(),
		}
	}

	entry.ID = GenerateRequestID()
	entry.Timestamp = time.Now()
	history.Entries = append(history.Entries, entry)
	history.UpdatedAt = time.Now()

	// Keep only last 50 entries to manage memory
	if len(history.Entries) > 50 {
		history.Entries = history.Entries[len(history.Entries)-50:]
	}

	sessionKey := r.getSessionKey(sessionID)
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation history: %w", err)
	}

	err = r.client.Set(ctx, sessionKey, historyJSON, 24*time.Hour).Err()
	if err != nil {
		r.logger.Error("Failed to save conversation entry", map[string]interface{}{
			"session_id": sessionID,
			"entry_id":   entry.ID,
			"error":      err.Error(),
		})
		return fmt.Errorf("failed to save conversation entry: %w", err)
	}

	return nil
}

// GetConversationHistory retrieves the conversation history for a session
func (r *RedisClient) GetConversationHistory(ctx context.Context, sessionID string) (*ConversationHistory, error) {
	sessionKey := r.getSessionKey(sessionID)

	historyJSON, err := r.client.Get(ctx, sessionKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("conversation not found for session %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}

	var history ConversationHistory
	err = json.Unmarshal([]byte(historyJSON), &history)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation history: %w", err)
	}

	return &history, nil
}

// DeleteConversation deletes the history for a chat session
func (r *RedisClient) DeleteConversation(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.getSessionKey(sessionID)).Err()
}

// IncrementRouteCounter bumps the traffic counter for a route on today's
// date bucket. Counters expire after 35 days.
func (r *RedisClient) IncrementRouteCounter(ctx context.Context, route string) error {
	key := r.getTrafficKey(time.Now().UTC(), route)

	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 35*24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// GetTrafficCounters returns the per-route counters for a given day
func (r *RedisClient) GetTrafficCounters(ctx context.Context, day time.Time) (map[string]int64, error) {
	pattern := fmt.Sprintf("traffic:%s:*", day.UTC().Format("2006-01-02"))

	counters := make(map[string]int64)
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := r.client.Get(ctx, key).Int64()
		if err != nil {
			continue
		}
		// Route name starts after "traffic:YYYY-MM-DD:"
		route := key[len("traffic:")+len("2006-01-02")+1:]
		counters[route] = val
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan traffic counters: %w", err)
	}

	return counters, nil
}

// IncrementRateWindow counts one request against the client's fixed window
// and returns the running total. The window key expires automatically.
func (r *RedisClient) IncrementRateWindow(ctx context.Context, clientID string, window time.Duration) (int64, error) {
	bucket := time.Now().UTC().Truncate(window).Unix()
	key := fmt.Sprintf("ratelimit:%s:%d", clientID, bucket)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment rate window: %w", err)
	}

	return incr.Val(), nil
}

// getSessionKey generates the Redis key for a chat session
func (r *RedisClient) getSessionKey(sessionID string) string {
	return fmt.Sprintf("conversation:session:%s", sessionID)
}

// getTrafficKey generates the Redis key for a traffic counter
func (r *RedisClient) getTrafficKey(day time.Time, route string) string {
	return fmt.Sprintf("traffic:%s:%s", day.Format("2006-01-02"), route)
}
