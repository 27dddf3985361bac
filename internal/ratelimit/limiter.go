// Package ratelimit provides the in-process fallback limiter used when
// Redis is unavailable. The authoritative limit lives in Redis fixed
// windows (see the rate-limit middleware); this token-bucket limiter keeps
// abusive clients bounded during a Redis outage instead of failing open.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"folio-api/internal/config"
	"folio-api/internal/logging"
)

// ClientLimiter tracks the token bucket and counters for one client
type ClientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	requests int64
	rejected int64
	mu       sync.RWMutex
}

// LocalLimiter manages per-client token buckets
type LocalLimiter struct {
	config         *config.Config
	clientLimiters map[string]*ClientLimiter
	mu             sync.RWMutex
	logger         logging.Logger
	cleanupTicker  *time.Ticker
	stopCleanup    chan bool
}

// NewLocalLimiter creates a new in-process rate limiter
func NewLocalLimiter(cfg *config.Config) *LocalLimiter {
	ll := &LocalLimiter{
		config:         cfg,
		clientLimiters: make(map[string]*ClientLimiter),
		logger:         logging.GetGlobalLogger().WithField("component", "rate_limiter"),
		cleanupTicker:  time.NewTicker(5 * time.Minute),
		stopCleanup:    make(chan bool),
	}

	go ll.cleanupRoutine()

	return ll
}

// Allow checks if a request from the given client is allowed
func (ll *LocalLimiter) Allow(clientID string) bool {
	ll.mu.Lock()
	limiter := ll.getClientLimiter(clientID)
	ll.mu.Unlock()

	allowed := limiter.limiter.Allow()

	limiter.mu.Lock()
	limiter.lastSeen = time.Now()
	if allowed {
		limiter.requests++
	} else {
		limiter.rejected++
	}
	limiter.mu.Unlock()

	if !allowed {
		ll.logger.Debug("Request rejected by local rate limiter", map[string]interface{}{
			"client": clientID,
		})
	}

	return allowed
}

// GetClientStats returns counters for a specific client
func (ll *LocalLimiter) GetClientStats(clientID string) map[string]interface{} {
	ll.mu.RLock()
	limiter, exists := ll.clientLimiters[clientID]
	ll.mu.RUnlock()

	stats := make(map[string]interface{})
	if !exists {
		return stats
	}

	limiter.mu.RLock()
	stats["requests"] = limiter.requests
	stats["rejected"] = limiter.rejected
	stats["last_seen"] = limiter.lastSeen
	stats["limit"] = limiter.limiter.Limit()
	stats["burst"] = limiter.limiter.Burst()
	limiter.mu.RUnlock()

	return stats
}

// getClientLimiter gets or creates a token bucket for a client.
// Callers must hold the write lock.
func (ll *LocalLimiter) getClientLimiter(clientID string) *ClientLimiter {
	if limiter, exists := ll.clientLimiters[clientID]; exists {
		return limiter
	}

	// Requests per minute converted to requests per second
	rps := rate.Limit(float64(ll.config.RateLimit.RequestsPerMinute) / 60.0)
	burst := ll.config.RateLimit.Burst
	if burst <= 0 {
		burst = 1
	}

	limiter := &ClientLimiter{
		limiter:  rate.NewLimiter(rps, burst),
		lastSeen: time.Now(),
	}

	ll.clientLimiters[clientID] = limiter

	return limiter
}

// cleanupRoutine periodically drops buckets for clients gone quiet
func (ll *LocalLimiter) cleanupRoutine() {
	for {
		select {
		case <-ll.cleanupTicker.C:
			ll.cleanup()
		case <-ll.stopCleanup:
			ll.cleanupTicker.Stop()
			return
		}
	}
}

// cleanup removes limiters not seen within the retention window
func (ll *LocalLimiter) cleanup() {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	removedCount := 0

	for clientID, limiter := range ll.clientLimiters {
		limiter.mu.RLock()
		lastSeen := limiter.lastSeen
		limiter.mu.RUnlock()

		if lastSeen.Before(cutoff) {
			delete(ll.clientLimiters, clientID)
			removedCount++
		}
	}

	if removedCount > 0 {
		ll.logger.Info("Cleaned up idle client limiters", map[string]interface{}{
			"removed_count": removedCount,
		})
	}
}

// Stop stops the limiter's cleanup routine
func (ll *LocalLimiter) Stop() {
	ll.stopCleanup <- true
}
