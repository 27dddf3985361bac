package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"folio-api/internal/config"
)

func testConfig(rpm, burst int) *config.Config {
	cfg := &config.Config{}
	cfg.RateLimit.RequestsPerMinute = rpm
	cfg.RateLimit.Burst = burst
	return cfg
}

func TestLocalLimiter_AllowsWithinBurst(t *testing.T) {
	ll := NewLocalLimiter(testConfig(60, 3))
	defer ll.Stop()

	assert.True(t, ll.Allow("client-a"))
	assert.True(t, ll.Allow("client-a"))
	assert.True(t, ll.Allow("client-a"))
}

func TestLocalLimiter_RejectsBeyondBurst(t *testing.T) {
	// 1 rpm with burst 2: the third immediate request must be rejected.
	ll := NewLocalLimiter(testConfig(1, 2))
	defer ll.Stop()

	assert.True(t, ll.Allow("client-b"))
	assert.True(t, ll.Allow("client-b"))
	assert.False(t, ll.Allow("client-b"))
}

func TestLocalLimiter_ClientsAreIndependent(t *testing.T) {
	ll := NewLocalLimiter(testConfig(1, 1))
	defer ll.Stop()

	assert.True(t, ll.Allow("client-c"))
	assert.False(t, ll.Allow("client-c"))
	assert.True(t, ll.Allow("client-d"))
}

func TestLocalLimiter_Stats(t *testing.T) {
	ll := NewLocalLimiter(testConfig(1, 1))
	defer ll.Stop()

	ll.Allow("client-e")
	ll.Allow("client-e")

	stats := ll.GetClientStats("client-e")
	assert.Equal(t, int64(1), stats["requests"])
	assert.Equal(t, int64(1), stats["rejected"])

	assert.Empty(t, ll.GetClientStats("never-seen"))
}
