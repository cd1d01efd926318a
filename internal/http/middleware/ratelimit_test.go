package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerKeyBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 2, 0)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("alice"))
	assert.True(t, rl.Allow("alice"))
	assert.False(t, rl.Allow("alice"))
	assert.True(t, rl.Allow("bob"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("alice"), "one token refills per second")
}

func TestRateLimiter_EvictsLeastRecent(t *testing.T) {
	rl := NewRateLimiter(1, 1, 2)
	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
	assert.True(t, rl.Allow("c"))
	assert.Equal(t, 2, rl.Len())
	// "a" was evicted, so it starts with a fresh bucket
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1, 0)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	now = now.Add(limiterIdleTTL + limiterSweepEvery)
	rl.Allow("c")
	assert.Equal(t, 1, rl.Len())
}

func TestClientID(t *testing.T) {
	assert.Equal(t, "abc-123", clientID(" abc-123 "))
	assert.Empty(t, clientID("has space"))
	assert.Empty(t, clientID(string(make([]byte, maxClientIDLen+1))))
}
