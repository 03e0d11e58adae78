package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	assert := assert.New(t)
	rl := NewRateLimiter(3, time.Second)

	for i := range 3 {
		assert.True(rl.Allow("conn-1"), "Request %d should be allowed", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	assert := assert.New(t)
	rl := NewRateLimiter(2, time.Second)

	assert.True(rl.Allow("conn-1"))
	assert.True(rl.Allow("conn-1"))
	assert.False(rl.Allow("conn-1"))
}

func TestRateLimiter_PerConnection(t *testing.T) {
	assert := assert.New(t)
	rl := NewRateLimiter(1, time.Second)

	assert.True(rl.Allow("conn-1"))
	assert.False(rl.Allow("conn-1"))

	// A different connection has its own window
	assert.True(rl.Allow("conn-2"))
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	assert := assert.New(t)
	rl := NewRateLimiter(1, 50*time.Millisecond)

	assert.True(rl.Allow("conn-1"))
	assert.False(rl.Allow("conn-1"))

	time.Sleep(60 * time.Millisecond)
	assert.True(rl.Allow("conn-1"), "Old timestamps should age out of the window")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	assert := assert.New(t)
	rl := NewRateLimiter(5, 10*time.Millisecond)

	rl.Allow("conn-1")
	time.Sleep(20 * time.Millisecond)
	rl.Cleanup()

	rl.mu.Lock()
	_, exists := rl.requests["conn-1"]
	rl.mu.Unlock()
	assert.False(exists, "Stale connection data should be cleaned up")
}

func TestRateLimiter_RemoveConnection(t *testing.T) {
	assert := assert.New(t)
	rl := NewRateLimiter(1, time.Second)

	rl.Allow("conn-1")
	rl.RemoveConnection("conn-1")

	assert.True(rl.Allow("conn-1"), "Removed connections start a fresh window")
}

func TestValidateUsername(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(ValidateUsername("Alice"))
	assert.NoError(ValidateUsername("A"))
	assert.NoError(ValidateUsername("12345678901234567890")) // exactly 20

	assert.Error(ValidateUsername(""))
	assert.Error(ValidateUsername("123456789012345678901")) // 21
}
