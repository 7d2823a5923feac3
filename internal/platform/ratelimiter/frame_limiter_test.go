package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameLimiterBurstThenRefill(t *testing.T) {
	l := NewFrameLimiter(1, 2)
	now := time.Now()

	assert.True(t, l.Allow("u1", now))
	assert.True(t, l.Allow("u1", now))
	assert.False(t, l.Allow("u1", now), "burst exhausted")

	assert.True(t, l.Allow("u1", now.Add(time.Second)), "one token refilled")
}

func TestFrameLimiterKeysAreIndependent(t *testing.T) {
	l := NewFrameLimiter(1, 1)
	now := time.Now()

	assert.True(t, l.Allow("u1", now))
	assert.False(t, l.Allow("u1", now))
	assert.True(t, l.Allow("u2", now), "other users keep their own bucket")
}

func TestFrameLimiterForgetResetsBucket(t *testing.T) {
	l := NewFrameLimiter(1, 1)
	now := time.Now()

	assert.True(t, l.Allow("u1", now))
	assert.False(t, l.Allow("u1", now))

	l.Forget("u1")
	assert.True(t, l.Allow("u1", now), "fresh bucket after forget")
}

func TestFrameLimiterNilAdmitsEverything(t *testing.T) {
	var l *FrameLimiter
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("u1", time.Now()))
	}
	assert.Nil(t, NewFrameLimiter(0, 10))
	assert.Nil(t, NewFrameLimiter(5, 0))
}
