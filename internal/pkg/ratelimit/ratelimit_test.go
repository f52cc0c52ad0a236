package ratelimit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pagecraft-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func newLocalLimiter(t *testing.T) *Limiter {
	t.Helper()
	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "ratelimit.log"))
	return NewLimiter(nil, log)
}

func TestAllowLocalCountsPerWindow(t *testing.T) {
	l := newLocalLimiter(t)
	ctx := context.Background()

	const key = "ratelimit:redeem:user-1"
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, key, 3, time.Minute), "hit %d should pass", i+1)
	}
	assert.False(t, l.Allow(ctx, key, 3, time.Minute), "fourth hit should be refused")
}

func TestAllowLocalKeysAreIndependent(t *testing.T) {
	l := newLocalLimiter(t)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "ratelimit:redeem:a", 1, time.Minute))
	assert.False(t, l.Allow(ctx, "ratelimit:redeem:a", 1, time.Minute))

	// A different subject and a different endpoint both start fresh
	assert.True(t, l.Allow(ctx, "ratelimit:redeem:b", 1, time.Minute))
	assert.True(t, l.Allow(ctx, "ratelimit:grant:a", 1, time.Minute))
}

func TestAllowLocalWindowExpires(t *testing.T) {
	l := newLocalLimiter(t)
	ctx := context.Background()

	const key = "ratelimit:redeem:user-2"
	assert.True(t, l.Allow(ctx, key, 1, 50*time.Millisecond))
	assert.False(t, l.Allow(ctx, key, 1, 50*time.Millisecond))

	time.Sleep(70 * time.Millisecond)
	assert.True(t, l.Allow(ctx, key, 1, 50*time.Millisecond), "a new window should open after expiry")
}
