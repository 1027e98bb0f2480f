package ratelimit_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/service/ratelimit"
)

func runLimiterTest(t *testing.T, limiter interfaces.RateLimiter, userID string) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := limiter.Allow(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
	}

	ok, retryAfter, err := limiter.Allow(ctx, userID)
	gt.NoError(t, err).Required()
	gt.Bool(t, ok).False()
	gt.Bool(t, retryAfter > 0).True()

	ok, _, err = limiter.Allow(ctx, userID+"-other")
	gt.NoError(t, err).Required()
	gt.Bool(t, ok).True()
}

func TestMemoryLimiter(t *testing.T) {
	limiter := ratelimit.NewMemory(3, time.Hour)
	runLimiterTest(t, limiter, "resident-1")

	t.Run("window resets", func(t *testing.T) {
		now := time.Now()
		limiter := ratelimit.NewMemory(1, time.Minute)
		limiter.SetClock(func() time.Time { return now })

		ok, _, err := limiter.Allow(context.Background(), "u")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()

		ok, _, _ = limiter.Allow(context.Background(), "u")
		gt.Bool(t, ok).False()

		now = now.Add(2 * time.Minute)
		ok, _, _ = limiter.Allow(context.Background(), "u")
		gt.Bool(t, ok).True()
	})
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	prefix := fmt.Sprintf("themis-test:%d", time.Now().UnixNano())
	limiter, err := ratelimit.NewRedis(context.Background(), addr, os.Getenv("TEST_REDIS_PASSWORD"), 3, time.Minute, ratelimit.WithKeyPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = limiter.Close() })

	runLimiterTest(t, limiter, "resident-1")
}
