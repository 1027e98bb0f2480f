package interfaces

import (
	"context"
	"time"
)

// RateLimiter counts complaint submissions per user
type RateLimiter interface {
	// Allow records one submission by userID. When the quota is exhausted it
	// returns false and the time until the window resets.
	Allow(ctx context.Context, userID string) (bool, time.Duration, error)
}
