package config

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/service/ratelimit"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// RateLimit holds CLI flags for limiting complaint submissions
type RateLimit struct {
	redisAddr     string
	RedisPassword string `masq:"secret"`
	limit         int
	window        time.Duration
}

// Flags returns CLI flags for submission rate limiting
func (x *RateLimit) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "submission-limit",
			Usage:       "Complaints a submitter may file per window (0 disables the limit)",
			Value:       10,
			Category:    "Rate limit",
			Sources:     cli.EnvVars("THEMIS_SUBMISSION_LIMIT"),
			Destination: &x.limit,
		},
		&cli.DurationFlag{
			Name:        "submission-window",
			Usage:       "Window of the submission limit",
			Value:       time.Hour,
			Category:    "Rate limit",
			Sources:     cli.EnvVars("THEMIS_SUBMISSION_WINDOW"),
			Destination: &x.window,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address for a limit shared between instances (host:port)",
			Category:    "Rate limit",
			Sources:     cli.EnvVars("THEMIS_REDIS_ADDR"),
			Destination: &x.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Rate limit",
			Sources:     cli.EnvVars("THEMIS_REDIS_PASSWORD"),
			Destination: &x.RedisPassword,
		},
	}
}

// Configure returns the limiter, or nil when limiting is disabled
func (x *RateLimit) Configure(ctx context.Context) (interfaces.RateLimiter, func(), error) {
	if x.limit <= 0 {
		logging.Default().Info("Submission rate limit disabled")
		return nil, func() {}, nil
	}
	if x.window <= 0 {
		return nil, nil, goerr.New("submission-window must be positive", goerr.V("window", x.window))
	}

	if x.redisAddr == "" {
		logging.Default().Info("Using in-process submission rate limit", "limit", x.limit, "window", x.window)
		return ratelimit.NewMemory(x.limit, x.window), func() {}, nil
	}

	limiter, err := ratelimit.NewRedis(ctx, x.redisAddr, x.RedisPassword, x.limit, x.window)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", x.redisAddr))
	}
	logging.Default().Info("Using Redis submission rate limit", "addr", x.redisAddr, "limit", x.limit, "window", x.window)
	return limiter, func() {
		if err := limiter.Close(); err != nil {
			logging.Default().Error("failed to close redis client", "error", err.Error())
		}
	}, nil
}
