package ratelimit

import (
	"context"
	"time"
)

// Window is one sliding-window limit. A non-positive Requests disables it.
type Window struct {
	Requests int
	Duration time.Duration
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, windows ...Window) (bool, error)
	GetCount(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}
