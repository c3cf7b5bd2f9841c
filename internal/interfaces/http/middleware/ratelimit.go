package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/antrian-kiosk/antrian/internal/infrastructure/ratelimit"
	"github.com/antrian-kiosk/antrian/internal/shared/constants"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
	"github.com/antrian-kiosk/antrian/internal/shared/utils"
)

// RateLimiter limits requests per client IP over a sliding window shared
// through Redis.
type RateLimiter struct {
	limiter ratelimit.RateLimiter
	window  ratelimit.Window
	logger  logger.Interface
}

func NewRateLimiter(limiter ratelimit.RateLimiter, limit int, window time.Duration, log logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		window:  ratelimit.Window{Requests: limit, Duration: window},
		logger:  log,
	}
}

// Limit returns a Gin middleware that enforces the rate limit per client IP.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()

		allowed, err := rl.limiter.Allow(c.Request.Context(), key, rl.window)
		if err != nil {
			// If Redis is unavailable, allow the request to avoid blocking all traffic
			rl.logger.Warnw("rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, constants.ErrMsgTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}
