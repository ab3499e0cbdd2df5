// file: service/login_limiter.go

package service

import (
	"context"
	"freelance-auth-api/logger"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles repeated failed logins per email using a Redis
// counter with a rolling window. A nil client disables limiting entirely.
// Redis outages fail open: losing the throttle is preferable to locking
// everyone out.
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter creates a new LoginLimiter.
func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

func (l *LoginLimiter) key(email string) string {
	return "login_fail:" + strings.ToLower(email)
}

// TooManyAttempts reports whether the email has exceeded the failure
// threshold within the current window.
func (l *LoginLimiter) TooManyAttempts(ctx context.Context, email string) bool {
	if l == nil || l.client == nil || l.maxAttempts <= 0 {
		return false
	}
	count, err := l.client.Get(ctx, l.key(email)).Int()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).Warn("Login limiter lookup failed, allowing attempt")
		}
		return false
	}
	return count >= l.maxAttempts
}

// RecordFailure increments the failure counter, starting the window on the
// first failure.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) {
	if l == nil || l.client == nil {
		return
	}
	key := l.key(email)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		logger.Log.WithError(err).Warn("Login limiter increment failed")
		return
	}
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}
	if count == int64(l.maxAttempts) {
		logger.Log.WithField("email", email).Warn("Login attempt threshold reached, throttling")
	}
}

// Reset clears the failure counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) {
	if l == nil || l.client == nil {
		return
	}
	if err := l.client.Del(ctx, l.key(email)).Err(); err != nil {
		logger.Log.WithError(err).Warn("Login limiter reset failed")
	}
}

// RetryAfter returns how long a throttled caller should wait before the
// window can expire.
func (l *LoginLimiter) RetryAfter() time.Duration {
	if l == nil {
		return 0
	}
	return l.window
}
