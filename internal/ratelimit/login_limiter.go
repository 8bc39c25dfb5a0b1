package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Counter is the slice of redis commands the limiter needs. *redis.Client
// satisfies it.
type Counter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LoginLimiter counts failed login attempts per email in redis. The limiter
// fails open: if redis is unreachable, logins proceed unchecked.
type LoginLimiter struct {
	client      Counter
	logger      *zap.Logger
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter builds a limiter. A nil client disables limiting.
func NewLoginLimiter(client Counter, logger *zap.Logger, maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &LoginLimiter{client: client, logger: logger, maxAttempts: maxAttempts, window: window}
}

// Allow reports whether another login attempt for the email may proceed.
func (l *LoginLimiter) Allow(ctx context.Context, email string) bool {
	if l == nil || l.client == nil {
		return true
	}

	count, err := l.client.Get(ctx, l.key(email)).Int()
	if err != nil && err != redis.Nil {
		l.logger.Warn("login limiter unavailable", zap.Error(err))
		return true
	}
	return count < l.maxAttempts
}

// RecordFailure increments the attempt counter for the email.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) {
	if l == nil || l.client == nil {
		return
	}

	key := l.key(email)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("login limiter unavailable", zap.Error(err))
		return
	}
	if count == 1 {
		_ = l.client.Expire(ctx, key, l.window).Err()
	}
}

// Reset clears the attempt counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) {
	if l == nil || l.client == nil {
		return
	}
	_ = l.client.Del(ctx, l.key(email)).Err()
}

func (l *LoginLimiter) key(email string) string {
	return fmt.Sprintf("login_attempts:%s", strings.ToLower(email))
}
