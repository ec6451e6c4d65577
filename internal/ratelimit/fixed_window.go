// Package ratelimit bounds how often one user can start generations across all replicas.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "resumeai:ratelimit"
	redisTimeout  = 300 * time.Millisecond
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// FixedWindow counts hits per key in aligned windows stored in Redis.
type FixedWindow struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewFixedWindow builds a limiter on an existing client; the caller owns the client.
func NewFixedWindow(client *redis.Client, prefix string, limit int, window time.Duration) (*FixedWindow, error) {
	if client == nil {
		return nil, errors.New("rate limiter requires a redis client")
	}
	if limit <= 0 || window < time.Millisecond {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &FixedWindow{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}, nil
}

func (l *FixedWindow) Limit() int {
	return l.limit
}

func (l *FixedWindow) Window() time.Duration {
	return l.window
}

// Allow records one hit for key. Redis failures fail closed: the hit is refused and the
// error returned so the caller can log it.
func (l *FixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	windowMs := l.window.Milliseconds()
	slot := l.now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limiter: %w", err)
	}
	return count <= int64(l.limit), nil
}
