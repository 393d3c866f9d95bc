package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so a
// holder whose TTL expired cannot release a lock taken over by someone else.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a single-instance Redis lock (SET NX PX + token release)
// for deployments running more than one API process.
type RedisLocker struct {
	rdb     goredis.UniversalClient
	ttl     time.Duration
	timeout time.Duration
	retry   time.Duration
	observe Observer
}

type RedisOption func(*RedisLocker)

func WithRedisObserver(o Observer) RedisOption {
	return func(l *RedisLocker) { l.observe = o }
}

// NewRedisLocker builds a locker; ttl must exceed the longest critical section.
func NewRedisLocker(rdb goredis.UniversalClient, ttl, timeout, retry time.Duration, opts ...RedisOption) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	l := &RedisLocker{rdb: rdb, ttl: ttl, timeout: timeout, retry: retry}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()

	started := time.Now()
	if err := l.acquire(ctx, key, token); err != nil {
		if l.observe != nil {
			l.observe(key, time.Since(started), false)
		}
		return err
	}
	if l.observe != nil {
		l.observe(key, time.Since(started), true)
	}

	defer func() {
		// release even when ctx is already canceled
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, l.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
			slog.Warn("lock release failed", "key", key, "error", err)
		}
	}()

	return fn(ctx)
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.NewTimer(l.timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ErrBusy.Wrap(ctx.Err())
			}
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ticker.C:
		case <-deadline.C:
			return ErrBusy
		case <-ctx.Done():
			return ErrBusy.Wrap(ctx.Err())
		}
	}
}
