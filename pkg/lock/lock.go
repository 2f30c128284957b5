package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockNotAcquired is returned when another run holds the lock
	ErrLockNotAcquired = errors.New("lock not acquired")
	// ErrLockNotHeld is returned when the lock expired or belongs to another run
	ErrLockNotHeld = errors.New("lock not held")
)

const DefaultKeyPrefix = "migration:lock:"

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// Handle is a held run lock.
type Handle interface {
	Release(ctx context.Context) error
	Extend(ctx context.Context, ttl time.Duration) error
}

// Locker acquires one lock per pipeline name.
type Locker interface {
	Acquire(ctx context.Context, pipeline string, ttl time.Duration) (Handle, error)
}

// RedisLocker takes locks with SET NX and frees them with a compare-and-delete
// script so a run never releases a lock it no longer owns.
type RedisLocker struct {
	client    *Client
	keyPrefix string
}

func NewRedisLocker(client *Client, keyPrefix string) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisLocker{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (l *RedisLocker) Key(pipeline string) string {
	return l.keyPrefix + pipeline
}

// Acquire fails with a SetupError wrapping ErrLockNotAcquired when another
// run holds the pipeline's lock.
func (l *RedisLocker) Acquire(ctx context.Context, pipeline string, ttl time.Duration) (Handle, error) {
	key := l.Key(pipeline)
	value := uuid.New().String()

	ok, err := l.client.rdb.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return nil, migerrors.NewSetupError("lock", fmt.Errorf("failed to acquire lock %s: %w", key, err))
	}
	if !ok {
		return nil, migerrors.NewSetupError("lock", fmt.Errorf("pipeline %s is already running: %w", pipeline, ErrLockNotAcquired))
	}

	l.client.logger.WithContext(ctx).Debugf("Acquired lock: %s", key)

	return &redisHandle{
		client: l.client,
		key:    key,
		value:  value,
	}, nil
}

type redisHandle struct {
	client *Client
	key    string
	value  string
}

func (h *redisHandle) Release(ctx context.Context) error {
	result, err := releaseScript.Run(ctx, h.client.rdb, []string{h.key}, h.value).Int64()
	if err != nil {
		return err
	}
	if result == 0 {
		return ErrLockNotHeld
	}

	h.client.logger.WithContext(ctx).Debugf("Released lock: %s", h.key)
	return nil
}

func (h *redisHandle) Extend(ctx context.Context, ttl time.Duration) error {
	result, err := extendScript.Run(ctx, h.client.rdb, []string{h.key}, h.value, ttl.Milliseconds()).Int64()
	if err != nil {
		return err
	}
	if result == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// KeepAlive extends the lock every ttl/2 until ctx is done. A lost lock is
// reported on the returned channel.
func KeepAlive(ctx context.Context, h Handle, ttl time.Duration) <-chan error {
	lost := make(chan error, 1)
	go func() {
		defer close(lost)
		ticker := time.NewTicker(ttl / 2)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := h.Extend(ctx, ttl); err != nil {
					if ctx.Err() != nil {
						return
					}
					lost <- err
					return
				}
			}
		}
	}()
	return lost
}

// Nop grants every lock. It is used when Redis is disabled.
type Nop struct{}

func (Nop) Acquire(context.Context, string, time.Duration) (Handle, error) {
	return nopHandle{}, nil
}

type nopHandle struct{}

func (nopHandle) Release(context.Context) error               { return nil }
func (nopHandle) Extend(context.Context, time.Duration) error { return nil }
