package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Greenstand/domain-migration-scripts/internal/testdb"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_RedisLocker(t *testing.T) {
	redis := testdb.NewRedis(t)
	ctx := context.Background()

	client := NewClient(Config{Host: redis.Host, Port: redis.Port}, testdb.Logger())
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(ctx))

	locker := NewRedisLocker(client, DefaultKeyPrefix)

	held, err := locker.Acquire(ctx, "planters", time.Minute)
	require.NoError(t, err)

	t.Run("second run is refused", func(t *testing.T) {
		_, err := locker.Acquire(ctx, "planters", time.Minute)
		require.Error(t, err)
		assert.True(t, migerrors.IsSetupError(err))
		assert.True(t, errors.Is(err, ErrLockNotAcquired))
	})

	t.Run("other pipelines are independent", func(t *testing.T) {
		other, err := locker.Acquire(ctx, "legacy-captures", time.Minute)
		require.NoError(t, err)
		assert.NoError(t, other.Release(ctx))
	})

	t.Run("holder extends", func(t *testing.T) {
		require.NoError(t, held.Extend(ctx, 2*time.Minute))

		ttl, err := client.rdb.TTL(ctx, locker.Key("planters")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Minute)
	})

	require.NoError(t, held.Release(ctx))

	t.Run("released lock cannot be released or extended again", func(t *testing.T) {
		assert.ErrorIs(t, held.Release(ctx), ErrLockNotHeld)
		assert.ErrorIs(t, held.Extend(ctx, time.Minute), ErrLockNotHeld)
	})

	t.Run("released lock can be acquired", func(t *testing.T) {
		again, err := locker.Acquire(ctx, "planters", time.Minute)
		require.NoError(t, err)
		assert.NoError(t, again.Release(ctx))
	})
}
