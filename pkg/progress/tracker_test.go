package progress_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Greenstand/domain-migration-scripts/internal/testdb"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTracker(t *testing.T) {
	clock := &fakeClock{now: time.Date(2022, 1, 28, 0, 0, 0, 0, time.UTC)}
	rec := &testdb.LogRecorder{}
	tracker := progress.NewTracker("legacy-captures", 4, rec.Logger(), progress.WithClock(clock.Now), progress.WithLogEvery(50), progress.WithRunID("run-1"))
	ctx := context.Background()

	assert.False(t, tracker.Complete())

	clock.Advance(time.Second)
	tracker.Tick(ctx, progress.StatusCommitted)
	assert.Empty(t, rec.Messages("info"), "25% is below the first boundary")

	clock.Advance(time.Second)
	tracker.Tick(ctx, progress.StatusFailed)
	require.Len(t, rec.Messages("info"), 1)
	assert.Equal(t, "Migrating 50% 2/4", rec.Messages("info")[0].Message)

	snap := tracker.Snapshot()
	assert.Equal(t, 2, snap.Processed)
	assert.Equal(t, 1, snap.Committed)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 50, snap.Percent)
	assert.Equal(t, "run-1", snap.RunID)
	assert.InDelta(t, 1.0, snap.Rate, 0.0001)
	assert.Equal(t, 2*time.Second, snap.ETA)

	tracker.Tick(ctx, progress.StatusSkipped)
	tracker.Tick(ctx, progress.StatusCommitted)

	assert.True(t, tracker.Complete())
	assert.Len(t, rec.Messages("info"), 2)
	assert.Equal(t, 1, tracker.Snapshot().Skipped)
	assert.Equal(t, time.Duration(0), tracker.Snapshot().ETA)
}

func TestTracker_OvershootsWhenPendingSetGrows(t *testing.T) {
	tracker := progress.NewTracker("planters", 1, testdb.Logger())
	ctx := context.Background()

	tracker.Tick(ctx, progress.StatusCommitted)
	tracker.Tick(ctx, progress.StatusCommitted)

	snap := tracker.Snapshot()
	assert.Equal(t, 2, snap.Processed)
	assert.Equal(t, 100, snap.Percent)
	assert.True(t, snap.Complete)
}

func TestBoard(t *testing.T) {
	board := progress.NewBoard()
	board.Put(progress.NewTracker("planters", 2, testdb.Logger()))
	board.Put(progress.NewTracker("device-configurations", 1, testdb.Logger()))

	snaps := board.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, "device-configurations", snaps[0].Pipeline)

	snap, ok := board.Get("planters")
	require.True(t, ok)
	assert.Equal(t, 2, snap.Total)

	_, ok = board.Get("missing")
	assert.False(t, ok)
}

func TestTracker_RecordFailure(t *testing.T) {
	tracker := progress.NewTracker("legacy-captures", 200, testdb.Logger())
	ctx := context.Background()

	tracker.RecordFailure(1, nil)
	for id := int64(1); id <= 150; id++ {
		tracker.RecordFailure(id, migerrors.NewMissingPersonError(id, ""))
		tracker.Tick(ctx, progress.StatusFailed)
	}
	tracker.RecordFailure(150, migerrors.NewTransformError("age", "not a number"))

	snap := tracker.Snapshot()
	assert.Equal(t, 150, snap.Failed)
	require.Len(t, snap.RecentFailures, 100)
	assert.Equal(t, int64(52), snap.RecentFailures[0].SourceID)

	_, ok := snap.FindFailure(10)
	assert.False(t, ok, "oldest failures are dropped")

	failure, ok := snap.FindFailure(150)
	require.True(t, ok)
	assert.Equal(t, migerrors.KindTransform, failure.Kind)
	assert.True(t, migerrors.IsTransformError(failure.Err()))
}
