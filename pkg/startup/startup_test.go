package startup

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

func recorder(events *[]string, name string, requires ...string) Dependency {
	return Dependency{
		Name:     name,
		Requires: requires,
		StartFunc: func(context.Context) error {
			*events = append(*events, "start "+name)
			return nil
		},
		StopFunc: func(context.Context) error {
			*events = append(*events, "stop "+name)
			return nil
		},
	}
}

func TestStartup_OrderAndStop(t *testing.T) {
	var events []string
	s := NewStartup(testdb.Logger(), 1)
	s.AddDependency(recorder(&events, "tracer"))
	s.AddDependency(recorder(&events, "lock", "redis"))
	s.AddDependency(recorder(&events, "redis"))
	s.AddDependency(recorder(&events, "database"))

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, []string{"start tracer", "start redis", "start lock", "start database"}, events)
	assert.Equal(t, StartupStatusStarted, s.Status("lock"))

	events = nil
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, []string{"stop database", "stop redis", "stop lock", "stop tracer"}, events)
	assert.Equal(t, StartupStatusStopped, s.Status("tracer"))
}

func TestStartup_RetriesUntilDependencyIsUp(t *testing.T) {
	calls := 0
	s := NewStartup(testdb.Logger(), 3).WithBackoffUnit(time.Millisecond)
	s.AddDependency(Dependency{
		Name: "database",
		StartFunc: func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		},
	})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 3, calls)
}

func TestStartup_GivesUpWithSetupError(t *testing.T) {
	s := NewStartup(testdb.Logger(), 2).WithBackoffUnit(time.Millisecond)
	s.AddDependency(Dependency{
		Name:      "redis",
		StartFunc: func(context.Context) error { return errors.New("connection refused") },
	})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.True(t, migerrors.IsSetupError(err))
	assert.ErrorContains(t, err, "after 2 attempts")
	assert.Equal(t, StartupStatusFailed, s.Status("redis"))
}

func TestStartup_UnknownDependency(t *testing.T) {
	s := NewStartup(testdb.Logger(), 1)
	s.AddDependency(Dependency{Name: "lock", Requires: []string{"redis"}})

	err := s.Start(context.Background())
	assert.ErrorContains(t, err, "unknown dependency 'redis'")
}

func TestStartup_StopSkipsUnstarted(t *testing.T) {
	var events []string
	s := NewStartup(testdb.Logger(), 1)
	s.AddDependency(recorder(&events, "database"))

	require.NoError(t, s.Stop(context.Background()))
	assert.Empty(t, events)
}
