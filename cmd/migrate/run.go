package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Greenstand/domain-migration-scripts/pkg/admin"
	appctx "github.com/Greenstand/domain-migration-scripts/pkg/context"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/events"
	"github.com/Greenstand/domain-migration-scripts/pkg/lock"
	"github.com/Greenstand/domain-migration-scripts/pkg/pipeline"
	"github.com/Greenstand/domain-migration-scripts/pkg/progress"
	"github.com/Greenstand/domain-migration-scripts/pkg/startup"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing/exporters"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var descriptions = map[string]string{
	pipeline.LegacyCaptures:       "Migrate approved legacy trees into captures",
	pipeline.ApprovedCaptures:     "Migrate approved raw captures and reconcile capture tokens",
	pipeline.DeviceConfigurations: "Migrate legacy devices into device configurations",
	pipeline.Planters:             "Migrate planters into grower accounts and wallet registrations",
}

func pipelineCommand(a *app, name string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: descriptions[name],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result := a.run(ctx, name)
			a.exitCode = result.ExitCode
			if result.ExitCode == pipeline.ExitSetup {
				return result.Err
			}
			return nil
		},
	}
}

// run wires the infrastructure one pipeline run needs, acquires the run lock
// and drives the migration. Infrastructure failures are reported as a result
// with the setup exit code.
func (a *app) run(ctx context.Context, name string) pipeline.Result {
	cfg := a.cfg
	runID := uuid.New().String()
	ctx = appctx.SetRunID(ctx, runID)
	ctx = appctx.SetPipeline(ctx, name)
	logger := a.logger

	setupFailed := func(stage string, err error) pipeline.Result {
		if !migerrors.IsSetupError(err) {
			err = migerrors.NewSetupError(stage, err)
		}
		logger.WithContext(ctx).WithError(err).Error("Migration setup failed")
		return pipeline.Result{ExitCode: pipeline.ExitSetup, Summary: pipeline.Summary{Pipeline: name}, Err: err}
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Setup(ctx, cfg.AppName, exporters.OTLPConfig{
			Endpoint: cfg.Tracing.Endpoint,
			Protocol: cfg.Tracing.Protocol,
			Insecure: cfg.Tracing.Insecure,
		})
		if err != nil {
			return setupFailed("tracing", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Warn("Failed to flush traces")
			}
		}()
	}

	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		return setupFailed("database", err)
	}

	deps := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	deps.AddDependency(startup.Dependency{
		Name: "database",
		StartFunc: func(ctx context.Context) error {
			return db.SQLDB().PingContext(ctx)
		},
		StopFunc: func(context.Context) error {
			return db.SQLDB().Close()
		},
	})

	var locker lock.Locker = lock.Nop{}
	checks := []admin.Option{admin.WithCheck("database", func(ctx context.Context) error {
		return db.SQLDB().PingContext(ctx)
	})}

	if cfg.Redis.Enabled {
		client := lock.NewClient(lock.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		deps.AddDependency(startup.Dependency{
			Name:      "redis",
			StartFunc: client.Ping,
			StopFunc: func(context.Context) error {
				return client.Close()
			},
		})
		locker = lock.NewRedisLocker(client, lock.DefaultKeyPrefix)
		checks = append(checks, admin.WithCheck("redis", client.Ping))
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled {
		producer, err := events.NewProducer(events.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			Compression:  cfg.Kafka.Compression,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: time.Duration(cfg.Kafka.BatchTimeoutMs) * time.Millisecond,
			RequiredAcks: cfg.Kafka.RequiredAcks,
		}, logger)
		if err != nil {
			return setupFailed("kafka", err)
		}
		// the writer dials lazily, so only its shutdown is ordered
		deps.AddDependency(startup.Dependency{
			Name: "kafka",
			StopFunc: func(context.Context) error {
				return producer.Close()
			},
		})
		publisher = producer
	}

	// Stop only tears down what started, so it also runs after a failed Start
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := deps.Stop(stopCtx); err != nil {
			logger.WithError(err).Warn("Failed to stop dependencies")
		}
	}()
	if err := deps.Start(ctx); err != nil {
		return setupFailed("startup", err)
	}

	handle, err := locker.Acquire(ctx, name, cfg.Redis.LockTTL)
	if err != nil {
		return setupFailed("lock", err)
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := handle.Release(releaseCtx); err != nil {
			logger.WithError(err).Warn("Failed to release run lock")
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err, ok := <-lock.KeepAlive(runCtx, handle, cfg.Redis.LockTTL); ok && err != nil {
			logger.WithError(err).Error("Run lock lost, stopping migration")
			cancel()
		}
	}()

	board := progress.NewBoard()
	if cfg.Admin.Port > 0 {
		server := admin.New(cfg.AppName, cfg.Admin.Port, runID, board, logger, checks...)
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Warn("Failed to shut down admin server")
			}
		}()
	}

	migration, err := pipeline.Build(name, db, a.tables, pipeline.Options{
		ExcludeIDs:                  cfg.Migration.ExcludeIDs,
		Limit:                       cfg.Migration.BatchLimit,
		LegacyDeviceConfigurationID: cfg.Migration.LegacyDeviceConfigurationID,
	}, logger)
	if err != nil {
		return setupFailed("pipeline", err)
	}

	runner := pipeline.NewRunner(logger,
		pipeline.WithAbortOnRecordError(cfg.AbortOnRecordError()),
		pipeline.WithProgressEvery(cfg.Migration.ProgressLogEveryPercent),
		pipeline.WithRunID(runID),
		pipeline.WithBoard(board),
		pipeline.WithPublisher(publisher),
	)

	return migration.Run(runCtx, runner)
}
