package main

import (
	"context"

	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/startup"
	"github.com/spf13/cobra"
)

func schemaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Apply the schema migrations in DB_MIGRATION_FOLDER_PATH",
		Long: `Apply the golang-migrate schema folder to DATABASE_URL. DB_MIGRATION_VERSION
pins a version (0 for the latest), DB_MIGRATION_FORCE clears a dirty state and
DB_MIGRATION_AUTO_ROLLBACK reverts a failed migration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.migrateSchema(cmd.Context())
		},
	}
}

func (a *app) migrateSchema(ctx context.Context) error {
	cfg := a.cfg

	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{MaxOpenConns: 2}, a.logger)
	if err != nil {
		return migerrors.NewSetupError("database", err)
	}
	defer db.SQLDB().Close()

	deps := startup.NewStartup(a.logger, cfg.StartupMaxAttempts)
	deps.AddDependency(startup.Dependency{
		Name: "database",
		StartFunc: func(ctx context.Context) error {
			return db.SQLDB().PingContext(ctx)
		},
	})
	if err := deps.Start(ctx); err != nil {
		return err
	}

	service := database.NewMigrationService(a.logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	if err := service.MigratePostgres(db); err != nil {
		return migerrors.NewSetupError("schema", err)
	}

	a.logger.Info("Schema is up to date")
	return nil
}
