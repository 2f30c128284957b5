package main

import (
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/config"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/logging"
	"github.com/Greenstand/domain-migration-scripts/pkg/pipeline"
	"github.com/spf13/cobra"
)

// flags override the matching environment keys when set on the command line.
type flags struct {
	onRecordError string
	limit         int
	excludeIDs    []int
	tablesFile    string
	adminPort     int
	logLevel      string
}

// app is the state shared by the commands of one invocation.
type app struct {
	cfg      *config.Config
	tables   config.Tables
	logger   ectologger.Logger
	sync     func() error
	flags    flags
	exitCode int
}

// RootCommand creates the migrate command with one sub-command per pipeline.
func RootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Migrate legacy records into the normalized schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, &a.flags)

	listCmd := listCommand()

	subcommands := []*cobra.Command{listCmd, schemaCommand(a)}
	for _, name := range pipeline.Names() {
		subcommands = append(subcommands, pipelineCommand(a, name))
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// list needs neither configuration nor a logger
		if cmd.Name() == listCmd.Name() {
			return nil
		}
		return a.initialize(cmd)
	}

	return rootCmd
}

func setupFlags(rootCmd *cobra.Command, f *flags) {
	rootCmd.PersistentFlags().StringVar(&f.onRecordError, "on-record-error", "", "Failure policy for a single record: continue or abort (ON_RECORD_ERROR)")
	rootCmd.PersistentFlags().IntVar(&f.limit, "limit", 0, "Upper bound on records migrated by this run, 0 for none (MIGRATION_BATCH_LIMIT)")
	rootCmd.PersistentFlags().IntSliceVar(&f.excludeIDs, "exclude-ids", nil, "Source ids never migrated (MIGRATION_EXCLUDE_IDS)")
	rootCmd.PersistentFlags().StringVar(&f.tablesFile, "tables", "", "YAML file overriding source and target table names (TABLES_FILE)")
	rootCmd.PersistentFlags().IntVar(&f.adminPort, "admin-port", 0, "Port of the admin server, 0 disables it (ADMIN_PORT)")
	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (LOG_LEVEL)")
}

// initialize loads the configuration, applies the command line overrides and
// builds the logger. Every failure is a SetupError.
func (a *app) initialize(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a.applyFlags(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return migerrors.NewSetupError("config", err)
	}

	logger, sync, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.PrettyLogs,
		Debug:  cfg.Debug,
	})
	if err != nil {
		return migerrors.NewSetupError("logging", err)
	}

	tables, err := config.LoadTables(cfg.Migration.TablesFile)
	if err != nil {
		return migerrors.NewSetupError("config", err)
	}

	a.cfg = cfg
	a.tables = tables
	a.logger = logger
	a.sync = sync
	return nil
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("on-record-error") {
		cfg.Migration.OnRecordError = strings.ToLower(a.flags.onRecordError)
	}
	if changed("limit") {
		cfg.Migration.BatchLimit = a.flags.limit
	}
	if changed("exclude-ids") {
		cfg.Migration.ExcludeIDs = a.flags.excludeIDs
	}
	if changed("tables") {
		cfg.Migration.TablesFile = a.flags.tablesFile
	}
	if changed("admin-port") {
		cfg.Admin.Port = a.flags.adminPort
	}
	if changed("log-level") {
		cfg.LogLevel = strings.ToLower(a.flags.logLevel)
	}
}

func (a *app) close() {
	if a.sync != nil {
		_ = a.sync()
	}
}

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available pipelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range pipeline.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
