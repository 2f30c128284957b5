package pipeline

import (
	"fmt"
	"sort"

	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/config"
	"github.com/Greenstand/domain-migration-scripts/internal/repositories/capture"
	"github.com/Greenstand/domain-migration-scripts/internal/repositories/deviceconfiguration"
	"github.com/Greenstand/domain-migration-scripts/internal/repositories/entity"
	"github.com/Greenstand/domain-migration-scripts/internal/repositories/groweraccount"
	"github.com/Greenstand/domain-migration-scripts/internal/repositories/planter"
	"github.com/Greenstand/domain-migration-scripts/internal/repositories/tree"
	"github.com/Greenstand/domain-migration-scripts/internal/repositories/walletregistration"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/Greenstand/domain-migration-scripts/pkg/resolver"
)

const (
	LegacyCaptures       = "legacy-captures"
	ApprovedCaptures     = "approved-captures"
	DeviceConfigurations = "device-configurations"
	Planters             = "planters"
)

// Options narrow the pending set and fill values the source lacks.
type Options struct {
	ExcludeIDs []int
	// Limit caps the pending set; 0 means no cap.
	Limit int
	// LegacyDeviceConfigurationID is the placeholder device configuration of
	// captures migrated from legacy trees.
	LegacyDeviceConfigurationID string
}

// repositories are built once per migration over the same pool.
type repositories struct {
	trees               *tree.Repository
	planters            *planter.Repository
	accounts            *groweraccount.Repository
	captures            *capture.Repository
	deviceConfigs       *deviceconfiguration.Repository
	entities            *entity.Repository
	walletRegistrations *walletregistration.Repository
	resolver            *resolver.Resolver
}

func newRepositories(db database.DB, tables config.Tables, logger ectologger.Logger) repositories {
	planters := planter.NewRepository(db, logger, tables.Planters, tables.PlanterRegistrations)
	accounts := groweraccount.NewRepository(db, logger, tables.GrowerAccounts)

	return repositories{
		trees: tree.NewRepository(db, logger, tree.Tables{
			Trees:          tables.Trees,
			TreeAttributes: tables.TreeAttributes,
			TreeTags:       tables.TreeTags,
			Tags:           tables.Tags,
		}),
		planters:            planters,
		accounts:            accounts,
		captures:            capture.NewRepository(db, logger, tables.Captures, tables.CaptureTags),
		deviceConfigs:       deviceconfiguration.NewRepository(db, logger, tables.DeviceConfigurations),
		entities:            entity.NewRepository(db, logger, tables.Entities),
		walletRegistrations: walletregistration.NewRepository(db, logger, tables.WalletRegistrations),
		resolver:            resolver.New(planters, accounts, logger),
	}
}

type factory func(db database.DB, tables config.Tables, opts Options, logger ectologger.Logger) Migration

var registry = map[string]factory{
	LegacyCaptures: func(db database.DB, tables config.Tables, opts Options, logger ectologger.Logger) Migration {
		return NewLegacyCaptures(db, tables, opts, logger)
	},
	ApprovedCaptures: func(db database.DB, tables config.Tables, opts Options, logger ectologger.Logger) Migration {
		return NewApprovedCaptures(db, tables, opts, logger)
	},
	DeviceConfigurations: func(db database.DB, tables config.Tables, opts Options, logger ectologger.Logger) Migration {
		return NewDeviceConfigurations(db, tables, opts, logger)
	},
	Planters: func(db database.DB, tables config.Tables, opts Options, logger ectologger.Logger) Migration {
		return NewPlanters(db, tables, opts, logger)
	},
}

// Names lists the registered pipelines in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build returns the named pipeline.
func Build(name string, db database.DB, tables config.Tables, opts Options, logger ectologger.Logger) (Migration, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown pipeline %q", name)
	}
	return f(db, tables, opts, logger), nil
}
