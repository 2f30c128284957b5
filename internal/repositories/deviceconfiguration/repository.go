package deviceconfiguration

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing"
)

type DeviceConfigurationRepository interface {
	Create(ctx context.Context, config *models.DeviceConfiguration) (string, error)
}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
	table  string
}

func NewRepository(db database.DB, logger ectologger.Logger, table string) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
		table:  table,
	}
}

func (r *Repository) Create(ctx context.Context, config *models.DeviceConfiguration) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "DeviceConfigurationRepository.Create")
	defer span.End()

	ib := deviceConfigurationStruct.WithoutTag("generated").InsertInto(r.table, FromDeviceConfiguration(config))
	ib.Returning("id")

	query, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"reference_id":      config.ReferenceID,
		"device_identifier": config.DeviceIdentifier,
	}).Debug("Creating device configuration")

	var id string
	if err := database.Conn(ctx, r.db).GetContext(ctx, &id, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create device configuration")
		return "", fmt.Errorf("failed to create device configuration for device %d: %w", config.ReferenceID, err)
	}

	return id, nil
}
