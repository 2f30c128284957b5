package pipeline

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/config"
	"github.com/Greenstand/domain-migration-scripts/pkg/cursor"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
	"github.com/Greenstand/domain-migration-scripts/pkg/transform"
	"github.com/Greenstand/domain-migration-scripts/pkg/writer"
)

var deviceColumns = []string{
	"d.id",
	"d.android_id",
	"d.app_version",
	"d.app_build",
	"d.manufacturer",
	"d.brand",
	"d.model",
	"d.hardware",
	"d.device",
	"d.serial",
	"d.android_release",
	"d.android_sdk",
	"d.created_at",
}

func DeviceConfigurationsQuery(tables config.Tables, opts Options) cursor.Query {
	return cursor.Query{
		Source:        tables.Devices + " AS d",
		Target:        tables.DeviceConfigurations + " AS dc",
		TargetOn:      []string{"dc.reference_id = d.id"},
		Pending:       "dc.id",
		Columns:       deviceColumns,
		OrderBy:       "d.id",
		ExcludeColumn: "d.id",
		ExcludeIDs:    opts.ExcludeIDs,
		Limit:         opts.Limit,
	}
}

type deviceConfigurationHandler struct {
	repos repositories
}

func (h *deviceConfigurationHandler) Handle(ctx context.Context, d models.Device, step *writer.Step) (writer.Result, error) {
	step.Enter(writer.Transforming)
	c := transform.FromDevice(d)

	step.Enter(writer.Writing)
	id, err := h.repos.deviceConfigs.Create(ctx, &c)
	if err != nil {
		return writer.Result{}, err
	}

	return writer.Result{Action: writer.ActionInserted, TargetID: id}, nil
}

func NewDeviceConfigurations(db database.DB, tables config.Tables, opts Options, logger ectologger.Logger) *Pipeline[models.Device] {
	handler := &deviceConfigurationHandler{repos: newRepositories(db, tables, logger)}
	return New(DeviceConfigurations,
		cursor.New[models.Device](db, DeviceConfigurationsQuery(tables, opts), logger),
		writer.New[models.Device](db, handler, logger),
	)
}
