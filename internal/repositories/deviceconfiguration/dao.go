package deviceconfiguration

import (
	"database/sql"
	"time"

	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
)

type DeviceConfigurationRow struct {
	ID               string         `db:"id" fieldtag:"generated"`
	ReferenceID      int64          `db:"reference_id"`
	DeviceIdentifier sql.NullString `db:"device_identifier"`
	Brand            sql.NullString `db:"brand"`
	Model            sql.NullString `db:"model"`
	Device           sql.NullString `db:"device"`
	Serial           sql.NullString `db:"serial"`
	Hardware         sql.NullString `db:"hardware"`
	Manufacturer     sql.NullString `db:"manufacturer"`
	AppBuild         sql.NullInt64  `db:"app_build"`
	AppVersion       sql.NullString `db:"app_version"`
	OSVersion        sql.NullString `db:"os_version"`
	SDKVersion       sql.NullInt64  `db:"sdk_version"`
	CreatedAt        time.Time      `db:"created_at"`
}

var deviceConfigurationStruct = database.NewStruct(new(DeviceConfigurationRow))

func FromDeviceConfiguration(c *models.DeviceConfiguration) *DeviceConfigurationRow {
	row := &DeviceConfigurationRow{
		ReferenceID:      c.ReferenceID,
		DeviceIdentifier: nullString(c.DeviceIdentifier),
		Brand:            nullString(c.Brand),
		Model:            nullString(c.Model),
		Device:           nullString(c.Device),
		Serial:           nullString(c.Serial),
		Hardware:         nullString(c.Hardware),
		Manufacturer:     nullString(c.Manufacturer),
		AppBuild:         nullInt(c.AppBuild),
		AppVersion:       nullString(c.AppVersion),
		OSVersion:        nullString(c.OSVersion),
		SDKVersion:       nullInt(c.SDKVersion),
		CreatedAt:        c.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
