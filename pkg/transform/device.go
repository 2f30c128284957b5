package transform

import "github.com/Greenstand/domain-migration-scripts/pkg/models"

func FromDevice(d models.Device) models.DeviceConfiguration {
	cfg := models.DeviceConfiguration{
		ReferenceID:      d.ID,
		DeviceIdentifier: d.AndroidID,
		Brand:            d.Brand,
		Model:            d.Model,
		Device:           d.Device,
		Serial:           d.Serial,
		Hardware:         d.Hardware,
		Manufacturer:     d.Manufacturer,
		AppBuild:         d.AppBuild,
		AppVersion:       d.AppVersion,
		OSVersion:        d.AndroidRelease,
		SDKVersion:       d.AndroidSDK,
	}
	if d.CreatedAt != nil {
		cfg.CreatedAt = *d.CreatedAt
	}
	return cfg
}
