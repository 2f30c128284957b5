package capture

import (
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/Greenstand/domain-migration-scripts/pkg/geometry"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
)

var captureColumns = []string{
	"reference_id",
	"image_url",
	"lat",
	"lon",
	"gps_accuracy",
	"grower_account_id",
	"morphology",
	"age",
	"note",
	"attributes",
	"created_at",
	"updated_at",
	"captured_at",
	"device_configuration_id",
	"session_id",
	"token_id",
	"estimated_geometric_location",
	"estimated_geographic_location",
}

// captureValues lines up with captureColumns. Both geometry columns are
// built from the same encoded point.
func captureValues(c *models.Capture, point geometry.EncodedPoint) []any {
	return []any{
		c.ReferenceID,
		c.ImageURL,
		c.Lat,
		c.Lon,
		c.GPSAccuracy,
		c.GrowerAccountID,
		c.Morphology,
		c.Age,
		c.Note,
		database.NewJSONB(c.Attributes),
		c.CreatedAt,
		c.UpdatedAt,
		c.CapturedAt,
		c.DeviceConfigurationID,
		c.SessionID,
		c.TokenID,
		database.PointFromText(point.WKT, point.SRID),
		database.MakePoint(point.Lon(), point.Lat(), point.SRID),
	}
}
