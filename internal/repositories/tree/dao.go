package tree

import (
	"database/sql"

	"github.com/Greenstand/domain-migration-scripts/pkg/models"
)

var treeColumns = []string{
	"id",
	"uuid",
	"planter_id",
	"planter_identifier",
	"planter_photo_url",
	"image_url",
	"lat",
	"lon",
	"gps_accuracy",
	"morphology",
	"age",
	"note",
	"token_id",
	"time_created",
	"time_updated",
}

// Columns lists the tree columns a models.LegacyTree scans from, qualified
// by alias when one is given.
func Columns(alias string) []string {
	if alias == "" {
		return append([]string(nil), treeColumns...)
	}
	cols := make([]string, len(treeColumns))
	for i, c := range treeColumns {
		cols[i] = alias + "." + c
	}
	return cols
}

type AttributeRow struct {
	Key   string         `db:"key"`
	Value sql.NullString `db:"value"`
}

func ToAttributes(rows []AttributeRow) []models.TreeAttribute {
	attributes := make([]models.TreeAttribute, len(rows))
	for i, row := range rows {
		attributes[i] = models.TreeAttribute{Key: row.Key}
		if row.Value.Valid {
			value := row.Value.String
			attributes[i].Value = &value
		}
	}
	return attributes
}
