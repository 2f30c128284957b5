package database_test

import (
	"testing"

	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/stretchr/testify/assert"
)

func TestCountOf(t *testing.T) {
	sb := database.NewSelectBuilder()
	sb.Select("t.id").From("public.trees t")
	sb.Where(sb.Equal("t.active", true), sb.IsNotNull("t.image_url"))

	sql, args := database.CountOf(sb).Build()

	assert.Equal(t, "SELECT count(1) FROM (SELECT t.id FROM public.trees t WHERE t.active = $1 AND t.image_url IS NOT NULL) AS src", sql)
	assert.Equal(t, []any{true}, args)
}

func TestGeometryExpressionsAreParameterized(t *testing.T) {
	ib := database.NewInsertBuilder().
		InsertInto("treetracker.capture").
		Cols("reference_id", "estimated_geometric_location", "estimated_geographic_location").
		Values(int64(42), database.PointFromText("POINT(-20.25 10.5)", 4326), database.MakePoint(-20.25, 10.5, 4326)).
		Returning("id")

	sql, args := ib.Build()

	assert.Contains(t, sql, "ST_PointFromText($2, 4326)")
	assert.Contains(t, sql, "ST_SetSRID(ST_Point($3, $4), 4326)")
	assert.Contains(t, sql, "RETURNING id")
	assert.Equal(t, []any{int64(42), "POINT(-20.25 10.5)", -20.25, 10.5}, args)
}

func TestStructWithoutTag(t *testing.T) {
	type row struct {
		ID     string `db:"id" fieldtag:"pk"`
		Wallet string `db:"wallet"`
	}

	s := database.NewStruct(new(row))
	sql, args := s.WithoutTag("pk").InsertInto("treetracker.grower_account", &row{ID: "x", Wallet: "a@x.com"}).Build()

	assert.Equal(t, "INSERT INTO treetracker.grower_account (wallet) VALUES ($1)", sql)
	assert.Equal(t, []any{"a@x.com"}, args)
}
