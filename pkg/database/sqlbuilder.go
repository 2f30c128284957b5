package database

import (
	"fmt"

	"github.com/huandu/go-sqlbuilder"
)

// Flavor is the placeholder dialect every builder in this package uses ($1, $2, ...).
var Flavor = sqlbuilder.PostgreSQL

type InsertBuilder struct {
	*sqlbuilder.InsertBuilder
}

func NewInsertBuilder() *InsertBuilder {
	return &InsertBuilder{Flavor.NewInsertBuilder()}
}

func (ib *InsertBuilder) InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{ib.InsertBuilder.InsertInto(table)}
}

func (ib *InsertBuilder) Cols(col ...string) *InsertBuilder {
	return &InsertBuilder{ib.InsertBuilder.Cols(col...)}
}

func (ib *InsertBuilder) Values(value ...any) *InsertBuilder {
	return &InsertBuilder{ib.InsertBuilder.Values(value...)}
}

func (ib *InsertBuilder) Returning(col ...string) *InsertBuilder {
	return &InsertBuilder{ib.InsertBuilder.Returning(col...)}
}

func (ib *InsertBuilder) OnConflictDoNothing() *InsertBuilder {
	ib.SQL("ON CONFLICT DO NOTHING")
	return ib
}

type UpdateBuilder struct {
	*sqlbuilder.UpdateBuilder
}

func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{Flavor.NewUpdateBuilder()}
}

type SelectBuilder struct {
	*sqlbuilder.SelectBuilder
}

func NewSelectBuilder() *SelectBuilder {
	return &SelectBuilder{Flavor.NewSelectBuilder()}
}

// CountOf wraps a select so that it returns the number of rows it would yield:
// SELECT count(1) FROM (<sb>) AS src.
func CountOf(sb *SelectBuilder) *SelectBuilder {
	cb := NewSelectBuilder()
	cb.Select("count(1)").From(cb.BuilderAs(sb, "src"))
	return cb
}

type Struct struct {
	*sqlbuilder.Struct
}

func NewStruct(v any) *Struct {
	return &Struct{sqlbuilder.NewStruct(v).For(Flavor)}
}

func (s *Struct) WithoutTag(tags ...string) *Struct {
	return &Struct{s.Struct.WithoutTag(tags...)}
}

func (s *Struct) SelectFrom(table string) *SelectBuilder {
	return &SelectBuilder{s.Struct.SelectFrom(table)}
}

func (s *Struct) InsertInto(table string, v ...any) *InsertBuilder {
	return &InsertBuilder{s.Struct.InsertInto(table, v...)}
}

func (s *Struct) Update(table string, v any) *UpdateBuilder {
	return &UpdateBuilder{s.Struct.Update(table, v)}
}

// PointFromText renders ST_PointFromText($n, srid) with the WKT bound as a parameter.
func PointFromText(wkt string, srid int) sqlbuilder.Builder {
	return sqlbuilder.Buildf(fmt.Sprintf("ST_PointFromText(%%v, %d)", srid), wkt)
}

// MakePoint renders ST_SetSRID(ST_Point($lon, $lat), srid).
func MakePoint(lon, lat float64, srid int) sqlbuilder.Builder {
	return sqlbuilder.Buildf(fmt.Sprintf("ST_SetSRID(ST_Point(%%v, %%v), %d)", srid), lon, lat)
}
