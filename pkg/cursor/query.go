package cursor

import (
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/huandu/go-sqlbuilder"
)

type Join struct {
	Option sqlbuilder.JoinOption
	Table  string
	On     []string
}

// Query describes a pending set: source rows that pass the eligibility
// predicates and have no counterpart in the target yet.
type Query struct {
	// Source is the source table with its alias, e.g. "public.trees AS t".
	Source string
	// Joins are joined in order before the target.
	Joins []Join
	// Target is left joined on TargetOn. Rows where Pending IS NULL have not
	// been migrated.
	Target   string
	TargetOn []string
	Pending  string

	Columns []string
	// Where returns extra predicates, ANDed together. They must be built
	// with sb so that values stay parameters.
	Where func(sb *database.SelectBuilder) []string

	OrderBy string
	// ExcludeColumn NOT IN ExcludeIDs, when both are set.
	ExcludeColumn string
	ExcludeIDs    []int
	// Limit caps the pending set; 0 means no cap.
	Limit int
}

// Build renders the pending-set select. Every call returns a new builder.
func (q Query) Build() *database.SelectBuilder {
	sb := database.NewSelectBuilder()
	sb.Select(q.Columns...).From(q.Source)

	for _, j := range q.Joins {
		sb.JoinWithOption(j.Option, j.Table, j.On...)
	}
	if q.Target != "" {
		sb.JoinWithOption(sqlbuilder.LeftJoin, q.Target, q.TargetOn...)
	}

	var where []string
	if q.Where != nil {
		where = append(where, q.Where(sb)...)
	}
	if q.Pending != "" {
		where = append(where, sb.IsNull(q.Pending))
	}
	if q.ExcludeColumn != "" && len(q.ExcludeIDs) > 0 {
		where = append(where, sb.NotIn(q.ExcludeColumn, sqlbuilder.Flatten(q.ExcludeIDs)...))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}

	if q.OrderBy != "" {
		sb.OrderBy(q.OrderBy).Asc()
	}
	if q.Limit > 0 {
		sb.Limit(q.Limit)
	}

	return sb
}
