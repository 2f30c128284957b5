package pipeline

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/config"
	"github.com/Greenstand/domain-migration-scripts/internal/repositories/tree"
	"github.com/Greenstand/domain-migration-scripts/pkg/cursor"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/Greenstand/domain-migration-scripts/pkg/geometry"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
	"github.com/Greenstand/domain-migration-scripts/pkg/resolver"
	"github.com/Greenstand/domain-migration-scripts/pkg/transform"
	"github.com/Greenstand/domain-migration-scripts/pkg/writer"
)

// LegacyCapturesQuery selects active, approved legacy trees with an image
// that have no capture yet.
func LegacyCapturesQuery(tables config.Tables, opts Options) cursor.Query {
	return cursor.Query{
		Source:   tables.Trees + " AS t",
		Target:   tables.Captures + " AS c",
		TargetOn: []string{"t.id = c.reference_id"},
		Pending:  "c.reference_id",
		Columns:  tree.Columns("t"),
		Where: func(sb *database.SelectBuilder) []string {
			return []string{
				sb.Equal("t.active", true),
				sb.Equal("t.approved", true),
				sb.IsNotNull("t.image_url"),
			}
		},
		OrderBy:       "t.id",
		ExcludeColumn: "t.id",
		ExcludeIDs:    opts.ExcludeIDs,
		Limit:         opts.Limit,
	}
}

type legacyCaptureHandler struct {
	repos                 repositories
	deviceConfigurationID string
}

func (h *legacyCaptureHandler) Handle(ctx context.Context, t models.LegacyTree, step *writer.Step) (writer.Result, error) {
	step.Enter(writer.Resolving)
	resolution, err := h.repos.resolver.Resolve(ctx, resolver.PersonReference{
		SourceID:          t.ID,
		PlanterID:         t.PlanterID,
		PlanterIdentifier: t.PlanterIdentifier,
		FallbackImageURL:  t.PlanterPhotoURL,
	})
	if err != nil {
		return writer.Result{}, err
	}

	step.Enter(writer.Transforming)
	attributes, err := h.repos.trees.ListAttributes(ctx, t.ID)
	if err != nil {
		return writer.Result{}, err
	}

	c, err := transform.FromLegacyTree(t, attributes, resolution.Account, h.deviceConfigurationID)
	if err != nil {
		return writer.Result{}, err
	}

	step.Enter(writer.Writing)
	point, err := geometry.Encode(c.Lon, c.Lat)
	if err != nil {
		return writer.Result{}, err
	}

	id, err := h.repos.captures.Create(ctx, &c, point)
	if err != nil {
		return writer.Result{}, err
	}

	return writer.Result{
		Action:          writer.ActionInserted,
		TargetID:        id,
		GrowerAccountID: resolution.Account.ID,
	}, nil
}

// NewLegacyCaptures migrates legacy trees into captures, creating the grower
// account of each tree's planter when needed.
func NewLegacyCaptures(db database.DB, tables config.Tables, opts Options, logger ectologger.Logger) *Pipeline[models.LegacyTree] {
	handler := &legacyCaptureHandler{
		repos:                 newRepositories(db, tables, logger),
		deviceConfigurationID: opts.LegacyDeviceConfigurationID,
	}
	return New(LegacyCaptures,
		cursor.New[models.LegacyTree](db, LegacyCapturesQuery(tables, opts), logger),
		writer.New[models.LegacyTree](db, handler, logger),
	)
}
