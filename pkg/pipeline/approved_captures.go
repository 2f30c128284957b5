package pipeline

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/config"
	"github.com/Greenstand/domain-migration-scripts/pkg/cursor"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/geometry"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
	"github.com/Greenstand/domain-migration-scripts/pkg/transform"
	"github.com/Greenstand/domain-migration-scripts/pkg/writer"
	"github.com/huandu/go-sqlbuilder"
)

// ApprovedCapturesQuery selects raw captures that still need a capture, and
// captures whose token no longer matches their legacy tree.
func ApprovedCapturesQuery(tables config.Tables, opts Options) cursor.Query {
	return cursor.Query{
		Source: tables.RawCaptures + " AS rc",
		Joins: []cursor.Join{
			{Option: sqlbuilder.InnerJoin, Table: tables.Sessions + " AS s", On: []string{"rc.session_id = s.id"}},
			{Option: sqlbuilder.InnerJoin, Table: tables.WalletRegistrations + " AS wr", On: []string{"s.originating_wallet_registration_id = wr.id"}},
			{Option: sqlbuilder.InnerJoin, Table: tables.Trees + " AS pt", On: []string{"rc.id::text = pt.uuid"}},
		},
		Target:   tables.Captures + " AS tc",
		TargetOn: []string{"rc.id = tc.id"},
		Columns: []string{
			"rc.id",
			"rc.reference_id",
			"rc.session_id",
			"s.device_configuration_id",
			"wr.grower_account_id",
			"rc.image_url",
			"rc.lat",
			"rc.lon",
			"rc.gps_accuracy",
			"rc.note",
			"rc.status",
			"rc.captured_at",
			"rc.created_at",
			"rc.updated_at",
			"pt.id AS tree_id",
			"tc.id AS existing_capture_id",
		},
		Where: func(sb *database.SelectBuilder) []string {
			treeLive := sb.And(sb.Equal("pt.active", true), sb.Equal("pt.approved", true))
			tokenDrift := sb.Or(
				sb.And(sb.IsNotNull("pt.token_id"), sb.IsNull("tc.token_id")),
				sb.And(sb.IsNull("pt.token_id"), sb.IsNotNull("tc.token_id")),
			)
			return []string{
				sb.Or(
					sb.And(sb.Equal("rc.status", "approved"), sb.IsNull("tc.id")),
					sb.And(sb.NotEqual("rc.status", "approved"), treeLive, sb.IsNull("tc.id")),
					sb.And(tokenDrift, sb.IsNotNull("tc.id"), treeLive),
				),
			}
		},
		OrderBy:       "pt.id",
		ExcludeColumn: "rc.reference_id",
		ExcludeIDs:    opts.ExcludeIDs,
		Limit:         opts.Limit,
	}
}

type approvedCaptureHandler struct {
	repos repositories
}

func (h *approvedCaptureHandler) Handle(ctx context.Context, raw models.RawCapture, step *writer.Step) (writer.Result, error) {
	step.Enter(writer.Resolving)
	t, err := h.repos.trees.FindByID(ctx, raw.ReferenceID)
	if err != nil {
		return writer.Result{}, err
	}
	if t == nil {
		return writer.Result{}, migerrors.NewTransformErrorf("reference_id", "legacy tree %d not found", raw.ReferenceID).AddSourceID(raw.TreeID)
	}

	if raw.Migrated() {
		step.Enter(writer.Writing)
		if err := h.repos.captures.UpdateTokenID(ctx, *raw.ExistingCaptureID, t.TokenID); err != nil {
			return writer.Result{}, err
		}
		return writer.Result{
			Action:          writer.ActionUpdated,
			TargetID:        *raw.ExistingCaptureID,
			GrowerAccountID: raw.GrowerAccountID,
		}, nil
	}

	step.Enter(writer.Transforming)
	attributes, err := h.repos.trees.ListAttributes(ctx, t.ID)
	if err != nil {
		return writer.Result{}, err
	}
	tagIDs, err := h.repos.trees.ListTagIDs(ctx, t.ID)
	if err != nil {
		return writer.Result{}, err
	}

	c, err := transform.FromRawCapture(raw, *t, attributes, tagIDs)
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
	if err := h.repos.captures.AddTags(ctx, id, c.TagIDs); err != nil {
		return writer.Result{}, err
	}

	return writer.Result{
		Action:          writer.ActionInserted,
		TargetID:        id,
		GrowerAccountID: c.GrowerAccountID,
	}, nil
}

// NewApprovedCaptures migrates field raw captures into captures and keeps
// migrated captures' tokens in step with their legacy trees.
func NewApprovedCaptures(db database.DB, tables config.Tables, opts Options, logger ectologger.Logger) *Pipeline[models.RawCapture] {
	handler := &approvedCaptureHandler{repos: newRepositories(db, tables, logger)}
	return New(ApprovedCaptures,
		cursor.New[models.RawCapture](db, ApprovedCapturesQuery(tables, opts), logger),
		writer.New[models.RawCapture](db, handler, logger),
	)
}
