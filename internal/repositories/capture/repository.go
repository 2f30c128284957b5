package capture

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/Greenstand/domain-migration-scripts/pkg/geometry"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing"
)

type CaptureRepository interface {
	Create(ctx context.Context, capture *models.Capture, point geometry.EncodedPoint) (string, error)
	UpdateTokenID(ctx context.Context, id string, tokenID *string) error
	AddTags(ctx context.Context, captureID string, tagIDs []string) error
}

type Repository struct {
	db        database.DB
	logger    ectologger.Logger
	table     string
	tagsTable string
}

func NewRepository(db database.DB, logger ectologger.Logger, table, tagsTable string) *Repository {
	return &Repository{
		db:        db,
		logger:    logger,
		table:     table,
		tagsTable: tagsTable,
	}
}

// Create inserts the capture and returns its id. A capture with a preset ID
// keeps it; otherwise the store generates one.
func (r *Repository) Create(ctx context.Context, capture *models.Capture, point geometry.EncodedPoint) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "CaptureRepository.Create")
	defer span.End()

	cols := captureColumns
	values := captureValues(capture, point)
	if capture.ID != nil {
		cols = append([]string{"id"}, cols...)
		values = append([]any{*capture.ID}, values...)
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(r.table).Cols(cols...).Values(values...).Returning("id")

	query, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"reference_id":      capture.ReferenceID,
		"grower_account_id": capture.GrowerAccountID,
		"session_id":        capture.SessionID,
	}).Debug("Creating capture")

	var id string
	if err := database.Conn(ctx, r.db).GetContext(ctx, &id, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create capture")
		return "", fmt.Errorf("failed to create capture for reference %d: %w", capture.ReferenceID, err)
	}

	return id, nil
}

func (r *Repository) UpdateTokenID(ctx context.Context, id string, tokenID *string) error {
	ctx, span := tracing.StartSpan(ctx, "CaptureRepository.UpdateTokenID")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(r.table).
		Set(
			ub.Assign("token_id", tokenID),
			"updated_at = now()",
		).
		Where(ub.Equal("id", id))

	query, args := ub.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"capture_id": id,
		"token_id":   tokenID,
	}).Debug("Reconciling capture token")

	result, err := database.Conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update capture token")
		return fmt.Errorf("failed to update token of capture %s: %w", id, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("capture %s not found", id)
	}

	return nil
}

// AddTags links the capture to each tag. Existing links are left alone.
func (r *Repository) AddTags(ctx context.Context, captureID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "CaptureRepository.AddTags")
	defer span.End()

	ib := database.NewInsertBuilder()
	ib.InsertInto(r.tagsTable).Cols("capture_id", "tag_id")
	for _, tagID := range tagIDs {
		ib.Values(captureID, tagID)
	}
	ib.OnConflictDoNothing()

	query, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"capture_id": captureID,
		"tag_count":  len(tagIDs),
	}).Debug("Tagging capture")

	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to tag capture")
		return fmt.Errorf("failed to tag capture %s: %w", captureID, err)
	}

	return nil
}
