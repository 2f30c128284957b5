package entity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing"
)

type EntityRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Entity, error)
}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
	table  string
}

func NewRepository(db database.DB, logger ectologger.Logger, table string) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
		table:  table,
	}
}

// FindByID returns nil when no entity has that id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Entity, error) {
	ctx, span := tracing.StartSpan(ctx, "EntityRepository.FindByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("id", "stakeholder_uuid").From(r.table)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"entity_id": id,
	}).Debug("Finding entity by id")

	var e models.Entity
	err := database.Conn(ctx, r.db).GetContext(ctx, &e, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to find entity")
		return nil, fmt.Errorf("failed to find entity %d: %w", id, err)
	}

	return &e, nil
}
