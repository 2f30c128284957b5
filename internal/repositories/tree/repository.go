package tree

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

type Tables struct {
	Trees          string
	TreeAttributes string
	TreeTags       string
	Tags           string
}

// TreeRepository reads legacy trees and the rows hanging off them.
type TreeRepository interface {
	FindByID(ctx context.Context, id int64) (*models.LegacyTree, error)
	ListAttributes(ctx context.Context, treeID int64) ([]models.TreeAttribute, error)
	ListTagIDs(ctx context.Context, treeID int64) ([]string, error)
}

type Repository struct {
	db     database.DB
	logger ectologger.Logger
	tables Tables
}

func NewRepository(db database.DB, logger ectologger.Logger, tables Tables) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
		tables: tables,
	}
}

// FindByID returns nil when the tree does not exist.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.LegacyTree, error) {
	ctx, span := tracing.StartSpan(ctx, "TreeRepository.FindByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(Columns("")...).From(r.tables.Trees)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"tree_id": id,
	}).Debug("Finding tree by id")

	var t models.LegacyTree
	err := database.Conn(ctx, r.db).GetContext(ctx, &t, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to find tree")
		return nil, fmt.Errorf("failed to find tree %d: %w", id, err)
	}

	return &t, nil
}

// ListAttributes returns the tree's free-form attribute rows in insertion order.
func (r *Repository) ListAttributes(ctx context.Context, treeID int64) ([]models.TreeAttribute, error) {
	ctx, span := tracing.StartSpan(ctx, "TreeRepository.ListAttributes")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("key", "value").From(r.tables.TreeAttributes)
	sb.Where(sb.Equal("tree_id", treeID))
	sb.OrderBy("id").Asc()

	query, args := sb.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"tree_id": treeID,
	}).Debug("Listing tree attributes")

	var rows []AttributeRow
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list tree attributes")
		return nil, fmt.Errorf("failed to list attributes of tree %d: %w", treeID, err)
	}

	return ToAttributes(rows), nil
}

// ListTagIDs returns the distinct tag uuids attached to the tree.
func (r *Repository) ListTagIDs(ctx context.Context, treeID int64) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "TreeRepository.ListTagIDs")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("t.uuid").
		Distinct().
		From(r.tables.TreeTags+" AS tt").
		Join(r.tables.Tags+" AS t", "tt.tag_id = t.id")
	sb.Where(sb.Equal("tt.tree_id", treeID))
	sb.OrderBy("t.uuid").Asc()

	query, args := sb.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"tree_id": treeID,
	}).Debug("Listing tree tags")

	var ids []string
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &ids, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list tree tags")
		return nil, fmt.Errorf("failed to list tags of tree %d: %w", treeID, err)
	}

	return ids, nil
}
