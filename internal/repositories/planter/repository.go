package planter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing"
	"github.com/huandu/go-sqlbuilder"
)

// PlanterRepository reads legacy planters. It never writes.
type PlanterRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Planter, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.Planter, error)
	ListRegistrations(ctx context.Context, planterID int64) ([]models.PlanterRegistration, error)
}

type Repository struct {
	db                 database.DB
	logger             ectologger.Logger
	planterTable       string
	registrationsTable string
}

func NewRepository(db database.DB, logger ectologger.Logger, planterTable, registrationsTable string) *Repository {
	return &Repository{
		db:                 db,
		logger:             logger,
		planterTable:       planterTable,
		registrationsTable: registrationsTable,
	}
}

// FindByID returns the planter with its most recent registration time, or nil
// when no planter has that id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Planter, error) {
	ctx, span := tracing.StartSpan(ctx, "PlanterRepository.FindByID")
	defer span.End()

	sb := r.selectPlanter()
	sb.Where(sb.Equal("p.id", id))

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"planter_id": id,
	}).Debug("Finding planter by id")

	return r.first(ctx, sb)
}

// FindByIdentifier matches identifier against the planter's email or phone.
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (*models.Planter, error) {
	ctx, span := tracing.StartSpan(ctx, "PlanterRepository.FindByIdentifier")
	defer span.End()

	sb := r.selectPlanter()
	sb.Where(sb.Or(
		sb.Equal("p.email", identifier),
		sb.Equal("p.phone", identifier),
	))

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"identifier": identifier,
	}).Debug("Finding planter by identifier")

	return r.first(ctx, sb)
}

// ListRegistrations returns the planter's registrations, newest first.
func (r *Repository) ListRegistrations(ctx context.Context, planterID int64) ([]models.PlanterRegistration, error) {
	ctx, span := tracing.StartSpan(ctx, "PlanterRepository.ListRegistrations")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(registrationColumns...).From(r.registrationsTable)
	sb.Where(sb.Equal("planter_id", planterID))
	sb.OrderBy("created_at").Desc()

	query, args := sb.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"planter_id": planterID,
	}).Debug("Listing planter registrations")

	var rows []RegistrationRow
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list planter registrations")
		return nil, fmt.Errorf("failed to list registrations for planter %d: %w", planterID, err)
	}

	return ToRegistrations(rows), nil
}

func (r *Repository) selectPlanter() *database.SelectBuilder {
	sb := database.NewSelectBuilder()
	sb.Select(planterColumns...).
		From(r.planterTable+" AS p").
		JoinWithOption(sqlbuilder.LeftJoin, r.registrationsTable+" AS pr", "pr.planter_id = p.id").
		OrderBy("pr.created_at DESC NULLS LAST", "p.id").
		Limit(1)
	return sb
}

func (r *Repository) first(ctx context.Context, sb *database.SelectBuilder) (*models.Planter, error) {
	query, args := sb.Build()

	var row PlanterRow
	err := database.Conn(ctx, r.db).GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to find planter")
		return nil, fmt.Errorf("failed to find planter: %w", err)
	}

	return ToPlanter(&row), nil
}
