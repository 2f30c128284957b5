package groweraccount

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

type GrowerAccountRepository interface {
	FindByWallets(ctx context.Context, wallets ...string) (*models.GrowerAccount, error)
	Create(ctx context.Context, account *models.GrowerAccount) (*models.GrowerAccount, error)
	UpdateOrganization(ctx context.Context, id, organizationID string) error
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

// FindByWallets returns the first account whose wallet is any of wallets, or
// nil when none matches. Empty wallets are ignored.
func (r *Repository) FindByWallets(ctx context.Context, wallets ...string) (*models.GrowerAccount, error) {
	ctx, span := tracing.StartSpan(ctx, "GrowerAccountRepository.FindByWallets")
	defer span.End()

	candidates := make([]any, 0, len(wallets))
	for _, w := range wallets {
		if w != "" {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sb := growerAccountStruct.SelectFrom(r.table)
	sb.Where(sb.In("wallet", candidates...))
	sb.Limit(1)

	query, args := sb.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"wallets": candidates,
	}).Debug("Finding grower account by wallet")

	var row GrowerAccountRow
	err := database.Conn(ctx, r.db).GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to find grower account")
		return nil, fmt.Errorf("failed to find grower account: %w", err)
	}

	return ToGrowerAccount(&row), nil
}

// Create inserts account and returns it with the id the store generated.
func (r *Repository) Create(ctx context.Context, account *models.GrowerAccount) (*models.GrowerAccount, error) {
	ctx, span := tracing.StartSpan(ctx, "GrowerAccountRepository.Create")
	defer span.End()

	ib := growerAccountStruct.WithoutTag("generated").InsertInto(r.table, FromGrowerAccount(account))
	ib.Returning("id")

	query, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"wallet": account.Wallet,
		"name":   account.Name,
	}).Debug("Creating grower account")

	var id string
	if err := database.Conn(ctx, r.db).GetContext(ctx, &id, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create grower account")
		return nil, fmt.Errorf("failed to create grower account for wallet %s: %w", account.Wallet, err)
	}

	created := *account
	created.ID = id
	return &created, nil
}

func (r *Repository) UpdateOrganization(ctx context.Context, id, organizationID string) error {
	ctx, span := tracing.StartSpan(ctx, "GrowerAccountRepository.UpdateOrganization")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(r.table).
		Set(ub.Assign("organization_id", organizationID)).
		Where(ub.Equal("id", id))

	query, args := ub.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"grower_account_id": id,
		"organization_id":   organizationID,
	}).Debug("Linking grower account to organization")

	result, err := database.Conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update grower account organization")
		return fmt.Errorf("failed to update organization of grower account %s: %w", id, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("grower account %s not found", id)
	}

	return nil
}
