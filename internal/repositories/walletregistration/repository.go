package walletregistration

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing"
)

// The id is generated by the store.
var walletRegistrationStruct = database.NewStruct(new(models.WalletRegistration)).WithoutTag("pk")

type WalletRegistrationRepository interface {
	Create(ctx context.Context, registration *models.WalletRegistration) (string, error)
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

func (r *Repository) Create(ctx context.Context, registration *models.WalletRegistration) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "WalletRegistrationRepository.Create")
	defer span.End()

	ib := walletRegistrationStruct.InsertInto(r.table, registration)
	ib.Returning("id")

	query, args := ib.Build()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"wallet":            registration.Wallet,
		"grower_account_id": registration.GrowerAccountID,
		"registered_at":     registration.RegisteredAt,
	}).Debug("Creating wallet registration")

	var id string
	if err := database.Conn(ctx, r.db).GetContext(ctx, &id, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create wallet registration")
		return "", fmt.Errorf("failed to create wallet registration for %s: %w", registration.Wallet, err)
	}

	return id, nil
}
