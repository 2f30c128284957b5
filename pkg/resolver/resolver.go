// Package resolver finds or creates the grower account behind a legacy
// person reference.
package resolver

import (
	"context"
	"strconv"
	"strings"

	"github.com/Gobusters/ectologger"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
	"github.com/Greenstand/domain-migration-scripts/pkg/tracing"
	"github.com/Greenstand/domain-migration-scripts/pkg/transform"
)

// PersonReference is how a source record points at a legacy planter:
// PlanterID exactly, or PlanterIdentifier as an email or phone.
type PersonReference struct {
	SourceID          int64
	PlanterID         *int64
	PlanterIdentifier *string
	FallbackImageURL  *string
}

func (r PersonReference) identifier() string {
	if r.PlanterIdentifier == nil {
		return ""
	}
	return strings.TrimSpace(*r.PlanterIdentifier)
}

type Resolution struct {
	Account *models.GrowerAccount
	Created bool
}

type PlanterFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Planter, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.Planter, error)
}

type AccountStore interface {
	FindByWallets(ctx context.Context, wallets ...string) (*models.GrowerAccount, error)
	Create(ctx context.Context, account *models.GrowerAccount) (*models.GrowerAccount, error)
}

// Resolver runs inside the record's transaction: the stores it is given must
// use the transaction carried on ctx.
type Resolver struct {
	planters PlanterFinder
	accounts AccountStore
	logger   ectologger.Logger
}

func New(planters PlanterFinder, accounts AccountStore, logger ectologger.Logger) *Resolver {
	return &Resolver{
		planters: planters,
		accounts: accounts,
		logger:   logger,
	}
}

// Resolve returns the grower account for ref, creating it when no account
// owns the planter's wallet.
func (r *Resolver) Resolve(ctx context.Context, ref PersonReference) (Resolution, error) {
	ctx, span := tracing.StartSpan(ctx, "Resolver.Resolve")
	defer span.End()

	planter, err := r.locatePlanter(ctx, ref)
	if err != nil {
		tracing.RecordError(span, err)
		return Resolution{}, err
	}

	account, err := r.accounts.FindByWallets(ctx, wallets(planter, ref.identifier())...)
	if err != nil {
		tracing.RecordError(span, err)
		return Resolution{}, err
	}
	if account != nil {
		return Resolution{Account: account}, nil
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"planter_id": planter.ID,
		"identifier": ref.identifier(),
	}).Info("Grower account not found, creating it")

	candidate := transform.NewGrowerAccount(planter, ref.identifier(), ref.FallbackImageURL)
	if candidate.Wallet == "" {
		err := migerrors.NewTransformError("wallet", "planter has no email, phone or identifier").AddSourceID(ref.SourceID)
		tracing.RecordError(span, err)
		return Resolution{}, err
	}

	created, err := r.accounts.Create(ctx, candidate)
	if err != nil {
		tracing.RecordError(span, err)
		return Resolution{}, err
	}

	return Resolution{Account: created, Created: true}, nil
}

func (r *Resolver) locatePlanter(ctx context.Context, ref PersonReference) (*models.Planter, error) {
	var (
		planter *models.Planter
		err     error
		lookup  = ref.identifier()
	)

	switch {
	case ref.PlanterID != nil:
		planter, err = r.planters.FindByID(ctx, *ref.PlanterID)
	case lookup != "":
		planter, err = r.planters.FindByIdentifier(ctx, lookup)
	default:
		return nil, migerrors.NewMissingPersonError(ref.SourceID, "")
	}

	if err != nil {
		return nil, err
	}
	if planter == nil {
		if ref.PlanterID != nil {
			lookup = "planter_id " + formatID(*ref.PlanterID)
		}
		return nil, migerrors.NewMissingPersonError(ref.SourceID, lookup)
	}

	return planter, nil
}

// wallets lists the wallets an existing account for p may own: its email and
// phone, or, when it has neither, the wallet a new account would get from
// identifier.
func wallets(p *models.Planter, identifier string) []string {
	var out []string
	for _, s := range []*string{p.Email, p.Phone} {
		if s != nil && strings.TrimSpace(*s) != "" {
			out = append(out, strings.TrimSpace(*s))
		}
	}
	if len(out) == 0 {
		if w := transform.Wallet(p.Email, p.Phone, identifier); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
