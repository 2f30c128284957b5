package pipeline

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/config"
	"github.com/Greenstand/domain-migration-scripts/pkg/cursor"
	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
	"github.com/Greenstand/domain-migration-scripts/pkg/resolver"
	"github.com/Greenstand/domain-migration-scripts/pkg/transform"
	"github.com/Greenstand/domain-migration-scripts/pkg/writer"
)

// PlantersQuery selects planters with an email or phone and no grower
// account, and linked planters whose account has no organization yet.
func PlantersQuery(tables config.Tables, opts Options) cursor.Query {
	return cursor.Query{
		Source:   tables.Planters + " AS p",
		Target:   tables.GrowerAccounts + " AS ga",
		TargetOn: []string{"(ga.wallet = btrim(p.email) OR ga.wallet = btrim(p.phone))"},
		Columns: []string{
			"p.id",
			"p.first_name",
			"p.last_name",
			"p.email",
			"p.phone",
			"p.image_url",
			"p.organization_id",
			"ga.id AS grower_account_id",
			"ga.organization_id AS account_organization_id",
		},
		Where: func(sb *database.SelectBuilder) []string {
			// wallets are stored trimmed, so blank contacts count as missing
			hasEmail := sb.NotEqual("btrim(p.email)", "")
			hasPhone := sb.NotEqual("btrim(p.phone)", "")
			return []string{
				sb.Or(
					sb.And(sb.IsNull("ga.id"), sb.Or(hasEmail, hasPhone)),
					sb.And(sb.IsNotNull("ga.id"), sb.IsNotNull("p.organization_id"), sb.IsNull("ga.organization_id")),
				),
			}
		},
		OrderBy:       "p.id",
		ExcludeColumn: "p.id",
		ExcludeIDs:    opts.ExcludeIDs,
		Limit:         opts.Limit,
	}
}

type planterHandler struct {
	repos repositories
}

func (h *planterHandler) Handle(ctx context.Context, p models.PendingPlanter, step *writer.Step) (writer.Result, error) {
	if p.GrowerAccountID != nil {
		return h.linkOrganization(ctx, p, *p.GrowerAccountID, step)
	}

	step.Enter(writer.Resolving)
	planterID := p.ID
	resolution, err := h.repos.resolver.Resolve(ctx, resolver.PersonReference{
		SourceID:  p.ID,
		PlanterID: &planterID,
	})
	if err != nil {
		return writer.Result{}, err
	}
	account := resolution.Account
	if !resolution.Created {
		return writer.Result{Action: writer.ActionSkipped, GrowerAccountID: account.ID}, nil
	}

	step.Enter(writer.Transforming)
	registrations, err := h.repos.planters.ListRegistrations(ctx, p.ID)
	if err != nil {
		return writer.Result{}, err
	}

	step.Enter(writer.Writing)
	for _, wr := range transform.WalletRegistrations(p, registrations, account) {
		if _, err := h.repos.walletRegistrations.Create(ctx, &wr); err != nil {
			return writer.Result{}, err
		}
	}

	if p.OrganizationID != nil {
		if _, err := h.linkOrganization(ctx, p, account.ID, step); err != nil {
			return writer.Result{}, err
		}
	}

	return writer.Result{
		Action:          writer.ActionInserted,
		TargetID:        account.ID,
		GrowerAccountID: account.ID,
	}, nil
}

// linkOrganization sets the account's organization to the stakeholder of the
// planter's legacy organization entity.
func (h *planterHandler) linkOrganization(ctx context.Context, p models.PendingPlanter, accountID string, step *writer.Step) (writer.Result, error) {
	if p.OrganizationID == nil {
		return writer.Result{Action: writer.ActionSkipped, GrowerAccountID: accountID}, nil
	}

	step.Enter(writer.Resolving)
	e, err := h.repos.entities.FindByID(ctx, *p.OrganizationID)
	if err != nil {
		return writer.Result{}, err
	}
	if e == nil || e.StakeholderUUID == nil {
		return writer.Result{}, migerrors.NewMissingOrganizationError(p.ID, *p.OrganizationID)
	}

	step.Enter(writer.Writing)
	if err := h.repos.accounts.UpdateOrganization(ctx, accountID, *e.StakeholderUUID); err != nil {
		return writer.Result{}, err
	}

	return writer.Result{
		Action:          writer.ActionUpdated,
		TargetID:        accountID,
		GrowerAccountID: accountID,
	}, nil
}

// NewPlanters migrates legacy planters into grower accounts with their wallet
// registrations, and links existing accounts to their organization.
func NewPlanters(db database.DB, tables config.Tables, opts Options, logger ectologger.Logger) *Pipeline[models.PendingPlanter] {
	handler := &planterHandler{repos: newRepositories(db, tables, logger)}
	return New(Planters,
		cursor.New[models.PendingPlanter](db, PlantersQuery(tables, opts), logger),
		writer.New[models.PendingPlanter](db, handler, logger),
	)
}
