package resolver_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Greenstand/domain-migration-scripts/internal/repositories/groweraccount"
	"github.com/Greenstand/domain-migration-scripts/internal/repositories/planter"
	"github.com/Greenstand/domain-migration-scripts/internal/testdb"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
	"github.com/Greenstand/domain-migration-scripts/pkg/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type fakePlanters struct {
	byID map[int64]*models.Planter
	err  error
}

func (f *fakePlanters) FindByID(_ context.Context, id int64) (*models.Planter, error) {
	return f.byID[id], f.err
}

func (f *fakePlanters) FindByIdentifier(_ context.Context, identifier string) (*models.Planter, error) {
	for _, p := range f.byID {
		if (p.Email != nil && *p.Email == identifier) || (p.Phone != nil && *p.Phone == identifier) {
			return p, f.err
		}
	}
	return nil, f.err
}

// fakeAccounts keeps accounts keyed by wallet, like the unique index does.
type fakeAccounts struct {
	byWallet map[string]*models.GrowerAccount
	created  int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byWallet: map[string]*models.GrowerAccount{}}
}

func (f *fakeAccounts) FindByWallets(_ context.Context, wallets ...string) (*models.GrowerAccount, error) {
	for _, w := range wallets {
		if a, ok := f.byWallet[w]; ok {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) Create(_ context.Context, account *models.GrowerAccount) (*models.GrowerAccount, error) {
	if _, ok := f.byWallet[account.Wallet]; ok {
		return nil, errors.New("duplicate wallet")
	}
	f.created++
	created := *account
	created.ID = "ga-" + account.Wallet
	f.byWallet[account.Wallet] = &created
	return &created, nil
}

func TestResolve(t *testing.T) {
	planters := &fakePlanters{byID: map[int64]*models.Planter{
		1: {ID: 1, FirstName: ptr("Ada"), Email: ptr("a@x.com")},
		2: {ID: 2, FirstName: ptr("Ada"), Email: ptr("a@x.com"), Phone: ptr("+15550100")},
		3: {ID: 3, Phone: ptr("+15550199")},
		4: {ID: 4},
	}}

	t.Run("records sharing an email share one account", func(t *testing.T) {
		accounts := newFakeAccounts()
		r := resolver.New(planters, accounts, testdb.Logger())

		first, err := r.Resolve(context.Background(), resolver.PersonReference{SourceID: 10, PlanterIdentifier: ptr("a@x.com")})
		require.NoError(t, err)
		assert.True(t, first.Created)

		second, err := r.Resolve(context.Background(), resolver.PersonReference{SourceID: 11, PlanterID: ptr(int64(2))})
		require.NoError(t, err)
		assert.False(t, second.Created)

		assert.Equal(t, first.Account.ID, second.Account.ID)
		assert.Equal(t, 1, accounts.created)
	})

	t.Run("phone is checked as a wallet", func(t *testing.T) {
		accounts := newFakeAccounts()
		accounts.byWallet["+15550199"] = &models.GrowerAccount{ID: "existing", Wallet: "+15550199"}
		r := resolver.New(planters, accounts, testdb.Logger())

		res, err := r.Resolve(context.Background(), resolver.PersonReference{SourceID: 12, PlanterID: ptr(int64(3))})
		require.NoError(t, err)
		assert.Equal(t, "existing", res.Account.ID)
		assert.False(t, res.Created)
	})

	t.Run("no reference", func(t *testing.T) {
		r := resolver.New(planters, newFakeAccounts(), testdb.Logger())

		_, err := r.Resolve(context.Background(), resolver.PersonReference{SourceID: 13, PlanterIdentifier: ptr("   ")})
		require.Error(t, err)

		var missing *migerrors.MissingPersonError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, int64(13), missing.SourceID)
	})

	t.Run("reference resolves to nothing", func(t *testing.T) {
		r := resolver.New(planters, newFakeAccounts(), testdb.Logger())

		_, err := r.Resolve(context.Background(), resolver.PersonReference{SourceID: 14, PlanterID: ptr(int64(404))})
		assert.True(t, migerrors.IsMissingPersonError(err))

		_, err = r.Resolve(context.Background(), resolver.PersonReference{SourceID: 15, PlanterIdentifier: ptr("nobody@x.com")})
		assert.True(t, migerrors.IsMissingPersonError(err))
	})

	t.Run("planter without any wallet", func(t *testing.T) {
		r := resolver.New(planters, newFakeAccounts(), testdb.Logger())

		_, err := r.Resolve(context.Background(), resolver.PersonReference{SourceID: 16, PlanterID: ptr(int64(4))})
		assert.True(t, migerrors.IsTransformError(err))
	})

	t.Run("contactless planter reuses the identifier wallet", func(t *testing.T) {
		accounts := newFakeAccounts()
		r := resolver.New(planters, accounts, testdb.Logger())
		ref := resolver.PersonReference{SourceID: 18, PlanterID: ptr(int64(4)), PlanterIdentifier: ptr("raw-x")}

		first, err := r.Resolve(context.Background(), ref)
		require.NoError(t, err)
		assert.True(t, first.Created)
		assert.Equal(t, "raw-x", first.Account.Wallet)

		ref.SourceID = 19
		second, err := r.Resolve(context.Background(), ref)
		require.NoError(t, err)
		assert.False(t, second.Created)
		assert.Equal(t, first.Account.ID, second.Account.ID)
		assert.Equal(t, 1, accounts.created)
	})

	t.Run("lookup failures propagate", func(t *testing.T) {
		boom := errors.New("connection reset")
		r := resolver.New(&fakePlanters{err: boom}, newFakeAccounts(), testdb.Logger())

		_, err := r.Resolve(context.Background(), resolver.PersonReference{SourceID: 17, PlanterID: ptr(int64(1))})
		assert.ErrorIs(t, err, boom)
	})
}

func TestResolve_CreatesThroughRepositories(t *testing.T) {
	db, mock := testdb.NewMock(t)
	r := resolver.New(
		planter.NewRepository(db, testdb.Logger(), "public.planter", "public.planter_registrations"),
		groweraccount.NewRepository(db, testdb.Logger(), "treetracker.grower_account"),
		testdb.Logger(),
	)

	registeredAt := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM public.planter AS p .* WHERE \(p.email = \$1 OR p.phone = \$2\)`).
		WithArgs("a@x.com", "a@x.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "phone", "organization", "organization_id", "person_id", "image_url", "image_rotation", "registered_at"}).
			AddRow(7, "Ada", "Lovelace", "a@x.com", nil, nil, nil, nil, nil, nil, registeredAt))
	mock.ExpectQuery(`FROM treetracker.grower_account WHERE wallet IN \(\$1\)`).
		WithArgs("a@x.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO treetracker.grower_account`).
		WithArgs("a@x.com", "Ada Lovelace", "a@x.com", nil, "http://img/tree.jpg", 0, nil, registeredAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ga-1"))

	res, err := r.Resolve(context.Background(), resolver.PersonReference{
		SourceID:          42,
		PlanterIdentifier: ptr("a@x.com"),
		FallbackImageURL:  ptr("http://img/tree.jpg"),
	})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "ga-1", res.Account.ID)
	assert.Equal(t, "a@x.com", res.Account.Wallet)
}
