package planter_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Greenstand/domain-migration-scripts/internal/repositories/planter"
	"github.com/Greenstand/domain-migration-scripts/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var planterCols = []string{
	"id", "first_name", "last_name", "email", "phone", "organization",
	"organization_id", "person_id", "image_url", "image_rotation", "registered_at",
}

func TestFindByIdentifier(t *testing.T) {
	db, mock := testdb.NewMock(t)
	repo := planter.NewRepository(db, testdb.Logger(), "public.planter", "public.planter_registrations")

	registeredAt := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM public.planter AS p LEFT JOIN public.planter_registrations AS pr ON pr.planter_id = p.id WHERE \(p.email = \$1 OR p.phone = \$2\) ORDER BY pr.created_at DESC NULLS LAST, p.id LIMIT \$3`).
		WithArgs("a@x.com", "a@x.com", 1).
		WillReturnRows(sqlmock.NewRows(planterCols).
			AddRow(7, "Ada", "Lovelace", "a@x.com", nil, nil, nil, nil, nil, nil, registeredAt))

	p, err := repo.FindByIdentifier(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "Ada", *p.FirstName)
	assert.Nil(t, p.Phone)
	assert.Nil(t, p.ImageRotation)
	require.NotNil(t, p.RegisteredAt)
	assert.Equal(t, registeredAt, *p.RegisteredAt)
}

func TestFindByID_NotFound(t *testing.T) {
	db, mock := testdb.NewMock(t)
	repo := planter.NewRepository(db, testdb.Logger(), "public.planter", "public.planter_registrations")

	mock.ExpectQuery(`WHERE p.id = \$1`).
		WithArgs(int64(99), 1).
		WillReturnRows(sqlmock.NewRows(planterCols))

	p, err := repo.FindByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestListRegistrations(t *testing.T) {
	db, mock := testdb.NewMock(t)
	repo := planter.NewRepository(db, testdb.Logger(), "public.planter", "public.planter_registrations")

	newer := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM public.planter_registrations WHERE planter_id = \$1 ORDER BY created_at DESC`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "planter_id", "device_identifier", "lat", "lon", "created_at"}).
			AddRow(2, 7, "device-b", 1.5, -2.5, newer).
			AddRow(1, 7, nil, nil, nil, older))

	registrations, err := repo.ListRegistrations(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, registrations, 2)

	assert.Equal(t, newer, registrations[0].CreatedAt)
	assert.Equal(t, 1.5, *registrations[0].Lat)
	assert.Nil(t, registrations[1].DeviceIdentifier)
	assert.Nil(t, registrations[1].Lon)
}
