package deviceconfiguration_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Greenstand/domain-migration-scripts/internal/repositories/deviceconfiguration"
	"github.com/Greenstand/domain-migration-scripts/internal/testdb"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	db, mock := testdb.NewMock(t)
	repo := deviceconfiguration.NewRepository(db, testdb.Logger(), "field_data.device_configuration")

	brand := "samsung"
	build := 112
	created := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO field_data.device_configuration \(reference_id, device_identifier, brand, .*created_at\) VALUES .* RETURNING id`).
		WithArgs(int64(5), nil, "samsung", nil, nil, nil, nil, nil, int64(112), nil, nil, nil, created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("dc-5"))

	id, err := repo.Create(context.Background(), &models.DeviceConfiguration{
		ReferenceID: 5,
		Brand:       &brand,
		AppBuild:    &build,
		CreatedAt:   created,
	})
	require.NoError(t, err)
	assert.Equal(t, "dc-5", id)
}
