package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromWriteError(t *testing.T) {
	t.Run("unique violation becomes a conflict", func(t *testing.T) {
		pqErr := &pq.Error{Code: "23505", Table: "capture", Constraint: "capture_reference_id_key"}
		err := migerrors.FromWriteError(fmt.Errorf("insert: %w", pqErr), 42)

		var conflict *migerrors.WriteConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, int64(42), conflict.SourceID)
		assert.Equal(t, "capture", conflict.Table)
		assert.Equal(t, "capture_reference_id_key", conflict.Constraint)
		assert.ErrorIs(t, err, pqErr)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		pqErr := &pq.Error{Code: "23503"}
		assert.Same(t, pqErr, migerrors.FromWriteError(pqErr, 1))

		plain := errors.New("boom")
		assert.Equal(t, plain, migerrors.FromWriteError(plain, 1))
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"missing person", migerrors.NewMissingPersonError(1, ""), migerrors.KindMissingPerson},
		{"missing organization", migerrors.NewMissingOrganizationError(1, 2), migerrors.KindMissingOrganization},
		{"wrapped transform", fmt.Errorf("ctx: %w", migerrors.NewTransformError("lat", "not finite")), migerrors.KindTransform},
		{"conflict", &migerrors.WriteConflictError{}, migerrors.KindWriteConflict},
		{"setup", migerrors.NewSetupError("config", errors.New("bad url")), migerrors.KindSetup},
		{"unknown", errors.New("boom"), migerrors.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, migerrors.Classify(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "source record 7 has no planter reference", migerrors.NewMissingPersonError(7, "").Error())
	assert.Equal(t, `no planter found for source record 7 (reference "a@x.com")`, migerrors.NewMissingPersonError(7, "a@x.com").Error())
	assert.Equal(t, "source record 3: field 'lon': must be finite",
		migerrors.NewTransformError("lon", "must be finite").AddSourceID(3).Error())
	assert.True(t, migerrors.IsSetupError(fmt.Errorf("wrapped: %w", migerrors.NewSetupError("ping", errors.New("refused")))))
}

func TestToHTTPError(t *testing.T) {
	httpErr := migerrors.ToHTTPError(migerrors.NewMissingPersonError(9, ""), 9)
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.Code)
	assert.Equal(t, migerrors.KindMissingPerson, httpErr.Meta["kind"])
	assert.Equal(t, int64(9), httpErr.Meta["source_id"])

	assert.Equal(t, http.StatusServiceUnavailable, migerrors.ToHTTPError(migerrors.NewSetupError("ping", errors.New("x")), 0).Code)
}

func TestIsRecordError(t *testing.T) {
	assert.True(t, migerrors.IsRecordError(migerrors.NewMissingPersonError(8, "")))
	assert.True(t, migerrors.IsRecordError(errors.New("boom")))
	assert.False(t, migerrors.IsRecordError(migerrors.NewSetupError("database", errors.New("refused"))))
	assert.False(t, migerrors.IsRecordError(nil))
}
