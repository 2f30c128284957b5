package planter

import (
	"database/sql"

	"github.com/Greenstand/domain-migration-scripts/pkg/models"
)

// PlanterRow is a planter joined with one of its registrations.
type PlanterRow struct {
	ID             int64          `db:"id"`
	FirstName      sql.NullString `db:"first_name"`
	LastName       sql.NullString `db:"last_name"`
	Email          sql.NullString `db:"email"`
	Phone          sql.NullString `db:"phone"`
	Organization   sql.NullString `db:"organization"`
	OrganizationID sql.NullInt64  `db:"organization_id"`
	PersonID       sql.NullInt64  `db:"person_id"`
	ImageURL       sql.NullString `db:"image_url"`
	ImageRotation  sql.NullInt32  `db:"image_rotation"`
	RegisteredAt   sql.NullTime   `db:"registered_at"`
}

type RegistrationRow struct {
	ID               int64           `db:"id"`
	PlanterID        int64           `db:"planter_id"`
	DeviceIdentifier sql.NullString  `db:"device_identifier"`
	Lat              sql.NullFloat64 `db:"lat"`
	Lon              sql.NullFloat64 `db:"lon"`
	CreatedAt        sql.NullTime    `db:"created_at"`
}

var planterColumns = []string{
	"p.id",
	"p.first_name",
	"p.last_name",
	"p.email",
	"p.phone",
	"p.organization",
	"p.organization_id",
	"p.person_id",
	"p.image_url",
	"p.image_rotation",
	"pr.created_at AS registered_at",
}

var registrationColumns = []string{
	"id",
	"planter_id",
	"device_identifier",
	"lat",
	"lon",
	"created_at",
}

func ToPlanter(row *PlanterRow) *models.Planter {
	p := &models.Planter{
		ID:             row.ID,
		FirstName:      nullString(row.FirstName),
		LastName:       nullString(row.LastName),
		Email:          nullString(row.Email),
		Phone:          nullString(row.Phone),
		Organization:   nullString(row.Organization),
		OrganizationID: nullInt64(row.OrganizationID),
		PersonID:       nullInt64(row.PersonID),
		ImageURL:       nullString(row.ImageURL),
	}
	if row.ImageRotation.Valid {
		rotation := int(row.ImageRotation.Int32)
		p.ImageRotation = &rotation
	}
	if row.RegisteredAt.Valid {
		registeredAt := row.RegisteredAt.Time
		p.RegisteredAt = &registeredAt
	}
	return p
}

func ToRegistrations(rows []RegistrationRow) []models.PlanterRegistration {
	registrations := make([]models.PlanterRegistration, len(rows))
	for i, row := range rows {
		registrations[i] = models.PlanterRegistration{
			ID:               row.ID,
			PlanterID:        row.PlanterID,
			DeviceIdentifier: nullString(row.DeviceIdentifier),
			CreatedAt:        row.CreatedAt.Time,
		}
		if row.Lat.Valid {
			lat := row.Lat.Float64
			registrations[i].Lat = &lat
		}
		if row.Lon.Valid {
			lon := row.Lon.Float64
			registrations[i].Lon = &lon
		}
	}
	return registrations
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}
