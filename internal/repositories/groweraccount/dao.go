package groweraccount

import (
	"database/sql"

	"github.com/Greenstand/domain-migration-scripts/pkg/database"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
)

type GrowerAccountRow struct {
	ID                  string         `db:"id" fieldtag:"generated"`
	Wallet              string         `db:"wallet"`
	Name                string         `db:"name"`
	Email               sql.NullString `db:"email"`
	Phone               sql.NullString `db:"phone"`
	ImageURL            sql.NullString `db:"image_url"`
	ImageRotation       int            `db:"image_rotation"`
	OrganizationID      sql.NullString `db:"organization_id"`
	FirstRegistrationAt sql.NullTime   `db:"first_registration_at"`
}

var growerAccountStruct = database.NewStruct(new(GrowerAccountRow))

func FromGrowerAccount(a *models.GrowerAccount) *GrowerAccountRow {
	row := &GrowerAccountRow{
		ID:             a.ID,
		Wallet:         a.Wallet,
		Name:           a.Name,
		Email:          toNullString(a.Email),
		Phone:          toNullString(a.Phone),
		ImageURL:       toNullString(a.ImageURL),
		ImageRotation:  a.ImageRotation,
		OrganizationID: toNullString(a.OrganizationID),
	}
	if a.FirstRegistrationAt != nil {
		row.FirstRegistrationAt = sql.NullTime{Time: *a.FirstRegistrationAt, Valid: true}
	}
	return row
}

func ToGrowerAccount(row *GrowerAccountRow) *models.GrowerAccount {
	a := &models.GrowerAccount{
		ID:             row.ID,
		Wallet:         row.Wallet,
		Name:           row.Name,
		Email:          fromNullString(row.Email),
		Phone:          fromNullString(row.Phone),
		ImageURL:       fromNullString(row.ImageURL),
		ImageRotation:  row.ImageRotation,
		OrganizationID: fromNullString(row.OrganizationID),
	}
	if row.FirstRegistrationAt.Valid {
		t := row.FirstRegistrationAt.Time
		a.FirstRegistrationAt = &t
	}
	return a
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
