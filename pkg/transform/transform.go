// Package transform maps source rows onto target records. Nothing here does
// I/O; every function returns a fresh value.
package transform

import (
	"math"
	"strconv"
	"strings"

	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
	"github.com/google/uuid"
)

// SanitizeAge parses a legacy age. Anything that is not a finite number,
// including NULL and the empty string, becomes 0. Fractions are truncated.
func SanitizeAge(age *string) int {
	if age == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*age), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0
	}
	return int(v)
}

// BuildAttributeBundle wraps rows in a bundle. No rows means no bundle, which
// is stored as NULL.
func BuildAttributeBundle(rows []models.TreeAttribute) *models.AttributeBundle {
	if len(rows) == 0 {
		return nil
	}
	entries := make([]models.TreeAttribute, len(rows))
	copy(entries, rows)
	return &models.AttributeBundle{Entries: entries}
}

// DisplayName joins the non-empty name parts with a space.
func DisplayName(first, last *string) string {
	parts := make([]string, 0, 2)
	for _, p := range []*string{first, last} {
		if p == nil {
			continue
		}
		if s := strings.TrimSpace(*p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Wallet picks the identity string for a person: email, else phone, else the
// loose identifier the source record carried.
func Wallet(email, phone *string, identifier string) string {
	if s := nonEmpty(email); s != nil {
		return *s
	}
	if s := nonEmpty(phone); s != nil {
		return *s
	}
	return strings.TrimSpace(identifier)
}

// NewGrowerAccount builds the account to create for planter. fallbackImage is
// the source record's own photo, used when the planter has none.
func NewGrowerAccount(planter *models.Planter, identifier string, fallbackImage *string) *models.GrowerAccount {
	account := &models.GrowerAccount{
		Wallet:              Wallet(planter.Email, planter.Phone, identifier),
		Name:                DisplayName(planter.FirstName, planter.LastName),
		Email:               nonEmpty(planter.Email),
		Phone:               nonEmpty(planter.Phone),
		ImageURL:            nonEmpty(planter.ImageURL),
		FirstRegistrationAt: planter.RegisteredAt,
	}
	if account.ImageURL == nil {
		account.ImageURL = nonEmpty(fallbackImage)
	}
	if planter.ImageRotation != nil {
		account.ImageRotation = *planter.ImageRotation
	}
	return account
}

// NewSessionID synthesizes a session for records that predate sessions.
func NewSessionID() string {
	return uuid.NewString()
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func requireString(sourceID int64, field string, s *string) (string, error) {
	if v := nonEmpty(s); v != nil {
		return *v, nil
	}
	return "", migerrors.NewTransformError(field, "value is required").AddSourceID(sourceID)
}
