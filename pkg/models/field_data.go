package models

import "time"

// RawCapture is a field_data.raw_capture row joined with its session, the
// session's wallet registration, the legacy tree it mirrors and, when one
// exists, the capture already migrated for it.
type RawCapture struct {
	ID                    string    `json:"id" db:"id"`
	ReferenceID           int64     `json:"reference_id" db:"reference_id"`
	SessionID             string    `json:"session_id" db:"session_id"`
	DeviceConfigurationID *string   `json:"device_configuration_id,omitempty" db:"device_configuration_id"`
	GrowerAccountID       string    `json:"grower_account_id" db:"grower_account_id"`
	ImageURL              string    `json:"image_url" db:"image_url"`
	Lat                   float64   `json:"lat" db:"lat"`
	Lon                   float64   `json:"lon" db:"lon"`
	GPSAccuracy           *int      `json:"gps_accuracy,omitempty" db:"gps_accuracy"`
	Note                  *string   `json:"note,omitempty" db:"note"`
	Status                string    `json:"status" db:"status"`
	CapturedAt            time.Time `json:"captured_at" db:"captured_at"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
	TreeID                int64     `json:"tree_id" db:"tree_id"`
	ExistingCaptureID     *string   `json:"existing_capture_id,omitempty" db:"existing_capture_id"`
}

// GetSourceID is the legacy tree id: it orders the pending set and keys logs.
func (r RawCapture) GetSourceID() int64 { return r.TreeID }

// Migrated reports whether a capture already exists, making this a reconciliation.
func (r RawCapture) Migrated() bool { return r.ExistingCaptureID != nil }

// WalletRegistration is a row of field_data.wallet_registration.
type WalletRegistration struct {
	ID              string    `json:"id" db:"id" fieldtag:"pk"`
	Wallet          string    `json:"wallet" db:"wallet"`
	UserPhotoURL    *string   `json:"user_photo_url,omitempty" db:"user_photo_url"`
	GrowerAccountID string    `json:"grower_account_id" db:"grower_account_id"`
	FirstName       *string   `json:"first_name,omitempty" db:"first_name"`
	LastName        *string   `json:"last_name,omitempty" db:"last_name"`
	Phone           *string   `json:"phone,omitempty" db:"phone"`
	Email           *string   `json:"email,omitempty" db:"email"`
	Lat             *float64  `json:"lat,omitempty" db:"lat"`
	Lon             *float64  `json:"lon,omitempty" db:"lon"`
	RegisteredAt    time.Time `json:"registered_at" db:"registered_at"`
}
