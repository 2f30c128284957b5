package models

import "time"

// GrowerAccount is the canonical person entity, unique by Wallet.
type GrowerAccount struct {
	ID                  string     `json:"id" db:"id"`
	Wallet              string     `json:"wallet" db:"wallet"`
	Name                string     `json:"name" db:"name"`
	Email               *string    `json:"email,omitempty" db:"email"`
	Phone               *string    `json:"phone,omitempty" db:"phone"`
	ImageURL            *string    `json:"image_url,omitempty" db:"image_url"`
	ImageRotation       int        `json:"image_rotation" db:"image_rotation"`
	OrganizationID      *string    `json:"organization_id,omitempty" db:"organization_id"`
	FirstRegistrationAt *time.Time `json:"first_registration_at,omitempty" db:"first_registration_at"`
}

// AttributeBundle wraps a record's free-form tag rows. A record without
// rows has no bundle at all.
type AttributeBundle struct {
	Entries []TreeAttribute `json:"entries"`
}

// Capture is a treetracker.capture row as written by the capture pipelines.
type Capture struct {
	ID                    *string          `json:"id,omitempty"`
	ReferenceID           int64            `json:"reference_id"`
	ImageURL              string           `json:"image_url"`
	Lat                   float64          `json:"lat"`
	Lon                   float64          `json:"lon"`
	GPSAccuracy           *int             `json:"gps_accuracy,omitempty"`
	GrowerAccountID       string           `json:"grower_account_id"`
	Morphology            *string          `json:"morphology,omitempty"`
	Age                   int              `json:"age"`
	Note                  *string          `json:"note,omitempty"`
	Attributes            *AttributeBundle `json:"attributes"`
	DeviceConfigurationID string           `json:"device_configuration_id"`
	SessionID             string           `json:"session_id"`
	TokenID               *string          `json:"token_id,omitempty"`
	TagIDs                []string         `json:"tag_ids,omitempty"`
	CapturedAt            time.Time        `json:"captured_at"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// DeviceConfiguration is a field_data.device_configuration row.
type DeviceConfiguration struct {
	ReferenceID      int64     `json:"reference_id" db:"reference_id"`
	DeviceIdentifier *string   `json:"device_identifier,omitempty" db:"device_identifier"`
	Brand            *string   `json:"brand,omitempty" db:"brand"`
	Model            *string   `json:"model,omitempty" db:"model"`
	Device           *string   `json:"device,omitempty" db:"device"`
	Serial           *string   `json:"serial,omitempty" db:"serial"`
	Hardware         *string   `json:"hardware,omitempty" db:"hardware"`
	Manufacturer     *string   `json:"manufacturer,omitempty" db:"manufacturer"`
	AppBuild         *int      `json:"app_build,omitempty" db:"app_build"`
	AppVersion       *string   `json:"app_version,omitempty" db:"app_version"`
	OSVersion        *string   `json:"os_version,omitempty" db:"os_version"`
	SDKVersion       *int      `json:"sdk_version,omitempty" db:"sdk_version"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
