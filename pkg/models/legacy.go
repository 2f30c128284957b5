package models

import "time"

// LegacyTree is a row of public.trees.
type LegacyTree struct {
	ID                int64     `json:"id" db:"id"`
	UUID              *string   `json:"uuid,omitempty" db:"uuid"`
	PlanterID         *int64    `json:"planter_id,omitempty" db:"planter_id"`
	PlanterIdentifier *string   `json:"planter_identifier,omitempty" db:"planter_identifier"`
	PlanterPhotoURL   *string   `json:"planter_photo_url,omitempty" db:"planter_photo_url"`
	ImageURL          *string   `json:"image_url,omitempty" db:"image_url"`
	Lat               float64   `json:"lat" db:"lat"`
	Lon               float64   `json:"lon" db:"lon"`
	GPSAccuracy       *int      `json:"gps_accuracy,omitempty" db:"gps_accuracy"`
	Morphology        *string   `json:"morphology,omitempty" db:"morphology"`
	Age               *string   `json:"age,omitempty" db:"age"`
	Note              *string   `json:"note,omitempty" db:"note"`
	TokenID           *string   `json:"token_id,omitempty" db:"token_id"`
	TimeCreated       time.Time `json:"time_created" db:"time_created"`
	TimeUpdated       time.Time `json:"time_updated" db:"time_updated"`
}

func (t LegacyTree) GetSourceID() int64 { return t.ID }

// TreeAttribute is one free-form key/value row of public.tree_attributes.
type TreeAttribute struct {
	Key   string  `json:"key" db:"key"`
	Value *string `json:"value" db:"value"`
}

// Planter is a legacy person profile joined with its most recent registration.
type Planter struct {
	ID             int64      `json:"id" db:"id"`
	FirstName      *string    `json:"first_name,omitempty" db:"first_name"`
	LastName       *string    `json:"last_name,omitempty" db:"last_name"`
	Email          *string    `json:"email,omitempty" db:"email"`
	Phone          *string    `json:"phone,omitempty" db:"phone"`
	Organization   *string    `json:"organization,omitempty" db:"organization"`
	OrganizationID *int64     `json:"organization_id,omitempty" db:"organization_id"`
	PersonID       *int64     `json:"person_id,omitempty" db:"person_id"`
	ImageURL       *string    `json:"image_url,omitempty" db:"image_url"`
	ImageRotation  *int       `json:"image_rotation,omitempty" db:"image_rotation"`
	RegisteredAt   *time.Time `json:"registered_at,omitempty" db:"registered_at"`
}

// PlanterRegistration is a row of public.planter_registrations.
type PlanterRegistration struct {
	ID               int64     `json:"id" db:"id"`
	PlanterID        int64     `json:"planter_id" db:"planter_id"`
	DeviceIdentifier *string   `json:"device_identifier,omitempty" db:"device_identifier"`
	Lat              *float64  `json:"lat,omitempty" db:"lat"`
	Lon              *float64  `json:"lon,omitempty" db:"lon"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// PendingPlanter is a planter row from the planters pipeline, joined with the
// grower account already owning its email or phone, if any.
type PendingPlanter struct {
	ID                    int64   `json:"id" db:"id"`
	FirstName             *string `json:"first_name,omitempty" db:"first_name"`
	LastName              *string `json:"last_name,omitempty" db:"last_name"`
	Email                 *string `json:"email,omitempty" db:"email"`
	Phone                 *string `json:"phone,omitempty" db:"phone"`
	ImageURL              *string `json:"image_url,omitempty" db:"image_url"`
	OrganizationID        *int64  `json:"organization_id,omitempty" db:"organization_id"`
	GrowerAccountID       *string `json:"grower_account_id,omitempty" db:"grower_account_id"`
	AccountOrganizationID *string `json:"account_organization_id,omitempty" db:"account_organization_id"`
}

func (p PendingPlanter) GetSourceID() int64 { return p.ID }

// Entity is the slice of public.entity the planters pipeline needs.
type Entity struct {
	ID              int64   `json:"id" db:"id"`
	StakeholderUUID *string `json:"stakeholder_uuid,omitempty" db:"stakeholder_uuid"`
}

// Device is a row of public.devices.
type Device struct {
	ID             int64      `json:"id" db:"id"`
	AndroidID      *string    `json:"android_id,omitempty" db:"android_id"`
	AppVersion     *string    `json:"app_version,omitempty" db:"app_version"`
	AppBuild       *int       `json:"app_build,omitempty" db:"app_build"`
	Manufacturer   *string    `json:"manufacturer,omitempty" db:"manufacturer"`
	Brand          *string    `json:"brand,omitempty" db:"brand"`
	Model          *string    `json:"model,omitempty" db:"model"`
	Hardware       *string    `json:"hardware,omitempty" db:"hardware"`
	Device         *string    `json:"device,omitempty" db:"device"`
	Serial         *string    `json:"serial,omitempty" db:"serial"`
	AndroidRelease *string    `json:"android_release,omitempty" db:"android_release"`
	AndroidSDK     *int       `json:"android_sdk,omitempty" db:"android_sdk"`
	CreatedAt      *time.Time `json:"created_at,omitempty" db:"created_at"`
}

func (d Device) GetSourceID() int64 { return d.ID }
