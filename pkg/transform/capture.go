package transform

import (
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/Greenstand/domain-migration-scripts/pkg/models"
)

// FromLegacyTree builds the capture for a legacy tree. Legacy trees have no
// session, so one is synthesized, and no device configuration, so the
// placeholder is used.
func FromLegacyTree(tree models.LegacyTree, attributes []models.TreeAttribute, account *models.GrowerAccount, deviceConfigurationID string) (models.Capture, error) {
	imageURL, err := requireString(tree.ID, "image_url", tree.ImageURL)
	if err != nil {
		return models.Capture{}, err
	}

	return models.Capture{
		ReferenceID:           tree.ID,
		ImageURL:              imageURL,
		Lat:                   tree.Lat,
		Lon:                   tree.Lon,
		GPSAccuracy:           tree.GPSAccuracy,
		GrowerAccountID:       account.ID,
		Morphology:            tree.Morphology,
		Age:                   SanitizeAge(tree.Age),
		Note:                  tree.Note,
		Attributes:            BuildAttributeBundle(attributes),
		DeviceConfigurationID: deviceConfigurationID,
		SessionID:             NewSessionID(),
		CapturedAt:            tree.TimeCreated,
		CreatedAt:             tree.TimeCreated,
		UpdatedAt:             tree.TimeUpdated,
	}, nil
}

// FromRawCapture builds the capture for an approved raw capture. The capture
// keeps the raw capture's id and propagates its session, device configuration
// and grower account. Tree-only fields come from the legacy tree it mirrors.
func FromRawCapture(raw models.RawCapture, tree models.LegacyTree, attributes []models.TreeAttribute, tagIDs []string) (models.Capture, error) {
	if raw.DeviceConfigurationID == nil || *raw.DeviceConfigurationID == "" {
		return models.Capture{}, migerrors.NewTransformError("device_configuration_id", "session has no device configuration").AddSourceID(tree.ID)
	}
	if raw.GrowerAccountID == "" {
		return models.Capture{}, migerrors.NewTransformError("grower_account_id", "wallet registration has no grower account").AddSourceID(tree.ID)
	}

	id := raw.ID
	var tags []string
	if len(tagIDs) > 0 {
		tags = append(tags, tagIDs...)
	}

	return models.Capture{
		ID:                    &id,
		ReferenceID:           tree.ID,
		ImageURL:              raw.ImageURL,
		Lat:                   raw.Lat,
		Lon:                   raw.Lon,
		GPSAccuracy:           raw.GPSAccuracy,
		GrowerAccountID:       raw.GrowerAccountID,
		Morphology:            tree.Morphology,
		Age:                   SanitizeAge(tree.Age),
		Note:                  raw.Note,
		Attributes:            BuildAttributeBundle(attributes),
		DeviceConfigurationID: *raw.DeviceConfigurationID,
		SessionID:             raw.SessionID,
		TokenID:               tree.TokenID,
		TagIDs:                tags,
		CapturedAt:            raw.CapturedAt,
		CreatedAt:             raw.CreatedAt,
		UpdatedAt:             raw.UpdatedAt,
	}, nil
}
