package transform

import "github.com/Greenstand/domain-migration-scripts/pkg/models"

// WalletRegistrations builds one wallet registration per planter registration,
// in the order given.
func WalletRegistrations(planter models.PendingPlanter, registrations []models.PlanterRegistration, account *models.GrowerAccount) []models.WalletRegistration {
	out := make([]models.WalletRegistration, 0, len(registrations))
	for _, reg := range registrations {
		out = append(out, models.WalletRegistration{
			Wallet:          account.Wallet,
			UserPhotoURL:    nonEmpty(planter.ImageURL),
			GrowerAccountID: account.ID,
			FirstName:       planter.FirstName,
			LastName:        planter.LastName,
			Phone:           nonEmpty(planter.Phone),
			Email:           nonEmpty(planter.Email),
			Lat:             reg.Lat,
			Lon:             reg.Lon,
			RegisteredAt:    reg.CreatedAt,
		})
	}
	return out
}
