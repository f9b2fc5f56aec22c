package projections

import (
	"context"

	"sportsday/internal/domain/registration"
)

// GetRegistrationDeps holds dependencies for GetRegistration.
type GetRegistrationDeps struct {
	Store RegistrationStore
}

// QueryGetRegistration loads one registration.
// PRE: id is the identifier returned at creation
// POST: Returns the record or registration.ErrNotFound
func QueryGetRegistration(ctx context.Context, id string, deps GetRegistrationDeps) (registration.Registration, error) {
	if id == "" {
		return registration.Registration{}, registration.ErrNotFound
	}
	return deps.Store.GetByID(ctx, id)
}
