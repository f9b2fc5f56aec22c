package projections

import (
	"context"

	"sportsday/internal/domain/registration"
)

// RegistrationStore interface for registration queries.
type RegistrationStore interface {
	GetByID(ctx context.Context, id string) (registration.Registration, error)
	List(ctx context.Context) ([]registration.Registration, error)
}
