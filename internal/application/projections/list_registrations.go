package projections

import (
	"context"

	"sportsday/internal/domain/registration"
)

// ListRegistrationsResult carries the query result.
type ListRegistrationsResult struct {
	Registrations []registration.Registration
}

// ListRegistrationsDeps holds dependencies for ListRegistrations.
type ListRegistrationsDeps struct {
	Store RegistrationStore
}

// QueryListRegistrations returns every stored registration.
// PRE: none
// POST: Registrations are in insertion order; never nil on success
func QueryListRegistrations(ctx context.Context, deps ListRegistrationsDeps) (ListRegistrationsResult, error) {
	regs, err := deps.Store.List(ctx)
	if err != nil {
		return ListRegistrationsResult{}, err
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ListRegistrationsResult{Registrations: regs}, nil
}
