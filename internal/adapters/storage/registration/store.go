package registration

import (
	"context"
	"time"

	"github.com/google/uuid"

	domain "sportsday/internal/domain/registration"
)

// Store persists Registration state.
// Implementations assign ID and timestamps, and enforce one record per email.
type Store interface {
	Create(ctx context.Context, sub domain.Submission) (domain.Registration, error)
	GetByID(ctx context.Context, id string) (domain.Registration, error)
	GetByEmail(ctx context.Context, email string) (domain.Registration, error)
	List(ctx context.Context) ([]domain.Registration, error)
}

// Option customises how a store stamps new records.
type Option func(*options)

type options struct {
	newID func() string
	now   func() time.Time
}

func defaultOptions(opts []Option) options {
	o := options{
		newID: func() string { return uuid.New().String() },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithClock replaces time.Now for created/updated timestamps.
func WithClock(fn func() time.Time) Option {
	return func(o *options) { o.now = fn }
}

// stamp builds the record Create will persist.
func (o options) stamp(sub domain.Submission) domain.Registration {
	now := o.now().UTC()
	return domain.Registration{
		ID:         o.newID(),
		Submission: sub,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
