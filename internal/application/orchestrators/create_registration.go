package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sportsday/internal/domain/registration"
)

//go:generate mockgen -source=create_registration.go -destination=mocks/mock_notifier.go -package=mocks -exclude_interfaces=RegistrationStore,Observer

var tracer = otel.Tracer("sportsday/internal/application/orchestrators")

// Registration outcomes reported to the Observer.
const (
	OutcomeCreated    = "created"
	OutcomeInvalid    = "invalid"
	OutcomeDuplicate  = "duplicate"
	OutcomeStoreError = "store_error"
)

// Confirmation delivery results reported to the Observer.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// RegistrationStore defines the persistence the pipeline needs.
type RegistrationStore interface {
	Create(ctx context.Context, sub registration.Submission) (registration.Registration, error)
	GetByEmail(ctx context.Context, email string) (registration.Registration, error)
}

// Notifier tells a registrant that their registration went through.
type Notifier interface {
	NotifyRegistered(ctx context.Context, sub registration.Submission) error
}

// Observer counts pipeline results. The HTTP perf collector implements it.
type Observer interface {
	RegistrationOutcome(outcome string)
	Delivery(result string)
}

type noopObserver struct{}

func (noopObserver) RegistrationOutcome(string) {}
func (noopObserver) Delivery(string)            {}

// StoreError is an unexpected persistence failure. Callers report it as a
// server error and never show Err to the client.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("registration store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Delivery is the result of one notification attempt.
type Delivery struct {
	Skipped bool
	Err     error
}

// CreateRegistrationDeps holds dependencies for CreateRegistration.
type CreateRegistrationDeps struct {
	Store    RegistrationStore
	Notifier Notifier // optional
	Observer Observer // optional
}

// ExecuteCreateRegistration runs the registration pipeline:
// validate, reject duplicates, persist, notify, return the stored record.
// PRE: payload is the raw request body
// POST: On success exactly one record exists for the email and the notifier
// was called once with the validated submission
// INVARIANT: A failed notification never changes the outcome
func ExecuteCreateRegistration(ctx context.Context, payload []byte, deps CreateRegistrationDeps) (registration.Registration, error) {
	observer := deps.Observer
	if observer == nil {
		observer = noopObserver{}
	}

	ctx, span := tracer.Start(ctx, "registration.create")
	defer span.End()

	sub, rec, err := createRegistration(ctx, payload, deps)
	outcome := classifyOutcome(err)
	observer.RegistrationOutcome(outcome)
	span.SetAttributes(attribute.String("registration.outcome", outcome))
	if err != nil {
		if outcome == OutcomeStoreError {
			span.RecordError(err)
			span.SetStatus(codes.Error, "store failure")
		}
		return registration.Registration{}, err
	}
	span.SetAttributes(attribute.String("registration.id", rec.ID))

	delivery := notify(ctx, deps.Notifier, sub)
	switch {
	case delivery.Skipped:
	case delivery.Err != nil:
		observer.Delivery(DeliveryFailed)
		slog.Warn("confirmation_failed",
			"registration_id", rec.ID,
			"email", rec.Email,
			"error", delivery.Err,
		)
	default:
		observer.Delivery(DeliverySent)
	}

	slog.Info("registration_created", "registration_id", rec.ID, "department", rec.Department)
	return rec, nil
}

// createRegistration returns the validated submission alongside the stored
// record; the notifier is handed the former.
func createRegistration(ctx context.Context, payload []byte, deps CreateRegistrationDeps) (registration.Submission, registration.Registration, error) {
	sub, err := withSpan(ctx, "registration.validate", func(context.Context) (registration.Submission, error) {
		return registration.Parse(payload)
	})
	if err != nil {
		return registration.Submission{}, registration.Registration{}, err
	}

	_, err = withSpan(ctx, "registration.duplicate_check", func(ctx context.Context) (struct{}, error) {
		_, err := deps.Store.GetByEmail(ctx, sub.Email)
		switch {
		case err == nil:
			return struct{}{}, registration.ErrDuplicateEmail
		case errors.Is(err, registration.ErrNotFound):
			return struct{}{}, nil
		default:
			return struct{}{}, &StoreError{Op: "get_by_email", Err: err}
		}
	})
	if err != nil {
		return registration.Submission{}, registration.Registration{}, err
	}

	rec, err := withSpan(ctx, "registration.persist", func(ctx context.Context) (registration.Registration, error) {
		rec, err := deps.Store.Create(ctx, sub)
		switch {
		case err == nil:
			return rec, nil
		case errors.Is(err, registration.ErrDuplicateEmail):
			// Lost the race with a concurrent submission for the same email.
			return registration.Registration{}, registration.ErrDuplicateEmail
		default:
			return registration.Registration{}, &StoreError{Op: "create", Err: err}
		}
	})
	return sub, rec, err
}

func notify(ctx context.Context, n Notifier, sub registration.Submission) Delivery {
	if n == nil {
		return Delivery{Skipped: true}
	}
	ctx, span := tracer.Start(ctx, "registration.notify")
	defer span.End()

	err := n.NotifyRegistered(ctx, sub)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "notification failed")
	}
	return Delivery{Err: err}
}

// withSpan runs fn inside a child span, marking the span on error.
func withSpan[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	v, err := fn(ctx)
	if err != nil {
		markSpan(span, err)
	}
	return v, err
}

func markSpan(span trace.Span, err error) {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		span.RecordError(err)
		span.SetStatus(codes.Error, storeErr.Op)
		return
	}
	span.SetAttributes(attribute.String("registration.rejected", err.Error()))
}

func classifyOutcome(err error) string {
	var verr *registration.ValidationError
	switch {
	case err == nil:
		return OutcomeCreated
	case errors.As(err, &verr):
		return OutcomeInvalid
	case errors.Is(err, registration.ErrDuplicateEmail):
		return OutcomeDuplicate
	default:
		return OutcomeStoreError
	}
}
