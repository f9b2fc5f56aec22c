package registration

import (
	"context"
	"sync"

	domain "sportsday/internal/domain/registration"
)

// MemoryStore keeps registrations in process memory, in insertion order.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []string
	byID    map[string]domain.Registration
	byEmail map[string]string
	opts    options
}

// Compile-time check that *MemoryStore satisfies Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]domain.Registration),
		byEmail: make(map[string]string),
		opts:    defaultOptions(opts),
	}
}

// Create stores a new registration.
// PRE: sub passed validation
// POST: Returns the stored record, or domain.ErrDuplicateEmail if the email exists
// INVARIANT: The email check and insert happen under one lock
func (m *MemoryStore) Create(_ context.Context, sub domain.Submission) (domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[sub.Email]; ok {
		return domain.Registration{}, domain.ErrDuplicateEmail
	}
	rec := m.opts.stamp(sub)
	m.order = append(m.order, rec.ID)
	m.byID[rec.ID] = rec
	m.byEmail[sub.Email] = rec.ID
	return rec, nil
}

// GetByID retrieves a Registration by its ID.
func (m *MemoryStore) GetByID(_ context.Context, id string) (domain.Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.byID[id]
	if !ok {
		return domain.Registration{}, domain.ErrNotFound
	}
	return rec, nil
}

// GetByEmail retrieves a Registration by exact email match.
func (m *MemoryStore) GetByEmail(_ context.Context, email string) (domain.Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return domain.Registration{}, domain.ErrNotFound
	}
	return m.byID[id], nil
}

// List returns every registration in insertion order.
func (m *MemoryStore) List(_ context.Context) ([]domain.Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Registration, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}
