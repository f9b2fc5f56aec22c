package registration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sportsday/internal/adapters/storage"
	domain "sportsday/internal/domain/registration"
)

const (
	insertQuery     = "INSERT INTO registration (id, email, full_name, department, document, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	selectColumns   = "SELECT id, document, created_at, updated_at FROM registration"
	getByIDQuery    = selectColumns + " WHERE id = ?"
	getByEmailQuery = selectColumns + " WHERE email = ?"
	listQuery       = selectColumns + " ORDER BY seq"
)

// SQLStore implements Store over SQLite or Postgres.
// The submission is kept as a JSON document; email, name and department are
// copied into columns for the unique index and ad-hoc queries.
type SQLStore struct {
	db      storage.SQLDB
	dialect storage.Dialect
	opts    options
}

// Compile-time check that *SQLStore satisfies Store.
var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a new registration store.
// PRE: storage.InitDB has run against db
func NewSQLStore(db storage.SQLDB, dialect storage.Dialect, opts ...Option) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, opts: defaultOptions(opts)}
}

// Create inserts a new registration.
// PRE: sub passed validation
// POST: Returns the stored record, or domain.ErrDuplicateEmail if the email exists
func (s *SQLStore) Create(ctx context.Context, sub domain.Submission) (domain.Registration, error) {
	doc, err := json.Marshal(sub)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("encode registration: %w", err)
	}

	rec := s.opts.stamp(sub)
	_, err = s.db.ExecContext(ctx, storage.Rebind(s.dialect, insertQuery),
		rec.ID,
		sub.Email,
		sub.FullName,
		sub.Department,
		string(doc),
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return domain.Registration{}, domain.ErrDuplicateEmail
		}
		return domain.Registration{}, fmt.Errorf("insert registration: %w", err)
	}
	return rec, nil
}

// GetByID retrieves a Registration by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Registration, error) {
	row := s.db.QueryRowContext(ctx, storage.Rebind(s.dialect, getByIDQuery), id)
	return scanRegistration(row)
}

// GetByEmail retrieves a Registration by exact email match.
// PRE: email is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLStore) GetByEmail(ctx context.Context, email string) (domain.Registration, error) {
	row := s.db.QueryRowContext(ctx, storage.Rebind(s.dialect, getByEmailQuery), email)
	return scanRegistration(row)
}

// List returns every registration in insertion order.
// POST: Returns a non-nil slice
func (s *SQLStore) List(ctx context.Context) ([]domain.Registration, error) {
	rows, err := s.db.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	out := []domain.Registration{}
	for rows.Next() {
		rec, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row scanner) (domain.Registration, error) {
	var (
		rec                  domain.Registration
		doc                  string
		createdAt, updatedAt string
	)
	err := row.Scan(&rec.ID, &doc, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Registration{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Registration{}, fmt.Errorf("scan registration: %w", err)
	}

	if err := json.Unmarshal([]byte(doc), &rec.Submission); err != nil {
		return domain.Registration{}, fmt.Errorf("decode registration %s: %w", rec.ID, err)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Registration{}, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Registration{}, err
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
