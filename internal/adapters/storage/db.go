package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect identifies the SQL flavour behind a connection.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// MemoryURI selects the in-memory registration store instead of a database.
const MemoryURI = "memory://"

// sqlitePragmas are applied to every SQLite connection via the DSN.
const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"

// ErrUnsupportedURI is returned by Open for schemes with no driver.
var ErrUnsupportedURI = errors.New("unsupported store uri")

// Open connects to the database named by uri.
// Accepted forms: sqlite://path, file:path, a bare file path, and
// postgres:// or postgresql:// URLs.
// PRE: uri is non-empty
// POST: Returns a pinged *sql.DB and its dialect, or an error
func Open(ctx context.Context, uri string) (*sql.DB, Dialect, error) {
	driver, dsn, dialect, err := resolve(uri)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// One writer at a time; WAL keeps readers unblocked.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, dialect, nil
}

func resolve(uri string) (driver, dsn string, dialect Dialect, err error) {
	switch {
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return "postgres", uri, DialectPostgres, nil
	case strings.HasPrefix(uri, "sqlite://"):
		return "sqlite", withPragmas(strings.TrimPrefix(uri, "sqlite://")), DialectSQLite, nil
	case strings.HasPrefix(uri, "file:"):
		return "sqlite", withPragmas(uri), DialectSQLite, nil
	case uri == "" || strings.Contains(uri, "://"):
		return "", "", "", fmt.Errorf("%w: %q", ErrUnsupportedURI, uri)
	default:
		return "sqlite", withPragmas(uri), DialectSQLite, nil
	}
}

func withPragmas(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + sqlitePragmas
	}
	return path + "?" + sqlitePragmas
}

// InitDB creates the registration table if it does not exist.
// PRE: db is a valid database connection for dialect
// POST: registration table and its indexes exist
func InitDB(ctx context.Context, db SQLDB, dialect Dialect) error {
	seq := "seq INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == DialectPostgres {
		seq = "seq BIGSERIAL PRIMARY KEY"
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS registration (
		` + seq + `,
		id TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		department TEXT NOT NULL,
		document TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
		`CREATE INDEX IF NOT EXISTS idx_registration_department ON registration (department)`,
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Rebind rewrites ? placeholders to $1..$n for Postgres.
// Queries must not contain literal question marks.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
