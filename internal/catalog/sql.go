package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/lib/pq"
)

// DriverPostgres is the database/sql driver name registered by lib/pq.
const DriverPostgres = "postgres"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLBackend stores artifacts as JSON documents in one Postgres table with
// the columns (key text primary key, value jsonb).
type SQLBackend struct {
	db    *sql.DB
	table string
}

// OpenSQL connects to dsn and makes sure the table exists.
func OpenSQL(ctx context.Context, dsn, table string) (*SQLBackend, error) {
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	b, err := NewSQLBackend(ctx, db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// NewSQLBackend wraps an existing connection pool.
func NewSQLBackend(ctx context.Context, db *sql.DB, table string) (*SQLBackend, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	b := &SQLBackend{db: db, table: pq.QuoteIdentifier(table)}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value JSONB NOT NULL)`, b.table)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return nil, fmt.Errorf("failed to create artifact table: %w", err)
	}
	return b, nil
}

func (s *SQLBackend) Load(ctx context.Context, key string) (any, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return v, nil
}

func (s *SQLBackend) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	stmt := fmt.Sprintf(`INSERT INTO %s (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, s.table)
	_, err = s.db.ExecContext(ctx, stmt, key, string(data))
	return err
}

func (s *SQLBackend) Exists(ctx context.Context, key string) (bool, error) {
	var found bool
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE key = $1)`, s.table), key).Scan(&found)
	return found, err
}

// Close releases the connection pool.
func (s *SQLBackend) Close() error {
	return s.db.Close()
}

func (s *SQLBackend) Describe() string { return "postgres:" + s.table }
