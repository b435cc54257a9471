package recordstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/schema"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
)

// SQLStore persists records in SQLite, MySQL or PostgreSQL through
// database/sql. Rows carry the indexed query columns plus the full
// record as a JSON payload, so variant metadata survives round trips
// without one table per source type.
type SQLStore struct {
	db       *sql.DB
	backend  schema.DatabaseBackend
	resolver contract.TeamResolver
}

var _ contract.RecordStore = &SQLStore{} // Compile-time check

// NewSQLStore opens a connection for the backend and ensures the schema
// is in place. connStr formats:
// - sqlite:     a file path (empty means ./pulse.db)
// - mysql:      user:password@tcp(host:port)/dbname
// - postgresql: host=localhost port=5432 user=... dbname=...
func NewSQLStore(backend schema.DatabaseBackend, connStr string, resolver contract.TeamResolver) (*SQLStore, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = DefaultSQLitePath
		}
		db, err = sql.Open("sqlite3", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL store: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL store: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported store backend: %s. Must be sqlite, mysql, or postgresql", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	if err := ensureSchema(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLStore{db: db, backend: backend, resolver: resolver}, nil
}

// DefaultSQLitePath is where the SQLite backend stores data when no
// connection string is given.
const DefaultSQLitePath = "pulse.db"

// ensureSchema creates the tables when migrations have not been run.
func ensureSchema(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, query := range getCreateTableQueries(backend) {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create store schema: %w", err)
		}
	}
	return nil
}

// getCreateTableQueries returns the CREATE TABLE statements for the backend.
func getCreateTableQueries(backend schema.DatabaseBackend) []string {
	switch backend {
	case schema.MySQLBackend:
		return []string{`
			CREATE TABLE IF NOT EXISTS event_records (
				id VARCHAR(255) PRIMARY KEY,
				source VARCHAR(32) NOT NULL,
				repository VARCHAR(255) NOT NULL,
				author VARCHAR(255) NOT NULL,
				created_at BIGINT NOT NULL,
				payload JSON NOT NULL
			);`, `
			CREATE TABLE IF NOT EXISTS data_versions (
				repository VARCHAR(255) PRIMARY KEY,
				version BIGINT NOT NULL
			);`,
		}

	case schema.PostgreSQLBackend:
		return []string{`
			CREATE TABLE IF NOT EXISTS event_records (
				id TEXT PRIMARY KEY,
				source TEXT NOT NULL,
				repository TEXT NOT NULL,
				author TEXT NOT NULL,
				created_at BIGINT NOT NULL,
				payload JSONB NOT NULL
			);`, `
			CREATE TABLE IF NOT EXISTS data_versions (
				repository TEXT PRIMARY KEY,
				version BIGINT NOT NULL
			);`,
		}

	default: // SQLite
		return []string{`
			CREATE TABLE IF NOT EXISTS event_records (
				id TEXT PRIMARY KEY,
				source TEXT NOT NULL,
				repository TEXT NOT NULL,
				author TEXT NOT NULL,
				created_at INTEGER NOT NULL,
				payload BLOB NOT NULL
			);`, `
			CREATE TABLE IF NOT EXISTS data_versions (
				repository TEXT PRIMARY KEY,
				version INTEGER NOT NULL
			);`,
		}
	}
}

// Upsert writes the record and bumps the repository version in one
// transaction so readers never observe a new row under an old version.
func (s *SQLStore) Upsert(ctx context.Context, record schema.EventRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", record.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.getRecordUpsertQuery(),
		record.ID, string(record.Source), record.Repository, record.Author,
		record.CreatedAt.Unix(), payload); err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", record.ID, err)
	}

	if _, err := tx.ExecContext(ctx, s.getVersionBumpQuery(), record.Repository); err != nil {
		return fmt.Errorf("failed to bump data version for %s: %w", record.Repository, err)
	}

	return tx.Commit()
}

// getRecordUpsertQuery returns the UPSERT statement for event_records.
func (s *SQLStore) getRecordUpsertQuery() string {
	switch s.backend {
	case schema.MySQLBackend:
		return `INSERT INTO event_records (id, source, repository, author, created_at, payload) VALUES (?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE source = new.source, repository = new.repository, author = new.author, created_at = new.created_at, payload = new.payload`

	case schema.PostgreSQLBackend:
		return `INSERT INTO event_records (id, source, repository, author, created_at, payload) VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET source = EXCLUDED.source, repository = EXCLUDED.repository, author = EXCLUDED.author, created_at = EXCLUDED.created_at, payload = EXCLUDED.payload`

	default: // SQLite
		return `INSERT OR REPLACE INTO event_records (id, source, repository, author, created_at, payload) VALUES (?, ?, ?, ?, ?, ?)`
	}
}

// getVersionBumpQuery returns the statement that increments a
// repository's version counter, creating it at 1 when absent.
func (s *SQLStore) getVersionBumpQuery() string {
	switch s.backend {
	case schema.MySQLBackend:
		return `INSERT INTO data_versions (repository, version) VALUES (?, 1)
			ON DUPLICATE KEY UPDATE version = version + 1`

	case schema.PostgreSQLBackend:
		return `INSERT INTO data_versions (repository, version) VALUES ($1, 1)
			ON CONFLICT (repository) DO UPDATE SET version = data_versions.version + 1`

	default: // SQLite
		return `INSERT INTO data_versions (repository, version) VALUES (?, 1)
			ON CONFLICT (repository) DO UPDATE SET version = version + 1`
	}
}

// Query scans matching rows and decodes their payloads. Repository and
// window filters push down to SQL; source and team filters apply after
// decoding since they need slice membership or resolver lookups.
func (s *SQLStore) Query(ctx context.Context, filter contract.QueryFilter) ([]schema.EventRecord, error) {
	query, args := s.buildQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []schema.EventRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		var record schema.EventRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("failed to decode record payload: %w", err)
		}
		if matchesFilter(record, filter, s.resolver) {
			out = append(out, record)
		}
	}
	return out, rows.Err()
}

// buildQuery assembles the SELECT with pushed-down filters.
func (s *SQLStore) buildQuery(filter contract.QueryFilter) (string, []any) {
	query := `SELECT payload FROM event_records WHERE 1=1`
	var args []any

	appendClause := func(clause string, arg any) {
		args = append(args, arg)
		if s.backend == schema.PostgreSQLBackend {
			query += fmt.Sprintf(clause, fmt.Sprintf("$%d", len(args)))
		} else {
			query += fmt.Sprintf(clause, "?")
		}
	}

	if filter.Repository != "" {
		appendClause(" AND repository = %s", filter.Repository)
	}
	if !filter.Window.Start.IsZero() {
		appendClause(" AND created_at >= %s", filter.Window.Start.Unix())
	}
	if !filter.Window.End.IsZero() {
		appendClause(" AND created_at < %s", filter.Window.End.Unix())
	}

	return query, args
}

// DataVersion reads the repository's counter, or the sum across all
// repositories when repository is empty.
func (s *SQLStore) DataVersion(ctx context.Context, repository string) (int64, error) {
	var version sql.NullInt64
	var err error

	if repository == "" {
		err = s.db.QueryRowContext(ctx, `SELECT SUM(version) FROM data_versions`).Scan(&version)
	} else {
		placeholder := "?"
		if s.backend == schema.PostgreSQLBackend {
			placeholder = "$1"
		}
		query := fmt.Sprintf(`SELECT version FROM data_versions WHERE repository = %s`, placeholder)
		err = s.db.QueryRowContext(ctx, query, repository).Scan(&version)
	}

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read data version: %w", err)
	}
	return version.Int64, nil
}

// Close closes the underlying DB connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
