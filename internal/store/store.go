// Package store persists a run's three symbolic artifacts (symbol
// table dump, linearized listing, final variable table) to a SQL
// database keyed by run ID, so a teaching environment can compare runs
// across students without re-running them. A switch maps the scheme to
// a driver name, and the DSN is opened unchanged through database/sql.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"minilang/internal/errors"
)

// Store wraps a *sql.DB that holds one "runs" table.
type Store struct {
	db     *sql.DB
	driver string
}

// driverFor maps a user-facing scheme (as given on the CLI, e.g.
// "sqlite3", "postgres", "mysql", "sqlserver") to the database/sql
// driver name registered by its blank import above.
func driverFor(scheme string) (string, error) {
	switch strings.ToLower(scheme) {
	case "sqlite3", "sqlite":
		return "sqlite3", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlserver", "mssql":
		return "sqlserver", nil
	default:
		return "", fmt.Errorf("store: unsupported scheme %q", scheme)
	}
}

// Open parses a "scheme:dsn" string (e.g. "sqlite3:./runs.db") and
// opens a connection, creating the runs table if it does not exist.
func Open(target string) (*Store, error) {
	scheme, dsn, ok := strings.Cut(target, ":")
	if !ok {
		return nil, fmt.Errorf("store: target %q must be scheme:dsn", target)
	}
	driver, err := driverFor(scheme)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "store: opening %s", driver)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "store: pinging %s", driver)
	}
	s := &Store{db: db, driver: driver}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			run_id          TEXT PRIMARY KEY,
			source_name     TEXT NOT NULL,
			symbol_table    TEXT NOT NULL,
			listing         TEXT NOT NULL,
			variable_table  TEXT NOT NULL,
			program_result  TEXT NOT NULL,
			created_at      TIMESTAMP NOT NULL
		)
	`)
	return errors.Wrap(err, "store: creating runs table")
}

// Run is one persisted compile-and-run record.
type Run struct {
	RunID         string
	SourceName    string
	SymbolTable   string
	Listing       string
	VariableTable string
	ProgramResult string
	CreatedAt     time.Time
}

// placeholder returns the driver-specific bind-parameter marker for
// position i (1-based): lib/pq and go-mssqldb don't accept the "?"
// style mysql/sqlite3 use.
func (s *Store) placeholder(i int) string {
	switch s.driver {
	case "postgres":
		return fmt.Sprintf("$%d", i)
	case "sqlserver":
		return fmt.Sprintf("@p%d", i)
	default:
		return "?"
	}
}

// Save inserts one run record.
func (s *Store) Save(ctx context.Context, r Run) error {
	query := fmt.Sprintf(
		`INSERT INTO runs (run_id, source_name, symbol_table, listing, variable_table, program_result, created_at)
		 VALUES (%s, %s, %s, %s, %s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4),
		s.placeholder(5), s.placeholder(6), s.placeholder(7),
	)
	_, err := s.db.ExecContext(ctx, query,
		r.RunID, r.SourceName, r.SymbolTable, r.Listing, r.VariableTable, r.ProgramResult, r.CreatedAt,
	)
	return errors.Wrapf(err, "store: saving run %s", r.RunID)
}

// Load retrieves one run by ID.
func (s *Store) Load(ctx context.Context, runID string) (*Run, error) {
	query := fmt.Sprintf(
		`SELECT run_id, source_name, symbol_table, listing, variable_table, program_result, created_at
		 FROM runs WHERE run_id = %s`, s.placeholder(1))
	row := s.db.QueryRowContext(ctx, query, runID)
	var r Run
	if err := row.Scan(&r.RunID, &r.SourceName, &r.SymbolTable, &r.Listing, &r.VariableTable, &r.ProgramResult, &r.CreatedAt); err != nil {
		return nil, errors.Wrapf(err, "store: loading run %s", runID)
	}
	return &r, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}
