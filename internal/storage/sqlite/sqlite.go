// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tracker/internal/models"
	"github.com/mmynk/tracker/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	events          *eventRepo
	medicalEvents   *subtypeRepo[models.MedicalEvent]
	workEvents      *subtypeRepo[models.WorkEvent]
	financialEvents *subtypeRepo[models.FinancialEvent]
	transactions    *transactionRepo
	series          *seriesRepo
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; serialize access through one connection.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{
		db:              db,
		events:          &eventRepo{db: db},
		medicalEvents:   &subtypeRepo[models.MedicalEvent]{db: db, ext: medicalExtension},
		workEvents:      &subtypeRepo[models.WorkEvent]{db: db, ext: workExtension},
		financialEvents: &subtypeRepo[models.FinancialEvent]{db: db, ext: financialExtension},
		transactions:    &transactionRepo{db: db},
		series:          &seriesRepo{db: db},
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Events() storage.Owned[models.Event] { return s.events }

func (s *SQLiteStore) MedicalEvents() storage.Owned[models.MedicalEvent] { return s.medicalEvents }

func (s *SQLiteStore) WorkEvents() storage.Owned[models.WorkEvent] { return s.workEvents }

func (s *SQLiteStore) FinancialEvents() storage.Owned[models.FinancialEvent] {
	return s.financialEvents
}

func (s *SQLiteStore) Transactions() storage.Owned[models.Transaction] { return s.transactions }

func (s *SQLiteStore) Series() storage.Owned[models.EventSeries] { return s.series }

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func toUnix(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromUnix(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

// now is truncated to storage precision so returned rows equal re-read rows.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// rangeClause builds an optional date range condition on column.
func rangeClause(column string, f storage.ListFilter) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	if f.From != nil {
		sb.WriteString(" AND " + column + " >= ?")
		args = append(args, toUnix(*f.From))
	}
	if f.To != nil {
		sb.WriteString(" AND " + column + " <= ?")
		args = append(args, toUnix(*f.To))
	}
	return sb.String(), args
}

// expectOneRow maps an UPDATE/DELETE that touched nothing to ErrNotFound.
func expectOneRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
