package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pubcrawl/pubcrawl/internal/model"
)

// ReportDB provides SQLite-based storage for extracted report records.
// It manages connection pooling and enforces URL uniqueness at the
// storage layer.
//
// Design decision: We use a single database file per harvest target
// rather than one per run. Re-running a harvest then naturally skips
// records that are already stored, which is what makes incremental
// harvesting cheap.
type ReportDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ReportDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ReportDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ReportDB, error) {
	dbPath := filepath.Join(dbDir, "pubcrawl.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; more connections buy nothing for
	// this write-heavy workload.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ReportDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *ReportDB) Close() error {
	return rdb.db.Close()
}

// Path returns the path of the underlying database file.
func (rdb *ReportDB) Path() string {
	return rdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (rdb *ReportDB) createTables() error {
	schema := `
	-- One row per extracted report; url is the uniqueness key.
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_name TEXT,
		diarienummer TEXT,
		serienummer TEXT,
		description TEXT,
		date TEXT,
		url TEXT UNIQUE,
		stored_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// StoredReport is a report record as persisted, together with its
// database identity and arrival time.
type StoredReport struct {
	// ID is the record's database identifier.
	ID int64

	// Record is the extracted report data.
	Record model.ReportRecord

	// StoredAt is when the record was first inserted.
	StoredAt time.Time
}

// InsertStats counts the outcome of a bulk insert.
type InsertStats struct {
	// Inserted is the number of new records written.
	Inserted int

	// Skipped is the number of records dropped because their URL was
	// already stored.
	Skipped int
}

// InsertReport inserts a single record, skipping it silently when its URL
// is already stored. It reports whether the record was inserted.
func (rdb *ReportDB) InsertReport(ctx context.Context, rec model.ReportRecord) (bool, error) {
	result, err := rdb.db.ExecContext(ctx, insertReportQuery,
		rec.Title,
		rec.CaseNumber,
		rec.SeriesNumber,
		rec.Description,
		rec.Date,
		rec.URL,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert report: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return n > 0, nil
}

// insertReportQuery skips conflicting URLs instead of failing, which
// implements the insert-or-skip contract of the sink.
const insertReportQuery = `
INSERT OR IGNORE INTO reports (report_name, diarienummer, serienummer, description, date, url)
VALUES (?, ?, ?, ?, ?, ?)
`

// InsertReports inserts the records in one transaction and returns how
// many were inserted versus skipped as already stored.
func (rdb *ReportDB) InsertReports(ctx context.Context, recs []model.ReportRecord) (InsertStats, error) {
	var stats InsertStats

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, rec := range recs {
		result, err := tx.ExecContext(ctx, insertReportQuery,
			rec.Title,
			rec.CaseNumber,
			rec.SeriesNumber,
			rec.Description,
			rec.Date,
			rec.URL,
		)
		if err != nil {
			return InsertStats{}, fmt.Errorf("failed to insert report %s: %w", rec.URL, err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return InsertStats{}, fmt.Errorf("failed to read insert result: %w", err)
		}
		if n > 0 {
			stats.Inserted++
		} else {
			stats.Skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return InsertStats{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return stats, nil
}

// GetReportByURL retrieves a stored report by its URL.
// It returns nil without an error when the URL is not stored.
func (rdb *ReportDB) GetReportByURL(ctx context.Context, url string) (*StoredReport, error) {
	query := `
	SELECT id, report_name, diarienummer, serienummer, description, date, url, stored_at
	FROM reports
	WHERE url = ?
	`

	stored, err := scanStoredReport(rdb.db.QueryRowContext(ctx, query, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return stored, nil
}

// ListReports returns every stored report in insertion order.
func (rdb *ReportDB) ListReports(ctx context.Context) ([]StoredReport, error) {
	query := `
	SELECT id, report_name, diarienummer, serienummer, description, date, url, stored_at
	FROM reports
	ORDER BY id
	`

	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var results []StoredReport
	for rows.Next() {
		stored, err := scanStoredReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		results = append(results, *stored)
	}

	return results, rows.Err()
}

// CountReports returns the number of stored reports.
func (rdb *ReportDB) CountReports(ctx context.Context) (int, error) {
	var count int
	if err := rdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanStoredReport reads one reports row.
func scanStoredReport(row rowScanner) (*StoredReport, error) {
	var stored StoredReport
	var storedAt string

	err := row.Scan(
		&stored.ID,
		&stored.Record.Title,
		&stored.Record.CaseNumber,
		&stored.Record.SeriesNumber,
		&stored.Record.Description,
		&stored.Record.Date,
		&stored.Record.URL,
		&storedAt,
	)
	if err != nil {
		return nil, err
	}

	stored.StoredAt = parseTimestamp(storedAt)
	return &stored, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
