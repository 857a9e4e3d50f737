package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/ganymede/pkg/evidence"
)

// SQLiteConfig contains configuration for the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for concurrent readers.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/evidence.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements evidence.Storage on a SQLite file.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database, applies the schema, and enables
// WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "evidence.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{db: db, config: config, logger: logger}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite evidence storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return evidence.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return evidence.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return evidence.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return evidence.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil && err != sql.ErrNoRows {
		return evidence.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return evidence.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists a verdict record.
func (s *SQLiteStorage) Store(ctx context.Context, record *evidence.VerdictRecord) error {
	failedChecks, _ := json.Marshal(record.FailedChecks)
	warnings, _ := json.Marshal(record.Warnings)
	actions, _ := json.Marshal(record.ActionsTaken)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verdicts (
			id, request_id, stage, passed,
			failed_checks, warnings, actions_taken, text_modified,
			input_hash, output_hash, duration_us, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.RequestID, record.Stage, record.Passed,
		string(failedChecks), string(warnings), string(actions), record.TextModified,
		record.InputHash, record.OutputHash, record.Duration.Microseconds(), record.RecordedAt,
	)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query retrieves matching records, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.VerdictRecord, error) {
	where, args := buildWhereClause(query)

	sqlQuery := `SELECT id, request_id, stage, passed, failed_checks, warnings,
		actions_taken, text_modified, input_hash, output_hash, duration_us, recorded_at
		FROM verdicts` + where + " ORDER BY recorded_at DESC"

	limit := 100
	if query != nil && query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query != nil && query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*evidence.VerdictRecord{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, evidence.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *evidence.Query) (int64, error) {
	where, args := buildWhereClause(query)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM verdicts"+where, args...).Scan(&count)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteBefore removes records recorded before the cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM verdicts WHERE recorded_at < ?", cutoff)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete_before", err)
	}
	return result.RowsAffected()
}

// DeleteOldest removes the n oldest records.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM verdicts WHERE id IN (SELECT id FROM verdicts ORDER BY recorded_at ASC LIMIT ?)", n)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete_oldest", err)
	}
	return result.RowsAffected()
}

// Ping verifies the database connection. Used by health checks.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func buildWhereClause(query *evidence.Query) (string, []any) {
	if query == nil {
		return "", nil
	}

	var clauses []string
	var args []any

	if query.Stage != "" {
		clauses = append(clauses, "stage = ?")
		args = append(args, query.Stage)
	}
	if query.Passed != nil {
		clauses = append(clauses, "passed = ?")
		args = append(args, *query.Passed)
	}
	if query.RequestID != "" {
		clauses = append(clauses, "request_id = ?")
		args = append(args, query.RequestID)
	}
	if query.StartTime != nil {
		clauses = append(clauses, "recorded_at >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		clauses = append(clauses, "recorded_at <= ?")
		args = append(args, *query.EndTime)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanRow(rows *sql.Rows) (*evidence.VerdictRecord, error) {
	var record evidence.VerdictRecord
	var failedChecks, warnings, actions string
	var durationUs int64

	err := rows.Scan(
		&record.ID, &record.RequestID, &record.Stage, &record.Passed,
		&failedChecks, &warnings, &actions, &record.TextModified,
		&record.InputHash, &record.OutputHash, &durationUs, &record.RecordedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Duration = time.Duration(durationUs) * time.Microsecond

	if err := json.Unmarshal([]byte(failedChecks), &record.FailedChecks); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(warnings), &record.Warnings); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(actions), &record.ActionsTaken); err != nil {
		return nil, err
	}

	return &record, nil
}
