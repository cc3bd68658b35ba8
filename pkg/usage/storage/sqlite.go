// Package storage provides the SQLite-backed usage event store.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/ganymede/pkg/usage"
)

// SQLiteConfig contains configuration for the SQLite event store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/usage.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the usage.EventStore interface using SQLite.
type SQLiteStorage struct {
	db         *sql.DB
	config     *SQLiteConfig
	insertStmt *sql.Stmt
	closed     atomic.Bool
	logger     *slog.Logger
}

const insertEvent = `
INSERT INTO usage_events (
	id, request_id, recorded_at,
	style_id, variant, template_kind,
	applied, outcome, prompt_chars, catalog_version
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectColumns = `
seq, id, request_id, recorded_at,
style_id, variant, template_kind,
applied, outcome, prompt_chars, catalog_version
`

// NewSQLiteStorage creates a SQLite event store at the configured
// path. It initializes the schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "usage.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, usage.NewStorageError("events", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.insertStmt, err = db.Prepare(insertEvent)
	if err != nil {
		db.Close()
		return nil, usage.NewStorageError("events", "prepare_insert", err)
	}

	logger.Info("usage event store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return usage.NewStorageError("events", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return usage.NewStorageError("events", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return usage.NewStorageError("events", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return usage.NewStorageError("events", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return usage.NewStorageError("events", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return usage.NewStorageError("events", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Insert persists one usage event.
func (s *SQLiteStorage) Insert(ctx context.Context, event *usage.Event) error {
	if s.closed.Load() {
		return usage.NewStorageError("events", "insert", usage.ErrStoreClosed)
	}

	_, err := s.insertStmt.ExecContext(ctx,
		event.ID,
		nullString(event.RequestID),
		event.RecordedAt.UTC(),
		nullString(event.StyleID),
		nullString(event.Variant),
		nullString(event.TemplateKind),
		event.Applied,
		event.Outcome,
		event.PromptChars,
		nullString(event.CatalogVersion),
	)
	if err != nil {
		return usage.NewStorageError("events", "insert", err)
	}

	return nil
}

// ListAfter returns up to limit events with a sequence strictly
// greater than seq, in sequence order.
func (s *SQLiteStorage) ListAfter(ctx context.Context, seq int64, limit int) ([]*usage.StoredEvent, error) {
	if s.closed.Load() {
		return nil, usage.NewStorageError("events", "list_after", usage.ErrStoreClosed)
	}
	if limit <= 0 {
		limit = 100
	}

	query := "SELECT " + selectColumns + " FROM usage_events WHERE seq > ? ORDER BY seq ASC LIMIT ?"
	rows, err := s.db.QueryContext(ctx, query, seq, limit)
	if err != nil {
		return nil, usage.NewStorageError("events", "list_after", err)
	}
	defer rows.Close()

	return s.scanRows(rows, "list_after")
}

// Recent returns the newest events, newest first.
func (s *SQLiteStorage) Recent(ctx context.Context, limit int) ([]*usage.StoredEvent, error) {
	if s.closed.Load() {
		return nil, usage.NewStorageError("events", "recent", usage.ErrStoreClosed)
	}
	if limit <= 0 {
		limit = 100
	}

	query := "SELECT " + selectColumns + " FROM usage_events ORDER BY seq DESC LIMIT ?"
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, usage.NewStorageError("events", "recent", err)
	}
	defer rows.Close()

	return s.scanRows(rows, "recent")
}

// Count returns the total number of stored events.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	if s.closed.Load() {
		return 0, usage.NewStorageError("events", "count", usage.ErrStoreClosed)
	}

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usage_events").Scan(&count)
	if err != nil {
		return 0, usage.NewStorageError("events", "count", err)
	}
	return count, nil
}

// DeleteBefore removes events recorded before the cutoff and returns
// how many were deleted.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.closed.Load() {
		return 0, usage.NewStorageError("events", "delete_before", usage.ErrStoreClosed)
	}

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM usage_events WHERE recorded_at < ?", cutoff.UTC())
	if err != nil {
		return 0, usage.NewStorageError("events", "delete_before", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, usage.NewStorageError("events", "delete_before", err)
	}
	return count, nil
}

// SizeBytes reports the database size from the SQLite page counters.
func (s *SQLiteStorage) SizeBytes() (int64, error) {
	if s.closed.Load() {
		return 0, usage.NewStorageError("events", "size", usage.ErrStoreClosed)
	}

	var size int64
	err := s.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&size)
	if err != nil {
		return 0, usage.NewStorageError("events", "size", err)
	}
	return size, nil
}

// Ping verifies the database is reachable.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return usage.NewStorageError("events", "ping", usage.ErrStoreClosed)
	}
	if err := s.db.PingContext(ctx); err != nil {
		return usage.NewStorageError("events", "ping", err)
	}
	return nil
}

// DB exposes the underlying handle for health checks.
func (s *SQLiteStorage) DB() *sql.DB {
	return s.db
}

// Close releases resources held by the event store.
func (s *SQLiteStorage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	if s.insertStmt != nil {
		s.insertStmt.Close()
	}
	if err := s.db.Close(); err != nil {
		return usage.NewStorageError("events", "close", err)
	}

	s.logger.Info("usage event store closed")
	return nil
}

func (s *SQLiteStorage) scanRows(rows *sql.Rows, operation string) ([]*usage.StoredEvent, error) {
	events := []*usage.StoredEvent{}
	for rows.Next() {
		event, err := scanRow(rows)
		if err != nil {
			return nil, usage.NewStorageError("events", operation, err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, usage.NewStorageError("events", operation, err)
	}
	return events, nil
}

func scanRow(rows *sql.Rows) (*usage.StoredEvent, error) {
	var (
		event        usage.StoredEvent
		requestID    sql.NullString
		styleID      sql.NullString
		variant      sql.NullString
		templateKind sql.NullString
		catalogVer   sql.NullString
	)

	err := rows.Scan(
		&event.Seq,
		&event.ID,
		&requestID,
		&event.RecordedAt,
		&styleID,
		&variant,
		&templateKind,
		&event.Applied,
		&event.Outcome,
		&event.PromptChars,
		&catalogVer,
	)
	if err != nil {
		return nil, err
	}

	event.RequestID = requestID.String
	event.StyleID = styleID.String
	event.Variant = variant.String
	event.TemplateKind = templateKind.String
	event.CatalogVersion = catalogVer.String
	event.RecordedAt = event.RecordedAt.UTC()

	return &event, nil
}

// nullString converts empty strings to NULL for optional columns.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
