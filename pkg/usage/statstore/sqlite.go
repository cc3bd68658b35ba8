// Package statstore provides the SQLite-backed daily style statistics
// store.
package statstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"mercator-hq/ganymede/pkg/usage"
)

// Config configures the stat store.
type Config struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration
}

// DefaultConfig returns the default stat store configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:               "data/usage_stats.db",
		BusyTimeout:        5 * time.Second,
		CheckpointInterval: 5 * time.Minute,
	}
}

// SQLiteBackend implements the usage.StatStore interface using SQLite.
//
// The backend holds per-(style, day) counters plus a single rollup
// cursor row. Counter increments and the cursor advance happen in one
// transaction, which is what makes rollups exactly-once: a crash
// either commits both or neither.
type SQLiteBackend struct {
	db        *sql.DB
	config    *Config
	done      chan struct{}
	mu        sync.Mutex
	closeOnce sync.Once
	logger    *slog.Logger

	upsertStmt    *sql.Stmt
	cursorStmt    *sql.Stmt
	setCursorStmt *sql.Stmt
	topStmt       *sql.Stmt
}

// NewSQLiteBackend creates a stat store at the configured path.
func NewSQLiteBackend(config *Config, logger *slog.Logger) (*SQLiteBackend, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Path == "" {
		return nil, usage.NewStorageError("stats", "open", fmt.Errorf("db path cannot be empty"))
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}
	if config.CheckpointInterval == 0 {
		config.CheckpointInterval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		config.Path, int(config.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, usage.NewStorageError("stats", "open", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteBackend{
		db:     db,
		config: config,
		done:   make(chan struct{}),
		logger: logger.With("component", "usage.statstore"),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, usage.NewStorageError("stats", "init_schema", err)
	}

	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, usage.NewStorageError("stats", "prepare", err)
	}

	go s.checkpointLoop()

	s.logger.Info("usage stat store initialized", "path", config.Path)

	return s, nil
}

func (s *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS style_stats (
		style_id TEXT NOT NULL,
		day TEXT NOT NULL,
		resolutions INTEGER NOT NULL DEFAULT 0,
		applied INTEGER NOT NULL DEFAULT 0,
		prompt_chars INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (style_id, day)
	);

	CREATE INDEX IF NOT EXISTS idx_style_stats_day ON style_stats(day);

	CREATE TABLE IF NOT EXISTS rollup_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		cursor INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteBackend) prepareStatements() error {
	var err error

	s.upsertStmt, err = s.db.Prepare(`
		INSERT INTO style_stats (style_id, day, resolutions, applied, prompt_chars, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (style_id, day) DO UPDATE SET
			resolutions = resolutions + excluded.resolutions,
			applied = applied + excluded.applied,
			prompt_chars = prompt_chars + excluded.prompt_chars,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert statement: %w", err)
	}

	s.cursorStmt, err = s.db.Prepare(`
		SELECT cursor FROM rollup_state WHERE id = 1
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cursor statement: %w", err)
	}

	s.setCursorStmt, err = s.db.Prepare(`
		INSERT INTO rollup_state (id, cursor, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			cursor = excluded.cursor,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare set-cursor statement: %w", err)
	}

	s.topStmt, err = s.db.Prepare(`
		SELECT style_id, SUM(resolutions), SUM(applied), MAX(day)
		FROM style_stats
		WHERE day >= ?
		GROUP BY style_id
		ORDER BY SUM(resolutions) DESC, style_id ASC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare top statement: %w", err)
	}

	return nil
}

// Apply upserts the given increments and advances the rollup cursor
// in a single transaction. A cursor that does not move forward is
// rejected, so a stale or repeated rollup can never double-count.
func (s *SQLiteBackend) Apply(ctx context.Context, counts []usage.DayCount, cursor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return usage.NewStorageError("stats", "apply", err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.StmtContext(ctx, s.cursorStmt).QueryRowContext(ctx).Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return usage.NewStorageError("stats", "apply", err)
	}
	if cursor <= current {
		return usage.NewStorageError("stats", "apply",
			fmt.Errorf("cursor %d does not advance past %d", cursor, current))
	}

	now := time.Now().Unix()
	upsert := tx.StmtContext(ctx, s.upsertStmt)
	for _, count := range counts {
		_, err := upsert.ExecContext(ctx,
			count.StyleID, count.Day,
			count.Resolutions, count.Applied, count.PromptChars,
			now,
		)
		if err != nil {
			return usage.NewStorageError("stats", "apply", err)
		}
	}

	if _, err := tx.StmtContext(ctx, s.setCursorStmt).ExecContext(ctx, cursor, now); err != nil {
		return usage.NewStorageError("stats", "apply", err)
	}

	if err := tx.Commit(); err != nil {
		return usage.NewStorageError("stats", "apply", err)
	}

	return nil
}

// Cursor returns the sequence of the last event folded into the
// rollups, 0 when no rollup has run.
func (s *SQLiteBackend) Cursor(ctx context.Context) (int64, error) {
	var cursor int64
	err := s.cursorStmt.QueryRowContext(ctx).Scan(&cursor)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, usage.NewStorageError("stats", "cursor", err)
	}
	return cursor, nil
}

// TopStyles returns the most-resolved styles since the given day,
// ordered by resolution count with style id as the tie-breaker.
func (s *SQLiteBackend) TopStyles(ctx context.Context, sinceDay string, limit int) ([]usage.StyleTotal, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.topStmt.QueryContext(ctx, sinceDay, limit)
	if err != nil {
		return nil, usage.NewStorageError("stats", "top_styles", err)
	}
	defer rows.Close()

	totals := []usage.StyleTotal{}
	for rows.Next() {
		var total usage.StyleTotal
		if err := rows.Scan(&total.StyleID, &total.Resolutions, &total.Applied, &total.LastDay); err != nil {
			return nil, usage.NewStorageError("stats", "top_styles", err)
		}
		totals = append(totals, total)
	}
	if err := rows.Err(); err != nil {
		return nil, usage.NewStorageError("stats", "top_styles", err)
	}

	return totals, nil
}

// SizeBytes reports the database size from the SQLite page counters.
func (s *SQLiteBackend) SizeBytes() (int64, error) {
	var size int64
	err := s.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&size)
	if err != nil {
		return 0, usage.NewStorageError("stats", "size", err)
	}
	return size, nil
}

// Ping verifies the database is reachable.
func (s *SQLiteBackend) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return usage.NewStorageError("stats", "ping", err)
	}
	return nil
}

// DB exposes the underlying handle for health checks.
func (s *SQLiteBackend) DB() *sql.DB {
	return s.db
}

// Close stops the checkpoint loop, runs a final truncating
// checkpoint, and closes the database. Safe to call more than once.
func (s *SQLiteBackend) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		if s.upsertStmt != nil {
			s.upsertStmt.Close()
		}
		if s.cursorStmt != nil {
			s.cursorStmt.Close()
		}
		if s.setCursorStmt != nil {
			s.setCursorStmt.Close()
		}
		if s.topStmt != nil {
			s.topStmt.Close()
		}

		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		closeErr = s.db.Close()

		s.logger.Info("usage stat store closed")
	})

	return closeErr
}

// checkpointLoop runs periodic WAL checkpoints.
func (s *SQLiteBackend) checkpointLoop() {
	ticker := time.NewTicker(s.config.CheckpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)"); err != nil {
				s.logger.Warn("WAL checkpoint failed", "error", err)
			}
		case <-s.done:
			return
		}
	}
}
