package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the usage event schema.
//
// seq is declared AUTOINCREMENT so sequence numbers are never reused
// after retention pruning; the rollup cursor depends on that.
const Schema = `
-- Raw usage events, one row per style resolution
CREATE TABLE IF NOT EXISTS usage_events (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    request_id TEXT,
    recorded_at TIMESTAMP NOT NULL,
    style_id TEXT,
    variant TEXT,
    template_kind TEXT,
    applied BOOLEAN NOT NULL,
    outcome TEXT NOT NULL,
    prompt_chars INTEGER NOT NULL,
    catalog_version TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for retention pruning and per-style queries
CREATE INDEX IF NOT EXISTS idx_usage_events_recorded_at ON usage_events(recorded_at);
CREATE INDEX IF NOT EXISTS idx_usage_events_style_id ON usage_events(style_id);
CREATE INDEX IF NOT EXISTS idx_usage_events_outcome ON usage_events(outcome);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
