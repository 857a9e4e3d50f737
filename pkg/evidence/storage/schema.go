package storage

// SchemaVersion is the current verdict table schema version.
const SchemaVersion = 1

// Schema creates the verdict table and its indexes.
const Schema = `
CREATE TABLE IF NOT EXISTS verdicts (
	id             TEXT PRIMARY KEY,
	request_id     TEXT NOT NULL DEFAULT '',
	stage          TEXT NOT NULL,
	passed         INTEGER NOT NULL,
	failed_checks  TEXT NOT NULL DEFAULT '[]',
	warnings       TEXT NOT NULL DEFAULT '[]',
	actions_taken  TEXT NOT NULL DEFAULT '[]',
	text_modified  INTEGER NOT NULL DEFAULT 0,
	input_hash     TEXT NOT NULL,
	output_hash    TEXT NOT NULL,
	duration_us    INTEGER NOT NULL,
	recorded_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_verdicts_recorded_at ON verdicts(recorded_at);
CREATE INDEX IF NOT EXISTS idx_verdicts_stage ON verdicts(stage);
CREATE INDEX IF NOT EXISTS idx_verdicts_request_id ON verdicts(request_id);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);
`

const insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

const getSchemaVersion = `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`
