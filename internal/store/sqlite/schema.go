package sqlite

// SchemaVersion is the ledger layout this package reads and writes.
const SchemaVersion = "1"

// initialSchema holds the migration table and the bump ledger.
const initialSchema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bumps (
    id TEXT PRIMARY KEY,
    operation TEXT NOT NULL,
    old_version TEXT NOT NULL,
    new_version TEXT NOT NULL,
    file TEXT NOT NULL,
    applied_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bumps_applied_at ON bumps(applied_at);
`
