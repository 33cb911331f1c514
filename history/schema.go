package history

const schema = `
PRAGMA foreign_keys = ON;

-- One row per invocation of the merge pipeline.
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at INTEGER NOT NULL,   -- unix nanoseconds
    inputs TEXT NOT NULL,          -- JSON array of raw inputs
    output TEXT NOT NULL,
    codec TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL CHECK (status IN ('merged', 'failed', 'dry-run')),
    error TEXT NOT NULL DEFAULT '',
    file_count INTEGER NOT NULL DEFAULT 0,
    page_count INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

-- Files collected for a run, in merge order.
CREATE TABLE IF NOT EXISTS run_files (
    run_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    path TEXT NOT NULL,
    PRIMARY KEY (run_id, position),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

-- Warnings raised while collecting, in order.
CREATE TABLE IF NOT EXISTS run_warnings (
    run_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    message TEXT NOT NULL,
    PRIMARY KEY (run_id, position),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);
`
