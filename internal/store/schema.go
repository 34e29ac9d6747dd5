package store

// Sessions are keyed by file path: session_id derives from the file name, so
// two projects can hold identically named .jsonl files.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    file_path             TEXT PRIMARY KEY,
    session_id            TEXT NOT NULL,
    actual_session_id     TEXT,
    project               TEXT NOT NULL,
    message_count         INTEGER,
    first_message_time    TEXT,
    last_message_time     TEXT,
    last_modified         TEXT,
    has_tool_use          INTEGER NOT NULL DEFAULT 0,
    has_errors            INTEGER NOT NULL DEFAULT 0,
    summary               TEXT,
    input_tokens          INTEGER,
    output_tokens         INTEGER,
    cache_creation_tokens INTEGER,
    cache_read_tokens     INTEGER,
    total_tokens          INTEGER,
    cost_usd              REAL,
    duration_ms           INTEGER,
    file_mtime_ns         INTEGER NOT NULL,
    file_size             INTEGER NOT NULL,
    parsed_at             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(project);
CREATE INDEX IF NOT EXISTS idx_sessions_session ON sessions(session_id);
CREATE INDEX IF NOT EXISTS idx_sessions_first ON sessions(first_message_time);
`
