package sqlite

// Schema contains the SQL statements to create the database schema.
// All statements are idempotent so the schema can be applied on every open.
const Schema = `
-- People table: one row per person in the snapshot
CREATE TABLE IF NOT EXISTS people (
    id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT,
    nickname TEXT,
    birth_date TEXT,
    death_date TEXT,
    gender TEXT,

    -- Free-form key/value data (JSON object)
    attributes TEXT,

    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

-- Relationships table: typed directed edges between people
CREATE TABLE IF NOT EXISTS relationships (
    id TEXT PRIMARY KEY,
    person1_id TEXT NOT NULL,
    person2_id TEXT NOT NULL,
    type TEXT NOT NULL,

    -- Free-form edge data (JSON object)
    attributes TEXT,

    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,

    FOREIGN KEY (person1_id) REFERENCES people(id) ON DELETE CASCADE,
    FOREIGN KEY (person2_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_relationships_person1 ON relationships(person1_id);
CREATE INDEX IF NOT EXISTS idx_relationships_person2 ON relationships(person2_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_relationships_triple ON relationships(person1_id, person2_id, type);

-- Snapshot metadata: single-row table recording the last save time
CREATE TABLE IF NOT EXISTS snapshot_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    saved_at TIMESTAMP NOT NULL
);

-- Audit log: append-only record of mutations
CREATE TABLE IF NOT EXISTS audit_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    actor TEXT NOT NULL,
    action TEXT NOT NULL,
    subject_id TEXT,
    detail TEXT,
    at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_at ON audit_log(at DESC);
`
