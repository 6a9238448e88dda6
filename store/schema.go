package store

// schemaSQL is the DDL for the extraction cache. Every statement is
// idempotent so the schema can be applied to an existing database.
const schemaSQL = `
-- Extraction results keyed by file path, with hash-based change detection
CREATE TABLE IF NOT EXISTS extractions (
    id INTEGER PRIMARY KEY,
    path TEXT NOT NULL UNIQUE,
    filename TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    method TEXT NOT NULL,
    abstract TEXT,
    found INTEGER NOT NULL DEFAULT 0,
    error TEXT,
    word_count INTEGER DEFAULT 0,
    elapsed_ms INTEGER DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_extractions_hash ON extractions(content_hash);
CREATE INDEX IF NOT EXISTS idx_extractions_found ON extractions(found);
`
