package storage

import (
	"database/sql"
	"fmt"
	"time"
)

const schemaVersion = "1.1"

// CreateSchema creates all tables and indexes. All schema creation succeeds
// or fails together. Must be called with PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"laws", createLawsTable},
		{"reference_edges", createReferenceEdgesTable},
		{"scan_failures", createScanFailuresTable},
		{"store_metadata", createStoreMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range schemaIndexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	bootstrapSQL := `
		INSERT OR IGNORE INTO store_metadata (key, value, updated_at) VALUES
			('schema_version', ?, ?),
			('last_scan', '', ?)
	`
	if _, err := tx.Exec(bootstrapSQL, schemaVersion, now, now); err != nil {
		return fmt.Errorf("failed to bootstrap store_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

const createLawsTable = `
CREATE TABLE IF NOT EXISTS laws (
    law_id         TEXT PRIMARY KEY,            -- e-Gov law ID, e.g. 320AC0000000046
    law_type       TEXT NOT NULL,               -- Act, CabinetOrder, ...
    title          TEXT NOT NULL,
    title_kana     TEXT NOT NULL DEFAULT '',
    abbreviation   TEXT NOT NULL DEFAULT '',
    law_num        TEXT NOT NULL DEFAULT '',    -- 法令番号 as written
    era            TEXT NOT NULL DEFAULT '',
    era_year       INTEGER NOT NULL DEFAULT 0,
    promulgated_at TEXT NOT NULL DEFAULT '',    -- RFC3339 date
    scanned_at     TEXT NOT NULL DEFAULT ''
)`

const createReferenceEdgesTable = `
CREATE TABLE IF NOT EXISTS reference_edges (
    reference_id     TEXT PRIMARY KEY,         -- UUID assigned at detection
    source_law_id    TEXT NOT NULL,
    source_division  TEXT NOT NULL DEFAULT '',
    source_article   TEXT NOT NULL,            -- normalized "base" or "base-branch"
    source_paragraph INTEGER NOT NULL DEFAULT 0,
    source_item      INTEGER NOT NULL DEFAULT 0,
    target_law_id    TEXT NOT NULL DEFAULT '', -- empty when unresolved
    target_article   TEXT NOT NULL DEFAULT '',
    target_paragraph INTEGER NOT NULL DEFAULT 0,
    target_item      INTEGER NOT NULL DEFAULT 0,
    range_start      TEXT NOT NULL DEFAULT '', -- set for range kind
    range_end        TEXT NOT NULL DEFAULT '',
    kind             TEXT NOT NULL,            -- internal|external|relative|range|structural|application|contextual
    pattern_type     TEXT NOT NULL,
    relation         TEXT NOT NULL DEFAULT '',
    source_text      TEXT NOT NULL,
    confidence       REAL NOT NULL,
    method           TEXT NOT NULL,            -- pattern|relative|oracle
    requires_review  INTEGER NOT NULL DEFAULT 0,
    oracle_verified  INTEGER NOT NULL DEFAULT 0,
    detected_at      TEXT NOT NULL,
    FOREIGN KEY (source_law_id) REFERENCES laws(law_id) ON DELETE CASCADE
)`

const createScanFailuresTable = `
CREATE TABLE IF NOT EXISTS scan_failures (
    law_id      TEXT NOT NULL,
    position    TEXT NOT NULL DEFAULT '',
    source_text TEXT NOT NULL DEFAULT '',
    error       TEXT NOT NULL,
    recorded_at TEXT NOT NULL
)`

const createStoreMetadataTable = `
CREATE TABLE IF NOT EXISTS store_metadata (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

var schemaIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_edges_source ON reference_edges(source_law_id, source_article)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_target ON reference_edges(target_law_id, target_article)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_kind ON reference_edges(kind)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_review ON reference_edges(requires_review)`,
	`CREATE INDEX IF NOT EXISTS idx_failures_law ON scan_failures(law_id)`,
}

// GetSchemaVersion retrieves the schema version, "0" for a new database.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='store_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check store_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM store_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in store_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}
