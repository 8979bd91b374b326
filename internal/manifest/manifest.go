// Package manifest tracks which artifacts each source index holds and the
// checksum they were last ingested with, so re-ingestion can skip unchanged
// content.
package manifest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

// Entry is one ingested artifact as recorded in the manifest.
type Entry struct {
	Category      vectorstore.SourceCategory
	ArtifactID    string
	Checksum      string
	FragmentCount int
	UpdatedAt     time.Time
}

// Manifest is a SQLite-backed artifact ledger.
type Manifest struct {
	db *sql.DB
}

// Open creates or opens the manifest database at the given path.
func Open(path string) (*Manifest, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening manifest database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging manifest database: %w", err)
	}

	m := &Manifest{db: db}
	if err := m.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running manifest migrations: %w", err)
	}
	return m, nil
}

// OpenMemory creates an in-memory manifest (useful for testing).
func OpenMemory() (*Manifest, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory manifest: %w", err)
	}
	m := &Manifest{db: db}
	if err := m.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running manifest migrations: %w", err)
	}
	return m, nil
}

// Close releases the underlying database handle.
func (m *Manifest) Close() error { return m.db.Close() }

func (m *Manifest) migrate() error {
	_, err := m.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
    category TEXT NOT NULL,
    artifact_id TEXT NOT NULL,
    checksum TEXT NOT NULL,
    fragment_count INTEGER NOT NULL DEFAULT 0,
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY(category, artifact_id)
);

CREATE INDEX IF NOT EXISTS idx_artifacts_category ON artifacts(category);
`

// Checksum returns the recorded checksum for an artifact, or "" if the
// artifact has never been ingested.
func (m *Manifest) Checksum(category vectorstore.SourceCategory, artifactID string) (string, error) {
	var checksum string
	err := m.db.QueryRow(
		`SELECT checksum FROM artifacts WHERE category = ? AND artifact_id = ?`,
		string(category), artifactID,
	).Scan(&checksum)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("looking up artifact %s/%s: %w", category, artifactID, err)
	}
	return checksum, nil
}

// Record upserts an artifact entry after a successful ingestion.
func (m *Manifest) Record(category vectorstore.SourceCategory, artifactID, checksum string, fragmentCount int) error {
	_, err := m.db.Exec(
		`INSERT INTO artifacts (category, artifact_id, checksum, fragment_count, updated_at)
		 VALUES (?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(category, artifact_id) DO UPDATE SET
		     checksum = excluded.checksum,
		     fragment_count = excluded.fragment_count,
		     updated_at = excluded.updated_at`,
		string(category), artifactID, checksum, fragmentCount,
	)
	if err != nil {
		return fmt.Errorf("recording artifact %s/%s: %w", category, artifactID, err)
	}
	return nil
}

// Delete removes an artifact entry, e.g. when its source disappeared.
func (m *Manifest) Delete(category vectorstore.SourceCategory, artifactID string) error {
	_, err := m.db.Exec(
		`DELETE FROM artifacts WHERE category = ? AND artifact_id = ?`,
		string(category), artifactID,
	)
	if err != nil {
		return fmt.Errorf("deleting artifact %s/%s: %w", category, artifactID, err)
	}
	return nil
}

// List returns all entries for a category ordered by artifact ID.
func (m *Manifest) List(category vectorstore.SourceCategory) ([]Entry, error) {
	rows, err := m.db.Query(
		`SELECT artifact_id, checksum, fragment_count, updated_at
		 FROM artifacts WHERE category = ? ORDER BY artifact_id`,
		string(category),
	)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts for %s: %w", category, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e := Entry{Category: category}
		if err := rows.Scan(&e.ArtifactID, &e.Checksum, &e.FragmentCount, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning artifact row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of recorded artifacts for a category.
func (m *Manifest) Count(category vectorstore.SourceCategory) (int, error) {
	var n int
	err := m.db.QueryRow(
		`SELECT COUNT(*) FROM artifacts WHERE category = ?`, string(category),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting artifacts for %s: %w", category, err)
	}
	return n, nil
}
