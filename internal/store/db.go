// Package store persists analysis history to a local SQLite database at
// .ripple/ripple.db. Report payloads are zstd-compressed JSON.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"ripple/internal/logging"
)

// DB wraps the analysis history database.
type DB struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	analysis_id   TEXT PRIMARY KEY,
	source_repo   TEXT NOT NULL,
	source_commit TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	repo_count    INTEGER NOT NULL,
	max_risk      TEXT NOT NULL,
	payload       BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_repo_commit
	ON analyses(source_repo, source_commit);
CREATE INDEX IF NOT EXISTS idx_analyses_created
	ON analyses(created_at);
`

// Open opens or creates the database under root/.ripple.
func Open(root string, logger *logging.Logger) (*DB, error) {
	dir := filepath.Join(root, ".ripple")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .ripple directory: %w", err)
	}

	dbPath := filepath.Join(dir, "ripple.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("analysis store ready", map[string]interface{}{"path": dbPath})

	return &DB{conn: conn, logger: logger, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
