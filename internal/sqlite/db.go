package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema.
func (db *DB) RunMigrations() error {
	migration := `
-- Projects table
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    unified_enabled INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Project memberships (actor roles, per project)
CREATE TABLE IF NOT EXISTS project_members (
    project_id TEXT NOT NULL,
    actor_id TEXT NOT NULL,
    role TEXT NOT NULL CHECK(role IN ('reporter', 'developer', 'owner')),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (project_id, actor_id),
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_member_actor ON project_members(actor_id);

-- Upstream tool servers configured per project
CREATE TABLE IF NOT EXISTS servers (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    name TEXT NOT NULL,
    endpoint TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (project_id, name),
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_project_servers ON servers(project_id);

-- Explicit tool enable/disable overrides. Absence of a row means enabled.
-- server_id is intentionally not a foreign key: rows for a deleted server
-- become inert rather than blocking the delete.
CREATE TABLE IF NOT EXISTS tool_preferences (
    project_id TEXT NOT NULL,
    server_id TEXT NOT NULL,
    tool_name TEXT NOT NULL,
    is_enabled INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (project_id, server_id, tool_name),
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_project_preferences ON tool_preferences(project_id);

-- Client sessions. server_id is a soft reference for the same reason as
-- above: history must survive server deletion. Sessions are never deleted.
CREATE TABLE IF NOT EXISTS client_sessions (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    server_id TEXT NOT NULL,
    client_type TEXT NOT NULL,
    client_version TEXT,
    metadata TEXT,
    status TEXT NOT NULL CHECK(status IN ('active', 'disconnected')),
    connected_at TIMESTAMP NOT NULL,
    last_activity_at TIMESTAMP NOT NULL,
    disconnected_at TIMESTAMP,
    disconnect_reason TEXT,
    total_calls INTEGER NOT NULL DEFAULT 0,
    successful_calls INTEGER NOT NULL DEFAULT 0,
    failed_calls INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_project_sessions ON client_sessions(project_id);
CREATE INDEX IF NOT EXISTS idx_server_sessions ON client_sessions(project_id, server_id);
CREATE INDEX IF NOT EXISTS idx_session_status ON client_sessions(status);
CREATE INDEX IF NOT EXISTS idx_session_activity ON client_sessions(last_activity_at);

-- API keys for boundary authentication
CREATE TABLE IF NOT EXISTS api_keys (
    key_hash TEXT PRIMARY KEY,
    actor_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    description TEXT
);
CREATE INDEX IF NOT EXISTS idx_actor_keys ON api_keys(actor_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
