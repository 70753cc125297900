package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"projects",
		"project_members",
		"servers",
		"tool_preferences",
		"client_sessions",
		"api_keys",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestServerNameUnique verifies the per-project server name constraint.
func TestServerNameUnique(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO projects (id, name) VALUES ('p1', 'One')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO projects (id, name) VALUES ('p2', 'Two')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO servers (id, project_id, name, endpoint) VALUES ('s1', 'p1', 'alpha', 'http://a')`)
	require.NoError(t, err)

	// Same name in the same project is rejected.
	_, err = db.ExecContext(ctx,
		`INSERT INTO servers (id, project_id, name, endpoint) VALUES ('s2', 'p1', 'alpha', 'http://b')`)
	require.Error(t, err)
	require.True(t, isUniqueViolation(err))

	// Same name in another project is fine.
	_, err = db.ExecContext(ctx,
		`INSERT INTO servers (id, project_id, name, endpoint) VALUES ('s3', 'p2', 'alpha', 'http://c')`)
	require.NoError(t, err)
}

// TestSessionSurvivesServerDelete verifies sessions keep no foreign key to
// servers so history outlives server removal.
func TestSessionSurvivesServerDelete(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO projects (id, name) VALUES ('p1', 'One')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO servers (id, project_id, name, endpoint) VALUES ('s1', 'p1', 'alpha', 'http://a')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		INSERT INTO client_sessions (id, project_id, server_id, client_type, status, connected_at, last_activity_at)
		VALUES ('sess1', 'p1', 's1', 'cli', 'active', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `DELETE FROM servers WHERE id = 's1'`)
	require.NoError(t, err)

	var count int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM client_sessions WHERE id = 'sess1'`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

// TestProjectDeleteCascades verifies project deletion removes members,
// servers, and preferences.
func TestProjectDeleteCascades(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO projects (id, name) VALUES ('p1', 'One')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO project_members (project_id, actor_id, role) VALUES ('p1', 'u1', 'owner')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO servers (id, project_id, name, endpoint) VALUES ('s1', 'p1', 'alpha', 'http://a')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		INSERT INTO tool_preferences (project_id, server_id, tool_name, is_enabled, created_at, updated_at)
		VALUES ('p1', 's1', 'read', 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `DELETE FROM projects WHERE id = 'p1'`)
	require.NoError(t, err)

	for _, table := range []string{"project_members", "servers", "tool_preferences"} {
		var count int
		err = db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+table+` WHERE project_id = 'p1'`).Scan(&count)
		require.NoError(t, err)
		require.Equal(t, 0, count, "rows left in %s after cascade", table)
	}
}
