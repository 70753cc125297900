package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/preference"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
)

// PreferenceRepository implements preference.Repository for SQLite
type PreferenceRepository struct {
	db *DB
}

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Upsert writes a preference record atomically. Writes on the same triple
// are linearized by the ON CONFLICT clause; created_at survives updates so
// the record keeps its original creation time.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *preference.ToolPreference) error {
	query := `
		INSERT INTO tool_preferences (project_id, server_id, tool_name, is_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, server_id, tool_name)
		DO UPDATE SET is_enabled = excluded.is_enabled, updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		pref.ProjectID,
		pref.ServerID,
		pref.ToolName,
		pref.Enabled,
		pref.CreatedAt,
		pref.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to upsert preference: %w", err)
	}

	return nil
}

// Get retrieves one explicit record
func (r *PreferenceRepository) Get(ctx context.Context, projectID, serverID, toolName string) (*preference.ToolPreference, error) {
	query := `
		SELECT project_id, server_id, tool_name, is_enabled, created_at, updated_at
		FROM tool_preferences
		WHERE project_id = ? AND server_id = ? AND tool_name = ?
	`

	var pref preference.ToolPreference
	err := r.db.QueryRowContext(ctx, query, projectID, serverID, toolName).Scan(
		&pref.ProjectID,
		&pref.ServerID,
		&pref.ToolName,
		&pref.Enabled,
		&pref.CreatedAt,
		&pref.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}

	return &pref, nil
}

// List returns all explicit records for a project, optionally one server's
func (r *PreferenceRepository) List(ctx context.Context, projectID, serverID string) ([]preference.ToolPreference, error) {
	query := `
		SELECT project_id, server_id, tool_name, is_enabled, created_at, updated_at
		FROM tool_preferences
		WHERE project_id = ?
	`
	args := []any{projectID}
	if serverID != "" {
		query += ` AND server_id = ?`
		args = append(args, serverID)
	}
	query += ` ORDER BY server_id ASC, tool_name ASC`

	return r.queryPreferences(ctx, query, args...)
}

// ListDisabled returns only the disabling records for a project
func (r *PreferenceRepository) ListDisabled(ctx context.Context, projectID string) ([]preference.ToolPreference, error) {
	query := `
		SELECT project_id, server_id, tool_name, is_enabled, created_at, updated_at
		FROM tool_preferences
		WHERE project_id = ? AND is_enabled = 0
	`
	return r.queryPreferences(ctx, query, projectID)
}

// Delete removes an explicit record. A missing record is reported as
// repository.ErrNotFound; the service layer treats that as success.
func (r *PreferenceRepository) Delete(ctx context.Context, projectID, serverID, toolName string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tool_preferences WHERE project_id = ? AND server_id = ? AND tool_name = ?`,
		projectID, serverID, toolName)
	if err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *PreferenceRepository) queryPreferences(ctx context.Context, query string, args ...any) ([]preference.ToolPreference, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	var prefs []preference.ToolPreference
	for rows.Next() {
		var pref preference.ToolPreference
		if err := rows.Scan(
			&pref.ProjectID,
			&pref.ServerID,
			&pref.ToolName,
			&pref.Enabled,
			&pref.CreatedAt,
			&pref.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, pref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preferences: %w", err)
	}

	return prefs, nil
}
