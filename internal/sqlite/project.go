package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/project"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/role"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	query := `
		INSERT INTO projects (id, name, unified_enabled, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, proj.ID, proj.Name, proj.UnifiedEnabled, proj.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `
		SELECT id, name, unified_enabled, created_at
		FROM projects
		WHERE id = ?
	`

	var proj project.Project
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&proj.ID,
		&proj.Name,
		&proj.UnifiedEnabled,
		&proj.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &proj, nil
}

// SetUnifiedEnabled updates the gateway mode flag
func (r *ProjectRepository) SetUnifiedEnabled(ctx context.Context, id string, enabled bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET unified_enabled = ? WHERE id = ?`, enabled, id)
	if err != nil {
		return fmt.Errorf("failed to set gateway mode: %w", err)
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

// Delete removes a project and its owned rows. Client sessions are kept:
// they carry plain identifiers, not ownership edges.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
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

// UpsertMember creates or updates a membership
func (r *ProjectRepository) UpsertMember(ctx context.Context, member *project.Member) error {
	query := `
		INSERT INTO project_members (project_id, actor_id, role, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id, actor_id) DO UPDATE SET role = excluded.role
	`

	_, err := r.db.ExecContext(ctx, query,
		member.ProjectID, member.ActorID, string(member.Role), member.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to upsert member: %w", err)
	}

	return nil
}

// GetMemberRole returns an actor's role in a project
func (r *ProjectRepository) GetMemberRole(ctx context.Context, projectID, actorID string) (role.Role, error) {
	query := `
		SELECT role FROM project_members
		WHERE project_id = ? AND actor_id = ?
	`

	var raw string
	err := r.db.QueryRowContext(ctx, query, projectID, actorID).Scan(&raw)
	if err == sql.ErrNoRows {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get member role: %w", err)
	}

	return role.Role(raw), nil
}
