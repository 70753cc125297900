package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/server"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
)

// ServerRepository implements server.Repository for SQLite
type ServerRepository struct {
	db *DB
}

// NewServerRepository creates a new ServerRepository
func NewServerRepository(db *DB) *ServerRepository {
	return &ServerRepository{db: db}
}

// Create creates a new server record
func (r *ServerRepository) Create(ctx context.Context, srv *server.Server) error {
	query := `
		INSERT INTO servers (id, project_id, name, endpoint, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		srv.ID, srv.ProjectID, srv.Name, srv.Endpoint, srv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create server: %w", err)
	}

	return nil
}

// Get retrieves a server by ID within a project
func (r *ServerRepository) Get(ctx context.Context, projectID, id string) (*server.Server, error) {
	query := `
		SELECT id, project_id, name, endpoint, created_at
		FROM servers
		WHERE id = ? AND project_id = ?
	`

	var srv server.Server
	err := r.db.QueryRowContext(ctx, query, id, projectID).Scan(
		&srv.ID,
		&srv.ProjectID,
		&srv.Name,
		&srv.Endpoint,
		&srv.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get server: %w", err)
	}

	return &srv, nil
}

// ListByProject returns a project's servers ordered by name
func (r *ServerRepository) ListByProject(ctx context.Context, projectID string) ([]server.Server, error) {
	query := `
		SELECT id, project_id, name, endpoint, created_at
		FROM servers
		WHERE project_id = ?
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	defer rows.Close()

	var servers []server.Server
	for rows.Next() {
		var srv server.Server
		if err := rows.Scan(&srv.ID, &srv.ProjectID, &srv.Name, &srv.Endpoint, &srv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan server: %w", err)
		}
		servers = append(servers, srv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating servers: %w", err)
	}

	return servers, nil
}

// Delete removes a server record
func (r *ServerRepository) Delete(ctx context.Context, projectID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM servers WHERE id = ? AND project_id = ?`, id, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
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
