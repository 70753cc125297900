package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/role"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
)

// Service handles project and membership operations. It also serves as the
// identity collaborator for the gateway: RoleOf resolves an actor's role
// within a project for authorization at the boundary.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	ID      string
	Name    string
	OwnerID string
}

// Create creates a project and records the creating actor as its owner.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.OwnerID) == "" {
		return nil, ErrInvalidInput
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	proj := &Project{
		ID:        id,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	member := &Member{
		ProjectID: proj.ID,
		ActorID:   req.OwnerID,
		Role:      role.Owner,
		CreatedAt: proj.CreatedAt,
	}
	if err := s.repo.UpsertMember(ctx, member); err != nil {
		return nil, fmt.Errorf("adding owner: %w", err)
	}

	return proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// UnifiedEnabled returns the project's gateway mode.
func (s *Service) UnifiedEnabled(ctx context.Context, id string) (bool, error) {
	proj, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return proj.UnifiedEnabled, nil
}

// SetUnifiedEnabled toggles the gateway mode. Existing tool preference
// records are untouched; they stay keyed by server and apply in either mode.
func (s *Service) SetUnifiedEnabled(ctx context.Context, id string, enabled bool) error {
	if err := s.repo.SetUnifiedEnabled(ctx, id, enabled); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("setting gateway mode: %w", err)
	}
	return nil
}

// Delete removes a project. Historical client sessions keep their server and
// project identifiers as plain values, so they survive as usage history.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

// RoleOf resolves the actor's role in a project. A missing membership is
// reported as role.ErrNoAccess, distinct from an insufficient role.
func (s *Service) RoleOf(ctx context.Context, projectID, actorID string) (role.Role, error) {
	r, err := s.repo.GetMemberRole(ctx, projectID, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", role.ErrNoAccess
		}
		return "", fmt.Errorf("resolving role: %w", err)
	}
	return r, nil
}

// AddMember grants an actor a role in the project. The role string is
// normalized through role.Parse at the boundary before reaching here.
func (s *Service) AddMember(ctx context.Context, projectID, actorID string, r role.Role) (*Member, error) {
	if strings.TrimSpace(actorID) == "" || !r.Valid() {
		return nil, ErrInvalidInput
	}

	member := &Member{
		ProjectID: projectID,
		ActorID:   actorID,
		Role:      r,
		CreatedAt: time.Now(),
	}
	if err := s.repo.UpsertMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("adding member: %w", err)
	}
	return member, nil
}
