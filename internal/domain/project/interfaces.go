package project

import (
	"context"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/role"
)

// Repository provides persistence for projects and memberships.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	SetUnifiedEnabled(ctx context.Context, id string, enabled bool) error
	Delete(ctx context.Context, id string) error
	UpsertMember(ctx context.Context, member *Member) error
	GetMemberRole(ctx context.Context, projectID, actorID string) (role.Role, error)
}
