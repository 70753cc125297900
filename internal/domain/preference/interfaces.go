package preference

import (
	"context"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/server"
)

// Repository provides persistence for tool preference records. Upsert must be
// atomic on the (project, server, tool) triple: concurrent writers race on
// last-write-wins with updated_at reflecting true write order, never through a
// client-side read-modify-write window.
type Repository interface {
	Upsert(ctx context.Context, pref *ToolPreference) error
	Get(ctx context.Context, projectID, serverID, toolName string) (*ToolPreference, error)
	List(ctx context.Context, projectID, serverID string) ([]ToolPreference, error)
	Delete(ctx context.Context, projectID, serverID, toolName string) error
	ListDisabled(ctx context.Context, projectID string) ([]ToolPreference, error)
}

// ServerDirectory validates server references against the project's registry.
type ServerDirectory interface {
	Get(ctx context.Context, projectID, id string) (*server.Server, error)
}
