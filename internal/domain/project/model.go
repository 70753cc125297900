package project

import (
	"time"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/role"
)

// Project is the tenancy boundary. It owns servers, tool preferences,
// client sessions, and role assignments. UnifiedEnabled selects whether the
// project's upstream servers are exposed individually or merged into one
// namespaced surface.
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	UnifiedEnabled bool      `json:"unified_enabled"`
	CreatedAt      time.Time `json:"created_at"`
}

// Member binds an actor to a project with a role. The same actor may hold
// different roles in different projects.
type Member struct {
	ProjectID string    `json:"project_id"`
	ActorID   string    `json:"actor_id"`
	Role      role.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
