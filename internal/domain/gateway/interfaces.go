package gateway

import (
	"context"
	"encoding/json"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/preference"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/server"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/session"
)

// UpstreamClient talks the tool protocol to one upstream server per call.
// Implementations enforce their own transport; the resolver only sees tool
// lists and invocation results. Connectivity is never cached between calls.
type UpstreamClient interface {
	ListTools(ctx context.Context, srv server.Server) ([]ToolInfo, error)
	Invoke(ctx context.Context, srv server.Server, toolName string, args json.RawMessage) (*InvokeResult, error)
}

// ServerDirectory supplies the project's configured upstream servers.
type ServerDirectory interface {
	ListByProject(ctx context.Context, projectID string) ([]server.Server, error)
	Get(ctx context.Context, projectID, id string) (*server.Server, error)
}

// PreferenceFilter applies the default-enabled rule to tool visibility.
type PreferenceFilter interface {
	IsEnabled(ctx context.Context, projectID, serverID, toolName string) (bool, error)
	ProjectView(ctx context.Context, projectID string) (*preference.View, error)
}

// ModeSource supplies a project's gateway mode.
type ModeSource interface {
	UnifiedEnabled(ctx context.Context, projectID string) (bool, error)
}

// CallRecorder attributes invocation outcomes to client sessions.
type CallRecorder interface {
	RecordCall(ctx context.Context, sessionID string, outcome session.Outcome) error
}
