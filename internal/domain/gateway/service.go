package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/server"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/session"
	"github.com/hihenen/mcp-orch-sub003/internal/metrics"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
)

// NamespaceSeparator joins server and tool names in unified mode.
const NamespaceSeparator = "."

const maxConcurrentFetches = 8

// Service resolves a project's effective tool surface and dispatches
// invocations to the owning upstream server.
type Service struct {
	servers  ServerDirectory
	upstream UpstreamClient
	prefs    PreferenceFilter
	projects ModeSource
	sessions CallRecorder
	timeout  time.Duration
	logger   *slog.Logger
}

// NewService creates a new gateway service. timeout bounds every individual
// upstream call so one unresponsive server can't stall the rest.
func NewService(
	servers ServerDirectory,
	upstream UpstreamClient,
	prefs PreferenceFilter,
	projects ModeSource,
	sessions CallRecorder,
	timeout time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		servers:  servers,
		upstream: upstream,
		prefs:    prefs,
		projects: projects,
		sessions: sessions,
		timeout:  timeout,
		logger:   logger,
	}
}

// EffectiveName returns the display name of a tool under the given mode.
// The namespaced form is applied whenever unified mode is on, collision or
// not, so a tool's identity is stable as sibling servers come and go.
func EffectiveName(unified bool, serverName, toolName string) string {
	if !unified {
		return toolName
	}
	return serverName + NamespaceSeparator + toolName
}

// Resolve produces the project's effective tool list. Tool lists are fetched
// live and concurrently from every configured server; a failing server
// contributes an empty set plus an error marker, never aborting the call.
// Disabled tools are omitted entirely. serverID, when non-empty, restricts
// resolution to that one server; an id the project doesn't have is
// server.ErrServerNotFound rather than an empty result.
func (s *Service) Resolve(ctx context.Context, projectID, serverID string) (*ResolveResult, error) {
	unified, err := s.projects.UnifiedEnabled(ctx, projectID)
	if err != nil {
		return nil, err
	}

	servers, err := s.servers.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing servers: %w", err)
	}
	if serverID != "" {
		filtered := servers[:0]
		for _, srv := range servers {
			if srv.ID == serverID {
				filtered = append(filtered, srv)
			}
		}
		if len(filtered) == 0 {
			return nil, server.ErrServerNotFound
		}
		servers = filtered
	}

	// Stable enumeration order so resolution output is deterministic.
	sort.Slice(servers, func(i, j int) bool { return servers[i].Name < servers[j].Name })

	view, err := s.prefs.ProjectView(ctx, projectID)
	if err != nil {
		return nil, err
	}

	type fetch struct {
		tools []ToolInfo
		err   error
	}
	fetches := make([]fetch, len(servers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, srv := range servers {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()

			tools, err := s.upstream.ListTools(callCtx, srv)
			fetches[i] = fetch{tools: tools, err: err}
			// Errors are isolated per server, never propagated to the group.
			return nil
		})
	}
	_ = g.Wait()

	result := &ResolveResult{
		Unified: unified,
		Tools:   []EffectiveTool{},
		Servers: make([]ServerStatus, 0, len(servers)),
	}

	for i, srv := range servers {
		status := ServerStatus{ServerID: srv.ID, ServerName: srv.Name}
		if fetches[i].err != nil {
			metrics.UpstreamListFailures.Inc()
			status.Error = fetches[i].err.Error()
			if s.logger != nil {
				s.logger.Warn("tool list fetch failed", "server", srv.Name, "error", fetches[i].err)
			}
			result.Servers = append(result.Servers, status)
			continue
		}

		tools := fetches[i].tools
		sort.Slice(tools, func(a, b int) bool { return tools[a].Name < tools[b].Name })
		for _, tool := range tools {
			if !view.Enabled(srv.ID, tool.Name) {
				continue
			}
			result.Tools = append(result.Tools, EffectiveTool{
				Name:        EffectiveName(unified, srv.Name, tool.Name),
				ServerID:    srv.ID,
				ServerName:  srv.Name,
				Tool:        tool.Name,
				Description: tool.Description,
				InputSchema: tool.InputSchema,
			})
			status.ToolCount++
		}
		result.Servers = append(result.Servers, status)
	}

	return result, nil
}

// Dispatch resolves an effective tool name back to (server, tool), re-checks
// visibility, and forwards the invocation. Counters on the attributed session
// are only touched once the outcome is known.
func (s *Service) Dispatch(ctx context.Context, projectID string, req DispatchRequest) (*DispatchResult, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidInput
	}

	unified, err := s.projects.UnifiedEnabled(ctx, projectID)
	if err != nil {
		return nil, err
	}

	srv, toolName, err := s.resolveTarget(ctx, projectID, unified, req)
	if err != nil {
		return nil, err
	}

	enabled, err := s.prefs.IsEnabled(ctx, projectID, srv.ID, toolName)
	if err != nil {
		return nil, err
	}
	if !enabled {
		// Disabled means invisible to execution, indistinguishable from absent.
		return nil, ErrUnknownTool
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.upstream.Invoke(callCtx, *srv, toolName, req.Arguments)
	s.recordOutcome(ctx, req.SessionID, err == nil && (res == nil || !res.IsError))
	if err != nil {
		metrics.DispatchTotal.WithLabelValues("upstream_error").Inc()
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, srv.Name, err)
	}

	if res.IsError {
		metrics.DispatchTotal.WithLabelValues("tool_error").Inc()
	} else {
		metrics.DispatchTotal.WithLabelValues("success").Inc()
	}

	return &DispatchResult{
		ServerID:   srv.ID,
		ServerName: srv.Name,
		Tool:       toolName,
		Content:    res.Content,
		IsError:    res.IsError,
	}, nil
}

// resolveTarget reverses the namespacing rule. Unified mode matches the
// "{server_name}." prefix against the project's servers; individual mode
// takes the explicit server scope and the bare tool name.
func (s *Service) resolveTarget(ctx context.Context, projectID string, unified bool, req DispatchRequest) (*server.Server, string, error) {
	if !unified {
		if req.ServerID == "" {
			return nil, "", ErrServerRequired
		}
		srv, err := s.servers.Get(ctx, projectID, req.ServerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) || errors.Is(err, server.ErrServerNotFound) {
				return nil, "", ErrUnknownTool
			}
			return nil, "", fmt.Errorf("resolving server: %w", err)
		}
		return srv, req.Name, nil
	}

	servers, err := s.servers.ListByProject(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("listing servers: %w", err)
	}
	for _, srv := range servers {
		prefix := srv.Name + NamespaceSeparator
		if tool, ok := strings.CutPrefix(req.Name, prefix); ok && tool != "" {
			return &srv, tool, nil
		}
	}
	return nil, "", ErrUnknownTool
}

func (s *Service) recordOutcome(ctx context.Context, sessionID string, success bool) {
	if sessionID == "" || s.sessions == nil {
		return
	}
	outcome := session.OutcomeFailure
	if success {
		outcome = session.OutcomeSuccess
	}
	// The outcome is known at this point; a caller abort must not lose it.
	ctx = context.WithoutCancel(ctx)
	if err := s.sessions.RecordCall(ctx, sessionID, outcome); err != nil && s.logger != nil {
		s.logger.Warn("failed to record call", "session", sessionID, "error", err)
	}
}
