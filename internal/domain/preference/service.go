package preference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/server"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
)

// Service handles tool preference operations. All execution and listing
// paths consult IsEnabled or a View; nothing outside this package interprets
// record presence directly.
type Service struct {
	repo    Repository
	servers ServerDirectory
	logger  *slog.Logger
}

// NewService creates a new preference service.
func NewService(repo Repository, servers ServerDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, servers: servers, logger: logger}
}

// List returns the project's explicit preference records, optionally filtered
// to one server. Tools without a record are not represented here; callers
// needing effective state use IsEnabled or ProjectView.
func (s *Service) List(ctx context.Context, projectID, serverID string) ([]ToolPreference, error) {
	return s.repo.List(ctx, projectID, serverID)
}

// SetOne upserts a single preference record. Safe under concurrent calls for
// different tools; concurrent calls on the same triple are linearized by the
// store's atomic upsert.
func (s *Service) SetOne(ctx context.Context, projectID, serverID, toolName string, enabled bool) (*ToolPreference, error) {
	if strings.TrimSpace(serverID) == "" || strings.TrimSpace(toolName) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.servers.Get(ctx, projectID, serverID); err != nil {
		if errors.Is(err, server.ErrServerNotFound) {
			return nil, ErrUnknownServer
		}
		return nil, fmt.Errorf("checking server: %w", err)
	}

	now := time.Now()
	pref := &ToolPreference{
		ProjectID: projectID,
		ServerID:  serverID,
		ToolName:  toolName,
		Enabled:   enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, pref); err != nil {
		return nil, fmt.Errorf("upserting preference: %w", err)
	}

	// Re-read so the caller sees the stored record, including the original
	// created_at when the row already existed.
	stored, err := s.repo.Get(ctx, projectID, serverID, toolName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// A concurrent delete won the race after the upsert; the write
			// itself succeeded, so hand back what was written.
			return pref, nil
		}
		return nil, fmt.Errorf("reloading preference: %w", err)
	}
	return stored, nil
}

// SetBulk applies a batch of preference changes. Entries are independent,
// idempotent, and order-free; a failing entry is reported in the summary
// without rolling back or stopping its siblings.
func (s *Service) SetBulk(ctx context.Context, projectID string, entries []BulkEntry) (*BulkSummary, error) {
	summary := &BulkSummary{}
	for _, entry := range entries {
		pref, err := s.SetOne(ctx, projectID, entry.ServerID, entry.ToolName, entry.Enabled)
		if err != nil {
			summary.Failed = append(summary.Failed, BulkFailure{
				ServerID: entry.ServerID,
				ToolName: entry.ToolName,
				Reason:   err.Error(),
			})
			continue
		}
		summary.Applied = append(summary.Applied, *pref)
	}

	if s.logger != nil && len(summary.Failed) > 0 {
		s.logger.Warn("bulk preference update partially failed",
			"project", projectID,
			"applied", len(summary.Applied),
			"failed", len(summary.Failed))
	}
	return summary, nil
}

// Delete removes an explicit record, reverting the tool to default-enabled.
// Deleting a record that doesn't exist is not an error.
func (s *Service) Delete(ctx context.Context, projectID, serverID, toolName string) error {
	err := s.repo.Delete(ctx, projectID, serverID, toolName)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("deleting preference: %w", err)
	}
	return nil
}

// IsEnabled combines the default-enabled rule with any explicit record. This
// is the read every dispatch path uses.
func (s *Service) IsEnabled(ctx context.Context, projectID, serverID, toolName string) (bool, error) {
	pref, err := s.repo.Get(ctx, projectID, serverID, toolName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("getting preference: %w", err)
	}
	return pref.Enabled, nil
}

// ProjectView snapshots the project's disabled set in one query for
// filtering whole tool lists. The view applies the same default rule as
// IsEnabled and is only valid for the lifetime of one resolution.
func (s *Service) ProjectView(ctx context.Context, projectID string) (*View, error) {
	disabled, err := s.repo.ListDisabled(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading disabled tools: %w", err)
	}

	view := &View{disabled: make(map[prefKey]struct{}, len(disabled))}
	for _, pref := range disabled {
		view.disabled[prefKey{serverID: pref.ServerID, toolName: pref.ToolName}] = struct{}{}
	}
	return view, nil
}
