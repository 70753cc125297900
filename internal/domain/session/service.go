package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// Service handles client session lifecycle and usage counters.
type Service struct {
	repo        Repository
	idleTimeout time.Duration
	logger      *slog.Logger
}

// NewService creates a new session service. idleTimeout bounds how long a
// session may sit without activity before the sweep closes it.
func NewService(repo Repository, idleTimeout time.Duration, logger *slog.Logger) *Service {
	return &Service{repo: repo, idleTimeout: idleTimeout, logger: logger}
}

// OpenRequest describes a client connecting to an upstream server.
type OpenRequest struct {
	ProjectID     string
	ServerID      string
	ClientType    string
	ClientVersion string
	Metadata      map[string]string
}

// Open creates a new active session with zeroed counters.
func (s *Service) Open(ctx context.Context, req OpenRequest) (*ClientSession, error) {
	if strings.TrimSpace(req.ProjectID) == "" ||
		strings.TrimSpace(req.ServerID) == "" ||
		strings.TrimSpace(req.ClientType) == "" {
		return nil, ErrInvalidInput
	}

	now := time.Now()
	sess := &ClientSession{
		ID:             uuid.NewString(),
		ProjectID:      req.ProjectID,
		ServerID:       req.ServerID,
		ClientType:     req.ClientType,
		ClientVersion:  req.ClientVersion,
		Metadata:       req.Metadata,
		Status:         StatusActive,
		ConnectedAt:    now,
		LastActivityAt: now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// Get fetches a session scoped to a project.
func (s *Service) Get(ctx context.Context, projectID, id string) (*ClientSession, error) {
	sess, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

// RecordCall attributes one tool invocation to a session, bumping the total
// and the matching outcome counter. A call against a disconnected session is
// still counted: a dispatch can race a timeout-driven close, and dropping the
// telemetry would be worse than flagging it.
func (s *Service) RecordCall(ctx context.Context, sessionID string, outcome Outcome) error {
	if sessionID == "" {
		return ErrInvalidInput
	}

	status, err := s.repo.RecordCall(ctx, sessionID, outcome == OutcomeSuccess, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("recording call: %w", err)
	}

	if status == StatusDisconnected && s.logger != nil {
		s.logger.Warn("call recorded on disconnected session", "session", sessionID, "outcome", outcome)
	}
	return nil
}

// Close transitions a session to disconnected. Closing twice is a no-op,
// not an error; there is no way back to active.
func (s *Service) Close(ctx context.Context, projectID, sessionID, reason string) error {
	if sessionID == "" {
		return ErrInvalidInput
	}
	if reason == "" {
		reason = ReasonClient
	}

	closedNow, err := s.repo.Close(ctx, projectID, sessionID, reason, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("closing session: %w", err)
	}
	if !closedNow && s.logger != nil {
		s.logger.Debug("session already closed", "session", sessionID)
	}
	return nil
}

// ListActive returns the project's active sessions, optionally for one server.
func (s *Service) ListActive(ctx context.Context, projectID, serverID string) ([]ClientSession, error) {
	return s.repo.ListActive(ctx, projectID, serverID)
}

// ListRecent returns one page of session history, newest first.
func (s *Service) ListRecent(ctx context.Context, opts ListRecentOptions) (*Page, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultPageLimit
	}
	if opts.Limit > maxPageLimit {
		opts.Limit = maxPageLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.repo.ListRecent(ctx, opts)
}

// SweepIdle closes sessions whose last activity predates the idle threshold,
// recording reason "timeout". This is the only transition not driven by an
// explicit client action.
func (s *Service) SweepIdle(ctx context.Context) (int64, error) {
	if s.idleTimeout <= 0 {
		return 0, nil
	}

	now := time.Now()
	closed, err := s.repo.CloseIdle(ctx, now.Add(-s.idleTimeout), ReasonTimeout, now)
	if err != nil {
		return 0, fmt.Errorf("sweeping idle sessions: %w", err)
	}
	if closed > 0 && s.logger != nil {
		s.logger.Info("closed idle sessions", "count", closed)
	}
	return closed, nil
}
