package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
)

// Server names become namespace prefixes in unified mode; dots are excluded
// so "{server}.{tool}" reverses unambiguously.
var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Service handles the upstream server registry for projects.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new server registry service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RegisterRequest defines server registration inputs.
type RegisterRequest struct {
	ProjectID string
	Name      string
	Endpoint  string
}

// Register adds an upstream server to a project.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Server, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || strings.TrimSpace(req.Endpoint) == "" {
		return nil, ErrInvalidInput
	}
	if !namePattern.MatchString(name) {
		return nil, ErrInvalidName
	}
	if _, err := url.ParseRequestURI(req.Endpoint); err != nil {
		return nil, fmt.Errorf("%w: bad endpoint: %v", ErrInvalidInput, err)
	}

	srv := &Server{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		Name:      name,
		Endpoint:  req.Endpoint,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, srv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("registering server: %w", err)
	}
	return srv, nil
}

// Get fetches a server scoped to a project.
func (s *Service) Get(ctx context.Context, projectID, id string) (*Server, error) {
	srv, err := s.repo.Get(ctx, projectID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServerNotFound
		}
		return nil, fmt.Errorf("getting server: %w", err)
	}
	return srv, nil
}

// ListByProject returns the project's configured servers.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]Server, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// Delete removes a server record. Historical client sessions and preference
// rows keep the server id as a plain value; stale preference rows simply
// stop matching anything.
func (s *Service) Delete(ctx context.Context, projectID, id string) error {
	if err := s.repo.Delete(ctx, projectID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrServerNotFound
		}
		return fmt.Errorf("deleting server: %w", err)
	}
	return nil
}
