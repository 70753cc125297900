// Package mocks provides testify mocks for the domain repository contracts.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/preference"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/project"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/role"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/server"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/session"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) SetUnifiedEnabled(ctx context.Context, id string, enabled bool) error {
	args := m.Called(ctx, id, enabled)
	return args.Error(0)
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectRepository) UpsertMember(ctx context.Context, member *project.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *ProjectRepository) GetMemberRole(ctx context.Context, projectID, actorID string) (role.Role, error) {
	args := m.Called(ctx, projectID, actorID)
	return args.Get(0).(role.Role), args.Error(1)
}

// ServerRepository is a mock for server.Repository.
type ServerRepository struct {
	mock.Mock
}

func (m *ServerRepository) Create(ctx context.Context, srv *server.Server) error {
	args := m.Called(ctx, srv)
	return args.Error(0)
}

func (m *ServerRepository) Get(ctx context.Context, projectID, id string) (*server.Server, error) {
	args := m.Called(ctx, projectID, id)
	if srv, ok := args.Get(0).(*server.Server); ok {
		return srv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ServerRepository) ListByProject(ctx context.Context, projectID string) ([]server.Server, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]server.Server); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ServerRepository) Delete(ctx context.Context, projectID, id string) error {
	args := m.Called(ctx, projectID, id)
	return args.Error(0)
}

// PreferenceRepository is a mock for preference.Repository.
type PreferenceRepository struct {
	mock.Mock
}

func (m *PreferenceRepository) Upsert(ctx context.Context, pref *preference.ToolPreference) error {
	args := m.Called(ctx, pref)
	return args.Error(0)
}

func (m *PreferenceRepository) Get(ctx context.Context, projectID, serverID, toolName string) (*preference.ToolPreference, error) {
	args := m.Called(ctx, projectID, serverID, toolName)
	if pref, ok := args.Get(0).(*preference.ToolPreference); ok {
		return pref, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PreferenceRepository) List(ctx context.Context, projectID, serverID string) ([]preference.ToolPreference, error) {
	args := m.Called(ctx, projectID, serverID)
	if list, ok := args.Get(0).([]preference.ToolPreference); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PreferenceRepository) Delete(ctx context.Context, projectID, serverID, toolName string) error {
	args := m.Called(ctx, projectID, serverID, toolName)
	return args.Error(0)
}

func (m *PreferenceRepository) ListDisabled(ctx context.Context, projectID string) ([]preference.ToolPreference, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]preference.ToolPreference); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// SessionRepository is a mock for session.Repository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, sess *session.ClientSession) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, projectID, id string) (*session.ClientSession, error) {
	args := m.Called(ctx, projectID, id)
	if sess, ok := args.Get(0).(*session.ClientSession); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) RecordCall(ctx context.Context, id string, success bool, now time.Time) (session.Status, error) {
	args := m.Called(ctx, id, success, now)
	return args.Get(0).(session.Status), args.Error(1)
}

func (m *SessionRepository) Close(ctx context.Context, projectID, id, reason string, now time.Time) (bool, error) {
	args := m.Called(ctx, projectID, id, reason, now)
	return args.Bool(0), args.Error(1)
}

func (m *SessionRepository) ListActive(ctx context.Context, projectID, serverID string) ([]session.ClientSession, error) {
	args := m.Called(ctx, projectID, serverID)
	if list, ok := args.Get(0).([]session.ClientSession); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) ListRecent(ctx context.Context, opts session.ListRecentOptions) (*session.Page, error) {
	args := m.Called(ctx, opts)
	if page, ok := args.Get(0).(*session.Page); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) CloseIdle(ctx context.Context, cutoff time.Time, reason string, now time.Time) (int64, error) {
	args := m.Called(ctx, cutoff, reason, now)
	return args.Get(0).(int64), args.Error(1)
}
