package preference_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/preference"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/server"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
	"github.com/hihenen/mcp-orch-sub003/internal/repository/mocks"
)

func newService(t *testing.T) (*preference.Service, *mocks.PreferenceRepository, *mocks.ServerRepository) {
	t.Helper()
	repo := new(mocks.PreferenceRepository)
	servers := new(mocks.ServerRepository)
	svc := preference.NewService(repo, servers, slog.Default())
	return svc, repo, servers
}

func knownServer(id string) *server.Server {
	return &server.Server{ID: id, ProjectID: "p1", Name: "alpha", Endpoint: "http://alpha"}
}

func TestIsEnabledDefaultsToTrue(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	repo.On("Get", ctx, "p1", "s1", "read").Return(nil, repository.ErrNotFound)

	enabled, err := svc.IsEnabled(ctx, "p1", "s1", "read")
	require.NoError(t, err)
	require.True(t, enabled)
}

func TestIsEnabledHonorsExplicitRecord(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	repo.On("Get", ctx, "p1", "s1", "read").Return(&preference.ToolPreference{
		ProjectID: "p1", ServerID: "s1", ToolName: "read", Enabled: false,
	}, nil)

	enabled, err := svc.IsEnabled(ctx, "p1", "s1", "read")
	require.NoError(t, err)
	require.False(t, enabled)
}

func TestSetOneValidatesServer(t *testing.T) {
	svc, _, servers := newService(t)
	ctx := context.Background()

	servers.On("Get", ctx, "p1", "ghost").Return(nil, server.ErrServerNotFound)

	_, err := svc.SetOne(ctx, "p1", "ghost", "read", false)
	require.ErrorIs(t, err, preference.ErrUnknownServer)
}

func TestSetOneReturnsStoredRecord(t *testing.T) {
	svc, repo, servers := newService(t)
	ctx := context.Background()

	created := time.Now().Add(-time.Hour)
	servers.On("Get", ctx, "p1", "s1").Return(knownServer("s1"), nil)
	repo.On("Upsert", ctx, mock.AnythingOfType("*preference.ToolPreference")).Return(nil)
	repo.On("Get", ctx, "p1", "s1", "read").Return(&preference.ToolPreference{
		ProjectID: "p1", ServerID: "s1", ToolName: "read",
		Enabled: false, CreatedAt: created, UpdatedAt: time.Now(),
	}, nil)

	pref, err := svc.SetOne(ctx, "p1", "s1", "read", false)
	require.NoError(t, err)
	require.Equal(t, created, pref.CreatedAt)
	require.False(t, pref.Enabled)
	repo.AssertExpectations(t)
}

func TestSetOneToleratesConcurrentDelete(t *testing.T) {
	svc, repo, servers := newService(t)
	ctx := context.Background()

	// The row vanishes between the upsert and the re-read. The write
	// succeeded, so the caller gets the written value, not an error.
	servers.On("Get", ctx, "p1", "s1").Return(knownServer("s1"), nil)
	repo.On("Upsert", ctx, mock.AnythingOfType("*preference.ToolPreference")).Return(nil)
	repo.On("Get", ctx, "p1", "s1", "read").Return(nil, repository.ErrNotFound)

	pref, err := svc.SetOne(ctx, "p1", "s1", "read", false)
	require.NoError(t, err)
	require.Equal(t, "read", pref.ToolName)
	require.False(t, pref.Enabled)
}

func TestSetOneRejectsEmptyInput(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.SetOne(ctx, "p1", "", "read", false)
	require.ErrorIs(t, err, preference.ErrInvalidInput)

	_, err = svc.SetOne(ctx, "p1", "s1", "  ", false)
	require.ErrorIs(t, err, preference.ErrInvalidInput)
}

func TestSetBulkPartialFailure(t *testing.T) {
	svc, repo, servers := newService(t)
	ctx := context.Background()

	servers.On("Get", ctx, "p1", "s1").Return(knownServer("s1"), nil)
	servers.On("Get", ctx, "p1", "ghost").Return(nil, server.ErrServerNotFound)
	repo.On("Upsert", ctx, mock.AnythingOfType("*preference.ToolPreference")).Return(nil)
	for _, tool := range []string{"read", "write", "list", "delete"} {
		repo.On("Get", ctx, "p1", "s1", tool).Return(&preference.ToolPreference{
			ProjectID: "p1", ServerID: "s1", ToolName: tool, Enabled: false,
		}, nil)
	}

	entries := []preference.BulkEntry{
		{ServerID: "s1", ToolName: "read"},
		{ServerID: "s1", ToolName: "write"},
		{ServerID: "ghost", ToolName: "oops"},
		{ServerID: "s1", ToolName: "list"},
		{ServerID: "s1", ToolName: "delete"},
	}

	summary, err := svc.SetBulk(ctx, "p1", entries)
	require.NoError(t, err)
	require.Len(t, summary.Applied, 4)
	require.Len(t, summary.Failed, 1)
	require.Equal(t, "ghost", summary.Failed[0].ServerID)
	require.True(t, summary.PartialFailure())
}

func TestDeleteMissingIsNoError(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	repo.On("Delete", ctx, "p1", "s1", "read").Return(repository.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "p1", "s1", "read"))
}

func TestProjectView(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	repo.On("ListDisabled", ctx, "p1").Return([]preference.ToolPreference{
		{ProjectID: "p1", ServerID: "s1", ToolName: "write", Enabled: false},
	}, nil)

	view, err := svc.ProjectView(ctx, "p1")
	require.NoError(t, err)
	require.False(t, view.Enabled("s1", "write"))
	require.True(t, view.Enabled("s1", "read"))
	require.True(t, view.Enabled("s2", "write"))
}

func TestNilViewDefaultsEnabled(t *testing.T) {
	var view *preference.View
	require.True(t, view.Enabled("s1", "anything"))
}
