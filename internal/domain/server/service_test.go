package server_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/server"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
	"github.com/hihenen/mcp-orch-sub003/internal/repository/mocks"
)

func newService(t *testing.T) (*server.Service, *mocks.ServerRepository) {
	t.Helper()
	repo := new(mocks.ServerRepository)
	return server.NewService(repo, slog.Default()), repo
}

func TestRegister(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*server.Server")).Return(nil)

	srv, err := svc.Register(ctx, server.RegisterRequest{
		ProjectID: "p1",
		Name:      "alpha",
		Endpoint:  "http://alpha.internal:8080",
	})
	require.NoError(t, err)
	require.NotEmpty(t, srv.ID)
	require.Equal(t, "alpha", srv.Name)
	repo.AssertExpectations(t)
}

func TestRegisterRejectsInvalidNames(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	// Dots would make namespaced tool names ambiguous.
	for _, name := range []string{"alpha.beta", "Alpha", "-alpha", "", "al pha"} {
		_, err := svc.Register(ctx, server.RegisterRequest{
			ProjectID: "p1",
			Name:      name,
			Endpoint:  "http://x",
		})
		require.Error(t, err, "name %q should be rejected", name)
	}

	// Underscores and hyphens after the first character are fine.
	repo := new(mocks.ServerRepository)
	repo.On("Create", ctx, mock.Anything).Return(nil)
	okSvc := server.NewService(repo, slog.Default())
	_, err := okSvc.Register(ctx, server.RegisterRequest{
		ProjectID: "p1",
		Name:      "alpha_v2-east",
		Endpoint:  "http://x",
	})
	require.NoError(t, err)
}

func TestRegisterRejectsBadEndpoint(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Register(context.Background(), server.RegisterRequest{
		ProjectID: "p1",
		Name:      "alpha",
		Endpoint:  "not a url",
	})
	require.ErrorIs(t, err, server.ErrInvalidInput)
}

func TestRegisterDuplicateName(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)

	_, err := svc.Register(ctx, server.RegisterRequest{
		ProjectID: "p1",
		Name:      "alpha",
		Endpoint:  "http://x",
	})
	require.ErrorIs(t, err, server.ErrNameTaken)
}

func TestGetMissing(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	repo.On("Get", ctx, "p1", "ghost").Return(nil, repository.ErrNotFound)

	_, err := svc.Get(ctx, "p1", "ghost")
	require.ErrorIs(t, err, server.ErrServerNotFound)
}

func TestDeleteMissing(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	repo.On("Delete", ctx, "p1", "ghost").Return(repository.ErrNotFound)

	err := svc.Delete(ctx, "p1", "ghost")
	require.ErrorIs(t, err, server.ErrServerNotFound)
}
