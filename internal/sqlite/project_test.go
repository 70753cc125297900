package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/project"
	"github.com/hihenen/mcp-orch-sub003/internal/domain/role"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
)

func TestProjectRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	proj := &project.Project{
		ID:        "p1",
		Name:      "Gateway Test",
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, proj))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Gateway Test", got.Name)
	require.False(t, got.UnifiedEnabled)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_SetUnifiedEnabled(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &project.Project{ID: "p1", Name: "One", CreatedAt: time.Now()}))

	require.NoError(t, repo.SetUnifiedEnabled(ctx, "p1", true))
	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.True(t, got.UnifiedEnabled)

	require.NoError(t, repo.SetUnifiedEnabled(ctx, "p1", false))
	got, err = repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.False(t, got.UnifiedEnabled)

	err = repo.SetUnifiedEnabled(ctx, "missing", true)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectRepository_Members(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &project.Project{ID: "p1", Name: "One", CreatedAt: time.Now()}))

	member := &project.Member{
		ProjectID: "p1",
		ActorID:   "alice",
		Role:      role.Reporter,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.UpsertMember(ctx, member))

	r, err := repo.GetMemberRole(ctx, "p1", "alice")
	require.NoError(t, err)
	require.Equal(t, role.Reporter, r)

	// Upsert promotes in place.
	member.Role = role.Developer
	require.NoError(t, repo.UpsertMember(ctx, member))

	r, err = repo.GetMemberRole(ctx, "p1", "alice")
	require.NoError(t, err)
	require.Equal(t, role.Developer, r)

	_, err = repo.GetMemberRole(ctx, "p1", "mallory")
	require.ErrorIs(t, err, repository.ErrNotFound)

	// Membership in an unknown project violates the foreign key.
	err = repo.UpsertMember(ctx, &project.Member{
		ProjectID: "ghost", ActorID: "alice", Role: role.Owner, CreatedAt: time.Now(),
	})
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}

func TestAPIKeyRepository(t *testing.T) {
	db := NewTestDB(t)
	repo := NewAPIKeyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, "hash1", "alice", time.Now()))

	actorID, err := repo.ResolveActor(ctx, "hash1")
	require.NoError(t, err)
	require.Equal(t, "alice", actorID)

	_, err = repo.ResolveActor(ctx, "unknown")
	require.ErrorIs(t, err, repository.ErrNotFound)

	err = repo.Create(ctx, "hash1", "bob", time.Now())
	require.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, repo.Delete(ctx, "hash1"))
	_, err = repo.ResolveActor(ctx, "hash1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
