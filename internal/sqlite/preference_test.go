package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/preference"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
)

func seedProject(t *testing.T, db *DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO projects (id, name) VALUES (?, ?)`, id, "Project "+id)
	require.NoError(t, err)
}

func TestPreferenceRepository_UpsertAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewPreferenceRepository(db)
	ctx := context.Background()
	seedProject(t, db, "p1")

	now := time.Now().UTC().Truncate(time.Second)
	pref := &preference.ToolPreference{
		ProjectID: "p1",
		ServerID:  "s1",
		ToolName:  "read",
		Enabled:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Upsert(ctx, pref))

	got, err := repo.Get(ctx, "p1", "s1", "read")
	require.NoError(t, err)
	require.False(t, got.Enabled)

	// Re-upsert flips the flag in place; created_at is preserved.
	later := now.Add(time.Minute)
	require.NoError(t, repo.Upsert(ctx, &preference.ToolPreference{
		ProjectID: "p1",
		ServerID:  "s1",
		ToolName:  "read",
		Enabled:   true,
		CreatedAt: later,
		UpdatedAt: later,
	}))

	got, err = repo.Get(ctx, "p1", "s1", "read")
	require.NoError(t, err)
	require.True(t, got.Enabled)
	require.Equal(t, now, got.CreatedAt.UTC().Truncate(time.Second))
	require.Equal(t, later, got.UpdatedAt.UTC().Truncate(time.Second))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tool_preferences`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestPreferenceRepository_GetMissing(t *testing.T) {
	db := NewTestDB(t)
	repo := NewPreferenceRepository(db)

	_, err := repo.Get(context.Background(), "p1", "s1", "nope")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPreferenceRepository_ListAndListDisabled(t *testing.T) {
	db := NewTestDB(t)
	repo := NewPreferenceRepository(db)
	ctx := context.Background()
	seedProject(t, db, "p1")

	now := time.Now()
	insert := func(serverID, tool string, enabled bool) {
		require.NoError(t, repo.Upsert(ctx, &preference.ToolPreference{
			ProjectID: "p1", ServerID: serverID, ToolName: tool,
			Enabled: enabled, CreatedAt: now, UpdatedAt: now,
		}))
	}
	insert("s1", "read", false)
	insert("s1", "write", true)
	insert("s2", "read", false)

	all, err := repo.List(ctx, "p1", "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	s1Only, err := repo.List(ctx, "p1", "s1")
	require.NoError(t, err)
	require.Len(t, s1Only, 2)

	disabled, err := repo.ListDisabled(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, disabled, 2)
	for _, p := range disabled {
		require.False(t, p.Enabled)
	}
}

func TestPreferenceRepository_Delete(t *testing.T) {
	db := NewTestDB(t)
	repo := NewPreferenceRepository(db)
	ctx := context.Background()
	seedProject(t, db, "p1")

	now := time.Now()
	require.NoError(t, repo.Upsert(ctx, &preference.ToolPreference{
		ProjectID: "p1", ServerID: "s1", ToolName: "read",
		Enabled: false, CreatedAt: now, UpdatedAt: now,
	}))

	require.NoError(t, repo.Delete(ctx, "p1", "s1", "read"))

	_, err := repo.Get(ctx, "p1", "s1", "read")
	require.ErrorIs(t, err, repository.ErrNotFound)

	err = repo.Delete(ctx, "p1", "s1", "read")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPreferenceRepository_ProjectIsolation(t *testing.T) {
	db := NewTestDB(t)
	repo := NewPreferenceRepository(db)
	ctx := context.Background()
	seedProject(t, db, "p1")
	seedProject(t, db, "p2")

	now := time.Now()
	require.NoError(t, repo.Upsert(ctx, &preference.ToolPreference{
		ProjectID: "p1", ServerID: "s1", ToolName: "read",
		Enabled: false, CreatedAt: now, UpdatedAt: now,
	}))

	other, err := repo.List(ctx, "p2", "")
	require.NoError(t, err)
	require.Empty(t, other)
}
