package repository_test

import (
	"context"
	"testing"

	"github.com/oggyb/mappool-community/internal/db"
	"github.com/oggyb/mappool-community/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnsureUser_InsertsOnce(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	require.NoError(t, repo.Ensure(ctx, "ghost-1", "Alice"))
	// a second ensure with a different hint is a no-op
	require.NoError(t, repo.Ensure(ctx, "ghost-1", "Somebody Else"))

	user, err := repo.Get(ctx, "ghost-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.DisplayName)
	assert.False(t, user.IsAdmin)

	var count int64
	require.NoError(t, gdb.Model(&db.User{}).Where("id = ?", "ghost-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureUser_LeavesExistingRowAlone(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	require.NoError(t, repo.Create(ctx, &db.User{ID: "real-1", DisplayName: "Original"}))
	require.NoError(t, repo.Ensure(ctx, "real-1", "Imposter"))

	user, err := repo.Get(ctx, "real-1")
	require.NoError(t, err)
	assert.Equal(t, "Original", user.DisplayName)
}

func TestCreate_DuplicateID(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	require.NoError(t, repo.Create(ctx, &db.User{ID: "dup", DisplayName: "First"}))
	err := repo.Create(ctx, &db.User{ID: "dup", DisplayName: "Second"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestRenameAndSetAdmin(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	repo := repository.NewUserRepository(gdb)

	require.NoError(t, repo.Create(ctx, &db.User{ID: "u1", DisplayName: "Old Name"}))

	require.NoError(t, repo.Rename(ctx, "u1", "New Name"))
	require.NoError(t, repo.SetAdmin(ctx, "u1", true))

	user, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.DisplayName)
	assert.True(t, user.IsAdmin)

	// missing rows are reported, not silently ignored
	assert.ErrorIs(t, repo.Rename(ctx, "nope", "X"), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.SetAdmin(ctx, "nope", true), gorm.ErrRecordNotFound)
}
