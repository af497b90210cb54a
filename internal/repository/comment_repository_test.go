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

func TestCommentAdd_SelfHealsAuthor(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	comments := repository.NewCommentRepository(gdb)
	users := repository.NewUserRepository(gdb)
	bmID := seedBeatmap(t, gdb, "owner")

	require.NoError(t, comments.Add(ctx, &db.Comment{
		BeatmapID:   bmID,
		UserID:      "ghost-commenter",
		DisplayName: "Alice",
		CommentText: "hi",
	}, "Alice"))

	healed, err := users.Get(ctx, "ghost-commenter")
	require.NoError(t, err)
	assert.Equal(t, "Alice", healed.DisplayName)
}

func TestCommentList_NewestFirstAndSnapshotName(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	comments := repository.NewCommentRepository(gdb)
	users := repository.NewUserRepository(gdb)
	bmID := seedBeatmap(t, gdb, "owner")

	require.NoError(t, users.Create(ctx, &db.User{ID: "c1", DisplayName: "Original Name"}))
	require.NoError(t, comments.Add(ctx, &db.Comment{
		BeatmapID: bmID, UserID: "c1", DisplayName: "Original Name", CommentText: "first",
	}, "Original Name"))
	require.NoError(t, comments.Add(ctx, &db.Comment{
		BeatmapID: bmID, UserID: "c1", DisplayName: "Original Name", CommentText: "second",
	}, "Original Name"))

	// renaming the author must not rewrite past comments
	require.NoError(t, users.Rename(ctx, "c1", "Brand New Name"))

	list, err := comments.List(ctx, bmID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].CommentText)
	assert.Equal(t, "Original Name", list[0].DisplayName)
	assert.Equal(t, "Original Name", list[1].DisplayName)
}

func TestCommentAdd_RejectsMissingBeatmap(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	comments := repository.NewCommentRepository(gdb)

	err := comments.Add(ctx, &db.Comment{
		BeatmapID:   999,
		UserID:      "c1",
		DisplayName: "Alice",
		CommentText: "into the void",
	}, "Alice")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, gdb.Model(&db.Comment{}).Count(&count).Error)
	assert.Zero(t, count, "no orphan comment row may be written")

	// the failed write must not heal the author row either
	users := repository.NewUserRepository(gdb)
	_, err = users.Get(ctx, "c1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCommentDelete(t *testing.T) {
	ctx := context.Background()
	gdb := setupTestDB(t)
	comments := repository.NewCommentRepository(gdb)
	bmID := seedBeatmap(t, gdb, "owner")

	c := &db.Comment{BeatmapID: bmID, UserID: "c1", DisplayName: "A", CommentText: "bye"}
	require.NoError(t, comments.Add(ctx, c, "A"))
	require.NoError(t, comments.Delete(ctx, c.ID))

	assert.ErrorIs(t, comments.Delete(ctx, c.ID), gorm.ErrRecordNotFound)
}
