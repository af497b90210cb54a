package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/mappool-community/internal/db"
)

// CommentRepository provides data access for the append-only comment log.
type CommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new repository bound to the given DB connection.
func NewCommentRepository(database *gorm.DB) *CommentRepository {
	return &CommentRepository{db: database}
}

// Add appends a comment, self-healing the author row in the same
// transaction. The comment keeps the display name supplied at post time;
// it is a snapshot and is never re-derived from the user row. The target
// submission must exist at write time.
func (r *CommentRepository) Add(ctx context.Context, comment *db.Comment, authorName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := BeatmapExists(ctx, tx, comment.BeatmapID); err != nil {
			return err
		}
		if err := EnsureUser(ctx, tx, comment.UserID, authorName); err != nil {
			return err
		}
		return tx.Create(comment).Error
	})
}

// List returns a beatmap's comments newest-first.
func (r *CommentRepository) List(ctx context.Context, beatmapID uint64) ([]db.Comment, error) {
	var comments []db.Comment
	err := r.db.WithContext(ctx).
		Where("beatmap_id = ?", beatmapID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete removes a comment unconditionally. Moderation-only path; the
// admin-secret check happens in the handler.
func (r *CommentRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&db.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
