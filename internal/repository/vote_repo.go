package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/mappool-community/internal/db"
)

// VoteRepository provides data access for the vote ledger.
//
// The ledger is a strict three-state toggle per (beatmap_id, user_id):
// no vote, upvoted, downvoted. Only the current state is stored; there is
// no history.
type VoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new repository bound to the given DB connection.
func NewVoteRepository(database *gorm.DB) *VoteRepository {
	return &VoteRepository{db: database}
}

// Apply executes one toggle transition for (beatmapID, userID):
//
//   - no existing vote            → insert row with voteType
//   - existing vote, same type    → delete row (re-click retracts)
//   - existing vote, other type   → update vote_type in place
//
// Returns the previous and current state; "" means no vote. The whole
// transition runs in one transaction, and the fresh-insert path uses an
// on-conflict update so two same-instant first votes resolve through the
// unique index instead of failing. The submission must exist at write time;
// a vote against a missing one fails with gorm.ErrRecordNotFound.
func (r *VoteRepository) Apply(ctx context.Context, beatmapID uint64, userID, voteType string) (prev, cur string, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := BeatmapExists(ctx, tx, beatmapID); err != nil {
			return err
		}

		var existing db.Vote
		findErr := tx.Where("beatmap_id = ? AND user_id = ?", beatmapID, userID).
			First(&existing).Error

		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			vote := db.Vote{
				BeatmapID: beatmapID,
				UserID:    userID,
				VoteType:  voteType,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "beatmap_id"}, {Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"vote_type"}),
			}).Create(&vote).Error; err != nil {
				return err
			}
			prev, cur = "", voteType
			return nil

		case findErr != nil:
			return findErr

		case existing.VoteType == voteType:
			if err := tx.Delete(&db.Vote{}, existing.ID).Error; err != nil {
				return err
			}
			prev, cur = existing.VoteType, ""
			return nil

		default:
			if err := tx.Model(&db.Vote{}).
				Where("id = ?", existing.ID).
				Update("vote_type", voteType).Error; err != nil {
				return err
			}
			prev, cur = existing.VoteType, voteType
			return nil
		}
	})
	return prev, cur, err
}

// Counts returns the upvote and downvote tallies for a beatmap.
func (r *VoteRepository) Counts(ctx context.Context, beatmapID uint64) (up, down int64, err error) {
	if err = r.db.WithContext(ctx).
		Model(&db.Vote{}).
		Where("beatmap_id = ? AND vote_type = ?", beatmapID, db.VoteTypeUp).
		Count(&up).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).
		Model(&db.Vote{}).
		Where("beatmap_id = ? AND vote_type = ?", beatmapID, db.VoteTypeDown).
		Count(&down).Error; err != nil {
		return 0, 0, err
	}
	return up, down, nil
}

// UserVote returns the viewer's current state for a beatmap, or "" when the
// viewer has no standing vote.
func (r *VoteRepository) UserVote(ctx context.Context, beatmapID uint64, userID string) (string, error) {
	var vote db.Vote
	err := r.db.WithContext(ctx).
		Where("beatmap_id = ? AND user_id = ?", beatmapID, userID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return vote.VoteType, nil
}
