package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/mappool-community/internal/db"
)

// BeatmapRepository provides data access methods for beatmap submissions.
type BeatmapRepository struct {
	db *gorm.DB
}

// NewBeatmapRepository creates a new repository bound to the given DB connection.
func NewBeatmapRepository(database *gorm.DB) *BeatmapRepository {
	return &BeatmapRepository{db: database}
}

// BeatmapWithMeta is a list row: the submission joined with the submitter's
// current display name and vote tallies computed via correlated subqueries.
type BeatmapWithMeta struct {
	db.Beatmap
	SubmittedByName string `json:"submitted_by_name"`
	Upvotes         int64  `json:"upvotes"`
	Downvotes       int64  `json:"downvotes"`
}

// Create persists a new submission, self-healing the submitter row first.
// Both writes share one transaction so a crash cannot leave a submission
// pointing at a user the resolver was about to fabricate.
func (r *BeatmapRepository) Create(ctx context.Context, bm *db.Beatmap, submitterName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := EnsureUser(ctx, tx, bm.SubmittedBy, submitterName); err != nil {
			return err
		}
		return tx.Create(bm).Error
	})
}

// BeatmapExists verifies a submission row is present, inside the caller's
// transaction. Vote and comment writes call this so a row can never be
// created against a submission that is missing at write time.
func BeatmapExists(ctx context.Context, tx *gorm.DB, id uint64) error {
	return tx.WithContext(ctx).Select("id").First(&db.Beatmap{}, id).Error
}

// Get returns a submission by ID, or gorm.ErrRecordNotFound.
func (r *BeatmapRepository) Get(ctx context.Context, id uint64) (*db.Beatmap, error) {
	var bm db.Beatmap
	if err := r.db.WithContext(ctx).First(&bm, id).Error; err != nil {
		return nil, err
	}
	return &bm, nil
}

// List returns all submissions newest-first, each joined with the submitter
// name (LEFT JOIN: a healed-away user yields an empty name, never drops the
// row) and up/down tallies.
func (r *BeatmapRepository) List(ctx context.Context) ([]BeatmapWithMeta, error) {
	var rows []BeatmapWithMeta
	err := r.db.WithContext(ctx).
		Table("beatmaps b").
		Select(`b.*,
			COALESCE(u.display_name, '') AS submitted_by_name,
			(SELECT COUNT(*) FROM votes v WHERE v.beatmap_id = b.id AND v.vote_type = 'upvote') AS upvotes,
			(SELECT COUNT(*) FROM votes v WHERE v.beatmap_id = b.id AND v.vote_type = 'downvote') AS downvotes`).
		Joins("LEFT JOIN users u ON u.id = b.submitted_by").
		Order("b.created_at DESC, b.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Save writes back an updated submission. Callers merge patch fields onto
// the fetched row first; ownership checks live in the service layer.
func (r *BeatmapRepository) Save(ctx context.Context, bm *db.Beatmap) error {
	return r.db.WithContext(ctx).Save(bm).Error
}

// DeleteCascade removes a submission together with its votes and comments
// in a single transaction. All-or-nothing: a failure partway leaves the
// submission and its dependents untouched.
func (r *BeatmapRepository) DeleteCascade(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("beatmap_id = ?", id).Delete(&db.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("beatmap_id = ?", id).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&db.Beatmap{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
