package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/mappool-community/internal/db"
)

// UserRepository provides data access methods for the User model.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a freshly registered user. A colliding ID surfaces as
// gorm.ErrDuplicatedKey (translated by the dialector).
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Get returns a user by ID, or gorm.ErrRecordNotFound.
func (r *UserRepository) Get(ctx context.Context, id string) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Ensure fabricates a user row if one does not exist yet (the self-healing
// path). See EnsureUser.
func (r *UserRepository) Ensure(ctx context.Context, id, hintDisplayName string) error {
	return EnsureUser(ctx, r.db, id, hintDisplayName)
}

// EnsureUser inserts a user row for id unless one already exists, using
// hintDisplayName as the fabricated display name. Implemented as an atomic
// insert-or-ignore so concurrent calls for the same absent id cannot race a
// check-then-insert sequence into duplicate rows.
//
// Exposed as a free function so other repositories can self-heal inside
// their own transactions.
func EnsureUser(ctx context.Context, tx *gorm.DB, id, hintDisplayName string) error {
	user := db.User{
		ID:          id,
		DisplayName: hintDisplayName,
	}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&user).Error
}

// Rename updates a user's display name.
func (r *UserRepository) Rename(ctx context.Context, id, displayName string) error {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update("display_name", displayName)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetAdmin flips a user's admin flag. No audit trail.
func (r *UserRepository) SetAdmin(ctx context.Context, id string, admin bool) error {
	res := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", id).
		Update("is_admin", admin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
