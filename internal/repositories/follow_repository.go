package repositories

import (
	"context"

	"github.com/anonto42/odinbook/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	GetFollow(ctx context.Context, followerID, followeeID uint) (*models.Follow, error)
	AcceptFollow(ctx context.Context, followerID, followeeID uint) (bool, error)
	DeleteFollow(ctx context.Context, followerID, followeeID uint) error
	GetAcceptedFolloweeIDs(ctx context.Context, userID uint) ([]uint, error)
	GetAcceptedFollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	GetPendingFollowers(ctx context.Context, userID uint) ([]models.Follow, error)
	GetFollowsByFollower(ctx context.Context, userID uint) ([]models.Follow, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow inserts an edge. The unique (follower, followee) index is the
// guard against concurrent duplicates; a violation yields ErrDuplicate.
func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return translate(r.db.WithContext(ctx).Create(follow).Error)
}

func (r *PostgresFollowRepository) GetFollow(ctx context.Context, followerID, followeeID uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		First(&follow).Error
	if err != nil {
		return nil, translate(err)
	}
	return &follow, nil
}

// AcceptFollow flips a PENDING edge to ACCEPTED. It reports false when no
// pending edge matched, leaving the caller to decide why.
func (r *PostgresFollowRepository) AcceptFollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ? AND status = ?", followerID, followeeID, models.FollowPending).
		Update("status", models.FollowAccepted)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followeeID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresFollowRepository) GetAcceptedFolloweeIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND status = ?", userID, models.FollowAccepted).
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *PostgresFollowRepository) GetAcceptedFollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followee_id = ? AND status = ?", userID, models.FollowAccepted).
		Pluck("follower_id", &ids).Error
	return ids, err
}

// GetPendingFollowers returns incoming requests awaiting userID's approval.
func (r *PostgresFollowRepository) GetPendingFollowers(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).
		Where("followee_id = ? AND status = ?", userID, models.FollowPending).
		Order("created_at DESC").
		Find(&follows).Error
	return follows, err
}

// GetFollowsByFollower returns every outgoing edge of userID, any status.
func (r *PostgresFollowRepository) GetFollowsByFollower(ctx context.Context, userID uint) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).Where("follower_id = ?", userID).Find(&follows).Error
	return follows, err
}
