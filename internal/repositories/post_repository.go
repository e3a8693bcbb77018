package repositories

import (
	"context"
	"time"

	"github.com/anonto42/odinbook/backend/internal/models"
	"gorm.io/gorm"
)

// Keyset is a position in the (created_at DESC, id DESC) post ordering.
type Keyset struct {
	CreatedAt time.Time
	ID        uint
}

// PostQuery selects a page of posts. A nil AuthorIDs means every author; an
// empty non-nil slice matches nothing.
type PostQuery struct {
	AuthorIDs []uint
	Before    *Keyset
	Limit     int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	ListPosts(ctx context.Context, query PostQuery) ([]models.Post, error)
	DeletePostCascade(ctx context.Context, id uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// ListPosts returns posts newest first. The id is the tie-break for equal
// timestamps, both in the ordering and in the Before comparison.
func (r *PostgresPostRepository) ListPosts(ctx context.Context, query PostQuery) ([]models.Post, error) {
	if query.AuthorIDs != nil && len(query.AuthorIDs) == 0 {
		return nil, nil
	}

	q := r.db.WithContext(ctx).Model(&models.Post{})
	if query.AuthorIDs != nil {
		q = q.Where("author_id IN ?", query.AuthorIDs)
	}
	if query.Before != nil {
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))",
			query.Before.CreatedAt, query.Before.CreatedAt, query.Before.ID)
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}

	var posts []models.Post
	if err := q.Order("created_at DESC").Order("id DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePostCascade removes a post together with its comments and likes in a
// single transaction.
func (r *PostgresPostRepository) DeletePostCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
