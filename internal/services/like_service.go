package services

import (
	"context"
	"errors"

	"github.com/anonto42/odinbook/backend/internal/apperr"
	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/repositories"
)

type LikeService struct {
	likes repositories.LikeRepository
	posts repositories.PostRepository
}

func NewLikeService(likes repositories.LikeRepository, posts repositories.PostRepository) *LikeService {
	return &LikeService{likes: likes, posts: posts}
}

// Toggle flips userID's like on postID and reports the resulting state and
// count.
func (s *LikeService) Toggle(ctx context.Context, userID, postID uint) (*models.ToggleLikeResult, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("Post not found")
		}
		return nil, err
	}

	liked, err := s.likes.ToggleLike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	count, err := s.likes.GetLikesCountByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &models.ToggleLikeResult{Liked: liked, LikeCount: count}, nil
}
