package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/odinbook/backend/internal/apperr"
	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/repositories"
)

const maxCommentLength = 500

type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	users    repositories.UserRepository
}

func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, users repositories.UserRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users}
}

func (s *CommentService) Create(ctx context.Context, authorID uint, req models.CreateCommentRequest) (*models.CommentView, error) {
	body := strings.TrimSpace(req.Body)
	if req.PostID == 0 || body == "" {
		return nil, apperr.InvalidInput("postId and body are required")
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return nil, apperr.InvalidInput("Comment body is too long")
	}

	if _, err := s.posts.GetPostByID(ctx, req.PostID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("Post not found")
		}
		return nil, err
	}

	comment := &models.Comment{PostID: req.PostID, AuthorID: authorID, Body: body}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	views, err := s.withAuthors(ctx, []models.Comment{*comment})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns a post's comments oldest first.
func (s *CommentService) List(ctx context.Context, postID uint) ([]models.CommentView, error) {
	if postID == 0 {
		return nil, apperr.InvalidInput("postId is required")
	}
	comments, err := s.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, comments)
}

// Delete removes a comment written by authorID.
func (s *CommentService) Delete(ctx context.Context, authorID, id uint) error {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("Comment not found")
		}
		return err
	}
	if comment.AuthorID != authorID {
		return apperr.Forbidden("Not authorized")
	}

	err = s.comments.DeleteComment(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("Comment not found")
	}
	return err
}

func (s *CommentService) withAuthors(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	views := make([]models.CommentView, 0, len(comments))
	if len(comments) == 0 {
		return views, nil
	}

	ids := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.UserCompact, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].ToCompact()
	}

	for _, c := range comments {
		views = append(views, models.CommentView{Comment: c, Author: byID[c.AuthorID]})
	}
	return views, nil
}
