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

const maxPostLength = 280

// PostService creates, reads and deletes posts.
type PostService struct {
	posts     repositories.PostRepository
	annotator *PostAnnotator
}

func NewPostService(posts repositories.PostRepository, annotator *PostAnnotator) *PostService {
	return &PostService{posts: posts, annotator: annotator}
}

func (s *PostService) Create(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.PostView, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, apperr.InvalidInput("Post body required")
	}
	if utf8.RuneCountInString(body) > maxPostLength {
		return nil, apperr.InvalidInput("Post body is too long")
	}

	post := &models.Post{AuthorID: authorID, Body: body, ImageURL: strings.TrimSpace(req.ImageURL)}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	return s.view(ctx, post, &authorID)
}

// Get returns one annotated post. viewer may be nil.
func (s *PostService) Get(ctx context.Context, id uint, viewer *uint) (*models.PostView, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, post, viewer)
}

// Delete removes a post owned by ownerID along with its comments and likes.
func (s *PostService) Delete(ctx context.Context, ownerID, id uint) error {
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != ownerID {
		return apperr.Forbidden("Not authorized")
	}

	err = s.posts.DeletePostCascade(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound("Post not found")
	}
	return err
}

func (s *PostService) load(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("Post not found")
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) view(ctx context.Context, post *models.Post, viewer *uint) (*models.PostView, error) {
	views, err := s.annotator.Annotate(ctx, []models.Post{*post}, viewer)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
