package services

import (
	"context"

	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/repositories"
)

// PostAnnotator decorates posts with author summaries and engagement counts
// using one query per concern for the whole batch.
type PostAnnotator struct {
	users    repositories.UserRepository
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
}

func NewPostAnnotator(users repositories.UserRepository, likes repositories.LikeRepository, comments repositories.CommentRepository) *PostAnnotator {
	return &PostAnnotator{users: users, likes: likes, comments: comments}
}

// Annotate preserves the order of posts. LikedByMe is set only when viewer
// is non-nil.
func (a *PostAnnotator) Annotate(ctx context.Context, posts []models.Post, viewer *uint) ([]models.PostView, error) {
	views := make([]models.PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	postIDs := make([]uint, 0, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	seenAuthor := make(map[uint]bool, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		if !seenAuthor[p.AuthorID] {
			seenAuthor[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors, err := a.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.UserCompact, len(authors))
	for i := range authors {
		byID[authors[i].ID] = authors[i].ToCompact()
	}

	likeCounts, err := a.likes.CountByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	commentCounts, err := a.comments.CountByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	var liked map[uint]bool
	if viewer != nil {
		if liked, err = a.likes.LikedPostIDs(ctx, *viewer, postIDs); err != nil {
			return nil, err
		}
	}

	for _, p := range posts {
		view := models.PostView{
			ID:            p.ID,
			AuthorID:      p.AuthorID,
			Body:          p.Body,
			ImageURL:      p.ImageURL,
			CreatedAt:     p.CreatedAt,
			Author:        byID[p.AuthorID],
			LikesCount:    likeCounts[p.ID],
			CommentsCount: commentCounts[p.ID],
		}
		if viewer != nil {
			mine := liked[p.ID]
			view.LikedByMe = &mine
		}
		views = append(views, view)
	}
	return views, nil
}
