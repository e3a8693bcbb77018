package services

import (
	"context"

	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/repositories"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 50
)

// Page is a request for one page of posts. A zero Limit means the default;
// Cursor is the nextCursor of the previous page, or empty for the first.
type Page struct {
	Limit  int
	Cursor string
}

// ClampLimit applies the default and the [1, MaxPageLimit] bounds.
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultPageLimit
	case limit < 1:
		return 1
	case limit > MaxPageLimit:
		return MaxPageLimit
	default:
		return limit
	}
}

// PostPage is one page of annotated posts. NextCursor is nil on the last page.
type PostPage struct {
	Posts      []models.PostView `json:"posts"`
	NextCursor *string           `json:"nextCursor"`
}

// pager runs keyset pagination over the post repository.
type pager struct {
	posts     repositories.PostRepository
	cursors   *CursorCodec
	annotator *PostAnnotator
}

// fetch loads limit+1 rows so the presence of a following page is known
// without a second query.
func (p *pager) fetch(ctx context.Context, authorIDs []uint, viewer *uint, page Page) (*PostPage, error) {
	limit := ClampLimit(page.Limit)

	query := repositories.PostQuery{AuthorIDs: authorIDs, Limit: limit + 1}
	if page.Cursor != "" {
		before, err := p.cursors.Decode(page.Cursor)
		if err != nil {
			return nil, err
		}
		query.Before = before
	}

	posts, err := p.posts.ListPosts(ctx, query)
	if err != nil {
		return nil, err
	}

	var next *string
	if len(posts) > limit {
		posts = posts[:limit]
		last := posts[len(posts)-1]
		cursor := p.cursors.Encode(repositories.Keyset{CreatedAt: last.CreatedAt, ID: last.ID})
		next = &cursor
	}

	views, err := p.annotator.Annotate(ctx, posts, viewer)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: views, NextCursor: next}, nil
}
