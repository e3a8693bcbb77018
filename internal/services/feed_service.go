package services

import (
	"context"

	"github.com/anonto42/odinbook/backend/internal/repositories"
)

// FolloweeSource yields the users whose posts a viewer may see in their feed.
type FolloweeSource interface {
	AcceptedFollowees(ctx context.Context, userID uint) ([]uint, error)
}

// FeedService assembles home feeds and the public post listing.
type FeedService struct {
	followees FolloweeSource
	pager     pager
}

func NewFeedService(followees FolloweeSource, posts repositories.PostRepository, annotator *PostAnnotator, cursors *CursorCodec) *FeedService {
	return &FeedService{
		followees: followees,
		pager:     pager{posts: posts, cursors: cursors, annotator: annotator},
	}
}

// Feed returns the viewer's own posts and those of accepted followees,
// newest first.
func (s *FeedService) Feed(ctx context.Context, viewerID uint, page Page) (*PostPage, error) {
	followees, err := s.followees.AcceptedFollowees(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]uint, 0, len(followees)+1)
	authorIDs = append(authorIDs, viewerID)
	for _, id := range followees {
		if id != viewerID {
			authorIDs = append(authorIDs, id)
		}
	}

	return s.pager.fetch(ctx, authorIDs, &viewerID, page)
}

// Recent lists every post, newest first. viewer may be nil.
func (s *FeedService) Recent(ctx context.Context, viewer *uint, page Page) (*PostPage, error) {
	return s.pager.fetch(ctx, nil, viewer, page)
}
