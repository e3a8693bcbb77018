package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/odinbook/backend/internal/blobstore/blobtest"
	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/repositories"
	"github.com/anonto42/odinbook/backend/internal/repositories/repotest"
	"github.com/anonto42/odinbook/backend/internal/services"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fixture wires the services over real repositories on in-memory SQLite.
type fixture struct {
	db       *gorm.DB
	users    *repositories.PostgresUserRepository
	follows  *repositories.PostgresFollowRepository
	posts    *repositories.PostgresPostRepository
	likes    *repositories.PostgresLikeRepository
	comments *repositories.PostgresCommentRepository
	blobs    *blobtest.Store

	followSvc  *services.FollowService
	feedSvc    *services.FeedService
	postSvc    *services.PostService
	commentSvc *services.CommentService
	likeSvc    *services.LikeService
	userSvc    *services.UserService
}

func newFixture(t *testing.T, autoAccept bool) *fixture {
	t.Helper()

	db := repotest.NewDB(t)
	f := &fixture{
		db:       db,
		users:    repositories.NewPostgresUserRepository(db),
		follows:  repositories.NewPostgresFollowRepository(db),
		posts:    repositories.NewPostgresPostRepository(db),
		likes:    repositories.NewPostgresLikeRepository(db),
		comments: repositories.NewPostgresCommentRepository(db),
		blobs:    blobtest.New("http://media.test"),
	}

	annotator := services.NewPostAnnotator(f.users, f.likes, f.comments)
	f.followSvc = services.NewFollowService(f.follows, f.users, autoAccept)
	f.feedSvc = services.NewFeedService(f.followSvc, f.posts, annotator, services.NewCursorCodec("cursor-secret"))
	f.postSvc = services.NewPostService(f.posts, annotator)
	f.commentSvc = services.NewCommentService(f.comments, f.posts, f.users)
	f.likeSvc = services.NewLikeService(f.likes, f.posts)
	f.userSvc = services.NewUserService(f.users, f.followSvc, f.blobs, zap.NewNop())
	return f
}

func (f *fixture) user(t *testing.T, handle string) *models.User {
	t.Helper()
	u := &models.User{Email: handle + "@example.com", Handle: handle, PasswordHash: "x"}
	require.NoError(t, f.users.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) postAt(t *testing.T, author *models.User, body string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: author.ID, Body: body, CreatedAt: at}
	require.NoError(t, f.posts.CreatePost(context.Background(), p))
	return p
}

func (f *fixture) follow(t *testing.T, follower, followee *models.User) {
	t.Helper()
	_, _, err := f.followSvc.Propose(context.Background(), follower.ID, followee.ID)
	require.NoError(t, err)
}

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
