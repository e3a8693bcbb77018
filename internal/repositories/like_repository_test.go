package repositories_test

import (
	"context"
	"testing"

	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/repositories"
	"github.com/anonto42/odinbook/backend/internal/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewDB(t)
	likes := repositories.NewPostgresLikeRepository(db)
	post := seedPost(t, db, 1, "likeable", epoch)

	liked, err := likes.ToggleLike(ctx, 2, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	count, err := likes.GetLikesCountByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	liked, err = likes.ToggleLike(ctx, 2, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	count, err = likes.GetLikesCountByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLikeAndCommentCounts(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewDB(t)
	likes := repositories.NewPostgresLikeRepository(db)
	comments := repositories.NewPostgresCommentRepository(db)

	a := seedPost(t, db, 1, "a", epoch)
	b := seedPost(t, db, 1, "b", epoch)

	for _, user := range []uint{2, 3, 4} {
		_, err := likes.ToggleLike(ctx, user, a.ID)
		require.NoError(t, err)
	}
	require.NoError(t, comments.CreateComment(ctx, &models.Comment{PostID: b.ID, AuthorID: 2, Body: "first"}))

	likeCounts, err := likes.CountByPostIDs(ctx, []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), likeCounts[a.ID])
	assert.Zero(t, likeCounts[b.ID])

	commentCounts, err := comments.CountByPostIDs(ctx, []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Zero(t, commentCounts[a.ID])
	assert.Equal(t, int64(1), commentCounts[b.ID])

	liked, err := likes.LikedPostIDs(ctx, 3, []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.True(t, liked[a.ID])
	assert.False(t, liked[b.ID])
}
