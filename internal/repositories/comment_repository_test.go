package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/odinbook/backend/internal/models"
	"github.com/anonto42/odinbook/backend/internal/repositories"
	"github.com/anonto42/odinbook/backend/internal/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewDB(t)
	repo := repositories.NewPostgresCommentRepository(db)
	post := seedPost(t, db, 1, "discuss", epoch)

	second := &models.Comment{PostID: post.ID, AuthorID: 3, Body: "second", CreatedAt: epoch.Add(2 * time.Second)}
	first := &models.Comment{PostID: post.ID, AuthorID: 2, Body: "first", CreatedAt: epoch.Add(time.Second)}
	require.NoError(t, repo.CreateComment(ctx, second))
	require.NoError(t, repo.CreateComment(ctx, first))

	comments, err := repo.GetCommentsByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, "second", comments[1].Body)

	got, err := repo.GetCommentByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), got.AuthorID)

	require.NoError(t, repo.DeleteComment(ctx, first.ID))
	assert.ErrorIs(t, repo.DeleteComment(ctx, first.ID), repositories.ErrNotFound)

	_, err = repo.GetCommentByID(ctx, first.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
