package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/VitaminP8/blogd/internal/model"
	"github.com/VitaminP8/blogd/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostPostgresStorage_CreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("Success post creation", func(t *testing.T) {
		db := setupTestDB(t)
		storage := NewPostPostgresStorage(db)
		userID := createTestUser(t, db, "author")

		post, err := storage.CreatePost(ctx, &model.Post{Title: "Test Post Title", Content: "This is a test post content", AuthorID: fmt.Sprint(userID)})
		require.NoError(t, err)
		assert.NotEmpty(t, post.ID)
		assert.Equal(t, "Test Post Title", post.Title)
		assert.Equal(t, fmt.Sprint(userID), post.AuthorID)
		assert.Empty(t, post.CommentIDs)
		assert.False(t, post.CreatedAt.IsZero())

		// Проверяем, что пост действительно создался в БД
		var dbPost models.Post
		require.NoError(t, db.First(&dbPost, post.ID).Error)
		assert.Equal(t, userID, dbPost.UserID)
	})

	t.Run("Error: author does not exist", func(t *testing.T) {
		db := setupTestDB(t)
		storage := NewPostPostgresStorage(db)

		post, err := storage.CreatePost(ctx, &model.Post{Title: "t", AuthorID: "77"})
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.Nil(t, post)

		var count int
		db.Model(&models.Post{}).Count(&count)
		assert.Equal(t, 0, count)
	})

	t.Run("Error: empty title", func(t *testing.T) {
		db := setupTestDB(t)
		storage := NewPostPostgresStorage(db)
		userID := createTestUser(t, db, "author")

		_, err := storage.CreatePost(ctx, &model.Post{Title: "", AuthorID: fmt.Sprint(userID)})
		assert.ErrorIs(t, err, model.ErrValidation)
	})
}

func TestPostPostgresStorage_GetPostById(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	storage := NewPostPostgresStorage(db)
	userID := createTestUser(t, db, "author")
	postID := createTestPost(t, db, userID, "Title")

	c1 := &models.Comment{Content: "one", PostID: postID, UserID: userID}
	c2 := &models.Comment{Content: "two", PostID: postID, UserID: userID}
	require.NoError(t, db.Create(c1).Error)
	require.NoError(t, db.Create(c2).Error)

	t.Run("Getting exists post with comment references", func(t *testing.T) {
		post, err := storage.GetPostById(ctx, fmt.Sprint(postID))
		require.NoError(t, err)
		assert.Equal(t, "Title", post.Title)
		assert.Equal(t, []string{fmt.Sprint(c1.ID), fmt.Sprint(c2.ID)}, post.CommentIDs)
	})

	t.Run("Getting non-existent post", func(t *testing.T) {
		_, err := storage.GetPostById(ctx, "9999")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("Getting post by malformed ID", func(t *testing.T) {
		_, err := storage.GetPostById(ctx, "not-a-number")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestPostPostgresStorage_GetAllPosts(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty table", func(t *testing.T) {
		storage := NewPostPostgresStorage(setupTestDB(t))

		posts, err := storage.GetAllPosts(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("Newest first with comment references", func(t *testing.T) {
		db := setupTestDB(t)
		storage := NewPostPostgresStorage(db)
		userID := createTestUser(t, db, "author")
		first := createTestPost(t, db, userID, "first")
		second := createTestPost(t, db, userID, "second")

		c := &models.Comment{Content: "hi", PostID: first, UserID: userID}
		require.NoError(t, db.Create(c).Error)

		posts, err := storage.GetAllPosts(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, fmt.Sprint(second), posts[0].ID)
		assert.Empty(t, posts[0].CommentIDs)
		assert.Equal(t, fmt.Sprint(first), posts[1].ID)
		assert.Equal(t, []string{fmt.Sprint(c.ID)}, posts[1].CommentIDs)
	})
}
