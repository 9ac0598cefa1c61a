package memory

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/VitaminP8/blogd/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contentFixture struct {
	users    *UserMemoryStorage
	posts    *PostMemoryStorage
	comments *CommentMemoryStorage
	authorID string
	post     *model.Post
}

func newContentFixture(t *testing.T) *contentFixture {
	users := NewUserMemoryStorage()
	posts := NewPostMemoryStorage(users)
	comments := NewCommentMemoryStorage(posts, users)
	authorID := createTestUser(t, users, "commenter")

	p, err := posts.CreatePost(context.Background(), &model.Post{Title: "Post", Content: "Body", AuthorID: authorID})
	require.NoError(t, err)

	return &contentFixture{users: users, posts: posts, comments: comments, authorID: authorID, post: p}
}

func TestCommentMemoryStorage_CreateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("Comment is appended to its post", func(t *testing.T) {
		f := newContentFixture(t)

		c, err := f.comments.CreateComment(ctx, &model.Comment{Content: "Nice", AuthorID: f.authorID, PostID: f.post.ID})
		require.NoError(t, err)
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, f.post.ID, c.PostID)
		assert.Equal(t, f.authorID, c.AuthorID)

		p, err := f.posts.GetPostById(ctx, f.post.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{c.ID}, p.CommentIDs)
	})

	t.Run("Unknown post leaves nothing behind", func(t *testing.T) {
		f := newContentFixture(t)

		_, err := f.comments.CreateComment(ctx, &model.Comment{Content: "Nice", AuthorID: f.authorID, PostID: "404"})
		assert.ErrorIs(t, err, model.ErrNotFound)

		assert.Empty(t, f.comments.comments)
		p, err := f.posts.GetPostById(ctx, f.post.ID)
		require.NoError(t, err)
		assert.Empty(t, p.CommentIDs)
	})

	t.Run("Unknown author", func(t *testing.T) {
		f := newContentFixture(t)

		_, err := f.comments.CreateComment(ctx, &model.Comment{Content: "Nice", AuthorID: "ghost", PostID: f.post.ID})
		assert.ErrorIs(t, err, model.ErrNotFound)

		p, err := f.posts.GetPostById(ctx, f.post.ID)
		require.NoError(t, err)
		assert.Empty(t, p.CommentIDs)
	})

	t.Run("Empty content", func(t *testing.T) {
		f := newContentFixture(t)

		_, err := f.comments.CreateComment(ctx, &model.Comment{Content: "", AuthorID: f.authorID, PostID: f.post.ID})
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("Concurrent comments keep post and store consistent", func(t *testing.T) {
		f := newContentFixture(t)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				_, err := f.comments.CreateComment(ctx, &model.Comment{Content: fmt.Sprintf("comment %d", idx), AuthorID: f.authorID, PostID: f.post.ID})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		p, err := f.posts.GetPostById(ctx, f.post.ID)
		require.NoError(t, err)
		list, err := f.comments.GetComments(ctx, f.post.ID, 0, 0)
		require.NoError(t, err)

		require.Len(t, p.CommentIDs, 20)
		require.Len(t, list, 20)
		for i, c := range list {
			assert.Equal(t, p.CommentIDs[i], c.ID)
			assert.Equal(t, f.post.ID, c.PostID)
		}
	})
}

func TestCommentMemoryStorage_GetComments(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture(t)

	for i := 1; i <= 5; i++ {
		_, err := f.comments.CreateComment(ctx, &model.Comment{Content: fmt.Sprintf("c%d", i), AuthorID: f.authorID, PostID: f.post.ID})
		require.NoError(t, err)
	}

	t.Run("All comments oldest first", func(t *testing.T) {
		list, err := f.comments.GetComments(ctx, f.post.ID, 0, 0)
		require.NoError(t, err)
		require.Len(t, list, 5)
		assert.Equal(t, "c1", list[0].Content)
		assert.Equal(t, "c5", list[4].Content)
	})

	t.Run("Limit and offset", func(t *testing.T) {
		list, err := f.comments.GetComments(ctx, f.post.ID, 2, 1)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "c2", list[0].Content)
		assert.Equal(t, "c3", list[1].Content)
	})

	t.Run("Offset past the end", func(t *testing.T) {
		list, err := f.comments.GetComments(ctx, f.post.ID, 10, 50)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Unknown post", func(t *testing.T) {
		_, err := f.comments.GetComments(ctx, "404", 10, 0)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		total, limit, offset int
		start, end           int
	}{
		{5, 0, 0, 0, 5},
		{5, 2, 0, 0, 2},
		{5, 2, 4, 4, 5},
		{5, 2, 9, 5, 5},
		{5, -1, -3, 0, 5},
		{5, math.MaxInt, 1, 1, 5},
		{5, math.MaxInt, 5, 5, 5},
		{0, math.MaxInt, math.MaxInt, 0, 0},
	}
	for _, tt := range tests {
		start, end := pageBounds(tt.total, tt.limit, tt.offset)
		assert.Equal(t, tt.start, start)
		assert.Equal(t, tt.end, end)
	}
}
