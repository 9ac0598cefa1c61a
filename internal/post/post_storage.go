package post

import (
	"context"

	"github.com/VitaminP8/blogd/internal/model"
)

type PostStorage interface {
	CreatePost(ctx context.Context, post *model.Post) (*model.Post, error)
	GetPostById(ctx context.Context, id string) (*model.Post, error)
	GetAllPosts(ctx context.Context) ([]*model.Post, error)
}
