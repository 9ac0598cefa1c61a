package comment

import (
	"context"

	"github.com/VitaminP8/blogd/internal/model"
)

// CommentStorage создает комментарий и добавляет его id в пост одной атомарной операцией.
type CommentStorage interface {
	CreateComment(ctx context.Context, comment *model.Comment) (*model.Comment, error)
	GetComments(ctx context.Context, postID string, limit, offset int) ([]*model.Comment, error)
}
