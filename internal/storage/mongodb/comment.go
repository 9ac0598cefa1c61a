package mongodb

import (
	"context"
	"fmt"

	"github.com/VitaminP8/blogd/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentMongoStorage struct {
	client   *mongo.Client
	users    *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
}

func NewCommentMongoStorage(db *mongo.Database) *CommentMongoStorage {
	return &CommentMongoStorage{
		client:   db.Client(),
		users:    db.Collection(usersCollection),
		posts:    db.Collection(postsCollection),
		comments: db.Collection(commentsCollection),
	}
}

// CreateComment вставляет комментарий и делает $push его id в пост внутри
// одной транзакции: либо сохраняется и то и другое, либо ничего.
func (s *CommentMongoStorage) CreateComment(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	authorID, err := parseID("author", c.AuthorID)
	if err != nil {
		return nil, err
	}
	postID, err := parseID("post", c.PostID)
	if err != nil {
		return nil, err
	}

	doc := commentDoc{
		ID:        primitive.NewObjectID(),
		Content:   c.Content,
		AuthorID:  authorID,
		PostID:    postID,
		CreatedAt: now(),
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, s.insertAttached(sc, doc)
	})
	if err != nil {
		return nil, err
	}

	return toComment(&doc), nil
}

// insertAttached проверяет автора, добавляет id в comment_ids поста и вставляет
// комментарий. Вызывается внутри транзакции: любая ошибка откатывает все шаги.
func (s *CommentMongoStorage) insertAttached(ctx context.Context, doc commentDoc) error {
	if err := requireDoc(ctx, s.users, "author", doc.AuthorID); err != nil {
		return err
	}

	res, err := s.posts.UpdateOne(ctx, bson.M{"_id": doc.PostID}, bson.M{"$push": bson.M{"comment_ids": doc.ID}})
	if err != nil {
		return fmt.Errorf("could not attach comment to post: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("post with ID %s: %w", doc.PostID.Hex(), model.ErrNotFound)
	}

	if _, err := s.comments.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("could not create comment: %w", err)
	}
	return nil
}

func (s *CommentMongoStorage) GetComments(ctx context.Context, postID string, limit, offset int) ([]*model.Comment, error) {
	pid, err := parseID("post", postID)
	if err != nil {
		return nil, err
	}
	if err := requireDoc(ctx, s.posts, "post", pid); err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}

	cursor, err := s.comments.Find(ctx, bson.M{"post_id": pid}, opts)
	if err != nil {
		return nil, fmt.Errorf("could not get comments: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []commentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("could not decode comments: %w", err)
	}

	results := make([]*model.Comment, 0, len(docs))
	for i := range docs {
		results = append(results, toComment(&docs[i]))
	}
	return results, nil
}

func toComment(doc *commentDoc) *model.Comment {
	return &model.Comment{
		ID:        doc.ID.Hex(),
		Content:   doc.Content,
		AuthorID:  doc.AuthorID.Hex(),
		PostID:    doc.PostID.Hex(),
		CreatedAt: doc.CreatedAt,
	}
}
