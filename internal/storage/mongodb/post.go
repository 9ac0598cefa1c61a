package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/VitaminP8/blogd/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostMongoStorage struct {
	users *mongo.Collection
	posts *mongo.Collection
}

func NewPostMongoStorage(db *mongo.Database) *PostMongoStorage {
	return &PostMongoStorage{
		users: db.Collection(usersCollection),
		posts: db.Collection(postsCollection),
	}
}

func (s *PostMongoStorage) CreatePost(ctx context.Context, p *model.Post) (*model.Post, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	authorID, err := parseID("author", p.AuthorID)
	if err != nil {
		return nil, err
	}

	if err := requireDoc(ctx, s.users, "author", authorID); err != nil {
		return nil, err
	}

	doc := postDoc{
		ID:         primitive.NewObjectID(),
		Title:      p.Title,
		Content:    p.Content,
		AuthorID:   authorID,
		CommentIDs: []primitive.ObjectID{},
		CreatedAt:  now(),
	}

	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("could not create post: %w", err)
	}
	return toPost(&doc), nil
}

func (s *PostMongoStorage) GetPostById(ctx context.Context, id string) (*model.Post, error) {
	oid, err := parseID("post", id)
	if err != nil {
		return nil, err
	}

	var doc postDoc
	err = s.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("post with ID %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get post by id: %w", err)
	}
	return toPost(&doc), nil
}

func (s *PostMongoStorage) GetAllPosts(ctx context.Context) ([]*model.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("could not get posts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []postDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("could not decode posts: %w", err)
	}

	results := make([]*model.Post, 0, len(docs))
	for i := range docs {
		results = append(results, toPost(&docs[i]))
	}
	return results, nil
}

func toPost(doc *postDoc) *model.Post {
	ids := make([]string, 0, len(doc.CommentIDs))
	for _, id := range doc.CommentIDs {
		ids = append(ids, id.Hex())
	}
	return &model.Post{
		ID:         doc.ID.Hex(),
		Title:      doc.Title,
		Content:    doc.Content,
		AuthorID:   doc.AuthorID.Hex(),
		CommentIDs: ids,
		CreatedAt:  doc.CreatedAt,
	}
}
