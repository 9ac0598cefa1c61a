package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/VitaminP8/blogd/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserMongoStorage struct {
	users *mongo.Collection
}

func NewUserMongoStorage(db *mongo.Database) *UserMongoStorage {
	return &UserMongoStorage{users: db.Collection(usersCollection)}
}

func (s *UserMongoStorage) InsertUser(ctx context.Context, u *model.User) (string, error) {
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    now(),
	}

	_, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("user %s: %w", u.Username, model.ErrDuplicateUsername)
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (s *UserMongoStorage) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"username": username}, "user "+username)
}

func (s *UserMongoStorage) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := parseID("user", id)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": oid}, "user with ID "+id)
}

func (s *UserMongoStorage) findOne(ctx context.Context, filter bson.M, what string) (*model.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", what, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not find user: %w", err)
	}

	return &model.User{
		ID:           doc.ID.Hex(),
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}, nil
}
