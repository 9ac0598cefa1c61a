package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VitaminP8/blogd/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	postsCollection    = "posts"
	commentsCollection = "comments"
)

// Connect подключается к MongoDB и проверяет соединение ping-ом.
// Для транзакций при создании комментария нужен replica set.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes создает индексы. Уникальный индекс по username и есть единственная
// защита от двух одновременных регистраций с одним именем.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_username"),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	_, err = db.Collection(commentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create comments index: %w", err)
	}

	_, err = db.Collection(postsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create posts index: %w", err)
	}
	return nil
}

func Disconnect(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

type postDoc struct {
	ID         primitive.ObjectID   `bson:"_id"`
	Title      string               `bson:"title"`
	Content    string               `bson:"content"`
	AuthorID   primitive.ObjectID   `bson:"author_id"`
	CommentIDs []primitive.ObjectID `bson:"comment_ids"`
	CreatedAt  time.Time            `bson:"created_at"`
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Content   string             `bson:"content"`
	AuthorID  primitive.ObjectID `bson:"author_id"`
	PostID    primitive.ObjectID `bson:"post_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

func parseID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s with ID %q: %w", kind, id, model.ErrNotFound)
	}
	return oid, nil
}

// requireDoc проверяет, что документ с таким _id существует.
func requireDoc(ctx context.Context, coll *mongo.Collection, kind string, id primitive.ObjectID) error {
	err := coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%s with ID %s: %w", kind, id.Hex(), model.ErrNotFound)
		}
		return fmt.Errorf("could not check %s: %w", kind, err)
	}
	return nil
}

// mongo хранит время с точностью до миллисекунд
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
