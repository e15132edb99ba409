package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-posts"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection = "users"
	emailIndexName  = "users_email_key"
)

// MongoUserRepository implements posts.Users on a mongo collection
type MongoUserRepository struct {
	coll *mongo.Collection
}

var _ posts.Users = (*MongoUserRepository)(nil)

// NewMongoUserRepository creates a new repository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique email index
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(emailIndexName),
	})
	if err != nil {
		return posts.NewStoreError(err, "failed to create users email index")
	}
	return nil
}

// FindByEmail implements posts.Users.
func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*posts.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.TrimSpace(email)})
}

// GetByID implements posts.Users.
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*posts.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, posts.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*posts.User, error) {
	var doc UserDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, posts.ErrUserNotFound
		}
		return nil, posts.NewStoreError(err, "failed to look up user")
	}

	user, err := doc.toUser()
	if err != nil {
		return nil, posts.NewStoreError(err, "stored user has an invalid id")
	}
	return user, nil
}

// Insert implements posts.Users.
func (r *MongoUserRepository) Insert(ctx context.Context, user *posts.User) (*posts.User, error) {
	posts.PrepareUser(user)

	if _, err := r.coll.InsertOne(ctx, userToDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, posts.ErrUserAlreadyExists
		}
		return nil, posts.NewStoreError(err, "failed to insert user")
	}

	return user, nil
}
