package repository

import (
	"context"

	"github.com/goliatone/go-posts"
	"go.mongodb.org/mongo-driver/mongo"
)

const PostsCollection = "posts"

// MongoPostRepository implements posts.Posts on a mongo collection
type MongoPostRepository struct {
	coll *mongo.Collection
}

var _ posts.Posts = (*MongoPostRepository)(nil)

func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{coll: db.Collection(PostsCollection)}
}

// Insert implements posts.Posts.
func (r *MongoPostRepository) Insert(ctx context.Context, post *posts.Post) (*posts.Post, error) {
	posts.PreparePost(post)

	if _, err := r.coll.InsertOne(ctx, postToDocument(post)); err != nil {
		return nil, posts.NewStoreError(err, "failed to insert post")
	}

	return post, nil
}
