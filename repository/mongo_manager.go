package repository

import (
	"context"
	"errors"
	"log"

	"github.com/goliatone/go-posts"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRepositoryManager groups the mongo repositories
type MongoRepositoryManager struct {
	db    *mongo.Database
	users *MongoUserRepository
	posts *MongoPostRepository
}

// NewMongoRepositoryManager returns the mongo backed repositories. Call
// EnsureIndexes before serving traffic.
func NewMongoRepositoryManager(db *mongo.Database) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		db:    db,
		users: NewMongoUserRepository(db),
		posts: NewMongoPostRepository(db),
	}
}

var _ posts.RepositoryManager = (*MongoRepositoryManager)(nil)

func (m MongoRepositoryManager) Validate() error {
	if m.db == nil {
		return errors.New("repository database should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.posts == nil {
		return errors.New("repository posts should be initialized")
	}

	return nil
}

func (m MongoRepositoryManager) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m MongoRepositoryManager) EnsureIndexes(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.users.EnsureIndexes(ctx)
	}
}

func (m MongoRepositoryManager) Users() posts.Users {
	return m.users
}

func (m MongoRepositoryManager) Posts() posts.Posts {
	return m.posts
}
