package posts

import (
	"errors"
	"log"

	"github.com/uptrace/bun"
)

type mngr struct {
	db    *bun.DB
	users Users
	posts Posts
}

// NewRepositoryManager returns the bun backed repositories
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:    db,
		users: NewUsersRepository(db),
		posts: NewPostsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository db should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.posts == nil {
		return errors.New("repository posts should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Posts() Posts {
	return m.posts
}
