package posts

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type postsRepository struct {
	repository.Repository[*Post]
	db *bun.DB
}

var _ Posts = (*postsRepository)(nil)

// NewPostsRepository returns the bun backed post store
func NewPostsRepository(db *bun.DB) Posts {
	repo := repository.NewRepository[*Post](db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &postsRepository{
		Repository: repo,
		db:         db,
	}
}

func (a *postsRepository) Insert(ctx context.Context, post *Post) (*Post, error) {
	return a.InsertTx(ctx, a.db, post)
}

func (a *postsRepository) InsertTx(ctx context.Context, tx bun.IDB, post *Post) (*Post, error) {
	preparePostDefaults(post)

	record, err := a.Repository.CreateTx(ctx, tx, post)
	if err != nil {
		return nil, NewStoreError(err, "failed to insert post")
	}

	return record, nil
}
