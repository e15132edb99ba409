package repository

import (
	"time"

	"github.com/goliatone/go-posts"
	"github.com/google/uuid"
)

// UserDocument is the mongo shape of a user. Ids are stored as strings so
// they stay identical to the SQL backends.
type UserDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

// PostDocument is the mongo shape of a post
type PostDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Title     string    `bson:"title"`
	Body      string    `bson:"body"`
	CreatedAt time.Time `bson:"created_at"`
}

func userToDocument(u *posts.User) UserDocument {
	doc := UserDocument{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}
	if u.CreatedAt != nil {
		doc.CreatedAt = *u.CreatedAt
	}
	return doc
}

func (d UserDocument) toUser() (*posts.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	createdAt := d.CreatedAt.UTC()
	return &posts.User{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    &createdAt,
	}, nil
}

func postToDocument(p *posts.Post) PostDocument {
	doc := PostDocument{
		ID:     p.ID.String(),
		UserID: p.UserID.String(),
		Title:  p.Title,
		Body:   p.Body,
	}
	if p.CreatedAt != nil {
		doc.CreatedAt = *p.CreatedAt
	}
	return doc
}
