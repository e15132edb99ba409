package posts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Post is the post model. UserID always holds the authenticated author.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user"`
	Title         string     `bun:"title,notnull" json:"title"`
	Body          string     `bun:"body,notnull" json:"body"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

func prepareUserDefaults(u *User) {
	if u == nil {
		return
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt == nil {
		now := time.Now().UTC()
		u.CreatedAt = &now
	}
}

func preparePostDefaults(p *Post) {
	if p == nil {
		return
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt == nil {
		now := time.Now().UTC()
		p.CreatedAt = &now
	}
}

// PrepareUser assigns the id and creation time stores are expected to set
func PrepareUser(u *User) *User {
	prepareUserDefaults(u)
	return u
}

// PreparePost assigns the id and creation time stores are expected to set
func PreparePost(p *Post) *Post {
	preparePostDefaults(p)
	return p
}
