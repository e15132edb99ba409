package posts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareUserAssignsDefaults(t *testing.T) {
	u := PrepareUser(&User{Email: "ana@example.com"})

	assert.NotEqual(t, uuid.Nil, u.ID)
	require.NotNil(t, u.CreatedAt)
	assert.Equal(t, time.UTC, u.CreatedAt.Location())
}

func TestPrepareUserKeepsExistingValues(t *testing.T) {
	id := uuid.New()
	created := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	u := PrepareUser(&User{ID: id, CreatedAt: &created})

	assert.Equal(t, id, u.ID)
	assert.Equal(t, created, *u.CreatedAt)
	assert.Nil(t, PrepareUser(nil))
}

func TestPreparePostAssignsDefaults(t *testing.T) {
	author := uuid.New()
	p := PreparePost(&Post{UserID: author, Title: "t", Body: "b"})

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.NotEqual(t, author, p.ID)
	assert.NotNil(t, p.CreatedAt)
	assert.Nil(t, PreparePost(nil))
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	raw, err := json.Marshal(&User{
		ID:           uuid.New(),
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: "$2a$10$secret",
	})
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "password")
}

func TestPostJSONShape(t *testing.T) {
	author := uuid.New()
	raw, err := json.Marshal(PreparePost(&Post{UserID: author, Title: "t", Body: "b"}))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, author.String(), out["user"])
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "title")
	assert.Contains(t, out, "body")
	assert.Contains(t, out, "created_at")
}
