package persistence_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-posts"
	"github.com/goliatone/go-posts/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func memoryDSN() string {
	return "file:" + uuid.NewString() + "?mode=memory&cache=shared"
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		dsn    string
		driver string
	}{
		{dsn: "postgres://app@localhost/posts", driver: persistence.DriverPostgres},
		{dsn: "postgresql://app@localhost/posts", driver: persistence.DriverPostgres},
		{dsn: "mongodb://localhost:27017", driver: persistence.DriverMongo},
		{dsn: "mongodb+srv://cluster.example.net", driver: persistence.DriverMongo},
		{dsn: "file:posts.db?cache=shared", driver: persistence.DriverSQLite},
		{dsn: "", driver: persistence.DriverSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.driver, persistence.DriverFor(tt.dsn))
		})
	}
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()

	store, err := persistence.Open(ctx, persistence.Options{DatabaseURL: memoryDSN(), Logger: nopLogger{}})
	require.NoError(t, err)
	defer store.Close(ctx)

	assert.Equal(t, persistence.DriverSQLite, store.Driver)
	require.NoError(t, store.Repo.Validate())

	user, err := store.Repo.Users().Insert(ctx, &posts.User{
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NotNil(t, user.CreatedAt)

	found, err := store.Repo.Users().GetByID(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", found.Email)

	byEmail, err := store.Repo.Users().FindByEmail(ctx, " ana@example.com ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = store.Repo.Users().FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, posts.ErrUserNotFound)

	_, err = store.Repo.Users().GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, posts.ErrUserNotFound)

	_, err = store.Repo.Users().GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, posts.ErrUserNotFound)

	post, err := store.Repo.Posts().Insert(ctx, &posts.Post{UserID: user.ID, Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, post.ID)
	assert.Equal(t, user.ID, post.UserID)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()

	store, err := persistence.Open(ctx, persistence.Options{DatabaseURL: memoryDSN(), Logger: nopLogger{}})
	require.NoError(t, err)
	defer store.Close(ctx)

	require.NoError(t, persistence.Migrate(ctx, store.DB, persistence.DriverSQLite, nopLogger{}))
}

func TestMigrate_UnknownDialect(t *testing.T) {
	ctx := context.Background()

	store, err := persistence.Open(ctx, persistence.Options{DatabaseURL: memoryDSN(), Logger: nopLogger{}})
	require.NoError(t, err)
	defer store.Close(ctx)

	assert.Error(t, persistence.Migrate(ctx, store.DB, "oracle", nopLogger{}))
}

func TestOpen_SQLiteEnforcesForeignKeys(t *testing.T) {
	ctx := context.Background()

	store, err := persistence.Open(ctx, persistence.Options{DatabaseURL: memoryDSN(), Logger: nopLogger{}})
	require.NoError(t, err)
	defer store.Close(ctx)

	var enabled int
	require.NoError(t, store.DB.NewRaw("PRAGMA foreign_keys").Scan(ctx, &enabled))
	assert.Equal(t, 1, enabled)

	_, err = store.Repo.Posts().Insert(ctx, &posts.Post{UserID: uuid.New(), Title: "t", Body: "b"})
	assert.Error(t, err)
}

func TestOpen_MigrationsRecorded(t *testing.T) {
	ctx := context.Background()

	store, err := persistence.Open(ctx, persistence.Options{DatabaseURL: memoryDSN(), Logger: nopLogger{}})
	require.NoError(t, err)
	defer store.Close(ctx)

	var applied int
	require.NoError(t, store.DB.NewRaw("SELECT count(*) FROM bun_migrations").Scan(ctx, &applied))
	assert.GreaterOrEqual(t, applied, 2)
}
