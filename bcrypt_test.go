package posts_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-posts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := posts.HashPassword(tt.password)

			if tt.wantErr {
				assert.ErrorIs(t, err, posts.ErrNoEmptyString)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotContains(t, hash, tt.password)

			err = posts.ComparePasswordAndHash(tt.password, hash)
			assert.NoError(t, err)
		})
	}
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := posts.HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  bool
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
			wantErr:  false,
		},
		{
			name:     "Wrong password",
			password: "wrongPassword",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Invalid hash",
			password: password,
			hash:     "invalidhash",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := posts.ComparePasswordAndHash(tt.password, tt.hash)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBcryptHasher_SaltsEveryHash(t *testing.T) {
	hasher := posts.NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("123456")
	require.NoError(t, err)
	second, err := hasher.Hash("123456")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("123456", first))
	assert.True(t, hasher.Verify("123456", second))
	assert.False(t, hasher.Verify("1234567", first))
	assert.False(t, hasher.Verify("123456", "not-a-hash"))
}

func TestBcryptHasher_Cost(t *testing.T) {
	hasher := posts.NewBcryptHasher(bcrypt.MinCost + 1)
	assert.Equal(t, bcrypt.MinCost+1, hasher.Cost())

	hash, err := hasher.Hash("secret-pass")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)

	fallback := posts.NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.GreaterOrEqual(t, fallback.Cost(), bcrypt.MinCost)
	assert.LessOrEqual(t, fallback.Cost(), bcrypt.DefaultCost)
}

func TestBcryptHasher_LongPassword(t *testing.T) {
	hasher := posts.NewBcryptHasher(bcrypt.MinCost)

	// bcrypt refuses inputs above 72 bytes
	_, err := hasher.Hash(strings.Repeat("a", 100))
	require.Error(t, err)
	assert.True(t, posts.HasTextCode(err, posts.TextCodeHashingFailed))
}

func TestBcryptHasher_PasswordTooLong(t *testing.T) {
	hasher := posts.NewBcryptHasher(bcrypt.MinCost)

	_, err := hasher.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, posts.ErrPasswordTooLong)
	assert.True(t, posts.HasTextCode(err, posts.TextCodePasswordTooLong))

	hash, err := hasher.Hash(strings.Repeat("a", 72))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}
