package posts_test

import (
	"context"
	"time"

	"github.com/goliatone/go-posts"
	"github.com/stretchr/testify/mock"
)

// MockUsers implements posts.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) FindByEmail(ctx context.Context, email string) (*posts.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*posts.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id string) (*posts.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*posts.User)
	return user, args.Error(1)
}

func (m *MockUsers) Insert(ctx context.Context, user *posts.User) (*posts.User, error) {
	args := m.Called(ctx, user)
	out, _ := args.Get(0).(*posts.User)
	return out, args.Error(1)
}

// MockPosts implements posts.Posts
type MockPosts struct {
	mock.Mock
}

func (m *MockPosts) Insert(ctx context.Context, post *posts.Post) (*posts.Post, error) {
	args := m.Called(ctx, post)
	out, _ := args.Get(0).(*posts.Post)
	return out, args.Error(1)
}

// MockRepositoryManager implements posts.RepositoryManager
type MockRepositoryManager struct {
	users *MockUsers
	posts *MockPosts
}

func newMockRepositoryManager() *MockRepositoryManager {
	return &MockRepositoryManager{users: new(MockUsers), posts: new(MockPosts)}
}

func (m *MockRepositoryManager) Validate() error { return nil }
func (m *MockRepositoryManager) MustValidate()   {}
func (m *MockRepositoryManager) Users() posts.Users {
	return m.users
}
func (m *MockRepositoryManager) Posts() posts.Posts {
	return m.posts
}

// MockTokenService implements posts.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Generate(subjectID string, ttl time.Duration) (string, error) {
	args := m.Called(subjectID, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(token string) (posts.AuthClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(posts.AuthClaims)
	return claims, args.Error(1)
}

// MockHasher implements posts.PasswordHasher
type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Verify(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

type capturingSink struct {
	events []posts.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt posts.ActivityEvent) error {
	c.events = append(c.events, evt)
	return nil
}
