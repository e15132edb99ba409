package posts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-posts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreatePostHandler_Success(t *testing.T) {
	repo := newMockRepositoryManager()
	sink := &capturingSink{}
	author := &posts.User{ID: uuid.New(), Name: "Ana"}
	postID := uuid.New()

	repo.users.On("GetByID", mock.Anything, author.ID.String()).Return(author, nil).Once()
	repo.posts.On("Insert", mock.Anything, mock.MatchedBy(func(p *posts.Post) bool {
		return p.UserID == author.ID && p.Title == "Hello" && p.Body == "World"
	})).Return(&posts.Post{ID: postID, UserID: author.ID, Title: "Hello", Body: "World"}, nil).Once()

	handler := posts.NewCreatePostHandler(repo, posts.WithActivitySink(sink))

	post, err := handler.Execute(context.Background(), posts.CreatePostMessage{
		SubjectID: author.ID.String(),
		Title:     "Hello",
		Body:      "World",
	})
	require.NoError(t, err)
	assert.Equal(t, postID, post.ID)
	assert.Equal(t, author.ID, post.UserID)

	require.Len(t, sink.events, 1)
	assert.Equal(t, posts.ActivityEventPostCreated, sink.events[0].EventType)
	assert.Equal(t, postID.String(), sink.events[0].Metadata["post_id"])

	repo.users.AssertExpectations(t)
	repo.posts.AssertExpectations(t)
}

func TestCreatePostHandler_MissingSubject(t *testing.T) {
	repo := newMockRepositoryManager()
	handler := posts.NewCreatePostHandler(repo)

	_, err := handler.Execute(context.Background(), posts.CreatePostMessage{Title: "a", Body: "b"})
	assert.ErrorIs(t, err, posts.ErrUnauthorized)
}

func TestCreatePostHandler_Validation(t *testing.T) {
	repo := newMockRepositoryManager()
	handler := posts.NewCreatePostHandler(repo)

	_, err := handler.Execute(context.Background(), posts.CreatePostMessage{SubjectID: uuid.NewString()})
	require.Error(t, err)

	fields := posts.ValidationFields(err)
	require.Len(t, fields, 2)
	assert.Equal(t, posts.MessageTitleRequired, fields[0].Msg)
	assert.Equal(t, posts.MessageBodyRequired, fields[1].Msg)

	repo.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	repo.posts.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreatePostHandler_UnknownSubject(t *testing.T) {
	repo := newMockRepositoryManager()
	subject := uuid.NewString()
	repo.users.On("GetByID", mock.Anything, subject).Return(nil, posts.ErrUserNotFound).Once()

	handler := posts.NewCreatePostHandler(repo)

	_, err := handler.Execute(context.Background(), posts.CreatePostMessage{
		SubjectID: subject,
		Title:     "Hello",
		Body:      "World",
	})
	assert.ErrorIs(t, err, posts.ErrUnauthorized)
	repo.posts.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreatePostHandler_StoreFailure(t *testing.T) {
	repo := newMockRepositoryManager()
	author := &posts.User{ID: uuid.New()}
	repo.users.On("GetByID", mock.Anything, author.ID.String()).Return(author, nil).Once()
	repo.posts.On("Insert", mock.Anything, mock.Anything).
		Return(nil, posts.NewStoreError(errors.New("disk full"), "failed to insert post")).Once()

	handler := posts.NewCreatePostHandler(repo)

	_, err := handler.Execute(context.Background(), posts.CreatePostMessage{
		SubjectID: author.ID.String(),
		Title:     "Hello",
		Body:      "World",
	})
	assert.True(t, posts.HasTextCode(err, posts.TextCodeStoreFailed))
}
