package posts

import (
	"context"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-command"
	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"
)

const (
	MessageTitleRequired = "Title text is required"
	MessageBodyRequired  = "Body text is required"
)

var _ command.Message = CreatePostMessage{}

// CreatePostMessage carries the author from the verified token, never from
// the request body.
type CreatePostMessage struct {
	SubjectID string `json:"-"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

func (e CreatePostMessage) Type() string { return "post.create" }

func (e CreatePostMessage) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Title, validation.Required.Error(MessageTitleRequired)),
		validation.Field(&e.Body, validation.Required.Error(MessageBodyRequired)),
	)
	return validatePayload(http.StatusBadRequest, err, "title", "body")
}

type CreatePostHandler struct {
	repo   RepositoryManager
	runner *runner.Handler
	handlerOptions
}

// NewCreatePostHandler wires the post creation flow
func NewCreatePostHandler(repo RepositoryManager, opts ...HandlerOption) *CreatePostHandler {
	o := newHandlerOptions(opts...)
	return &CreatePostHandler{
		repo:           repo,
		runner:         o.newRunner(),
		handlerOptions: o,
	}
}

func (h *CreatePostHandler) Execute(ctx context.Context, event CreatePostMessage) (*Post, error) {
	select {
	case <-ctx.Done():
		return nil, cancelledError(ctx, "post creation")
	default:
		return runner.RunQuery[CreatePostMessage, *Post](ctx, h.runner,
			command.QueryFunc[CreatePostMessage, *Post](h.execute), event)
	}
}

func (h *CreatePostHandler) execute(ctx context.Context, event CreatePostMessage) (*Post, error) {
	if event.SubjectID == "" {
		return nil, ErrUnauthorized
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	author, err := h.repo.Users().GetByID(ctx, event.SubjectID)
	if err != nil {
		if goerrors.Is(err, ErrUserNotFound) {
			h.logger.Info("token subject has no user record", "subject", event.SubjectID)
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	post, err := h.repo.Posts().Insert(ctx, &Post{
		UserID: author.ID,
		Title:  event.Title,
		Body:   event.Body,
	})
	if err != nil {
		return nil, err
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventPostCreated,
		UserID:    author.ID.String(),
		Metadata: map[string]any{
			"post_id": post.ID.String(),
		},
	})

	return post, nil
}
