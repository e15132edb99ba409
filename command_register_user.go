package posts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-command"
	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

const (
	MessageNameRequired  = "Please enter your name"
	MessageEmailInvalid  = "Please enter a valid email"
	MessagePasswordShort = "Please enter a password with 6 or more characters"
	MessagePasswordLong  = "Please enter a password with at most 72 bytes"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// MaxPasswordBytes is the bcrypt input limit, counted in bytes not runes
const MaxPasswordBytes = 72

var _ command.Message = RegisterUserMessage{}

type RegisterUserMessage struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate reports every violated rule, in field order
func (e RegisterUserMessage) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Name,
			validation.Required.Error(MessageNameRequired),
		),
		validation.Field(&e.Email,
			validation.Required.Error(MessageEmailInvalid),
			is.Email.Error(MessageEmailInvalid),
		),
		validation.Field(&e.Password,
			validation.Required.Error(MessagePasswordShort),
			validation.Length(MinPasswordLength, 0).Error(MessagePasswordShort),
			validation.By(passwordFitsHash),
		),
	)
	return validatePayload(http.StatusUnprocessableEntity, err, "name", "email", "password")
}

func passwordFitsHash(value interface{}) error {
	password, _ := value.(string)
	if len(password) > MaxPasswordBytes {
		return errors.New(MessagePasswordLong)
	}
	return nil
}

type RegisterUserResponse struct {
	Token string `json:"token"`
}

type RegisterUserHandler struct {
	repo   RepositoryManager
	hasher PasswordHasher
	tokens TokenService
	runner *runner.Handler
	handlerOptions
}

// NewRegisterUserHandler wires the registration flow
func NewRegisterUserHandler(repo RepositoryManager, hasher PasswordHasher, tokens TokenService, opts ...HandlerOption) *RegisterUserHandler {
	o := newHandlerOptions(opts...)
	return &RegisterUserHandler{
		repo:           repo,
		hasher:         hasher,
		tokens:         tokens,
		runner:         o.newRunner(),
		handlerOptions: o,
	}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*RegisterUserResponse, error) {
	select {
	case <-ctx.Done():
		return nil, cancelledError(ctx, "user registration")
	default:
		return runner.RunQuery[RegisterUserMessage, *RegisterUserResponse](ctx, h.runner,
			command.QueryFunc[RegisterUserMessage, *RegisterUserResponse](h.execute), event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*RegisterUserResponse, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	existing, err := h.repo.Users().FindByEmail(ctx, event.Email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrUserAlreadyExists
	case err != nil && !goerrors.Is(err, ErrUserNotFound):
		return nil, err
	}

	hash, err := h.hasher.Hash(event.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Name:         event.Name,
		Email:        strings.TrimSpace(event.Email),
		PasswordHash: hash,
	}

	if h.useHashid {
		if id, err := hashid.NewUUID(user.Email); err == nil {
			user.ID = id
		} else {
			h.logger.Error("hashid failed, falling back to random id", "error", err)
		}
	}

	if user, err = h.repo.Users().Insert(ctx, user); err != nil {
		return nil, err
	}

	token, err := h.tokens.Generate(user.ID.String(), 0)
	if err != nil {
		return nil, err
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventUserRegistered,
		UserID:    user.ID.String(),
		Metadata: map[string]any{
			"email": user.Email,
		},
	})

	return &RegisterUserResponse{Token: token}, nil
}
