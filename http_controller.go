package posts

import (
	"net/http"

	"github.com/goliatone/go-router"
)

const (
	DefaultCORSOrigin  = "http://localhost:5000"
	DefaultTokenHeader = "x-auth-token"
	// RootMessage is the body served on GET /
	RootMessage = "http get request sent to root api endpoint"
)

type PostsControllerRoutes struct {
	Root  string
	Users string
	Posts string
}

type PostsController struct {
	AccessLog bool
	Logger    Logger
	Repo      RepositoryManager
	Hasher    PasswordHasher
	Tokens    TokenService
	Activity  ActivitySink
	Config    Config
	Routes    *PostsControllerRoutes

	register   *RegisterUserHandler
	createPost *CreatePostHandler
}

type PostsControllerOption func(*PostsController) *PostsController

func WithControllerLogger(logger Logger) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.Logger = logger
		return c
	}
}

func WithRepositoryManager(repo RepositoryManager) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.Repo = repo
		return c
	}
}

func WithPasswordHasher(hasher PasswordHasher) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.Hasher = hasher
		return c
	}
}

func WithTokenService(tokens TokenService) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.Tokens = tokens
		return c
	}
}

func WithControllerActivity(sink ActivitySink) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.Activity = sink
		return c
	}
}

func WithConfig(cfg Config) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.Config = cfg
		return c
	}
}

// WithAccessLog enables the request access log
func WithAccessLog(enabled bool) PostsControllerOption {
	return func(c *PostsController) *PostsController {
		c.AccessLog = enabled
		return c
	}
}

func NewPostsController(opts ...PostsControllerOption) *PostsController {
	c := &PostsController{
		Logger: defLogger{},
		Hasher: NewBcryptHasher(0),
		Routes: &PostsControllerRoutes{
			Root:  "/",
			Users: "/api/users",
			Posts: "/api/posts",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	c.Logger = normalizeLogger(c.Logger)

	if c.Repo == nil {
		panic("Missing RepositoryManager in posts controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in posts controller...")
	}

	c.register = NewRegisterUserHandler(c.Repo, c.Hasher, c.Tokens, c.handlerOptions()...)
	c.createPost = NewCreatePostHandler(c.Repo, c.handlerOptions()...)

	return c
}

func (a *PostsController) handlerOptions() []HandlerOption {
	opts := []HandlerOption{
		WithHandlerLogger(a.Logger),
		WithActivitySink(a.Activity),
	}
	if a.Config != nil {
		opts = append(opts,
			WithHandlerTimeout(a.Config.GetRequestTimeout()),
			WithHashidIDs(a.Config.GetUseHashid()),
		)
	}
	return opts
}

// RegisterRoutes mounts the public and protected routes on app
func RegisterRoutes[T any](app router.Router[T], controller *PostsController) {
	app.Get(controller.Routes.Root, controller.Root).
		SetName("root.get")

	app.Post(controller.Routes.Users, controller.RegisterUser).
		SetName("users.post")

	protected := ProtectedRoute(controller.Config, controller.Tokens,
		WithHandlerLogger(controller.Logger),
		WithActivitySink(controller.Activity),
	)

	app.Post(controller.Routes.Posts, controller.CreatePost, protected).
		SetName("posts.post")
}

func (a *PostsController) Root(ctx router.Context) error {
	return ctx.SendString(RootMessage)
}

type RegistrationPayload struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (a *PostsController) RegisterUser(ctx router.Context) error {
	payload := new(RegistrationPayload)

	if err := ctx.Bind(payload); err != nil {
		// an unreadable body is validated as an empty one
		a.Logger.Debug("register user parse payload", "error", err)
		payload = new(RegistrationPayload)
	}

	res, err := a.register.Execute(ctx.Context(), RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, res)
}

// PostPayload deliberately has no author field, the author comes from the token
type PostPayload struct {
	Title string `json:"title" form:"title"`
	Body  string `json:"body" form:"body"`
}

func (a *PostsController) CreatePost(ctx router.Context) error {
	subject, ok := SubjectFromContext(ctx.Context())
	if !ok {
		return ErrUnauthorized
	}

	payload := new(PostPayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Debug("create post parse payload", "error", err)
		payload = new(PostPayload)
	}

	post, err := a.createPost.Execute(ctx.Context(), CreatePostMessage{
		SubjectID: subject,
		Title:     payload.Title,
		Body:      payload.Body,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, post)
}
