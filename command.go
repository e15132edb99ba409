package posts

import (
	"context"
	"time"

	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultRequestTimeout bounds a single command execution
const DefaultRequestTimeout = 10 * time.Second

type handlerOptions struct {
	logger    Logger
	activity  ActivitySink
	timeout   time.Duration
	useHashid bool
}

// HandlerOption configures the command handlers
type HandlerOption func(*handlerOptions)

// WithHandlerLogger sets the logger used by a handler
func WithHandlerLogger(logger Logger) HandlerOption {
	return func(o *handlerOptions) {
		o.logger = logger
	}
}

// WithActivitySink sets the sink receiving activity events
func WithActivitySink(sink ActivitySink) HandlerOption {
	return func(o *handlerOptions) {
		o.activity = sink
	}
}

// WithHandlerTimeout overrides DefaultRequestTimeout
func WithHandlerTimeout(timeout time.Duration) HandlerOption {
	return func(o *handlerOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHashidIDs derives user ids from the email address
func WithHashidIDs(enabled bool) HandlerOption {
	return func(o *handlerOptions) {
		o.useHashid = enabled
	}
}

func newHandlerOptions(opts ...HandlerOption) handlerOptions {
	o := handlerOptions{
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.logger = normalizeLogger(o.logger)
	o.activity = normalizeActivitySink(o.activity)
	return o
}

// newRunner bounds each execution by the handler timeout and turns panics
// into errors. Failures are reported to the caller only.
func (o handlerOptions) newRunner() *runner.Handler {
	return runner.NewHandler(
		runner.WithTimeout(o.timeout),
		runner.WithErrorHandler(nil),
		runner.WithDoneHandler(nil),
	)
}

func cancelledError(ctx context.Context, op string) error {
	return goerrors.Wrap(
		ctx.Err(),
		goerrors.CategoryOperation,
		"context cancelled during "+op,
	)
}
