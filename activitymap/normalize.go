package activitymap

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-posts"
	"github.com/goliatone/go-print"
)

const (
	// MetadataKeyPostID is where post.created events carry the new post id.
	MetadataKeyPostID = "post_id"
	// MetadataKeyPath is where auth.rejected events carry the request path.
	MetadataKeyPath = "path"
)

const (
	defaultChannel = "posts"
	defaultActorID = "anonymous"
)

const (
	ObjectTypeUser    = "user"
	ObjectTypePost    = "post"
	ObjectTypeRequest = "request"
)

// Normalized is a transport-agnostic activity shape for downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	actorFallback string
}

// Normalize converts a posts.ActivityEvent into a generic normalized shape.
func Normalize(event posts.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := firstNonEmpty(
		strings.TrimSpace(event.UserID),
		strings.TrimSpace(options.actorFallback),
	)

	objectType, objectID := resolveObject(event)

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(options.channel),
		Metadata:   cloneMap(event.Metadata),
		OccurredAt: occurredAt,
	}
}

// WithDefaultChannel sets the default channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithActorFallback sets the actor id used when the event has no user.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

// Sink returns an ActivitySink that logs every event in normalized form
func Sink(logger posts.Logger, opts ...Option) posts.ActivitySink {
	if logger == nil {
		logger = posts.DefaultLogger()
	}
	return posts.ActivitySinkFunc(func(_ context.Context, event posts.ActivityEvent) error {
		logger.Info("activity", "event", print.MaybePrettyJSON(Normalize(event, opts...)))
		return nil
	})
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		actorFallback: defaultActorID,
	}
}

func resolveObject(event posts.ActivityEvent) (string, string) {
	switch event.EventType {
	case posts.ActivityEventPostCreated:
		return ObjectTypePost, metadataString(event.Metadata, MetadataKeyPostID)
	case posts.ActivityEventAuthRejected:
		return ObjectTypeRequest, metadataString(event.Metadata, MetadataKeyPath)
	default:
		return ObjectTypeUser, strings.TrimSpace(event.UserID)
	}
}

func metadataString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	value, _ := metadata[key].(string)
	return strings.TrimSpace(value)
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
