package gemini

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/liverelay/core/binder"
	"github.com/dmitrymomot/liverelay/core/handler"
	"github.com/dmitrymomot/liverelay/core/logger"
)

const (
	DefaultChatModel      = "gemini-2.0-flash"
	DefaultEmbeddingModel = "text-embedding-004"

	pathChatCompletions = "/chat/completions"
	pathEmbeddings      = "/embeddings"
	pathModels          = "/models"
)

// Adapter translates OpenAI-style requests into Gemini API calls.
type Adapter struct {
	factory        BackendFactory
	chatModel      string
	embeddingModel string
	bind           func(r *http.Request, v any) error
	now            func() time.Time
	newID          func() string
	logger         *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithBackendFactory sets how per-request backends are created.
func WithBackendFactory(f BackendFactory) Option {
	return func(a *Adapter) {
		if f != nil {
			a.factory = f
		}
	}
}

// WithDefaultChatModel sets the model used when a chat request names none.
func WithDefaultChatModel(model string) Option {
	return func(a *Adapter) {
		if model != "" {
			a.chatModel = model
		}
	}
}

// WithDefaultEmbeddingModel sets the model used when an embeddings request
// names none.
func WithDefaultEmbeddingModel(model string) Option {
	return func(a *Adapter) {
		if model != "" {
			a.embeddingModel = model
		}
	}
}

// WithMaxBodySize limits decoded request bodies.
func WithMaxBodySize(n int64) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.bind = binder.JSON(binder.WithMaxSize(n))
		}
	}
}

// WithClock overrides the time source for "created" timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger. Nil keeps the no-op default.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Adapter. Without WithBackendFactory every call fails
// with ErrNoBackend.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		chatModel:      DefaultChatModel,
		embeddingModel: DefaultEmbeddingModel,
		bind:           binder.JSON(),
		now:            time.Now,
		newID:          func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(logger.Component("gemini"))
	return a
}

// Handle serves one API request. It matches on path suffix so the adapter
// works under any prefix.
func (a *Adapter) Handle(ctx context.Context, r *http.Request) (handler.Response, error) {
	path := strings.TrimSuffix(r.URL.Path, "/")

	var (
		method   string
		endpoint func(context.Context, Backend, *http.Request) (handler.Response, error)
	)
	switch {
	case strings.HasSuffix(path, pathChatCompletions):
		method, endpoint = http.MethodPost, a.chatCompletions
	case strings.HasSuffix(path, pathEmbeddings):
		method, endpoint = http.MethodPost, a.embeddings
	case strings.HasSuffix(path, pathModels):
		method, endpoint = http.MethodGet, a.models
	default:
		return nil, ErrUnknownEndpoint
	}
	if r.Method != method {
		return nil, ErrMethodNotAllowed.WithDetails(map[string]any{"allow": method})
	}

	apiKey := APIKey(r)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if a.factory == nil {
		return nil, ErrNoBackend
	}
	backend, err := a.factory(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return endpoint(ctx, backend, r)
}

// APIKey extracts the caller's key from the Authorization bearer token or
// the x-goog-api-key header.
func APIKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}
	return strings.TrimSpace(r.Header.Get("x-goog-api-key"))
}

// modelPath qualifies a bare model id the way the Gemini API expects.
func modelPath(model string) string {
	if strings.HasPrefix(model, "models/") || strings.HasPrefix(model, "tunedModels/") {
		return model
	}
	return "models/" + model
}

// modelID is the inverse of modelPath for response bodies.
func modelID(name string) string {
	return strings.TrimPrefix(name, "models/")
}
