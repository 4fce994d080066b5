package router

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/liverelay/core/handler"
	"github.com/dmitrymomot/liverelay/core/response"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRelay sets the WebSocket relay for upgrade requests.
func WithRelay(relay Relay) Option {
	return func(d *Dispatcher) {
		d.relay = relay
	}
}

// WithAdapter sets the API adapter.
func WithAdapter(adapter Adapter) Option {
	return func(d *Dispatcher) {
		d.adapter = adapter
	}
}

// WithFiles sets the static file responder.
func WithFiles(files Files) Option {
	return func(d *Dispatcher) {
		d.files = files
	}
}

// WithClassifier replaces the default route classifier.
func WithClassifier(c Classifier) Option {
	return func(d *Dispatcher) {
		d.classifier = c
	}
}

// WithAPIPrefix sets the reserved API path prefix.
func WithAPIPrefix(prefix string) Option {
	return func(d *Dispatcher) {
		d.classifier.APIPrefix = prefix
	}
}

// WithMiddleware appends middleware to the dispatch chain.
func WithMiddleware(middlewares ...handler.Middleware[*Context]) Option {
	return func(d *Dispatcher) {
		d.middlewares = append(d.middlewares, middlewares...)
	}
}

// WithErrorHandler replaces the default plain-text error handler.
func WithErrorHandler(h handler.ErrorHandler[*Context]) Option {
	return func(d *Dispatcher) {
		if h != nil {
			d.errorHandler = h
		}
	}
}

// WithWebSocketOptions configures the inbound upgrade.
func WithWebSocketOptions(opts ...response.WebSocketOption) Option {
	return func(d *Dispatcher) {
		d.wsOptions = append(d.wsOptions, opts...)
	}
}

// WithLifetime sets a context whose cancellation ends every relay session,
// typically the server's run context. Hijacked connections outlive
// http.Server.Shutdown otherwise.
func WithLifetime(ctx context.Context) Option {
	return func(d *Dispatcher) {
		d.lifetime = ctx
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.logger = log
		}
	}
}
