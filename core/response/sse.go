package response

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrymomot/liverelay/core/handler"
)

// DefaultSSEKeepAlive is the default keep-alive interval for SSE connections.
const DefaultSSEKeepAlive = 30 * time.Second

type sseConfig struct {
	events    <-chan any
	eventName string
	keepAlive time.Duration
	doneData  string
	onError   func(context.Context, error)
}

// EventOption configures Server-Sent Events behavior.
type EventOption func(*sseConfig)

// WithEventName sets the event name for SSE events.
func WithEventName(name string) EventOption {
	return func(s *sseConfig) {
		s.eventName = name
	}
}

// WithKeepAlive sets the keep-alive interval for SSE connections.
func WithKeepAlive(interval time.Duration) EventOption {
	return func(s *sseConfig) {
		s.keepAlive = interval
	}
}

// WithoutKeepAlive disables keep-alive comments.
func WithoutKeepAlive() EventOption {
	return func(s *sseConfig) {
		s.keepAlive = 0
	}
}

// WithDoneEvent writes a final "data: <data>" event after the channel is
// closed, e.g. the "[DONE]" sentinel of OpenAI-style streams.
func WithDoneEvent(data string) EventOption {
	return func(s *sseConfig) {
		s.doneData = data
	}
}

// WithSSEErrorHandler sets an error handler for SSE streaming errors.
func WithSSEErrorHandler(fn func(context.Context, error)) EventOption {
	return func(s *sseConfig) {
		s.onError = fn
	}
}

// SSE creates a Server-Sent Events response from a channel of data.
// Strings and byte slices are written verbatim, anything else as JSON.
// The stream ends when the channel is closed or the client goes away.
func SSE(events <-chan any, opts ...EventOption) handler.Response {
	cfg := &sseConfig{
		events:    events,
		keepAlive: DefaultSSEKeepAlive,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, req *http.Request) error {
		flusher, ok := w.(http.Flusher)
		if !ok {
			return ErrInternalServerError.WithMessage("streaming unsupported")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		var keepAlive <-chan time.Time
		if cfg.keepAlive > 0 {
			ticker := time.NewTicker(cfg.keepAlive)
			defer ticker.Stop()
			keepAlive = ticker.C
		}

		report := func(err error) {
			if cfg.onError != nil {
				cfg.onError(req.Context(), err)
			}
		}

		for {
			select {
			case <-req.Context().Done():
				return nil

			case <-keepAlive:
				if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
					report(fmt.Errorf("failed to send keepalive: %w", err))
					return nil
				}
				flusher.Flush()

			case data, ok := <-cfg.events:
				if !ok {
					if cfg.doneData != "" {
						if err := writeSSEEvent(w, cfg.doneData, cfg.eventName); err != nil {
							report(fmt.Errorf("failed to write done event: %w", err))
						}
						flusher.Flush()
					}
					return nil
				}
				if err := writeSSEEvent(w, data, cfg.eventName); err != nil {
					report(fmt.Errorf("failed to write event: %w", err))
					return nil
				}
				flusher.Flush()
			}
		}
	}
}

func writeSSEEvent(w io.Writer, data any, eventName string) error {
	if eventName != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", eventName); err != nil {
			return err
		}
	}

	var payload string
	switch v := data.(type) {
	case string:
		payload = v
	case []byte:
		payload = string(v)
	default:
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		payload = string(b)
	}

	_, err := fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
