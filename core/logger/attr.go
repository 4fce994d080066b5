package logger

import (
	"log/slog"
	"time"
)

// Helpers return an empty Attr for nil or empty input; slog drops empty
// attributes, so callers never need nil checks.

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Latency creates an attribute for request latency.
func Latency(d time.Duration) slog.Attr {
	return slog.Duration("latency", d)
}

// Elapsed logs the time since start.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// RequestID creates an attribute for HTTP request IDs.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Method creates an attribute for HTTP methods.
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Path creates an attribute for URL paths.
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// Query creates an attribute for raw query strings.
func Query(query string) slog.Attr {
	if query == "" {
		return slog.Attr{}
	}
	return slog.String("query", query)
}

// StatusCode creates an attribute for HTTP status codes.
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// RemoteAddr creates an attribute for the peer address.
func RemoteAddr(addr string) slog.Attr {
	if addr == "" {
		return slog.Attr{}
	}
	return slog.String("remote_addr", addr)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event creates an attribute for event names.
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Route creates an attribute for the route decision of a request.
func Route(route string) slog.Attr {
	return slog.String("route", route)
}

// SessionID creates an attribute for relay session identifiers.
func SessionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("session_id", id)
}

// Upstream creates an attribute for the upstream URL of a relay session.
func Upstream(url string) slog.Attr {
	if url == "" {
		return slog.Attr{}
	}
	return slog.String("upstream", url)
}

// State creates an attribute for state machine states.
func State(state string) slog.Attr {
	return slog.String("state", state)
}

// CloseCode creates an attribute for WebSocket close codes.
func CloseCode(code int) slog.Attr {
	return slog.Int("close_code", code)
}

// CloseReason creates an attribute for WebSocket close reasons.
func CloseReason(reason string) slog.Attr {
	if reason == "" {
		return slog.Attr{}
	}
	return slog.String("close_reason", reason)
}

// Model creates an attribute for upstream model names.
func Model(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("model", name)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}
