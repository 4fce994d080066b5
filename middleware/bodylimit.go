package middleware

import (
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrymomot/liverelay/core/handler"
	"github.com/dmitrymomot/liverelay/core/response"
)

// Common size constants.
const (
	KB int64 = 1024
	MB       = 1024 * KB
	GB       = 1024 * MB
)

// BodyTooLargeError is returned while reading a request body that exceeds
// the configured limit. It reports 413.
type BodyTooLargeError struct {
	Limit int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("request body too large, maximum allowed: %s", formatBytes(e.Limit))
}

func (e *BodyTooLargeError) StatusCode() int {
	return http.StatusRequestEntityTooLarge
}

// BodyLimitConfig configures the request body limit middleware.
type BodyLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool

	// MaxSize is the maximum allowed size in bytes (default: 4MB)
	MaxSize int64

	// DisableContentLengthCheck skips the declared Content-Length check
	// and only enforces the limit during body reading
	DisableContentLengthCheck bool
}

// BodyLimit limits request bodies to 4MB.
func BodyLimit[C handler.Context]() handler.Middleware[C] {
	return BodyLimitWithConfig[C](BodyLimitConfig{})
}

// BodyLimitWithSize limits request bodies to maxSize bytes.
func BodyLimitWithSize[C handler.Context](maxSize int64) handler.Middleware[C] {
	return BodyLimitWithConfig[C](BodyLimitConfig{MaxSize: maxSize})
}

// BodyLimitWithConfig creates a body limit middleware with custom
// configuration. Requests announcing a larger Content-Length are rejected
// with 413 before the handler runs; bodies without a length fail with
// *BodyTooLargeError when read past the limit.
func BodyLimitWithConfig[C handler.Context](cfg BodyLimitConfig) handler.Middleware[C] {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 4 * MB
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			req := ctx.Request()
			if !cfg.DisableContentLengthCheck && req.ContentLength > cfg.MaxSize {
				return response.Error(response.ErrRequestEntityTooLarge.
					WithMessage((&BodyTooLargeError{Limit: cfg.MaxSize}).Error()).
					WithDetails(map[string]any{"limit": cfg.MaxSize, "size": req.ContentLength}))
			}

			if req.Body != nil && req.Body != http.NoBody {
				req.Body = &limitedReader{reader: req.Body, limit: cfg.MaxSize}
			}
			return next(ctx)
		}
	}
}

type limitedReader struct {
	reader io.ReadCloser
	limit  int64
	read   int64
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	if lr.read > lr.limit {
		return 0, &BodyTooLargeError{Limit: lr.limit}
	}

	// Allow one byte past the limit so an exact-size body still sees EOF.
	if remaining := lr.limit - lr.read + 1; int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := lr.reader.Read(p)
	lr.read += int64(n)
	if lr.read > lr.limit {
		return n, &BodyTooLargeError{Limit: lr.limit}
	}
	return n, err
}

func (lr *limitedReader) Close() error {
	return lr.reader.Close()
}

func formatBytes(bytes int64) string {
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
