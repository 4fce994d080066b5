package router

import (
	"context"
	"net/http"
	"time"
)

// Context is the request context passed through the middleware chain.
// Its context.Context methods delegate to the current request's context.
type Context struct {
	w http.ResponseWriter
	r *http.Request
}

func newContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{w: w, r: r}
}

func (c *Context) Deadline() (time.Time, bool) { return c.r.Context().Deadline() }
func (c *Context) Done() <-chan struct{}       { return c.r.Context().Done() }
func (c *Context) Err() error                  { return c.r.Context().Err() }
func (c *Context) Value(key any) any           { return c.r.Context().Value(key) }

// Request returns the current request, including values stored by SetValue.
func (c *Context) Request() *http.Request {
	return c.r
}

// ResponseWriter returns the wrapped response writer.
func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.w
}

// SetValue stores a request-scoped value in the request context.
func (c *Context) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}
