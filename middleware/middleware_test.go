package middleware_test

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/liverelay/core/handler"
	"github.com/dmitrymomot/liverelay/core/router"
)

type adapterFunc func(ctx context.Context, r *http.Request) (handler.Response, error)

func (f adapterFunc) Handle(ctx context.Context, r *http.Request) (handler.Response, error) {
	return f(ctx, r)
}

// newDispatcher routes "/models" to fn behind the given middleware.
func newDispatcher(fn adapterFunc, mws ...handler.Middleware[*router.Context]) http.Handler {
	return router.New(router.WithAdapter(fn), router.WithMiddleware(mws...))
}
