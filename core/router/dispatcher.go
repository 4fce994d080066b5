package router

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/liverelay/core/handler"
	"github.com/dmitrymomot/liverelay/core/logger"
	"github.com/dmitrymomot/liverelay/core/response"
)

// Relay runs a WebSocket session between an upgraded client connection and
// the upstream target.
type Relay interface {
	Target(r *http.Request) string
	Serve(ctx context.Context, conn *websocket.Conn, target string) error
}

// Adapter implements the REST-style API endpoints. A returned error is
// rendered with the status from its StatusCode method, 500 by default.
type Adapter interface {
	Handle(ctx context.Context, r *http.Request) (handler.Response, error)
}

// Files serves static assets by cleaned URL path.
type Files interface {
	Serve(path string) handler.Response
}

// Dispatcher is the http.Handler at the front of the server.
type Dispatcher struct {
	classifier   Classifier
	relay        Relay
	adapter      Adapter
	files        Files
	middlewares  []handler.Middleware[*Context]
	errorHandler handler.ErrorHandler[*Context]
	wsOptions    []response.WebSocketOption
	lifetime     context.Context
	logger       *slog.Logger
	endpoint     handler.HandlerFunc[*Context]
}

// New creates a Dispatcher. Components that are not configured answer
// 501 for their routes, except static files which answer 404.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		errorHandler: defaultErrorHandler,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.endpoint = d.dispatch
	if len(d.middlewares) > 0 {
		d.endpoint = chain(d.middlewares, d.dispatch)
	}
	return d
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)
	ctx := newContext(ww, r)

	defer func() {
		if p := recover(); p != nil {
			if p == http.ErrAbortHandler {
				panic(p)
			}
			pe := &panicError{value: p, stack: debug.Stack()}
			d.logger.ErrorContext(ctx, "panic recovered",
				slog.Any("value", pe.value),
				slog.String("stack", string(pe.stack)),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				slog.Bool("written", ww.Written()),
			)
			d.errorHandler(ctx, pe)
		}
	}()

	resp := d.endpoint(ctx)
	if resp == nil {
		d.errorHandler(ctx, ErrNilResponse)
		return
	}
	if err := resp(ww, ctx.Request()); err != nil {
		d.errorHandler(ctx, err)
	}
}

func (d *Dispatcher) dispatch(ctx *Context) handler.Response {
	r := ctx.Request()
	route := d.classifier.Classify(r.URL.Path, r.URL.RawQuery, r.Header)
	d.logger.DebugContext(ctx, "request routed",
		logger.Route(route.String()),
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
	)

	switch route {
	case Upgrade:
		return d.upgrade(ctx)
	case API:
		return d.api(ctx)
	case Unmapped:
		return response.Error(ErrAPINotImplemented)
	default:
		return d.static(ctx)
	}
}

func (d *Dispatcher) upgrade(ctx *Context) handler.Response {
	if d.relay == nil {
		return response.Error(response.ErrNotImplemented.WithMessage("relay not configured"))
	}

	r := ctx.Request()
	target := d.relay.Target(r)
	d.logger.InfoContext(ctx, "relaying websocket", logger.Upstream(withoutQuery(target)), logger.Path(r.URL.Path))

	opts := append([]response.WebSocketOption{}, d.wsOptions...)
	opts = append(opts, response.WithWSErrorHandler(func(c context.Context, err error) {
		d.logger.WarnContext(c, "websocket session failed", logger.Error(err))
	}))

	return response.WebSocket(func(c context.Context, conn *websocket.Conn) error {
		sessCtx, cancel := context.WithCancel(c)
		defer cancel()
		if d.lifetime != nil {
			stop := context.AfterFunc(d.lifetime, cancel)
			defer stop()
		}
		return d.relay.Serve(sessCtx, conn, target)
	}, opts...)
}

func (d *Dispatcher) api(ctx *Context) handler.Response {
	if d.adapter == nil {
		return response.Error(ErrAPINotImplemented)
	}

	resp, err := d.adapter.Handle(ctx, ctx.Request())
	if err != nil {
		d.logger.WarnContext(ctx, "api call failed",
			logger.Error(err),
			logger.StatusCode(response.StatusOf(err)),
			logger.Path(ctx.Request().URL.Path),
		)
		return response.Error(err)
	}
	if resp == nil {
		return response.Error(ErrNilResponse)
	}
	return resp
}

func (d *Dispatcher) static(ctx *Context) handler.Response {
	if d.files == nil {
		return response.Error(response.ErrNotFound.WithMessage("404 Not Found"))
	}
	return d.files.Serve(ctx.Request().URL.Path)
}

// withoutQuery drops the query string, which may carry credentials.
func withoutQuery(target string) string {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i]
	}
	return target
}
