package app

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/liverelay/core/config"
	"github.com/dmitrymomot/liverelay/core/logger"
	"github.com/dmitrymomot/liverelay/core/response"
	"github.com/dmitrymomot/liverelay/core/router"
	"github.com/dmitrymomot/liverelay/core/server"
	"github.com/dmitrymomot/liverelay/core/static"
	"github.com/dmitrymomot/liverelay/integration/gemini"
	"github.com/dmitrymomot/liverelay/middleware"
	"github.com/dmitrymomot/liverelay/pkg/bridge"
)

// App wires the relay, the API adapter and the static file server behind
// one HTTP server.
type App struct {
	config   Config
	logger   *slog.Logger
	server   *server.Server
	relay    router.Relay
	adapter  router.Adapter
	files    router.Files
	staticFS fs.FS
}

type AppOption func(*App) error

// NewApp loads Config from the environment and builds every component not
// supplied through options.
func NewApp(opts ...AppOption) (*App, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// New builds an App from an explicit configuration.
func New(cfg Config, opts ...AppOption) (*App, error) {
	app := &App{config: cfg}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.logger == nil {
		app.logger = newLogger(app.config)
	}

	if app.relay == nil {
		b, err := bridge.NewFromConfig(app.config.Bridge, bridge.WithLogger(app.logger))
		if err != nil {
			return nil, err
		}
		app.relay = b
	}

	if app.adapter == nil {
		app.adapter = gemini.NewFromConfig(app.config.Gemini,
			gemini.WithMaxBodySize(app.config.APIMaxBodyBytes),
			gemini.WithLogger(app.logger),
		)
	}

	if app.files == nil {
		if app.staticFS == nil {
			app.staticFS = os.DirFS(app.config.StaticDir)
		}
		app.files = static.New(app.staticFS, static.WithIndex(app.config.StaticIndex))
	}

	if app.server == nil {
		s, err := server.NewFromConfig(app.config.Server, server.WithLogger(app.logger))
		if err != nil {
			return nil, err
		}
		app.server = s
	}

	return app, nil
}

func newLogger(cfg Config) *slog.Logger {
	opts := []logger.Option{logger.WithContextExtractors(middleware.RequestIDExtractor)}
	if cfg.IsDevelopment() {
		opts = append(opts, logger.WithDevelopment(cfg.AppName))
	} else {
		opts = append(opts, logger.WithProduction(cfg.AppName), logger.WithLevelString(cfg.LogLevel))
	}
	return logger.New(opts...)
}

func WithLogger(log *slog.Logger) AppOption {
	return func(app *App) error {
		if log == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = log
		return nil
	}
}

func WithServer(s *server.Server) AppOption {
	return func(app *App) error {
		if s == nil {
			return errors.New("server cannot be nil")
		}
		app.server = s
		return nil
	}
}

func WithRelay(relay router.Relay) AppOption {
	return func(app *App) error {
		if relay == nil {
			return errors.New("relay cannot be nil")
		}
		app.relay = relay
		return nil
	}
}

func WithAdapter(adapter router.Adapter) AppOption {
	return func(app *App) error {
		if adapter == nil {
			return errors.New("adapter cannot be nil")
		}
		app.adapter = adapter
		return nil
	}
}

// WithStaticFS serves static files from fsys instead of STATIC_DIR.
func WithStaticFS(fsys fs.FS) AppOption {
	return func(app *App) error {
		if fsys == nil {
			return errors.New("static filesystem cannot be nil")
		}
		app.staticFS = fsys
		return nil
	}
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Server returns the HTTP server, e.g. to wait for Ready or read Addr.
func (a *App) Server() *server.Server {
	return a.server
}

// Handler builds the request dispatcher. Relay sessions end when ctx is
// cancelled.
func (a *App) Handler(ctx context.Context) http.Handler {
	return router.New(
		router.WithRelay(a.relay),
		router.WithAdapter(a.adapter),
		router.WithFiles(a.files),
		router.WithAPIPrefix(a.config.APIPrefix),
		router.WithLifetime(ctx),
		router.WithWebSocketOptions(response.WithWSOriginCheck(originCheck(a.config.AllowedOrigins))),
		router.WithLogger(a.logger),
		router.WithMiddleware(
			middleware.RequestID[*router.Context](),
			middleware.LoggingWithLogger[*router.Context](a.logger),
			middleware.BodyLimitWithSize[*router.Context](a.config.APIMaxBodyBytes),
		),
	)
}

// originCheck accepts upgrades without an Origin header, from the serving
// host itself, and from any of the allowed origins.
func originCheck(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			set[strings.ToLower(o)] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		_, ok := set[strings.ToLower(strings.TrimRight(origin, "/"))]
		return ok
	}
}

// Run serves until ctx is cancelled, then shuts the server down and closes
// every open relay session with 1001.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("addr", a.config.Server.Addr()),
		slog.String("static_dir", a.config.StaticDir),
		logger.Upstream(a.config.Bridge.Upstream),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(a.server.Run(ctx, a.Handler(ctx)))

	if err := g.Wait(); err != nil {
		a.logger.Error("application stopped with error", logger.Error(err))
		return err
	}
	a.logger.Info("application stopped")
	return nil
}

