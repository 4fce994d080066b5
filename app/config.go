package app

import (
	"github.com/dmitrymomot/liverelay/core/server"
	"github.com/dmitrymomot/liverelay/integration/gemini"
	"github.com/dmitrymomot/liverelay/pkg/bridge"
)

// Config is the full process configuration, loaded from the environment.
type Config struct {
	Server server.Config
	Bridge bridge.Config
	Gemini gemini.Config

	AppName  string `env:"APP_NAME" envDefault:"liverelay"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StaticDir   string `env:"STATIC_DIR" envDefault:"static"`
	StaticIndex string `env:"STATIC_INDEX" envDefault:"index.html"`

	// Extra origins allowed to open relay sessions. Same-origin clients and
	// clients sending no Origin header are always accepted.
	AllowedOrigins []string `env:"WS_ALLOWED_ORIGINS" envSeparator:","`

	APIPrefix       string `env:"API_PREFIX" envDefault:"/api/"`
	APIMaxBodyBytes int64  `env:"API_MAX_BODY_BYTES" envDefault:"20971520"`
}

// IsDevelopment reports whether human-readable logs are wanted.
func (c Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}
