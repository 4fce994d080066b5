package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liverelay/core/config"
)

type defaultsConfig struct {
	Port    int           `env:"CONFIG_TEST_DEFAULTS_PORT" envDefault:"8000"`
	Timeout time.Duration `env:"CONFIG_TEST_DEFAULTS_TIMEOUT" envDefault:"30s"`
}

type envConfig struct {
	Upstream string `env:"CONFIG_TEST_UPSTREAM" envDefault:"wss://example.com"`
}

type cachedConfig struct {
	Name string `env:"CONFIG_TEST_CACHED_NAME"`
}

type requiredConfig struct {
	Key string `env:"CONFIG_TEST_REQUIRED_KEY,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies_defaults", func(t *testing.T) {
		var cfg defaultsConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 8000, cfg.Port)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
	})

	t.Run("reads_environment", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_UPSTREAM", "ws://127.0.0.1:9000")

		var cfg envConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "ws://127.0.0.1:9000", cfg.Upstream)
	})

	t.Run("caches_per_type", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_CACHED_NAME", "first")

		var first cachedConfig
		require.NoError(t, config.Load(&first))

		t.Setenv("CONFIG_TEST_CACHED_NAME", "second")

		var second cachedConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, "first", second.Name)
	})

	t.Run("missing_required_variable", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CONFIG_TEST_REQUIRED_KEY")
	})

	t.Run("nil_destination", func(t *testing.T) {
		var cfg *defaultsConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilConfig)
	})

	t.Run("must_load_panics_on_error", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg requiredConfig
			config.MustLoad(&cfg)
		})
	})
}
