// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/liverelay/core/config"
//
//	type BridgeConfig struct {
//		UpstreamURL    string        `env:"UPSTREAM_URL" envDefault:"wss://generativelanguage.googleapis.com"`
//		ConnectTimeout time.Duration `env:"BRIDGE_CONNECT_TIMEOUT" envDefault:"30s"`
//		MaxPending     int           `env:"BRIDGE_MAX_PENDING" envDefault:"1024"`
//	}
//
//	func main() {
//		var cfg BridgeConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 BridgeConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 BridgeConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently:
//
//	type ServerConfig struct {
//		Port int `env:"PORT" envDefault:"8000"`
//	}
//
//	// Each type has its own cache entry
//	config.MustLoad(&ServerConfig{})
//	config.MustLoad(&BridgeConfig{})
package config
