// Package logger provides structured logging utilities built on log/slog.
//
// Loggers are built with functional options:
//
//	log := logger.New(
//		logger.WithDevelopment("liverelay"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log := logger.New(
//		logger.WithProduction("liverelay"),
//		logger.WithContextExtractors(middleware.RequestIDExtractor),
//	)
//
// Development loggers write text, production loggers write JSON. Context
// extractors pull request-scoped values (request ids, session ids) out of the
// context passed to the *Context logging methods:
//
//	log.InfoContext(r.Context(), "routing request", logger.Path(r.URL.Path))
//	// level=INFO msg="routing request" path=/ request_id=5b0c...
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for nil or empty input, which slog drops,
// so they can be passed unconditionally:
//
//	log.Error("upstream dial failed",
//		logger.Component("bridge"),
//		logger.SessionID(id),
//		logger.Upstream(target),
//		logger.Error(err),
//	)
package logger
