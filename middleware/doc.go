// Package middleware provides the cross-cutting handlers used in front of
// the dispatcher: request IDs, request logging and request body limits.
//
// All middleware follows one pattern: a generic constructor over the
// handler.Context type, a Config struct for customization, and a Skip hook.
//
//	d := router.New(
//		router.WithMiddleware(
//			middleware.RequestID[*router.Context](),
//			middleware.LoggingWithLogger[*router.Context](log),
//			middleware.BodyLimitWithSize[*router.Context](20*middleware.MB),
//		),
//	)
//
// RequestIDExtractor plugs the request ID into every log line written with
// a request context:
//
//	log := logger.New(logger.WithContextExtractors(middleware.RequestIDExtractor))
package middleware
