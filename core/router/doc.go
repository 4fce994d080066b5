// Package router classifies every inbound request and dispatches it exactly
// once: WebSocket upgrades go to the relay, OpenAI-style API calls go to the
// adapter, reserved but unmapped API paths get 501, and everything else is
// served from the static document root.
//
// # Features
//
//   - Pure, total route classification with fixed precedence
//   - Pluggable Relay, Adapter and Files collaborators
//   - Type-safe middleware around every route
//   - Panic recovery and a replaceable error handler
//   - Relay sessions bound to a lifetime context for shutdown
//
// # Route Classification
//
// Classification is a pure function of the request path and headers:
//
//  1. Upgrade header equal to "websocket" (any case)  -> Upgrade
//  2. path ending in /chat/completions, /embeddings, /models -> API
//  3. path under the API prefix (default "/api/")     -> Unmapped
//  4. anything else                                   -> Static
//
// It can be used on its own:
//
//	router.Classify("/v1beta/models", "", nil)          // API
//	router.Classify("/api/unknown", "", nil)            // Unmapped
//	router.Classify("/", "", http.Header{"Upgrade": {"websocket"}}) // Upgrade
//
// A Classifier with other prefixes or suffixes replaces the defaults:
//
//	d := router.New(router.WithClassifier(router.Classifier{
//		APIPrefix:   "/v2/",
//		APISuffixes: []string{"/generate"},
//	}))
//
// # Basic Usage
//
//	d := router.New(
//		router.WithRelay(bridge.New()),
//		router.WithAdapter(gemini.New(gemini.WithBackendFactory(gemini.GenAIFactory("", nil)))),
//		router.WithFiles(static.New(os.DirFS("static"))),
//		router.WithLogger(log),
//	)
//	http.ListenAndServe(":8000", d)
//
// Components left out answer 501 for their routes, except static files
// which answer 404.
//
// # Middleware
//
// Middleware wraps every route, upgrades included, in the order given:
//
//	d := router.New(
//		router.WithAdapter(adapter),
//		router.WithMiddleware(
//			middleware.RequestID[*router.Context](),
//			middleware.LoggingWithLogger[*router.Context](log),
//			middleware.BodyLimitWithSize[*router.Context](20*middleware.MB),
//		),
//	)
//
// The response writer seen by middleware supports http.Flusher and
// http.Hijacker, so streamed API responses and WebSocket upgrades pass
// through wrappers that forward them.
//
// # Error Handling
//
// Adapter errors are rendered as plain text with the status reported by the
// error's StatusCode method, 500 when there is none:
//
//	func (a *Adapter) Handle(ctx context.Context, r *http.Request) (handler.Response, error) {
//		if key == "" {
//			return nil, response.ErrUnauthorized.WithMessage("missing API key") // 401 "missing API key"
//		}
//		...
//	}
//
// Panics anywhere below the dispatcher are recovered and rendered as 500
// without exposing the panic value. WithErrorHandler replaces the renderer:
//
//	router.WithErrorHandler(func(ctx *router.Context, err error) {
//		_ = response.JSONWithStatus(map[string]string{"error": err.Error()}, response.StatusOf(err))(
//			ctx.ResponseWriter(), ctx.Request())
//	})
//
// # WebSocket Upgrades
//
// The upgrade is performed with gorilla/websocket and the connection is
// handed to the Relay. WithWebSocketOptions tunes the upgrader, for example
// the origin check:
//
//	router.WithWebSocketOptions(response.WithWSOriginCheck(func(r *http.Request) bool {
//		return r.Header.Get("Origin") == "https://app.example"
//	}))
//
// http.Server.Shutdown does not track hijacked connections. Pass the server's
// run context through WithLifetime so relay sessions end with it.
package router
