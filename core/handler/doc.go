// Package handler provides the types shared by the router, middleware and
// response packages.
//
// A request is processed in two steps. A HandlerFunc inspects the request
// context and decides what to send back; the Response it returns does the
// actual writing:
//
//	type Response func(w http.ResponseWriter, r *http.Request) error
//	type HandlerFunc[C Context] func(ctx C) Response
//	type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]
//
// Keeping the decision separate from the rendering lets middleware decorate a
// response (add headers, log the final status) without buffering it, and lets
// long-lived responses such as WebSocket sessions own the connection until
// they return.
//
// Errors returned by a Response are passed to the router's ErrorHandler.
// Errors that implement
//
//	interface{ StatusCode() int }
//
// control the status code of the error response.
package handler
