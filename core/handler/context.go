package handler

import (
	"context"
	"net/http"
)

// Context defines the contract for request contexts.
// The router package ships the default implementation.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	// SetValue stores a request-scoped value. Values set here are visible
	// through both Value and Request().Context().
	SetValue(key, val any)
}
