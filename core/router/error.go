package router

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/liverelay/core/response"
)

var (
	ErrNilResponse = errors.New("nil response")

	// ErrAPINotImplemented is returned for paths under the API prefix that
	// no adapter endpoint handles.
	ErrAPINotImplemented = response.ErrNotImplemented.WithMessage("API not implemented")
)

// PanicError lets error handlers detect recovered panics.
type PanicError interface {
	error
	Value() any
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Value() any {
	return e.value
}

func (e *panicError) Stack() []byte {
	return e.stack
}

func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

// defaultErrorHandler writes err as a plain-text body. Panics never expose
// their value to the client.
func defaultErrorHandler(ctx *Context, err error) {
	if ww, ok := ctx.ResponseWriter().(*responseWriter); ok && ww.Written() {
		return
	}

	var pe PanicError
	if errors.As(err, &pe) {
		err = response.ErrInternalServerError
	}
	if errors.Is(err, ErrNilResponse) {
		err = response.ErrInternalServerError
	}

	_ = response.StringWithStatus(err.Error(), response.StatusOf(err))(ctx.ResponseWriter(), ctx.Request())
}
