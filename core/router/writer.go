package router

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// responseWriter tracks whether a response has been written. It passes
// Flush and Hijack through so SSE streams and WebSocket upgrades work.
type responseWriter struct {
	http.ResponseWriter
	status   int
	written  bool
	hijacked bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (w *responseWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Written reports whether the header was written or the connection hijacked.
func (w *responseWriter) Written() bool {
	return w.written || w.hijacked
}

// Status returns the HTTP status code, 101 for hijacked connections.
func (w *responseWriter) Status() int {
	if w.hijacked {
		return http.StatusSwitchingProtocols
	}
	return w.status
}

func (w *responseWriter) Flush() {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("router: response writer does not support hijacking")
	}
	conn, rw, err := h.Hijack()
	if err == nil {
		w.hijacked = true
	}
	return conn, rw, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
