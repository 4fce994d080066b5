package bridge

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNilConn is returned by Serve when no client connection is given.
	ErrNilConn = errors.New("bridge: nil client connection")

	// ErrInvalidUpstream is returned when the upstream URL is not a ws or
	// wss URL with a host.
	ErrInvalidUpstream = errors.New("bridge: invalid upstream url")
)

// HandshakeError reports that the upstream answered the WebSocket handshake
// with a non-101 HTTP response. It is never retried.
type HandshakeError struct {
	Status int
	Err    error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("upstream handshake failed: %d %s", e.Status, http.StatusText(e.Status))
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// dialFailureReason is the reason sent to the client when the dial fails.
func dialFailureReason(err error) string {
	var he *HandshakeError
	if errors.As(err, &he) {
		return fmt.Sprintf("upstream handshake failed: %d", he.Status)
	}
	return ReasonUpstreamUnavailable
}
