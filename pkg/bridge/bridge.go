package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/liverelay/core/logger"
)

// Default settings.
const (
	DefaultUpstream       = "wss://generativelanguage.googleapis.com"
	DefaultConnectTimeout = 30 * time.Second
	DefaultCloseTimeout   = 5 * time.Second
	DefaultWriteTimeout   = 10 * time.Second
	DefaultMaxPending     = 1024
	DefaultDialRetries    = 2
)

// Bridge runs relay sessions. It is safe for concurrent use; every call to
// Serve owns its own Session.
type Bridge struct {
	upstream       string
	dialer         *websocket.Dialer
	header         http.Header
	connectTimeout time.Duration
	closeTimeout   time.Duration
	writeTimeout   time.Duration
	maxPending     int
	dialRetries    int
	retryInterval  time.Duration
	logger         *slog.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithUpstream sets the upstream scheme and host, for example
// "wss://generativelanguage.googleapis.com". A trailing slash is ignored.
func WithUpstream(rawURL string) Option {
	return func(b *Bridge) {
		b.upstream = strings.TrimRight(rawURL, "/")
	}
}

// WithDialer replaces the websocket dialer used for upstream connections.
func WithDialer(d *websocket.Dialer) Option {
	return func(b *Bridge) {
		if d != nil {
			b.dialer = d
		}
	}
}

// WithConnectTimeout bounds the time a session may spend Connecting,
// retries included.
func WithConnectTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		b.connectTimeout = d
	}
}

// WithCloseTimeout bounds the time a session may spend Closing before both
// sockets are torn down.
func WithCloseTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		b.closeTimeout = d
	}
}

// WithWriteTimeout sets the deadline for a single frame write.
func WithWriteTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		b.writeTimeout = d
	}
}

// WithMaxPending bounds the queue of client messages held while connecting.
// Zero means unbounded.
func WithMaxPending(n int) Option {
	return func(b *Bridge) {
		if n >= 0 {
			b.maxPending = n
		}
	}
}

// WithDialRetries sets how many times a failed dial is retried. Handshake
// rejections are never retried.
func WithDialRetries(n int) Option {
	return func(b *Bridge) {
		if n >= 0 {
			b.dialRetries = n
		}
	}
}

// WithRetryInterval sets the initial backoff between dial attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.retryInterval = d
		}
	}
}

// WithUpstreamHeader sets extra headers sent with the upstream handshake.
func WithUpstreamHeader(header http.Header) Option {
	return func(b *Bridge) {
		b.header = header
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(b *Bridge) {
		if log != nil {
			b.logger = log
		}
	}
}

// New creates a Bridge with default settings.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		upstream: DefaultUpstream,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		connectTimeout: DefaultConnectTimeout,
		closeTimeout:   DefaultCloseTimeout,
		writeTimeout:   DefaultWriteTimeout,
		maxPending:     DefaultMaxPending,
		dialRetries:    DefaultDialRetries,
		retryInterval:  200 * time.Millisecond,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Target returns the upstream URL for a client request: the upstream scheme
// and host followed by the request's escaped path and raw query.
func (b *Bridge) Target(r *http.Request) string {
	target := b.upstream + r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	return target
}

// Serve relays between conn and a new connection to target until both are
// closed, the close timeout expires after one side closed, or ctx is
// cancelled. Cancelling ctx closes both sides with 1001. conn is closed
// when Serve returns.
func (b *Bridge) Serve(ctx context.Context, conn *websocket.Conn, target string) error {
	if conn == nil {
		return ErrNilConn
	}

	id := uuid.NewString()
	log := b.logger.With(logger.Component("bridge"), logger.SessionID(id))
	log.Info("session started", logger.Upstream(redact(target)), logger.RemoteAddr(conn.RemoteAddr().String()))
	start := time.Now()

	events := make(chan Event)
	done := make(chan struct{})
	post := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-done:
			return false
		}
	}

	// The dial outlives ctx until the session itself decides to stop it.
	var (
		dialCtx    context.Context
		cancelDial context.CancelFunc
	)
	if b.connectTimeout > 0 {
		dialCtx, cancelDial = context.WithTimeout(context.WithoutCancel(ctx), b.connectTimeout)
	} else {
		dialCtx, cancelDial = context.WithCancel(context.WithoutCancel(ctx))
	}

	inbound := newWSConn(conn, b.writeTimeout)
	var outbound *wsConn

	sess := NewSession(inbound,
		WithSessionID(id),
		WithSessionLogger(b.logger.With(logger.Component("bridge"))),
		WithPendingLimit(b.maxPending),
		WithDialCancel(cancelDial),
	)

	go pump(conn, inboundSide, post)
	go b.connect(dialCtx, target, post, log)

	var (
		grace    *time.Timer
		graceC   <-chan time.Time
		shutdown = ctx.Done()
	)

	for sess.State() != Closed {
		select {
		case ev := <-events:
			if ev.Kind == OutboundReady {
				if c, ok := ev.Conn.(*wsConn); ok {
					outbound = c
				}
			}
			sess.Dispatch(ev)
		case <-shutdown:
			shutdown = nil
			sess.Close(websocket.CloseGoingAway, ReasonShutdown)
		case <-graceC:
			sess.Terminate()
		}

		if grace == nil && sess.State() == Closing && b.closeTimeout > 0 {
			grace = time.NewTimer(b.closeTimeout)
			graceC = grace.C
		}
	}

	close(done)
	cancelDial()
	if grace != nil {
		grace.Stop()
	}
	inbound.abort()
	if outbound != nil {
		outbound.abort()
	}

	log.Info("session finished", logger.Elapsed(start))
	return nil
}

// connect dials the upstream, reports readiness and then becomes the
// upstream reader. Readiness is posted before the reader starts, so the
// session sees OutboundReady before any upstream message.
func (b *Bridge) connect(ctx context.Context, target string, post func(Event) bool, log *slog.Logger) {
	conn, err := b.dial(ctx, target)
	if err != nil {
		if post(Event{Kind: OutboundError, Err: err}) {
			post(Event{
				Kind:   OutboundClosed,
				Code:   websocket.CloseInternalServerErr,
				Reason: dialFailureReason(err),
				Err:    err,
			})
		}
		return
	}

	log.Debug("upstream connected", logger.Upstream(redact(target)))
	outbound := newWSConn(conn, b.writeTimeout)
	if !post(Event{Kind: OutboundReady, Conn: outbound}) {
		outbound.abort()
		return
	}
	pump(conn, outboundSide, post)
}

func (b *Bridge) dial(ctx context.Context, target string) (*websocket.Conn, error) {
	var conn *websocket.Conn
	op := func() error {
		c, resp, err := b.dialer.DialContext(ctx, target, b.header.Clone())
		if err != nil {
			if resp != nil {
				return backoff.Permanent(&HandshakeError{Status: resp.StatusCode, Err: err})
			}
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		conn = c
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = b.retryInterval
	policy.MaxElapsedTime = 0

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(b.dialRetries)), ctx)); err != nil {
		return nil, fmt.Errorf("dial %s: %w", redact(target), err)
	}
	return conn, nil
}

// redact strips the query string, which may carry an API key.
func redact(target string) string {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i]
	}
	return target
}

func validateUpstream(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUpstream, err)
	}
	if (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidUpstream, raw)
	}
	return nil
}
