package bridge

import (
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/liverelay/core/logger"
)

// State is the lifecycle state of a relay session.
type State int

const (
	// Connecting means the upstream dial is in progress and client messages
	// are queued.
	Connecting State = iota
	// Open means both sides are connected and messages flow both ways.
	Open
	// Closing means one side started closing and the session waits for the
	// other to confirm.
	Closing
	// Closed is terminal.
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// EventKind identifies what happened on one side of a session.
type EventKind int

const (
	InboundMessage EventKind = iota + 1
	InboundClosed
	OutboundReady
	OutboundMessage
	OutboundClosed
	OutboundError
)

func (k EventKind) String() string {
	switch k {
	case InboundMessage:
		return "inbound_message"
	case InboundClosed:
		return "inbound_closed"
	case OutboundReady:
		return "outbound_ready"
	case OutboundMessage:
		return "outbound_message"
	case OutboundClosed:
		return "outbound_closed"
	case OutboundError:
		return "outbound_error"
	}
	return "unknown"
}

// Event is the input of Session.Dispatch. Only the fields relevant to Kind
// are set: Message for *Message, Conn for OutboundReady, Code and Reason for
// *Closed, Err for OutboundError.
type Event struct {
	Kind    EventKind
	Message Message
	Conn    Conn
	Code    int
	Reason  string
	Err     error
}

// Session is the per-connection relay state machine. It is not safe for
// concurrent use: exactly one goroutine calls Dispatch.
type Session struct {
	id       string
	state    State
	inbound  Conn
	outbound Conn
	pending  *Queue
	logger   *slog.Logger

	inboundOpen       bool
	outboundOpen      bool
	dialing           bool
	inboundCloseSent  bool
	outboundCloseSent bool

	// close status to apply to an upstream connection that becomes ready
	// after the client already left
	closeCode   int
	closeReason string

	cancelDial func()
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionID sets the identifier used in log lines.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(log *slog.Logger) SessionOption {
	return func(s *Session) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithPendingLimit bounds the number of client messages held while
// connecting. Zero means unbounded.
func WithPendingLimit(n int) SessionOption {
	return func(s *Session) {
		s.pending = NewQueue(n)
	}
}

// WithDialCancel registers a function that aborts the upstream dial. It is
// called when the session starts closing before the upstream is ready.
func WithDialCancel(cancel func()) SessionOption {
	return func(s *Session) {
		s.cancelDial = cancel
	}
}

// NewSession creates a session in the Connecting state for an accepted
// client connection. The caller is expected to start dialing the upstream
// right away and report the outcome through Dispatch.
func NewSession(inbound Conn, opts ...SessionOption) *Session {
	s := &Session{
		state:       Connecting,
		inbound:     inbound,
		pending:     NewQueue(DefaultMaxPending),
		logger:      logger.Nop(),
		inboundOpen: true,
		dialing:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.SessionID(s.id))
	return s
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Pending returns the number of queued client messages.
func (s *Session) Pending() int {
	return s.pending.Len()
}

// Dispatch applies one event to the session.
func (s *Session) Dispatch(ev Event) {
	if s.state == Closed {
		if ev.Kind == OutboundReady && ev.Conn != nil {
			// Nothing is left to relay to.
			_ = ev.Conn.Close(wireCloseCode(s.closeCode), wireCloseReason(s.closeReason))
		}
		return
	}

	switch ev.Kind {
	case InboundMessage:
		s.onInboundMessage(ev.Message)
	case InboundClosed:
		s.onInboundClosed(ev.Code, ev.Reason)
	case OutboundReady:
		s.onOutboundReady(ev.Conn)
	case OutboundMessage:
		s.onOutboundMessage(ev.Message)
	case OutboundClosed:
		s.onOutboundClosed(ev.Code, ev.Reason)
	case OutboundError:
		s.logger.Warn("upstream connection error", logger.Error(ev.Err), logger.State(s.state.String()))
	default:
		s.logger.Error("unknown session event", slog.Int("kind", int(ev.Kind)))
	}
}

// Close closes both sides with the given code and reason, for example on
// server shutdown.
func (s *Session) Close(code int, reason string) {
	if s.state == Closed {
		return
	}
	s.rememberClose(code, reason)
	s.closeInbound(code, reason)
	s.closeOutbound(code, reason)
	s.stopDial()
	s.pending.Clear()
	s.settle()
}

// Terminate forces the Closed state without waiting for either side.
// The caller is responsible for tearing down the underlying sockets.
func (s *Session) Terminate() {
	if s.state == Closed {
		return
	}
	s.logger.Warn("session terminated before closing handshake completed",
		slog.Bool("inbound_open", s.inboundOpen),
		slog.Bool("outbound_open", s.outboundOpen),
		slog.Bool("dialing", s.dialing),
	)
	s.stopDial()
	s.inboundOpen = false
	s.outboundOpen = false
	s.dialing = false
	s.pending.Clear()
	s.state = Closed
}

func (s *Session) onInboundMessage(msg Message) {
	switch s.state {
	case Connecting:
		if !s.pending.Push(msg) {
			s.logger.Warn("pending message limit reached", logger.Count("pending", s.pending.Len()))
			s.rememberClose(websocket.CloseTryAgainLater, ReasonPendingLimit)
			s.closeInbound(websocket.CloseTryAgainLater, ReasonPendingLimit)
			s.stopDial()
			s.pending.Clear()
			s.settle()
		}
	case Open:
		if err := s.outbound.Send(msg); err != nil {
			s.logger.Warn("failed to forward message upstream", logger.Error(err))
		}
	default:
		s.logger.Debug("dropping client message while closing")
	}
}

func (s *Session) onOutboundMessage(msg Message) {
	if s.state != Open || !s.inboundOpen || s.inboundCloseSent {
		s.logger.Debug("dropping upstream message", logger.State(s.state.String()))
		return
	}
	if err := s.inbound.Send(msg); err != nil {
		s.logger.Warn("failed to forward message to client", logger.Error(err))
	}
}

func (s *Session) onOutboundReady(conn Conn) {
	s.dialing = false
	if conn == nil {
		s.settle()
		return
	}
	s.outbound = conn
	s.outboundOpen = true

	if s.state != Connecting {
		// The client is already gone or leaving.
		s.pending.Clear()
		s.closeOutbound(s.closeCode, s.closeReason)
		s.settle()
		return
	}

	n := s.pending.Drain(func(msg Message) {
		if err := s.outbound.Send(msg); err != nil {
			s.logger.Warn("failed to replay queued message upstream", logger.Error(err))
		}
	})
	s.state = Open
	s.logger.Debug("upstream ready", logger.Count("replayed", n))
}

func (s *Session) onInboundClosed(code int, reason string) {
	s.inboundOpen = false
	s.logger.Debug("client closed", logger.CloseCode(code), logger.CloseReason(reason))
	s.rememberClose(code, reason)
	s.closeOutbound(code, reason)
	s.stopDial()
	s.pending.Clear()
	s.settle()
}

func (s *Session) onOutboundClosed(code int, reason string) {
	s.outboundOpen = false
	s.dialing = false
	s.logger.Debug("upstream closed", logger.CloseCode(code), logger.CloseReason(reason))
	s.rememberClose(code, reason)
	s.closeInbound(code, reason)
	s.pending.Clear()
	s.settle()
}

func (s *Session) closeInbound(code int, reason string) {
	if !s.inboundOpen || s.inboundCloseSent {
		return
	}
	s.inboundCloseSent = true
	if err := s.inbound.Close(wireCloseCode(code), wireCloseReason(reason)); err != nil {
		s.logger.Debug("failed to send close to client", logger.Error(err))
	}
}

func (s *Session) closeOutbound(code int, reason string) {
	if !s.outboundOpen || s.outboundCloseSent {
		return
	}
	s.outboundCloseSent = true
	if err := s.outbound.Close(wireCloseCode(code), wireCloseReason(reason)); err != nil {
		s.logger.Debug("failed to send close upstream", logger.Error(err))
	}
}

func (s *Session) rememberClose(code int, reason string) {
	if s.state == Connecting || s.state == Open {
		s.closeCode = code
		s.closeReason = reason
	}
}

func (s *Session) stopDial() {
	if s.dialing && s.cancelDial != nil {
		s.cancelDial()
	}
}

// settle moves the session to Closing or Closed after a close-related event.
func (s *Session) settle() {
	if !s.inboundOpen && !s.outboundOpen && !s.dialing {
		s.state = Closed
		s.pending.Clear()
		s.logger.Debug("session closed")
		return
	}
	s.state = Closing
}
