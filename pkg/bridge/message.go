package bridge

import (
	"unicode/utf8"

	"github.com/gorilla/websocket"
)

// Message is one opaque WebSocket data frame. Type is websocket.TextMessage
// or websocket.BinaryMessage and is preserved end to end.
type Message struct {
	Type int
	Data []byte
}

// Text returns a text message with the given payload.
func Text(s string) Message {
	return Message{Type: websocket.TextMessage, Data: []byte(s)}
}

// Binary returns a binary message with the given payload.
func Binary(b []byte) Message {
	return Message{Type: websocket.BinaryMessage, Data: b}
}

// Conn is one side of a relay session as seen by the state machine.
type Conn interface {
	// Send writes a data message.
	Send(msg Message) error
	// Close starts the closing handshake with the given code and reason.
	Close(code int, reason string) error
}

// maxCloseReason is the largest close reason that fits a control frame
// (125 bytes payload minus the 2 byte code).
const maxCloseReason = 123

// Close reasons used by the bridge itself.
const (
	ReasonUpstreamUnavailable = "upstream unavailable"
	ReasonPendingLimit        = "pending message limit reached"
	ReasonShutdown            = "server shutting down"
)

// wireCloseCode maps close codes that must not appear in a close frame to
// codes that may.
func wireCloseCode(code int) int {
	switch code {
	case 0, websocket.CloseNoStatusReceived:
		return websocket.CloseNormalClosure
	case websocket.CloseAbnormalClosure, websocket.CloseTLSHandshake:
		return websocket.CloseInternalServerErr
	}
	return code
}

// wireCloseReason truncates reason to the control frame limit without
// splitting a UTF-8 sequence.
func wireCloseReason(reason string) string {
	if len(reason) <= maxCloseReason {
		return reason
	}
	cut := maxCloseReason
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}
