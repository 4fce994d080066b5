package bridge

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn adapts a gorilla connection to Conn. Send must only be called from
// the session event loop; Close uses WriteControl and may be called from
// any goroutine.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func newWSConn(conn *websocket.Conn, writeTimeout time.Duration) *wsConn {
	return &wsConn{conn: conn, writeTimeout: writeTimeout}
}

func (c *wsConn) Send(msg Message) error {
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteMessage(msg.Type, msg.Data)
}

func (c *wsConn) Close(code int, reason string) error {
	deadline := time.Now().Add(c.writeTimeout)
	if c.writeTimeout <= 0 {
		deadline = time.Now().Add(DefaultWriteTimeout)
	}
	err := c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	if errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}

// abort tears down the network connection without a closing handshake.
func (c *wsConn) abort() {
	_ = c.conn.Close()
}

// side describes which events a reader goroutine produces.
type side struct {
	message EventKind
	closed  EventKind
	failed  EventKind // zero when transport errors are only reported as closes
}

var (
	inboundSide  = side{message: InboundMessage, closed: InboundClosed}
	outboundSide = side{message: OutboundMessage, closed: OutboundClosed, failed: OutboundError}
)

// pump reads data frames from conn and posts them until the connection
// closes or post reports that the session loop is gone. gorilla answers
// pings and echoes close frames from inside ReadMessage.
func pump(conn *websocket.Conn, sd side, post func(Event) bool) {
	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			code, reason := closeStatus(err)
			if sd.failed != 0 && code == websocket.CloseAbnormalClosure {
				if !post(Event{Kind: sd.failed, Err: err}) {
					return
				}
			}
			post(Event{Kind: sd.closed, Code: code, Reason: reason, Err: err})
			return
		}
		if !post(Event{Kind: sd.message, Message: Message{Type: typ, Data: data}}) {
			return
		}
	}
}

// closeStatus extracts the peer's close code and reason from a read error.
// Errors without a close frame report 1006.
func closeStatus(err error) (int, string) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text
	}
	return websocket.CloseAbnormalClosure, ""
}
