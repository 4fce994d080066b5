// Package bridge relays WebSocket traffic between one inbound client
// connection and one outbound upstream connection.
//
// Every relay session is an explicit state machine (Session) driven by a
// single entry point, Dispatch. The Bridge runner owns the sockets: it
// upgrades nothing itself, it takes an already upgraded inbound connection,
// dials the upstream and runs one event loop per session. Reader goroutines
// and the dialer only post events to that loop, so session state is never
// touched concurrently.
//
// # Features
//
//   - One upstream connection per client, path and query passed through
//   - Client messages held in a bounded FIFO while the upstream is dialing
//   - Close codes and reasons propagated in both directions
//   - Dial timeout and retry with exponential backoff
//   - Forced teardown when a closing session does not finish in time
//   - Close with 1001 on server shutdown
//
// # Basic Usage
//
// Create a Bridge once and serve every upgraded connection with it:
//
//	b := bridge.New(
//		bridge.WithUpstream("wss://generativelanguage.googleapis.com"),
//		bridge.WithConnectTimeout(30*time.Second),
//		bridge.WithLogger(log),
//	)
//
//	func relay(w http.ResponseWriter, r *http.Request) error {
//		return response.WebSocket(func(ctx context.Context, conn *websocket.Conn) error {
//			return b.Serve(ctx, conn, b.Target(r))
//		})(w, r)
//	}
//
// Target joins the upstream base with the request's escaped path and raw
// query, so "/ws/live?key=abc" becomes
// "wss://generativelanguage.googleapis.com/ws/live?key=abc". Serve blocks
// until both sides are closed or ctx is cancelled.
//
// # Configuration
//
// NewFromConfig reads the same settings from the environment through
// core/config:
//
//	var cfg bridge.Config // UPSTREAM_URL, BRIDGE_CONNECT_TIMEOUT, BRIDGE_MAX_PENDING, ...
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	b, err := bridge.NewFromConfig(cfg, bridge.WithLogger(log))
//
// Only ws and wss upstreams are accepted; anything else fails with
// ErrInvalidUpstream.
//
// # Session Lifecycle
//
//	Connecting --OutboundReady--> Open --either side closes--> Closing --> Closed
//	Connecting --client closes or dial fails-------------------^
//
// While Connecting, InboundMessage events are appended to the pending
// queue. OutboundReady drains the queue to the upstream in arrival order
// and clears it in the same step; only then do new client messages go
// straight through. A close from either side is forwarded to the other with
// the same code and reason.
//
// A session can be driven without any network, which is how its behavior
// is tested:
//
//	sess := bridge.NewSession(client, bridge.WithPendingLimit(16))
//	sess.Dispatch(bridge.Event{Kind: bridge.InboundMessage, Message: bridge.Text("hello")})
//	sess.Dispatch(bridge.Event{Kind: bridge.OutboundReady, Conn: upstream})
//	// upstream has now received "hello"
//	sess.Dispatch(bridge.Event{Kind: bridge.OutboundClosed, Code: 1011, Reason: "internal"})
//	// client was sent close 1011 "internal"; sess.State() == bridge.Closing
//
// # Failure Handling
//
// An outbound error is logged and nothing else: the close that follows it
// drives recovery. When the dial gives up the client is closed with 1011
// and ReasonUpstreamUnavailable, or "upstream handshake failed: <status>"
// when the upstream answered the handshake with an HTTP error. Handshake
// rejections are never retried.
//
// When the pending queue is full the client is closed with 1013 and
// ReasonPendingLimit.
//
// Close codes that are reserved for local use (1005, 1006, 1015) are never
// sent on the wire: a missing status becomes 1000, an abnormal one 1011.
// Reasons longer than a control frame allows are cut on a UTF-8 boundary.
package bridge
