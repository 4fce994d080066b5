package bridge_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/liverelay/pkg/bridge"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

// relayServer upgrades every request and hands it to b.
func relayServer(t *testing.T, b *bridge.Bridge) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = b.Serve(r.Context(), conn, b.Target(r))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialClient(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, path), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readClose(t *testing.T, conn *websocket.Conn) *websocket.CloseError {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		var ce *websocket.CloseError
		require.True(t, errors.As(err, &ce), "expected close frame, got %v", err)
		return ce
	}
}

func TestBridge_Target(t *testing.T) {
	t.Parallel()

	b := bridge.New()
	r := httptest.NewRequest(http.MethodGet, "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent?key=abc", nil)
	assert.Equal(t,
		"wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent?key=abc",
		b.Target(r),
	)

	b = bridge.New(bridge.WithUpstream("ws://127.0.0.1:9000/"))
	assert.Equal(t, "ws://127.0.0.1:9000/a%20b", b.Target(httptest.NewRequest(http.MethodGet, "/a%20b", nil)))
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	_, err := bridge.NewFromConfig(bridge.DefaultConfig())
	require.NoError(t, err)

	cfg := bridge.DefaultConfig()
	cfg.Upstream = "https://example.com"
	_, err = bridge.NewFromConfig(cfg)
	assert.ErrorIs(t, err, bridge.ErrInvalidUpstream)
}

func TestBridge_Serve(t *testing.T) {
	t.Parallel()

	t.Run("queued_messages_arrive_in_order_after_ready", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		received := make(chan string, 10)
		requestURI := make(chan string, 1)

		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestURI <- r.URL.RequestURI()
			<-release
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				received <- string(data)
			}
		}))
		t.Cleanup(upstream.Close)

		b := bridge.New(bridge.WithUpstream(wsURL(upstream, "")))
		client := dialClient(t, relayServer(t, b), "/ws/live?key=secret")

		for _, m := range []string{"one", "two", "three"} {
			require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(m)))
		}

		select {
		case uri := <-requestURI:
			assert.Equal(t, "/ws/live?key=secret", uri)
		case <-time.After(5 * time.Second):
			t.Fatal("upstream was never dialed")
		}
		assert.Empty(t, received, "nothing may arrive before the upstream is ready")
		close(release)

		for _, want := range []string{"one", "two", "three"} {
			select {
			case got := <-received:
				assert.Equal(t, want, got)
			case <-time.After(5 * time.Second):
				t.Fatalf("timed out waiting for %q", want)
			}
		}

		require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("four")))
		select {
		case got := <-received:
			assert.Equal(t, "four", got)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for live message")
		}
	})

	t.Run("relays_both_directions", func(t *testing.T) {
		t.Parallel()

		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()
			for {
				typ, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				if err := conn.WriteMessage(typ, append([]byte("echo:"), data...)); err != nil {
					return
				}
			}
		}))
		t.Cleanup(upstream.Close)

		b := bridge.New(bridge.WithUpstream(wsURL(upstream, "")))
		client := dialClient(t, relayServer(t, b), "/")
		require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))

		require.NoError(t, client.WriteMessage(websocket.BinaryMessage, []byte{0xff}))
		typ, data, err := client.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.BinaryMessage, typ)
		assert.Equal(t, append([]byte("echo:"), 0xff), data)

		require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("hi")))
		typ, data, err = client.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, typ)
		assert.Equal(t, "echo:hi", string(data))
	})

	t.Run("upstream_close_reaches_client", func(t *testing.T) {
		t.Parallel()

		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "internal"),
				time.Now().Add(time.Second))
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}))
		t.Cleanup(upstream.Close)

		b := bridge.New(bridge.WithUpstream(wsURL(upstream, "")))
		client := dialClient(t, relayServer(t, b), "/")

		ce := readClose(t, client)
		assert.Equal(t, websocket.CloseInternalServerErr, ce.Code)
		assert.Equal(t, "internal", ce.Text)
	})

	t.Run("client_close_reaches_upstream", func(t *testing.T) {
		t.Parallel()

		closed := make(chan *websocket.CloseError, 1)
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()
			for {
				typ, data, err := conn.ReadMessage()
				if err != nil {
					var ce *websocket.CloseError
					if errors.As(err, &ce) {
						closed <- ce
					}
					return
				}
				_ = conn.WriteMessage(typ, data)
			}
		}))
		t.Cleanup(upstream.Close)

		b := bridge.New(bridge.WithUpstream(wsURL(upstream, "")))
		client := dialClient(t, relayServer(t, b), "/")

		// A round trip guarantees the upstream is connected.
		require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("hello")))
		require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, _, err := client.ReadMessage()
		require.NoError(t, err)

		require.NoError(t, client.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(4000, "bye"), time.Now().Add(time.Second)))

		select {
		case ce := <-closed:
			assert.Equal(t, 4000, ce.Code)
			assert.Equal(t, "bye", ce.Text)
		case <-time.After(5 * time.Second):
			t.Fatal("upstream never saw the close")
		}
	})

	t.Run("handshake_rejection_closes_client", func(t *testing.T) {
		t.Parallel()

		attempts := make(chan struct{}, 10)
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts <- struct{}{}
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		t.Cleanup(upstream.Close)

		b := bridge.New(bridge.WithUpstream(wsURL(upstream, "")), bridge.WithDialRetries(3))
		client := dialClient(t, relayServer(t, b), "/")

		ce := readClose(t, client)
		assert.Equal(t, websocket.CloseInternalServerErr, ce.Code)
		assert.Equal(t, "upstream handshake failed: 403", ce.Text)
		assert.Len(t, attempts, 1, "handshake rejections are not retried")
	})

	t.Run("unreachable_upstream_closes_client", func(t *testing.T) {
		t.Parallel()

		dead := httptest.NewServer(http.NotFoundHandler())
		deadURL := wsURL(dead, "")
		dead.Close()

		b := bridge.New(
			bridge.WithUpstream(deadURL),
			bridge.WithDialRetries(1),
			bridge.WithRetryInterval(time.Millisecond),
		)
		client := dialClient(t, relayServer(t, b), "/")

		ce := readClose(t, client)
		assert.Equal(t, websocket.CloseInternalServerErr, ce.Code)
		assert.Equal(t, bridge.ReasonUpstreamUnavailable, ce.Text)
	})

	t.Run("shutdown_closes_both_sides", func(t *testing.T) {
		t.Parallel()

		upstreamClosed := make(chan int, 1)
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()
			for {
				typ, data, err := conn.ReadMessage()
				if err != nil {
					var ce *websocket.CloseError
					if errors.As(err, &ce) {
						upstreamClosed <- ce.Code
					}
					return
				}
				_ = conn.WriteMessage(typ, data)
			}
		}))
		t.Cleanup(upstream.Close)

		ctx, cancel := context.WithCancel(context.Background())
		b := bridge.New(bridge.WithUpstream(wsURL(upstream, "")))
		relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			_ = b.Serve(ctx, conn, b.Target(r))
		}))
		t.Cleanup(relay.Close)

		client := dialClient(t, relay, "/")
		require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("ping")))
		require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, _, err := client.ReadMessage()
		require.NoError(t, err)

		cancel()

		ce := readClose(t, client)
		assert.Equal(t, websocket.CloseGoingAway, ce.Code)
		select {
		case code := <-upstreamClosed:
			assert.Equal(t, websocket.CloseGoingAway, code)
		case <-time.After(5 * time.Second):
			t.Fatal("upstream never saw the close")
		}
	})
}

func TestBridge_DialOptions(t *testing.T) {
	t.Parallel()

	t.Run("custom_dialer_and_handshake_header", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()
			typ, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			_ = conn.WriteMessage(typ, data)
		}))
		t.Cleanup(upstream.Close)

		var dials atomic.Int32
		dialer := &websocket.Dialer{
			HandshakeTimeout: 5 * time.Second,
			NetDialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				dials.Add(1)
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		}

		b := bridge.New(
			bridge.WithUpstream(wsURL(upstream, "")),
			bridge.WithDialer(dialer),
			bridge.WithUpstreamHeader(http.Header{"X-Goog-Api-Client": {"liverelay"}}),
		)
		client := dialClient(t, relayServer(t, b), "/ws")
		require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))

		require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("hi")))
		_, data, err := client.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, "hi", string(data))

		select {
		case h := <-headers:
			assert.Equal(t, "liverelay", h.Get("X-Goog-Api-Client"))
		case <-time.After(5 * time.Second):
			t.Fatal("upstream was never dialed")
		}
		assert.Equal(t, int32(1), dials.Load())
	})
}
