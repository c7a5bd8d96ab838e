package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// wsDialTimeout bounds the initial websocket handshake.
const wsDialTimeout = 10 * time.Second

// websocketTransport speaks JSON-RPC over a persistent websocket connection.
//
// The worker that owns the provider is serial, so there is never more than
// one in-flight call per connection: a plain write-then-read exchange is
// sufficient and no id-based demultiplexing is needed.
type websocketTransport struct {
	url    *url.URL
	dialer *websocket.Dialer
	conn   *websocket.Conn
}

func newWebsocketTransport(u *url.URL) *websocketTransport {
	return &websocketTransport{
		url: u,
		dialer: &websocket.Dialer{
			HandshakeTimeout: wsDialTimeout,
		},
	}
}

func (t *websocketTransport) roundTrip(ctx context.Context, payload []byte) ([]byte, error) {
	conn, err := t.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.SetReadDeadline(deadline)
	}

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.drop()
		return nil, fmt.Errorf("websocket write failed: %w", err)
	}

	_, reply, err := conn.ReadMessage()
	if err != nil {
		t.drop()
		return nil, fmt.Errorf("websocket read failed: %w", err)
	}

	return reply, nil
}

// connect dials lazily on first use and re-dials after a dropped connection.
func (t *websocketTransport) connect(ctx context.Context) (*websocket.Conn, error) {
	if t.conn != nil {
		return t.conn, nil
	}

	conn, _, err := t.dialer.DialContext(ctx, t.url.String(), nil)
	if err != nil {
		return nil, err
	}

	t.conn = conn
	return conn, nil
}

// drop discards a connection after a failed exchange so the next call re-dials.
func (t *websocketTransport) drop() {
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
}

func (t *websocketTransport) close() {
	t.drop()
}
