package transport

import (
	"context"
	"errors"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/orchestra-mcp/gateway/src/types"
)

// closeWriteWait bounds how long a close frame may take to send.
const closeWriteWait = time.Second

// Dialer opens gateway WebSocket connections.
type Dialer struct {
	dialer    *websocket.Dialer
	readLimit int64
}

// NewDialer creates a dialer. readLimit caps inbound frame size; 0 disables.
func NewDialer(handshakeTimeout time.Duration, readLimit int64) *Dialer {
	return &Dialer{
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: handshakeTimeout,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
		},
		readLimit: readLimit,
	}
}

// Dial connects to url and wraps the socket as a types.Conn.
func (d *Dialer) Dial(ctx context.Context, url string) (types.Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	if d.readLimit > 0 {
		conn.SetReadLimit(d.readLimit)
	}
	return &wsConn{conn: conn}, nil
}

// wsConn wraps fasthttp/websocket.Conn to satisfy types.Conn.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if errors.Is(err, websocket.ErrReadLimit) {
			// The library has already sent 1009 to the peer.
			return nil, &types.CloseError{Code: websocket.CloseMessageTooBig, Reason: err.Error()}
		}
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			return nil, &types.CloseError{Code: ce.Code, Reason: ce.Text}
		}
		return nil, err
	}
	return data, nil
}

func (c *wsConn) WriteMessage(data []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame with code and drops the connection.
func (c *wsConn) Close(code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	werr := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
	cerr := c.conn.Close()
	if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
		return errors.Join(werr, cerr)
	}
	return cerr
}
