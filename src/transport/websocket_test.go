package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/orchestra-mcp/gateway/src/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPeer starts a WebSocket server that runs handler for each connection.
func newPeer(t *testing.T, handler func(*websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialReadWrite(t *testing.T) {
	received := make(chan string, 1)
	url := newPeer(t, func(c *websocket.Conn) {
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"op":10,"d":{"heartbeat_interval":45000}}`))
		_, data, err := c.ReadMessage()
		if err == nil {
			received <- string(data)
		}
		_, _, _ = c.ReadMessage()
	})

	conn, err := NewDialer(time.Second, 0).Dial(context.Background(), url)
	require.NoError(t, err)
	defer conn.Close(websocket.CloseNormalClosure, "")

	data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":10,"d":{"heartbeat_interval":45000}}`, string(data))

	require.NoError(t, conn.WriteMessage([]byte(`{"op":1,"d":null}`)))
	select {
	case got := <-received:
		assert.JSONEq(t, `{"op":1,"d":null}`, got)
	case <-time.After(time.Second):
		t.Fatal("peer did not receive frame")
	}
}

func TestReadReturnsCloseError(t *testing.T) {
	url := newPeer(t, func(c *websocket.Conn) {
		msg := websocket.FormatCloseMessage(4004, "Authentication failed.")
		_ = c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_, _, _ = c.ReadMessage()
	})

	conn, err := NewDialer(time.Second, 0).Dial(context.Background(), url)
	require.NoError(t, err)
	defer conn.Close(websocket.CloseNormalClosure, "")

	_, err = conn.ReadMessage()
	var ce *types.CloseError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 4004, ce.Code)
	assert.Equal(t, "Authentication failed.", ce.Reason)
}

func TestReadOverLimitReportsMessageTooBig(t *testing.T) {
	url := newPeer(t, func(c *websocket.Conn) {
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"op":0,"t":"GUILD_CREATE","d":"`+strings.Repeat("x", 2048)+`"}`))
		_, _, _ = c.ReadMessage()
	})

	conn, err := NewDialer(time.Second, 1024).Dial(context.Background(), url)
	require.NoError(t, err)
	defer conn.Close(websocket.CloseNormalClosure, "")

	_, err = conn.ReadMessage()
	var ce *types.CloseError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, websocket.CloseMessageTooBig, ce.Code)
}

func TestReadUnderLimit(t *testing.T) {
	frame := `{"op":0,"t":"GUILD_CREATE","d":"` + strings.Repeat("x", 2048) + `"}`
	url := newPeer(t, func(c *websocket.Conn) {
		_ = c.WriteMessage(websocket.TextMessage, []byte(frame))
		_, _, _ = c.ReadMessage()
	})

	conn, err := NewDialer(time.Second, 1<<20).Dial(context.Background(), url)
	require.NoError(t, err)
	defer conn.Close(websocket.CloseNormalClosure, "")

	data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Len(t, data, len(frame))
}

func TestCloseSendsCode(t *testing.T) {
	codes := make(chan int, 1)
	url := newPeer(t, func(c *websocket.Conn) {
		_, _, err := c.ReadMessage()
		var ce *websocket.CloseError
		if assert.ErrorAs(t, err, &ce) {
			codes <- ce.Code
		}
	})

	conn, err := NewDialer(time.Second, 0).Dial(context.Background(), url)
	require.NoError(t, err)
	require.NoError(t, conn.Close(websocket.CloseNormalClosure, "bye"))

	select {
	case code := <-codes:
		assert.Equal(t, websocket.CloseNormalClosure, code)
	case <-time.After(time.Second):
		t.Fatal("peer did not observe close")
	}
}

func TestDialFailure(t *testing.T) {
	_, err := NewDialer(100*time.Millisecond, 0).Dial(context.Background(), "ws://127.0.0.1:1/")
	assert.Error(t, err)
}
