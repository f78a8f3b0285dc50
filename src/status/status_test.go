package status

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orchestra-mcp/gateway/src/gateway"
	"github.com/orchestra-mcp/gateway/src/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopTransport struct{}

func (nopTransport) SendMessage(types.MessageType, types.Payload) error { return nil }
func (nopTransport) Stop()                                              {}

type namedModule struct{ name, version string }

func (m namedModule) Name() string                                { return m.name }
func (m namedModule) Version() string                             { return m.version }
func (namedModule) ReceiveBroadcast(types.TextMessage)            {}
func (namedModule) ReceiveEvent(types.EventType, json.RawMessage) {}

type fakeSource struct {
	state   types.ConnectionState
	connID  string
	hb      *gateway.Heartbeat
	modules []types.Module
}

func (f *fakeSource) State() types.ConnectionState  { return f.state }
func (f *fakeSource) ConnectionID() string          { return f.connID }
func (f *fakeSource) Heartbeat() *gateway.Heartbeat { return f.hb }
func (f *fakeSource) Modules() []types.Module       { return f.modules }

type infoResponse struct {
	State           string       `json:"state"`
	ConnectionID    string       `json:"connection_id"`
	Sequence        *int64       `json:"sequence"`
	HeartbeatActive bool         `json:"heartbeat_active"`
	HeartbeatAcked  bool         `json:"heartbeat_acked"`
	Modules         []moduleInfo `json:"modules"`
}

func getInfo(t *testing.T, src Source) infoResponse {
	t.Helper()
	app := New(src, zerolog.Nop()).App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/gateway/info", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out infoResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestInfoReady(t *testing.T) {
	hb := gateway.NewHeartbeat(nopTransport{}, zerolog.Nop())
	hb.SetSequence(42)
	hb.ReceiveHeartbeat()
	src := &fakeSource{
		state:   types.StateReady,
		connID:  "conn-1",
		hb:      hb,
		modules: []types.Module{namedModule{"Echo", "1.0.0"}, namedModule{"Help", "1.0.0"}},
	}

	info := getInfo(t, src)

	assert.Equal(t, "READY", info.State)
	assert.Equal(t, "conn-1", info.ConnectionID)
	require.NotNil(t, info.Sequence)
	assert.Equal(t, int64(42), *info.Sequence)
	assert.False(t, info.HeartbeatActive)
	assert.True(t, info.HeartbeatAcked)
	assert.Equal(t, []moduleInfo{{"Echo", "1.0.0"}, {"Help", "1.0.0"}}, info.Modules)
}

func TestInfoDisconnected(t *testing.T) {
	src := &fakeSource{
		state: types.StateDisconnected,
		hb:    gateway.NewHeartbeat(nopTransport{}, zerolog.Nop()),
	}

	info := getInfo(t, src)

	assert.Equal(t, "DISCONNECTED", info.State)
	assert.Empty(t, info.ConnectionID)
	assert.Nil(t, info.Sequence)
	assert.Empty(t, info.Modules)
}

func TestUnknownRoute(t *testing.T) {
	app := New(&fakeSource{hb: gateway.NewHeartbeat(nopTransport{}, zerolog.Nop())}, zerolog.Nop()).App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/gateway/nope", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
