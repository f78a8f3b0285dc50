package server

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/orchestra-mcp/gateway/src/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	l.calls = append(l.calls, s)
	l.mu.Unlock()
}

func (l *callLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type recordingModule struct {
	name     string
	log      *callLog
	mu       sync.Mutex
	messages []types.TextMessage
}

func (m *recordingModule) Name() string    { return m.name }
func (m *recordingModule) Version() string { return "0.0.1" }

func (m *recordingModule) ReceiveBroadcast(msg types.TextMessage) {
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()
	m.log.add(m.name + ":msg")
}

func (m *recordingModule) ReceiveEvent(t types.EventType, _ json.RawMessage) {
	m.log.add(m.name + ":" + string(t))
}

func (m *recordingModule) received() []types.TextMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.TextMessage(nil), m.messages...)
}

func TestBroadcastInRegistrationOrder(t *testing.T) {
	f := newFixture(testOptions())
	log := &callLog{}
	for _, name := range []string{"A", "B", "C"} {
		assert.True(t, f.server.RegisterModule(&recordingModule{name: name, log: log}))
	}

	f.server.Broadcast(types.TextMessage{Message: types.Message{Content: "hi"}})
	f.server.BroadcastEvent(types.EventGuildCreate, json.RawMessage(`{}`))

	assert.Equal(t, []string{
		"A:msg", "B:msg", "C:msg",
		"A:GUILD_CREATE", "B:GUILD_CREATE", "C:GUILD_CREATE",
	}, log.get())
}

func TestRegisterDuplicateModule(t *testing.T) {
	f := newFixture(testOptions())
	m := &recordingModule{name: "A", log: &callLog{}}

	assert.True(t, f.server.RegisterModule(m))
	assert.True(t, f.server.RegisterModule(m))
	assert.Len(t, f.server.Modules(), 2)

	f.server.Broadcast(types.TextMessage{})
	assert.Len(t, m.received(), 2)
}

func TestModulesReturnsCopy(t *testing.T) {
	f := newFixture(testOptions())
	f.server.RegisterModule(&recordingModule{name: "A", log: &callLog{}})

	mods := f.server.Modules()
	mods[0] = nil

	require.Len(t, f.server.Modules(), 1)
	assert.NotNil(t, f.server.Modules()[0])
}

func TestMessageCreateReachesModules(t *testing.T) {
	c := newMockConn()
	f := newFixture(testOptions(), c)
	m := &recordingModule{name: "A", log: &callLog{}}
	f.server.RegisterModule(m)
	f.run(t)
	openReady(t, f, c)

	c.push(t, `{"op":0,"s":2,"t":"MESSAGE_CREATE","d":{"id":"m1","channel_id":"c1","content":"from bot","author":{"id":"bot-1","username":"orchestra"}}}`)
	c.push(t, `{"op":0,"s":3,"t":"MESSAGE_CREATE","d":{"id":"m2","channel_id":"c1","content":"!echo hi","author":{"id":"u-2","username":"someone"}}}`)

	require.Eventually(t, func() bool { return len(m.received()) == 1 }, waitFor, tick)
	msg := m.received()[0]
	assert.Equal(t, "m2", msg.ID)
	assert.Equal(t, "!echo hi", msg.Content)
	assert.Equal(t, "u-2", msg.From.ID)

	require.Eventually(t, func() bool {
		seq, _ := f.server.Heartbeat().Sequence()
		return seq == 3
	}, waitFor, tick)
}
