package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/orchestra-mcp/gateway/src/types"
)

type sentFrame struct {
	kind    types.MessageType
	payload types.Payload
}

// fakeSession records everything the gateway asks of the connection manager.
type fakeSession struct {
	mu        sync.Mutex
	sent      []sentFrame
	stops     int
	state     types.ConnectionState
	messages  []types.TextMessage
	events    []types.EventType
	rawEvents []json.RawMessage
	onSend    func(sentFrame)
}

func (f *fakeSession) SendMessage(kind types.MessageType, p types.Payload) error {
	f.mu.Lock()
	frame := sentFrame{kind: kind, payload: p}
	f.sent = append(f.sent, frame)
	hook := f.onSend
	f.mu.Unlock()
	if hook != nil {
		hook(frame)
	}
	return nil
}

func (f *fakeSession) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeSession) SetState(state types.ConnectionState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
}

func (f *fakeSession) Broadcast(msg types.TextMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
}

func (f *fakeSession) BroadcastEvent(eventType types.EventType, raw json.RawMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	f.rawEvents = append(f.rawEvents, raw)
}

func (f *fakeSession) setOnSend(fn func(sentFrame)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSend = fn
}

func (f *fakeSession) getSent() []sentFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]sentFrame, len(f.sent))
	copy(cp, f.sent)
	return cp
}

func (f *fakeSession) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func (f *fakeSession) getState() types.ConnectionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// memStore is an in-memory SessionStore.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

func (m *memStore) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

var errStoreDown = errors.New("store down")

func seq(n int64) *int64 { return &n }
